package helpers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=1,p=4$"))
	assert.NotContains(t, hash, "correct horse")
	assert.True(t, CompareHashAndPassword(hash, "correct horse"))
	assert.False(t, CompareHashAndPassword(hash, "Correct horse"))
	assert.False(t, CompareHashAndPassword(hash, ""))
}

func TestHashPassword_Salted(t *testing.T) {
	a, err := HashPassword("same")
	require.NoError(t, err)
	b, err := HashPassword("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestHashPassword_Empty(t *testing.T) {
	_, err := HashPassword("")
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestCompareHashAndPassword_Bcrypt(t *testing.T) {
	h, err := bcrypt.GenerateFromPassword([]byte("legacy-pass"), bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, CompareHashAndPassword(string(h), "legacy-pass"))
	assert.False(t, CompareHashAndPassword(string(h), "other"))
}

func TestCompareHashAndPassword_Malformed(t *testing.T) {
	for _, h := range []string{
		"",
		"plaintext",
		"$argon2id$v=19$m=65536,t=1,p=4$onlysalt",
		"$argon2id$v=18$m=65536,t=1,p=4$c2FsdA$a2V5",
		"$argon2id$v=19$m=x,t=1,p=4$c2FsdA$a2V5",
		"$argon2id$v=19$m=65536,t=1,p=4$!!$a2V5",
	} {
		assert.False(t, CompareHashAndPassword(h, "pw"), h)
	}
}

func TestCompareHashAndPassword_RejectsUnsafeParams(t *testing.T) {
	hash, err := HashPassword("pw")
	require.NoError(t, err)
	const prefix = "$argon2id$v=19$m=65536,t=1,p=4"
	require.True(t, strings.HasPrefix(hash, prefix))
	saltAndKey := hash[len(prefix):]

	for _, params := range []string{
		"m=65536,t=0,p=4",
		"m=65536,t=1,p=0",
		"m=65536,t=11,p=4",
		"m=4194304,t=1,p=4",
		"m=16,t=1,p=4",
	} {
		h := "$argon2id$v=19$" + params + saltAndKey
		assert.NotPanics(t, func() {
			assert.False(t, CompareHashAndPassword(h, "pw"), params)
		})
	}

	assert.True(t, CompareHashAndPassword(prefix+saltAndKey, "pw"))
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/KBabraunichy/LibraryWebApiUT-Kiryl/pkg/mailer"
	"github.com/KBabraunichy/LibraryWebApiUT-Kiryl/pkg/mailer/templates"
)

type mockSender struct{ mock.Mock }

func (m *mockSender) Send(ctx context.Context, to, subject, text, html string) error {
	return m.Called(ctx, to, subject, text, html).Error(0)
}

func jobBody(t *testing.T, job mailer.EmailJob) []byte {
	t.Helper()
	b, err := json.Marshal(job)
	require.NoError(t, err)
	return b
}

func TestHandle_Ack(t *testing.T) {
	s := new(mockSender)
	s.On("Send", mock.Anything, "carol@x.io", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	out, err := handle(context.Background(), jobBody(t, mailer.EmailJob{
		To:       "carol@x.io",
		Template: templates.Welcome,
		Data:     map[string]any{"Username": "carol"},
	}), s)

	require.NoError(t, err)
	assert.Equal(t, ack, out)
	s.AssertExpectations(t)
}

func TestHandle_Drop(t *testing.T) {
	s := new(mockSender)

	out, err := handle(context.Background(), []byte("{not json"), s)
	assert.Error(t, err)
	assert.Equal(t, drop, out)

	out, err = handle(context.Background(), jobBody(t, mailer.EmailJob{To: "a@x.io", Template: "nope"}), s)
	assert.ErrorIs(t, err, mailer.ErrRender)
	assert.Equal(t, drop, out)

	out, err = handle(context.Background(), jobBody(t, mailer.EmailJob{Subject: "hi", Text: "x"}), s)
	assert.ErrorIs(t, err, mailer.ErrNoRecipient)
	assert.Equal(t, drop, out)

	s.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandle_Retry(t *testing.T) {
	s := new(mockSender)
	s.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("503"))

	out, err := handle(context.Background(), jobBody(t, mailer.EmailJob{To: "a@x.io", Subject: "hi", Text: "body"}), s)

	assert.Error(t, err)
	assert.Equal(t, retry, out)
}

package application

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/KBabraunichy/LibraryWebApiUT-Kiryl/config"
	"github.com/KBabraunichy/LibraryWebApiUT-Kiryl/internal/domain/entity"
	repo "github.com/KBabraunichy/LibraryWebApiUT-Kiryl/internal/domain/repository"
	"github.com/KBabraunichy/LibraryWebApiUT-Kiryl/pkg/helpers"
	"github.com/KBabraunichy/LibraryWebApiUT-Kiryl/pkg/mailer"
	"github.com/KBabraunichy/LibraryWebApiUT-Kiryl/pkg/mailer/templates"
)

var (
	// ErrUserNotFound covers both an unknown username and a wrong password.
	ErrUserNotFound  = errors.New("user not found")
	ErrDuplicateUser = errors.New("user with this username or email already exists")
)

var (
	loginSuccess  = expvar.NewInt("auth_login_success")
	loginFailure  = expvar.NewInt("auth_login_failure")
	registrations = expvar.NewInt("auth_registrations")
)

// TokenIssuer mints signed access tokens.
type TokenIssuer interface {
	GenerateAccessToken(username, email, role string) (string, time.Time, error)
}

// Publisher enqueues a JSON message for asynchronous processing.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

type Service struct {
	Repo   repo.UserRepository
	Audit  repo.AuditRepository
	JWT    TokenIssuer
	Pub    Publisher
	Cfg    *config.Config
	Logger *logrus.Logger
}

func NewService(users repo.UserRepository, audit repo.AuditRepository, jwt TokenIssuer, pub Publisher, cfg *config.Config, logger *logrus.Logger) *Service {
	return &Service{
		Repo:   users,
		Audit:  audit,
		JWT:    jwt,
		Pub:    pub,
		Cfg:    cfg,
		Logger: logger,
	}
}

// timingHash is verified against when no user matches, so unknown usernames
// cost the same as wrong passwords.
var timingHash = sync.OnceValue(func() string {
	h, _ := helpers.HashPassword("timing-equalizer")
	return h
})

// Authenticate returns the first user, in store order, whose username matches
// cred.Username case-insensitively and whose password hash verifies cred.Password.
func (s *Service) Authenticate(ctx context.Context, cred entity.LoginCredential) (*entity.User, error) {
	key := entity.NormalizeKey(cred.Username)
	users, err := s.Repo.FindByUsername(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		_ = helpers.CompareHashAndPassword(timingHash(), cred.Password)
		loginFailure.Add(1)
		return nil, ErrUserNotFound
	}
	if len(users) > 1 && s.Logger != nil {
		s.Logger.WithField("username", key).
			WithField("matches", len(users)).
			Warn("username uniqueness violated in store")
	}
	for _, u := range users {
		if helpers.CompareHashAndPassword(u.Password, cred.Password) {
			loginSuccess.Add(1)
			return u, nil
		}
	}
	loginFailure.Add(1)
	return nil, ErrUserNotFound
}

// RegistrationCheck reports whether the candidate's username or email is taken.
func (s *Service) RegistrationCheck(ctx context.Context, candidate entity.User) (bool, error) {
	return s.Repo.ExistsByUsernameOrEmail(ctx, entity.NormalizeKey(candidate.Username), entity.NormalizeKey(candidate.Email))
}

// Register hashes the candidate's password and stores it. Callers run
// RegistrationCheck first; a uniqueness violation raced past that check is
// reported as ErrDuplicateUser.
func (s *Service) Register(ctx context.Context, candidate entity.User) (*entity.User, error) {
	hash, err := helpers.HashPassword(candidate.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &entity.User{
		Username: strings.TrimSpace(candidate.Username),
		Password: hash,
		Email:    strings.TrimSpace(candidate.Email),
		Role:     candidate.Role,
	}
	if u.Role == "" {
		u.Role = entity.DefaultRole
	}

	created, err := s.Repo.Create(ctx, u)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrDuplicateUser
		}
		return nil, err
	}
	registrations.Add(1)
	s.enqueueWelcome(ctx, created)
	return created, nil
}

// IssueToken mints an access token carrying the user's username, email and role.
func (s *Service) IssueToken(u *entity.User) (string, time.Time, error) {
	token, exp, err := s.JWT.GenerateAccessToken(u.Username, u.Email, u.Role)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("username", u.Username).Error("generate access token failed")
		}
		return "", time.Time{}, err
	}
	return token, exp, nil
}

func (s *Service) GetUser(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.Repo.GetObject(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// RecordAudit stores e without failing the caller.
func (s *Service) RecordAudit(ctx context.Context, e entity.AuditEntry) {
	if s.Audit == nil {
		return
	}
	if err := s.Audit.Record(ctx, &e); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("action", e.Action).Warn("audit log write failed")
	}
}

func (s *Service) enqueueWelcome(ctx context.Context, u *entity.User) {
	if s.Pub == nil || s.Cfg == nil || !s.Cfg.MailSendEnabled {
		return
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Template: templates.Welcome,
		Data:     templates.NewWelcomeData(s.Cfg, u.Username, u.Email, u.Role, u.CreatedAt),
	}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := s.Pub.PublishJSON(c, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("failed to publish welcome email job")
	}
}

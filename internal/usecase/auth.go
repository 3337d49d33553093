package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/ErlanBelekov/autos-marketplace/internal/auth"
	"github.com/ErlanBelekov/autos-marketplace/internal/domain"
	"github.com/ErlanBelekov/autos-marketplace/internal/email"
	"github.com/ErlanBelekov/autos-marketplace/internal/metrics"
	"github.com/ErlanBelekov/autos-marketplace/internal/repository"
	"github.com/go-playground/validator/v10"
)

const (
	defaultVerifyTokenTTL = time.Hour
	defaultMailTimeout    = 5 * time.Second
)

// sessionIssuer is the part of *auth.Sessions login needs.
type sessionIssuer interface {
	Issue(acc *domain.Account) (string, time.Time, error)
}

type AuthConfig struct {
	// AppURL is the public frontend base; verification links point at
	// <AppURL>/verify?token=...
	AppURL         string
	VerifyTokenTTL time.Duration
	MailTimeout    time.Duration
}

type AuthUsecase struct {
	accounts  repository.AccountRepository
	hasher    auth.PasswordHasher
	sessions  sessionIssuer
	email     email.Sender
	validate  *validator.Validate
	logger    *slog.Logger
	appURL    string
	verifyTTL time.Duration
	mailTTL   time.Duration
	now       func() time.Time
}

func NewAuthUsecase(
	accounts repository.AccountRepository,
	hasher auth.PasswordHasher,
	sessions sessionIssuer,
	sender email.Sender,
	cfg AuthConfig,
	logger *slog.Logger,
) *AuthUsecase {
	u := &AuthUsecase{
		accounts:  accounts,
		hasher:    hasher,
		sessions:  sessions,
		email:     sender,
		validate:  validator.New(),
		logger:    logger.With("component", "auth_usecase"),
		appURL:    strings.TrimRight(cfg.AppURL, "/"),
		verifyTTL: cfg.VerifyTokenTTL,
		mailTTL:   cfg.MailTimeout,
		now:       time.Now,
	}
	if u.verifyTTL <= 0 {
		u.verifyTTL = defaultVerifyTokenTTL
	}
	if u.mailTTL <= 0 {
		u.mailTTL = defaultMailTimeout
	}
	return u
}

// WithClock replaces time.Now; used by tests to move expiry boundaries.
func (u *AuthUsecase) WithClock(now func() time.Time) *AuthUsecase {
	u.now = now
	return u
}

type RegisterInput struct {
	DisplayName string
	Email       string
	Password    string
}

type RegisterResult struct {
	Account *domain.Account
	// EmailSent is false when the mailer failed, timed out or is disabled.
	// The account exists either way.
	EmailSent bool
	// MailDisabled is set when no mail backend is configured at all, as
	// opposed to a send that failed.
	MailDisabled bool
	VerifyURL    string
}

// Register creates an unverified account and tries to email its
// verification link. Mail failures never undo the insert.
func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	name := strings.TrimSpace(in.DisplayName)
	addr := domain.NormalizeEmail(in.Email)
	if name == "" || addr == "" || in.Password == "" {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return nil, domain.NewValidationError("display_name, email and password are required")
	}
	if err := u.validate.Var(addr, "email"); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return nil, domain.NewValidationError("email is not a valid address")
	}
	if len(in.Password) > auth.MaxPasswordBytes {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return nil, domain.NewValidationError(fmt.Sprintf("password must be at most %d bytes", auth.MaxPasswordBytes))
	}

	start := time.Now()
	hash, err := u.hasher.Hash(in.Password)
	metrics.PasswordHashDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	rawToken, tokenHash, err := auth.NewVerificationToken()
	if err != nil {
		return nil, err
	}

	acc, err := u.accounts.Create(ctx, domain.NewAccount{
		DisplayName:     name,
		Email:           addr,
		PasswordHash:    hash,
		VerifyTokenHash: tokenHash,
		VerifyExpires:   u.now().Add(u.verifyTTL),
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			metrics.RegistrationsTotal.WithLabelValues("conflict").Inc()
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("create account: %w", err)
	}
	metrics.RegistrationsTotal.WithLabelValues("created").Inc()

	verifyURL := u.appURL + "/verify?token=" + url.QueryEscape(rawToken)
	sent, disabled := u.sendVerification(ctx, acc, verifyURL)

	return &RegisterResult{Account: acc, EmailSent: sent, MailDisabled: disabled, VerifyURL: verifyURL}, nil
}

// sendVerification reports whether the email went out, and whether it was
// skipped because the mailer is disabled.
func (u *AuthUsecase) sendVerification(ctx context.Context, acc *domain.Account, verifyURL string) (sent, disabled bool) {
	sendCtx, cancel := context.WithTimeout(ctx, u.mailTTL)
	defer cancel()

	subject, body := email.VerificationEmail(acc.DisplayName, verifyURL, u.verifyTTL)
	err := u.email.Send(sendCtx, acc.Email, subject, body)
	switch {
	case err == nil:
		metrics.VerificationEmailsTotal.WithLabelValues("sent").Inc()
		return true, false
	case errors.Is(err, email.ErrDisabled):
		metrics.VerificationEmailsTotal.WithLabelValues("disabled").Inc()
		u.logger.WarnContext(ctx, "verification email skipped: mailer disabled", "account_id", acc.ID)
		return false, true
	default:
		metrics.VerificationEmailsTotal.WithLabelValues("failed").Inc()
		u.logger.ErrorContext(ctx, "send verification email", "account_id", acc.ID, "error", err)
		return false, false
	}
}

// VerifyEmail consumes a verification token. Unknown, expired and already
// used tokens all yield domain.ErrTokenInvalid.
func (u *AuthUsecase) VerifyEmail(ctx context.Context, rawToken string) (*domain.Account, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		metrics.VerificationsTotal.WithLabelValues("invalid").Inc()
		return nil, domain.NewValidationError("token is required")
	}

	acc, err := u.accounts.Verify(ctx, auth.HashVerificationToken(rawToken), u.now())
	if err != nil {
		if errors.Is(err, domain.ErrTokenInvalid) {
			metrics.VerificationsTotal.WithLabelValues("rejected").Inc()
			return nil, domain.ErrTokenInvalid
		}
		return nil, fmt.Errorf("verify account: %w", err)
	}
	metrics.VerificationsTotal.WithLabelValues("verified").Inc()
	return acc, nil
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Account   *domain.Account
}

// Login checks the password before the verified flag, so the "not verified"
// answer is only ever given to someone who already knows the password.
func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		return nil, domain.NewValidationError("email and password are required")
	}

	acc, err := u.accounts.FindByEmail(ctx, in.Email)
	if err != nil && !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, fmt.Errorf("find account: %w", err)
	}

	hash := ""
	if acc != nil {
		hash = acc.PasswordHash
	}
	start := time.Now()
	ok := u.hasher.Verify(in.Password, hash)
	metrics.PasswordHashDuration.Observe(time.Since(start).Seconds())
	if acc == nil || !ok {
		metrics.LoginsTotal.WithLabelValues("bad_credentials").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	if !acc.Verified {
		metrics.LoginsTotal.WithLabelValues("unverified").Inc()
		return nil, domain.ErrAccountNotVerified
	}

	token, exp, err := u.sessions.Issue(acc)
	if err != nil {
		return nil, fmt.Errorf("issue session: %w", err)
	}
	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	return &LoginResult{Token: token, ExpiresAt: exp, Account: acc}, nil
}

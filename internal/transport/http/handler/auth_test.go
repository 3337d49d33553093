package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ErlanBelekov/autos-marketplace/internal/domain"
	"github.com/ErlanBelekov/autos-marketplace/internal/transport/http/handler"
	"github.com/ErlanBelekov/autos-marketplace/internal/usecase"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeAuthUsecase implements the unexported authUsecaser interface via method matching.
type fakeAuthUsecase struct {
	register    func(ctx context.Context, in usecase.RegisterInput) (*usecase.RegisterResult, error)
	verifyEmail func(ctx context.Context, rawToken string) (*domain.Account, error)
	login       func(ctx context.Context, in usecase.LoginInput) (*usecase.LoginResult, error)
}

func (f *fakeAuthUsecase) Register(ctx context.Context, in usecase.RegisterInput) (*usecase.RegisterResult, error) {
	return f.register(ctx, in)
}

func (f *fakeAuthUsecase) VerifyEmail(ctx context.Context, rawToken string) (*domain.Account, error) {
	return f.verifyEmail(ctx, rawToken)
}

func (f *fakeAuthUsecase) Login(ctx context.Context, in usecase.LoginInput) (*usecase.LoginResult, error) {
	return f.login(ctx, in)
}

func newTestEngine(uc *fakeAuthUsecase, exposeVerifyURL bool) *gin.Engine {
	h := handler.NewAuthHandler(uc, slog.New(slog.DiscardHandler), exposeVerifyURL)

	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.GET("/auth/verify", h.Verify)
	r.POST("/auth/login", h.Login)
	return r
}

func postJSON(r http.Handler, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	OK        bool   `json:"ok"`
	Message   string `json:"message"`
	Token     string `json:"token"`
	EmailSent *bool  `json:"email_sent"`
	VerifyURL string `json:"verify_url"`
	User      *struct {
		ID          string `json:"id"`
		DisplayName string `json:"display_name"`
		Email       string `json:"email"`
		Verified    bool   `json:"verified"`
	} `json:"user"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var e envelope
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return e
}

var jane = &domain.Account{ID: "acc-1", DisplayName: "Jane", Email: "jane@x.com", PasswordHash: "$2a$10$secret"}

// ---- Register ----

func TestRegister_InvalidJSON_Returns400(t *testing.T) {
	w := postJSON(newTestEngine(&fakeAuthUsecase{}, false), "/auth/register", `{bad json}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if e := decode(t, w); e.OK || e.Message == "" {
		t.Errorf("body = %+v", e)
	}
}

func TestRegister_ValidationError_Returns400WithMessage(t *testing.T) {
	uc := &fakeAuthUsecase{
		register: func(context.Context, usecase.RegisterInput) (*usecase.RegisterResult, error) {
			return nil, domain.NewValidationError("display_name, email and password are required")
		},
	}
	w := postJSON(newTestEngine(uc, false), "/auth/register", `{"email":"a@b.co"}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if e := decode(t, w); e.Message != "display_name, email and password are required" {
		t.Errorf("message = %q", e.Message)
	}
}

func TestRegister_EmailTaken_Returns409(t *testing.T) {
	uc := &fakeAuthUsecase{
		register: func(context.Context, usecase.RegisterInput) (*usecase.RegisterResult, error) {
			return nil, domain.ErrEmailTaken
		},
	}
	w := postJSON(newTestEngine(uc, false), "/auth/register", `{"display_name":"J","email":"a@b.co","password":"pw"}`)

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
}

func TestRegister_Success_Returns201WithoutSecrets(t *testing.T) {
	var got usecase.RegisterInput
	uc := &fakeAuthUsecase{
		register: func(_ context.Context, in usecase.RegisterInput) (*usecase.RegisterResult, error) {
			got = in
			return &usecase.RegisterResult{Account: jane, EmailSent: true, VerifyURL: "https://app/verify?token=abc"}, nil
		},
	}
	w := postJSON(newTestEngine(uc, false), "/auth/register", `{"display_name":"Jane","email":"jane@x.com","password":"pw"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}
	if got.DisplayName != "Jane" || got.Email != "jane@x.com" || got.Password != "pw" {
		t.Errorf("usecase input = %+v", got)
	}
	e := decode(t, w)
	if !e.OK || e.User == nil || e.User.ID != "acc-1" || e.User.Verified {
		t.Errorf("body = %s", w.Body.String())
	}
	if e.EmailSent == nil || !*e.EmailSent {
		t.Error("email_sent missing or false")
	}
	if e.VerifyURL != "" {
		t.Error("verify_url must not be exposed when disabled")
	}
	if strings.Contains(w.Body.String(), "secret") || strings.Contains(w.Body.String(), "password") {
		t.Errorf("response leaks credential material: %s", w.Body.String())
	}
}

func TestRegister_EmailNotSent_StillReturns201(t *testing.T) {
	uc := &fakeAuthUsecase{
		register: func(context.Context, usecase.RegisterInput) (*usecase.RegisterResult, error) {
			return &usecase.RegisterResult{Account: jane, EmailSent: false, VerifyURL: "https://app/verify?token=abc"}, nil
		},
	}
	w := postJSON(newTestEngine(uc, true), "/auth/register", `{"display_name":"Jane","email":"jane@x.com","password":"pw"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}
	e := decode(t, w)
	if e.EmailSent == nil || *e.EmailSent {
		t.Error("email_sent should be false")
	}
	if e.VerifyURL != "https://app/verify?token=abc" {
		t.Errorf("verify_url = %q, want it exposed", e.VerifyURL)
	}
}

func TestRegister_MessageDependsOnDeliveryOutcome(t *testing.T) {
	cases := []struct {
		name   string
		result usecase.RegisterResult
		want   string
	}{
		{"sent", usecase.RegisterResult{EmailSent: true}, "Check your email"},
		{"send failed", usecase.RegisterResult{}, "could not be sent"},
		{"mailer disabled", usecase.RegisterResult{MailDisabled: true}, "Contact support"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := tc.result
			res.Account = jane
			uc := &fakeAuthUsecase{
				register: func(context.Context, usecase.RegisterInput) (*usecase.RegisterResult, error) { return &res, nil },
			}
			w := postJSON(newTestEngine(uc, false), "/auth/register", `{"display_name":"Jane","email":"jane@x.com","password":"pw"}`)

			if w.Code != http.StatusCreated {
				t.Fatalf("status = %d, want 201", w.Code)
			}
			if e := decode(t, w); !strings.Contains(e.Message, tc.want) {
				t.Errorf("message = %q, want it to contain %q", e.Message, tc.want)
			}
		})
	}
}

func TestRegister_InternalError_Returns500Generic(t *testing.T) {
	uc := &fakeAuthUsecase{
		register: func(context.Context, usecase.RegisterInput) (*usecase.RegisterResult, error) {
			return nil, errors.New("pq: connection refused on 10.0.0.3")
		},
	}
	w := postJSON(newTestEngine(uc, false), "/auth/register", `{"display_name":"J","email":"a@b.co","password":"pw"}`)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if e := decode(t, w); e.Message != "Internal server error" {
		t.Errorf("message = %q", e.Message)
	}
}

// ---- Verify ----

func TestVerify_PassesTokenAndReturns200(t *testing.T) {
	var got string
	uc := &fakeAuthUsecase{
		verifyEmail: func(_ context.Context, raw string) (*domain.Account, error) {
			got = raw
			acc := *jane
			acc.Verified = true
			return &acc, nil
		},
	}
	w := httptest.NewRecorder()
	newTestEngine(uc, false).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/verify?token=abc123", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got != "abc123" {
		t.Errorf("token = %q", got)
	}
	if e := decode(t, w); !e.OK || e.User == nil || !e.User.Verified {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestVerify_MissingToken_Returns400(t *testing.T) {
	uc := &fakeAuthUsecase{
		verifyEmail: func(context.Context, string) (*domain.Account, error) {
			return nil, domain.NewValidationError("token is required")
		},
	}
	w := httptest.NewRecorder()
	newTestEngine(uc, false).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/verify", nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestVerify_InvalidToken_Returns400Generic(t *testing.T) {
	uc := &fakeAuthUsecase{
		verifyEmail: func(context.Context, string) (*domain.Account, error) {
			return nil, domain.ErrTokenInvalid
		},
	}
	w := httptest.NewRecorder()
	newTestEngine(uc, false).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/verify?token=used", nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if e := decode(t, w); e.Message != "Token is invalid or expired" {
		t.Errorf("message = %q", e.Message)
	}
}

// ---- Login ----

func TestLogin_Statuses(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", domain.NewValidationError("email and password are required"), http.StatusBadRequest},
		{"bad credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{"not verified", domain.ErrAccountNotVerified, http.StatusForbidden},
		{"internal", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc := &fakeAuthUsecase{
				login: func(context.Context, usecase.LoginInput) (*usecase.LoginResult, error) { return nil, tc.err },
			}
			w := postJSON(newTestEngine(uc, false), "/auth/login", `{"email":"jane@x.com","password":"pw"}`)

			if w.Code != tc.want {
				t.Errorf("status = %d, want %d", w.Code, tc.want)
			}
			if e := decode(t, w); e.OK || e.Message == "" {
				t.Errorf("body = %s", w.Body.String())
			}
		})
	}
}

func TestLogin_Success_ReturnsTokenAndUser(t *testing.T) {
	uc := &fakeAuthUsecase{
		login: func(_ context.Context, in usecase.LoginInput) (*usecase.LoginResult, error) {
			if in.Email != "jane@x.com" || in.Password != "pw" {
				return nil, domain.ErrInvalidCredentials
			}
			acc := *jane
			acc.Verified = true
			return &usecase.LoginResult{Token: "signed.jwt.value", ExpiresAt: time.Now().Add(2 * time.Hour), Account: &acc}, nil
		},
	}
	w := postJSON(newTestEngine(uc, false), "/auth/login", `{"email":"jane@x.com","password":"pw"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	e := decode(t, w)
	if !e.OK || e.Token != "signed.jwt.value" || e.User == nil || e.User.Email != "jane@x.com" {
		t.Errorf("body = %s", w.Body.String())
	}
	if strings.Contains(w.Body.String(), "secret") {
		t.Error("password hash leaked")
	}
}

package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/autos-marketplace/internal/domain"
	"github.com/ErlanBelekov/autos-marketplace/internal/transport/http/httperr"
	"github.com/ErlanBelekov/autos-marketplace/internal/usecase"
	"github.com/gin-gonic/gin"
)

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	Register(ctx context.Context, in usecase.RegisterInput) (*usecase.RegisterResult, error)
	VerifyEmail(ctx context.Context, rawToken string) (*domain.Account, error)
	Login(ctx context.Context, in usecase.LoginInput) (*usecase.LoginResult, error)
}

type AuthHandler struct {
	authUsecase authUsecaser
	logger      *slog.Logger
	// exposeVerifyURL returns the verification link in the register
	// response. Never enabled in production.
	exposeVerifyURL bool
}

func NewAuthHandler(authUsecase authUsecaser, logger *slog.Logger, exposeVerifyURL bool) *AuthHandler {
	return &AuthHandler{
		authUsecase:     authUsecase,
		logger:          logger.With("component", "auth_handler"),
		exposeVerifyURL: exposeVerifyURL,
	}
}

const (
	msgRegisteredEmailSent    = "Registration successful. Check your email to verify your account."
	msgRegisteredEmailFailed  = "Registration successful, but the verification email could not be sent. Try again later or contact support."
	msgRegisteredMailDisabled = "Registration successful, but email delivery is currently unavailable. Contact support to verify your account."
)

type userResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Verified    bool   `json:"verified"`
}

func toUserResponse(acc *domain.Account) userResponse {
	return userResponse{
		ID:          acc.ID,
		DisplayName: acc.DisplayName,
		Email:       acc.Email,
		Verified:    acc.Verified,
	}
}

type registerRequest struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

type registerResponse struct {
	OK        bool         `json:"ok"`
	Message   string       `json:"message"`
	User      userResponse `json:"user"`
	EmailSent bool         `json:"email_sent"`
	VerifyURL string       `json:"verify_url,omitempty"`
}

// POST /auth/register
// 201 even when the verification email could not be sent; email_sent says which.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, errInvalidBody)
		return
	}

	res, err := h.authUsecase.Register(c.Request.Context(), usecase.RegisterInput{
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Password:    req.Password,
	})
	if err != nil {
		httperr.Write(c, h.logger, "register", err)
		return
	}

	var msg string
	switch {
	case res.EmailSent:
		msg = msgRegisteredEmailSent
	case res.MailDisabled:
		msg = msgRegisteredMailDisabled
	default:
		msg = msgRegisteredEmailFailed
	}
	resp := registerResponse{
		OK:        true,
		Message:   msg,
		User:      toUserResponse(res.Account),
		EmailSent: res.EmailSent,
	}
	if h.exposeVerifyURL {
		resp.VerifyURL = res.VerifyURL
	}
	c.JSON(http.StatusCreated, resp)
}

// GET /auth/verify?token=<raw>
func (h *AuthHandler) Verify(c *gin.Context) {
	acc, err := h.authUsecase.VerifyEmail(c.Request.Context(), c.Query("token"))
	if err != nil {
		httperr.Write(c, h.logger, "verify email", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"message": "Account verified. You can now log in.",
		"user":    toUserResponse(acc),
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	OK    bool         `json:"ok"`
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, errInvalidBody)
		return
	}

	res, err := h.authUsecase.Login(c.Request.Context(), usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		httperr.Write(c, h.logger, "login", err)
		return
	}

	c.JSON(http.StatusOK, loginResponse{
		OK:    true,
		Token: res.Token,
		User:  toUserResponse(res.Account),
	})
}

package adminapi

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/toyorbit/toyorbit/internal/apperr"
	"github.com/toyorbit/toyorbit/internal/audit"
	"github.com/toyorbit/toyorbit/internal/domain"
	"github.com/toyorbit/toyorbit/internal/webserver"
	"go.uber.org/zap"
)

type loginPayload struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registerPayload struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=admin manager"`
}

type loginResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

func registerAuthRoutes(s *webserver.AdminServer) {
	s.ApiPublicPOST("/auth/login", login, s.LoginRateLimit()...)
	s.ApiPOST("/auth/register", register, adminOnly)
}

func login(c echo.Context) error {
	var payload loginPayload
	if err := bind(c, &payload); err != nil {
		return err
	}
	appCtx := GetAppContext(c)
	ctx := c.Request().Context()
	username := strings.TrimSpace(payload.Username)

	user, err := appCtx.Store().Users().GetByUsername(ctx, username)
	if err != nil && !apperr.Is(err, apperr.KindNotFound) {
		return err
	}
	if user == nil || !user.CheckPassword(payload.Password) {
		record(c, audit.ActionLoginFailed, username, "")
		return apperr.Unauthorized("Invalid username or password")
	}

	cfg := appCtx.Config().Auth
	token, err := webserver.IssueToken(cfg.JwtSecret, cfg.TokenTTL, user.ID.String(), user.Username, user.Role)
	if err != nil {
		return apperr.Internal(err, "issue token")
	}
	now := time.Now().UTC()
	if err := appCtx.Store().Users().TouchLogin(ctx, user.ID, now); err != nil {
		zap.L().Warn("update last login failed", zap.String("username", user.Username), zap.Error(err))
	}
	user.LastLogin = &now

	GetAppContext(c).Audit().Record(audit.Event{
		Actor:  user.Username,
		Action: audit.ActionLogin,
		Target: user.ID.String(),
		IP:     c.RealIP(),
		At:     now,
	})
	return ok(c, "Login successful", loginResult{Token: token, User: user})
}

func register(c echo.Context) error {
	var payload registerPayload
	if err := bind(c, &payload); err != nil {
		return err
	}
	user := &domain.User{
		Username: strings.TrimSpace(payload.Username),
		Email:    strings.ToLower(strings.TrimSpace(payload.Email)),
		Role:     payload.Role,
	}
	if user.Role == "" {
		user.Role = domain.RoleManager
	}
	if err := user.SetPassword(payload.Password); err != nil {
		return apperr.Internal(err, "hash password")
	}
	if err := GetAppContext(c).Store().Users().Create(c.Request().Context(), user); err != nil {
		return err
	}
	record(c, audit.ActionRegister, user.ID.String(), user.Username)
	return created(c, "User registered successfully", user)
}

package app

import (
	"context"
	"errors"
	"strings"

	"github.com/toyorbit/toyorbit/internal/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// checkSuper makes sure the configured administrator exists and still holds
// the admin role. The account is only created on an empty users table.
func (a *Application) checkSuper() {
	cfg := a.appConfig.Auth
	username := strings.TrimSpace(cfg.AdminUsername)
	if username == "" {
		return
	}

	var user domain.User
	err := a.gormDB.Where("username = ?", username).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		var count int64
		if err := a.gormDB.Model(&domain.User{}).Count(&count).Error; err != nil {
			zap.L().Error("failed to count users", zap.Error(err))
			return
		}
		if count > 0 {
			return
		}
		admin := &domain.User{
			Username: username,
			Email:    cfg.AdminEmail,
			Role:     domain.RoleAdmin,
		}
		if err := admin.SetPassword(cfg.AdminPassword); err != nil {
			zap.L().Error("failed to hash admin password", zap.Error(err))
			return
		}
		if err := a.gormDB.Create(admin).Error; err != nil {
			zap.L().Error("failed to create default admin", zap.Error(err))
		} else {
			zap.L().Info("initialized default admin account", zap.String("username", username))
		}
		return
	case err != nil:
		zap.L().Error("failed to query admin", zap.Error(err))
		return
	}

	resetPassword := strings.TrimSpace(user.PasswordHash) == ""
	resetRole := user.Role != domain.RoleAdmin
	if !resetPassword && !resetRole {
		return
	}

	updates := map[string]interface{}{}
	if resetPassword {
		if err := user.SetPassword(cfg.AdminPassword); err != nil {
			zap.L().Error("failed to hash admin password", zap.Error(err))
			return
		}
		updates["password_hash"] = user.PasswordHash
	}
	if resetRole {
		updates["role"] = domain.RoleAdmin
	}
	if _, err := a.store.Users().Update(context.Background(), user.ID, updates); err != nil {
		zap.L().Error("failed to repair admin account", zap.Error(err))
		return
	}

	zap.L().Warn("repaired default admin account",
		zap.String("username", username),
		zap.Bool("passwordReset", resetPassword),
		zap.Bool("roleReset", resetRole))
}

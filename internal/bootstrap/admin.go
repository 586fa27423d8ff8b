package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/appcanvas/builder/internal/domain/models"
	"github.com/appcanvas/builder/pkg/auth"
	"github.com/appcanvas/builder/pkg/config"
	"github.com/appcanvas/builder/pkg/logutils"
	"github.com/appcanvas/builder/pkg/utils"
)

// AccountStore is the subset of the user repository the seed needs
type AccountStore interface {
	CheckUserExistsByEmail(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, u *models.User) error
}

// InitializeAdmin ensures the configured owner account exists. Without an
// admin email and password in the config nothing is seeded.
func InitializeAdmin(ctx context.Context, cfg *config.Config, users AccountStore) error {
	email := strings.TrimSpace(strings.ToLower(cfg.Admin.Email))
	if email == "" || cfg.Admin.Password == "" {
		logutils.Log.Info("   ⏭️  No admin account configured, skipping seed")
		return nil
	}
	if !auth.IsValidEmail(email) {
		return fmt.Errorf("admin email %q is not a valid address", cfg.Admin.Email)
	}

	exists, err := users.CheckUserExistsByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to check admin account: %w", err)
	}
	if exists {
		logutils.Log.Infof("   🔄 Admin account %s already exists", email)
		return nil
	}

	hash, err := auth.HashPassword(cfg.Admin.Password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	name := cfg.Admin.Name
	if name == "" {
		name = "Admin"
	}
	if err := users.CreateUser(ctx, &models.User{
		ID:           utils.GenerateID(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}); err != nil {
		return fmt.Errorf("failed to create admin account: %w", err)
	}
	logutils.Log.Infof("   ✅ Created admin account %s", email)
	return nil
}

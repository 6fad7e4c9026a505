// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"

	userstore "github.com/dalemusser/crewhub/internal/app/store/users"
	"github.com/dalemusser/crewhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("operation timeouts overridden from environment", zap.Int("overrides", n))
	}

	if appCfg.AdminEmail != "" {
		if err := ensureAdmin(ctx, deps, appCfg, logger); err != nil {
			return err
		}
	}

	return nil
}

// ensureAdmin creates the bootstrap admin account when it does not exist.
// Safe to run on every startup.
func ensureAdmin(ctx context.Context, deps DBDeps, appCfg AppConfig, logger *zap.Logger) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(appCfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	users := userstore.New(deps.CrewHubMongoDatabase)
	if err := users.EnsureAdmin(ctx, appCfg.AdminEmail, appCfg.AdminName, string(hash)); err != nil {
		return fmt.Errorf("ensure admin account: %w", err)
	}

	logger.Info("bootstrap admin account ensured", zap.String("email", appCfg.AdminEmail))
	return nil
}

// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for CrewHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: CREWHUB_MONGO_URI, CREWHUB_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "crewhub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "crewhub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_idle_minutes", Default: 30, Desc: "Minutes of inactivity before a session expires"},

	// File storage configuration
	{Name: "storage_type", Default: "local", Desc: "Storage backend: 'local' or 's3'"},
	{Name: "storage_local_path", Default: "./uploads/documents", Desc: "Local storage path for uploaded files"},
	{Name: "storage_local_url", Default: "/files/documents", Desc: "URL prefix for serving local files"},

	// S3 configuration
	{Name: "storage_s3_region", Default: "", Desc: "AWS region for S3"},
	{Name: "storage_s3_bucket", Default: "", Desc: "S3 bucket name"},
	{Name: "storage_s3_prefix", Default: "documents/", Desc: "S3 key prefix"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Admin bootstrap
	{Name: "admin_email", Default: "", Desc: "Email of the bootstrap admin account (created on startup if missing)"},
	{Name: "admin_name", Default: "Administrator", Desc: "Display name for the bootstrap admin account"},
	{Name: "admin_password", Default: "", Desc: "Password for the bootstrap admin account (required when admin_email is set)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
// CoreConfig comes from the shared WAFFLE layer; AppConfig is specific
// to this app and can be extended as the app grows.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, CREWHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "CREWHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:         appValues.String("session_key"),
		SessionName:        appValues.String("session_name"),
		SessionDomain:      appValues.String("session_domain"),
		SessionIdleMinutes: appValues.Int("session_idle_minutes"),

		// File storage
		StorageType:      appValues.String("storage_type"),
		StorageLocalPath: appValues.String("storage_local_path"),
		StorageLocalURL:  appValues.String("storage_local_url"),

		// S3
		StorageS3Region: appValues.String("storage_s3_region"),
		StorageS3Bucket: appValues.String("storage_s3_bucket"),
		StorageS3Prefix: appValues.String("storage_s3_prefix"),

		// Audit logging
		AuditLogAuth:  appValues.String("audit_log_auth"),
		AuditLogAdmin: appValues.String("audit_log_admin"),

		// Admin bootstrap
		AdminEmail:    appValues.String("admin_email"),
		AdminName:     appValues.String("admin_name"),
		AdminPassword: appValues.String("admin_password"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// This is the right place to enforce required fields or invariants that
// involve both the core and app configs.
//
// CrewHub validates the MongoDB URI format to catch configuration
// errors early, before attempting to connect.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.SessionIdleMinutes <= 0 {
		return fmt.Errorf("session_idle_minutes must be positive, got %d", appCfg.SessionIdleMinutes)
	}

	switch appCfg.StorageType {
	case "local", "s3":
	default:
		return fmt.Errorf("storage_type must be 'local' or 's3', got %q", appCfg.StorageType)
	}
	if appCfg.StorageType == "s3" && (appCfg.StorageS3Region == "" || appCfg.StorageS3Bucket == "") {
		return fmt.Errorf("s3 storage requires storage_s3_region and storage_s3_bucket")
	}

	// Admin bootstrap needs both halves of the credential.
	if appCfg.AdminEmail != "" && appCfg.AdminPassword == "" {
		return fmt.Errorf("admin_email is set but admin_password is empty")
	}

	return nil
}

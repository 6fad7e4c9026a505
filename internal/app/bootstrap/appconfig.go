// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings
//   - Request body size limits
//   - Database connection timeouts
//
// AppConfig is where you put everything specific to YOUR application.
// The struct is passed to most lifecycle hooks, so any configuration
// needed during startup, request handling, or shutdown should live here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Session management configuration
	SessionKey         string // Secret key for signing session cookies (must be strong in production)
	SessionName        string // Cookie name for sessions (default: crewhub-session)
	SessionDomain      string // Cookie domain (blank means current host)
	SessionIdleMinutes int    // Idle window in minutes before a session expires

	// File storage configuration
	StorageType      string // Storage backend: "local" or "s3"
	StorageLocalPath string // Local storage path (e.g., "./uploads/documents")
	StorageLocalURL  string // URL prefix for serving local files (e.g., "/files/documents")

	// S3 configuration (only used if StorageType is "s3")
	StorageS3Region string // AWS region
	StorageS3Bucket string // S3 bucket name
	StorageS3Prefix string // Key prefix (e.g., "documents/")

	// Audit logging configuration
	// Values: "all" (db+log), "db", "log", or "off"
	AuditLogAuth  string // Authentication events (login, logout, failures)
	AuditLogAdmin string // Administrative events (approvals, assignments, purges)

	// Admin bootstrap: creates the first admin account on startup when
	// the users collection has no account with this email.
	AdminEmail    string
	AdminName     string
	AdminPassword string
}

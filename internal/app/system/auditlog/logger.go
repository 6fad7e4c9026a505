// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/dalemusser/crewhub/internal/app/store/audit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config controls where each event category goes.
// Values per category: "all" (Mongo + zap), "db", "log", "off".
type Config struct {
	Auth  string
	Admin string
}

// Logger records audit events to Mongo and structured logs.
// A nil *Logger is a no-op, so handler tests can pass nil.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates an audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{store: store, zapLog: zapLog, config: config}
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

func (l *Logger) logToZap(e audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", e.Category),
		zap.String("event_type", e.EventType),
		zap.Bool("success", e.Success),
		zap.String("ip", e.IP),
	}
	if e.Subject != "" {
		fields = append(fields, zap.String("subject", e.Subject))
	}
	if e.ActorID != nil {
		fields = append(fields, zap.String("actor_id", e.ActorID.Hex()))
	}
	if e.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", e.FailureReason))
	}
	for k, v := range e.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if e.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records one event according to configuration.
func (l *Logger) Log(ctx context.Context, e audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch e.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	default:
		setting = "all"
	}

	if setting == "off" {
		return
	}
	if setting == "all" || setting == "log" {
		l.logToZap(e)
	}
	if setting == "all" || setting == "db" {
		if err := l.store.Log(ctx, e); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", e.EventType))
		}
	}
}

// --- Authentication events ---

// LoginSuccess logs a successful login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		ActorID:   &userID,
		Subject:   email,
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	})
}

// LoginFailed logs a failed login; reason distinguishes unknown user
// from wrong password in the record but callers return one generic
// error to the client.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, email, reason string) {
	eventType := audit.EventLoginFailedWrongPassword
	if reason == "user not found" {
		eventType = audit.EventLoginFailedUserNotFound
	}
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     eventType,
		Subject:       email,
		IP:            clientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       false,
		FailureReason: reason,
	})
}

// Logout logs a sign-out.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLogout,
		ActorID:   &userID,
		IP:        clientIP(r),
		Success:   true,
	})
}

// --- Admin events ---

// AdminAction logs an admin operation on a subject (person name, site
// name, or record id) with optional detail fields.
func (l *Logger) AdminAction(ctx context.Context, r *http.Request, eventType string, actorID primitive.ObjectID, subject string, details map[string]string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: eventType,
		ActorID:   &actorID,
		Subject:   subject,
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details:   details,
	})
}

// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
Errors are aggregated so every problem is visible and startup can fail
fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	ensure := func(name string, fn func(context.Context, *mongo.Database) error) {
		if err := fn(ctx, db); err != nil {
			problems = append(problems, name+": "+err.Error())
		}
	}
	ensure("users", ensureUsers)
	ensure("members", ensureMembers)
	ensure("sites", ensureSites)
	ensure("expenses", ensureExpenses)
	ensure("rejected_expenses", ensureRejectedExpenses)
	ensure("payments", ensurePayments)
	ensure("attendance", ensureAttendance)
	ensure("notifications", ensureNotifications)
	ensure("audit_events", ensureAuditEvents)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ------------------------------------------------------------------ */
/* Reconcile a set of desired indexes for one collection              */
/* ------------------------------------------------------------------ */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameBoolPtr(a, b *bool) bool {
	av := a != nil && *a
	bv := b != nil && *b
	return av == bv
}

func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

// ensureIndexSet brings one collection's indexes to the desired state.
// Same keys with same uniqueness are reused; an options mismatch drops
// and recreates the index.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	existing := map[string]existingIndex{} // sig -> index
	cur, err := coll.Indexes().List(ctx)
	if err == nil {
		for cur.Next(ctx) {
			var idx existingIndex
			if err := cur.Decode(&idx); err != nil {
				zap.L().Warn("failed to decode existing index",
					zap.String("collection", coll.Name()),
					zap.Error(err))
				continue
			}
			existing[keySig(idx.Key)] = idx
		}
		cur.Close(ctx)
	}

	var errs []string
	for _, m := range models {
		var desiredName string
		var desiredUnique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				desiredName = *m.Options.Name
			}
			desiredUnique = m.Options.Unique
		}
		sig := keySig(m.Keys.(bson.D))

		if ex, ok := existing[sig]; ok {
			if sameBoolPtr(desiredUnique, ex.Unique) {
				continue
			}
			// Options mismatch (e.g. upgrading to unique): drop & recreate.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), desiredName, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if isDuplicateKeyErr(err) && desiredUnique != nil && *desiredUnique {
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index, duplicates present", coll.Name(), desiredName))
			} else {
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
			}
			continue
		}
		zap.L().Info("index created",
			zap.String("collection", coll.Name()),
			zap.String("name", desiredName),
			zap.String("keys", sig),
			zap.Bool("unique", desiredUnique != nil && *desiredUnique))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func asc(fields ...string) bson.D {
	d := make(bson.D, 0, len(fields))
	for _, f := range fields {
		d = append(d, bson.E{Key: f, Value: 1})
	}
	return d
}

/* ------------------------------------------------------------------ */
/* Per-collection index sets                                          */
/* ------------------------------------------------------------------ */

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("users"), []mongo.IndexModel{
		{
			Keys:    asc("email"),
			Options: options.Index().SetName("uniq_email").SetUnique(true),
		},
		{
			Keys:    asc("role"),
			Options: options.Index().SetName("by_role"),
		},
	})
}

func ensureMembers(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("members"), []mongo.IndexModel{
		{
			Keys:    asc("person_name_ci"),
			Options: options.Index().SetName("by_person_ci"),
		},
		{
			Keys:    asc("status", "category"),
			Options: options.Index().SetName("by_status_category"),
		},
		{
			Keys:    asc("sites"),
			Options: options.Index().SetName("by_site"),
		},
	})
}

func ensureSites(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("sites"), []mongo.IndexModel{
		{
			Keys:    asc("name_ci"),
			Options: options.Index().SetName("uniq_name_ci").SetUnique(true),
		},
	})
}

func ensureExpenses(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("expenses"), []mongo.IndexModel{
		{
			Keys:    asc("person_ci", "date"),
			Options: options.Index().SetName("by_person_date"),
		},
		{
			Keys:    asc("date"),
			Options: options.Index().SetName("by_date"),
		},
		{
			Keys:    asc("status"),
			Options: options.Index().SetName("by_status"),
		},
		{
			Keys:    asc("site_name"),
			Options: options.Index().SetName("by_site"),
		},
	})
}

func ensureRejectedExpenses(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("rejected_expenses"), []mongo.IndexModel{
		{
			Keys:    asc("person_ci", "date"),
			Options: options.Index().SetName("by_person_date"),
		},
	})
}

func ensurePayments(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("payments"), []mongo.IndexModel{
		{
			Keys:    asc("person_ci", "date"),
			Options: options.Index().SetName("by_person_date"),
		},
	})
}

func ensureAttendance(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("attendance"), []mongo.IndexModel{
		{
			Keys:    asc("person_name", "date"),
			Options: options.Index().SetName("by_person_date"),
		},
		{
			Keys:    asc("date", "site_name"),
			Options: options.Index().SetName("by_date_site"),
		},
		{
			Keys:    asc("status"),
			Options: options.Index().SetName("by_status"),
		},
	})
}

func ensureNotifications(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("notifications"), []mongo.IndexModel{
		{
			Keys:    asc("user", "read"),
			Options: options.Index().SetName("by_user_read"),
		},
		{
			Keys:    asc("date"),
			Options: options.Index().SetName("by_date"),
		},
	})
}

func ensureAuditEvents(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("audit_events"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("by_time_desc"),
		},
		{
			Keys:    asc("category", "event_type"),
			Options: options.Index().SetName("by_category_type"),
		},
	})
}

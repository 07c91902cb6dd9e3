package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Operations recorded in the audit trail.
const (
	OpPromote   = "promote"
	OpReplicate = "replicate"
	OpRepair    = "repair"
	OpUpdate    = "update"
)

// Entry is one recorded outcome of a mutating operation.
type Entry struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"index"`
	RayID     string    `gorm:"size:64"`
	Operation string    `gorm:"size:32;index"`
	ProductID string    `gorm:"size:64;index"`
	// Environment is the environment the operation ran from.
	Environment string `gorm:"size:32"`
	Failed      bool
	// Detail is the JSON encoded per-item or per-environment result.
	Detail string `gorm:"type:text"`
}

// TableName returns the audit table name.
func (Entry) TableName() string {
	return "audit_entries"
}

// Recorder records operation outcomes.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// NewEntry builds an entry whose detail is detail encoded as JSON.
func NewEntry(op, productID string, failed bool, detail any) (Entry, error) {
	b, err := json.Marshal(detail)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to encode audit detail: %w", err)
	}
	return Entry{Operation: op, ProductID: productID, Failed: failed, Detail: string(b)}, nil
}

// GormRecorder writes entries to a SQL table.
type GormRecorder struct {
	db          *gorm.DB
	environment string
	now         func() time.Time
}

// NewGormRecorder creates a recorder writing to db. Entries are stamped with environment.
func NewGormRecorder(db *gorm.DB, environment string) *GormRecorder {
	return &GormRecorder{db: db, environment: environment, now: time.Now}
}

// Migrate creates or updates the audit table.
func (r *GormRecorder) Migrate() error {
	return r.db.AutoMigrate(&Entry{})
}

// Record inserts e.
func (r *GormRecorder) Record(ctx context.Context, e Entry) error {
	if e.Environment == "" {
		e.Environment = r.environment
	}
	if e.RayID == "" {
		e.RayID = RayIDFrom(ctx)
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = r.now().UTC()
	}
	if err := r.db.WithContext(ctx).Create(&e).Error; err != nil {
		return fmt.Errorf("failed to record %s audit entry: %w", e.Operation, err)
	}
	return nil
}

// Recent returns the latest entries for a product, newest first.
func (r *GormRecorder) Recent(ctx context.Context, productID string, limit int) ([]Entry, error) {
	var entries []Entry
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read audit entries: %w", err)
	}
	return entries, nil
}

// Nop discards every entry.
type Nop struct{}

// Record implements Recorder.
func (Nop) Record(ctx context.Context, e Entry) error {
	return nil
}

// Logged wraps a recorder so that failures are logged instead of returned.
// Auditing never fails the operation it records.
type Logged struct {
	Recorder Recorder
	Logger   *zap.Logger
}

// Record implements Recorder.
func (l Logged) Record(ctx context.Context, e Entry) error {
	if err := l.Recorder.Record(ctx, e); err != nil {
		l.Logger.Warn("Audit entry dropped",
			zap.String("operation", e.Operation),
			zap.String("product_id", e.ProductID),
			zap.Error(err),
		)
	}
	return nil
}

type rayIDKey struct{}

// WithRayID returns a context carrying the request's ray id, recorded on every entry
// written under it.
func WithRayID(ctx context.Context, rayID string) context.Context {
	return context.WithValue(ctx, rayIDKey{}, rayID)
}

// RayIDFrom returns the ray id carried by ctx, if any.
func RayIDFrom(ctx context.Context) string {
	rid, _ := ctx.Value(rayIDKey{}).(string)
	return rid
}

package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSequenceRepository implements shared.SequenceRepository. The upsert
// takes the row lock, so concurrent transactions queue on the same counter.
type GormSequenceRepository struct {
	db *gorm.DB
}

// NewGormSequenceRepository creates a new GormSequenceRepository
func NewGormSequenceRepository(db *gorm.DB) *GormSequenceRepository {
	return &GormSequenceRepository{db: db}
}

// Next increments and returns the counter for (tenant, key)
func (r *GormSequenceRepository) Next(ctx context.Context, tenantID uuid.UUID, key string) (int64, error) {
	now := time.Now().UTC()
	var value int64
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO document_sequences (tenant_id, seq_key, value, updated_at)
		VALUES (?, ?, 1, ?)
		ON CONFLICT (tenant_id, seq_key)
		DO UPDATE SET value = document_sequences.value + 1, updated_at = ?
		RETURNING value`, tenantID, key, now, now).
		Row().Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("failed to advance sequence %s: %w", key, err)
	}
	return value, nil
}

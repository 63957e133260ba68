package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/atlasfeed/atlasfeed/internal/models"
)

// PostgresAuditStore implements dedup.AuditStore using PostgreSQL.
type PostgresAuditStore struct {
	db *sql.DB
}

// NewPostgresAuditStore creates a new PostgreSQL audit store.
func NewPostgresAuditStore(db *sql.DB) *PostgresAuditStore {
	return &PostgresAuditStore{db: db}
}

// CreateRecord inserts an audit record. Records are immutable after
// creation; there is no update path.
func (s *PostgresAuditStore) CreateRecord(ctx context.Context, record models.DeduplicationRecord) error {
	query := `
		INSERT INTO dedup_records (
			id, task_id, resource_id, duplicate_of_id, method, similarity,
			decision, url_hash, title_hash, content_fingerprint, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := s.db.ExecContext(ctx, query,
		record.ID,
		record.TaskID,
		record.ResourceID,
		record.DuplicateOfID,
		string(record.Method),
		record.Similarity,
		string(record.Decision),
		record.URLHash,
		record.TitleHash,
		record.ContentFingerprint,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert dedup record: %w", err)
	}
	return nil
}

// Count returns the number of audit records matching the filter.
func (s *PostgresAuditStore) Count(ctx context.Context, filter models.RecordFilter) (int, error) {
	var count int
	var err error

	if filter.Since != nil {
		err = s.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM dedup_records WHERE created_at >= $1", *filter.Since,
		).Scan(&count)
	} else {
		err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM dedup_records").Scan(&count)
	}

	if err != nil {
		return 0, fmt.Errorf("failed to count dedup records: %w", err)
	}
	return count, nil
}

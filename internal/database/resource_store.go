package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/atlasfeed/atlasfeed/internal/dedup"
	"github.com/atlasfeed/atlasfeed/internal/models"
)

// PostgresResourceStore implements dedup.ResourceStore using PostgreSQL.
type PostgresResourceStore struct {
	db *sql.DB
}

// NewPostgresResourceStore creates a new PostgreSQL resource store.
func NewPostgresResourceStore(db *sql.DB) *PostgresResourceStore {
	return &PostgresResourceStore{db: db}
}

const resourceColumns = `
	id, source, url, canonical_url, title, abstract, content, ai_summary,
	authors, citation_count, content_fingerprint, published_at, created_at
`

// FindByURL retrieves a resource whose raw or canonical URL equals the
// given one.
func (s *PostgresResourceStore) FindByURL(ctx context.Context, url string) (*models.Resource, error) {
	query := `
		SELECT ` + resourceColumns + `
		FROM resources
		WHERE url = $1 OR canonical_url = $1
		ORDER BY created_at
		LIMIT 1
	`
	resource, err := s.scanOne(s.db.QueryRowContext(ctx, query, url))
	if err != nil {
		return nil, fmt.Errorf("failed to query resource by URL: %w", err)
	}
	return resource, nil
}

// FindByTitlePrefix retrieves up to limit resources whose titles contain
// the prefix, case-insensitive.
func (s *PostgresResourceStore) FindByTitlePrefix(ctx context.Context, prefix string, limit int) ([]models.Resource, error) {
	query := `
		SELECT ` + resourceColumns + `
		FROM resources
		WHERE title ILIKE '%' || $1 || '%'
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, query, escapeLike(prefix), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query resources by title prefix: %w", err)
	}
	defer rows.Close()

	var resources []models.Resource
	for rows.Next() {
		resource, err := s.scanRow(rows)
		if err != nil {
			return nil, err
		}
		resources = append(resources, resource)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read title prefix rows: %w", err)
	}

	return resources, nil
}

// FindByContentFingerprint looks up a previously recorded fingerprint in
// the audit table and returns the resource it belongs to.
func (s *PostgresResourceStore) FindByContentFingerprint(ctx context.Context, fp string) (*dedup.FingerprintMatch, error) {
	query := `
		SELECT resource_id
		FROM dedup_records
		WHERE content_fingerprint = $1 AND resource_id <> ''
		ORDER BY created_at
		LIMIT 1
	`

	var resourceID string
	err := s.db.QueryRowContext(ctx, query, fp).Scan(&resourceID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query fingerprint: %w", err)
	}

	return &dedup.FingerprintMatch{ResourceID: resourceID}, nil
}

// FindByID retrieves a resource by its ID.
func (s *PostgresResourceStore) FindByID(ctx context.Context, id string) (*models.Resource, error) {
	query := `
		SELECT ` + resourceColumns + `
		FROM resources
		WHERE id = $1
	`
	resource, err := s.scanOne(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to query resource by ID: %w", err)
	}
	return resource, nil
}

// UpdateFields overwrites the supplied non-empty fields on the stored
// resource.
func (s *PostgresResourceStore) UpdateFields(ctx context.Context, id string, fields models.ResourceFields) error {
	sets := make([]string, 0, 4)
	args := make([]interface{}, 0, 5)

	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	add("title", fields.Title)
	add("abstract", fields.Abstract)
	add("content", fields.Content)
	add("ai_summary", fields.AISummary)

	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE resources SET %s WHERE id = $%d",
		strings.Join(sets, ", "), len(args))

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update resource fields: %w", err)
	}
	return nil
}

// Create inserts a new resource and returns its generated ID. Used by the
// import wrapper after a "created" decision; not part of the engine-facing
// store interface.
func (s *PostgresResourceStore) Create(ctx context.Context, resource models.Resource) (string, error) {
	if resource.ID == "" {
		resource.ID = uuid.NewString()
	}
	if resource.CreatedAt.IsZero() {
		resource.CreatedAt = time.Now()
	}

	authorsJSON, err := json.Marshal(resource.Authors)
	if err != nil {
		return "", fmt.Errorf("failed to marshal authors: %w", err)
	}

	query := `
		INSERT INTO resources (
			id, source, url, canonical_url, title, abstract, content,
			ai_summary, authors, citation_count, content_fingerprint,
			published_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err = s.db.ExecContext(ctx, query,
		resource.ID,
		resource.Source,
		resource.URL,
		resource.CanonicalURL,
		resource.Title,
		resource.Abstract,
		resource.Content,
		resource.AISummary,
		authorsJSON,
		resource.CitationCount,
		resource.ContentFingerprint,
		resource.PublishedAt,
		resource.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert resource: %w", err)
	}

	return resource.ID, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (s *PostgresResourceStore) scanOne(row *sql.Row) (*models.Resource, error) {
	resource, err := scanResource(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &resource, nil
}

func (s *PostgresResourceStore) scanRow(rows *sql.Rows) (models.Resource, error) {
	resource, err := scanResource(rows)
	if err != nil {
		return models.Resource{}, fmt.Errorf("failed to scan resource row: %w", err)
	}
	return resource, nil
}

func scanResource(scanner rowScanner) (models.Resource, error) {
	var resource models.Resource
	var authorsJSON []byte
	var publishedAt sql.NullTime

	err := scanner.Scan(
		&resource.ID,
		&resource.Source,
		&resource.URL,
		&resource.CanonicalURL,
		&resource.Title,
		&resource.Abstract,
		&resource.Content,
		&resource.AISummary,
		&authorsJSON,
		&resource.CitationCount,
		&resource.ContentFingerprint,
		&publishedAt,
		&resource.CreatedAt,
	)
	if err != nil {
		return models.Resource{}, err
	}

	if publishedAt.Valid {
		t := publishedAt.Time
		resource.PublishedAt = &t
	}
	if len(authorsJSON) > 0 {
		if err := json.Unmarshal(authorsJSON, &resource.Authors); err != nil {
			return models.Resource{}, fmt.Errorf("failed to unmarshal authors: %w", err)
		}
	}

	return resource, nil
}

// escapeLike escapes LIKE metacharacters so a title prefix is matched
// literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// Package dedup implements the cross-source duplicate resolution engine:
// the cascading duplicate check, the field-level merge resolver, audit
// record bookkeeping, batch duplicate detection, and the offline
// deduplication report generator.
//
// All computation here is pure and CPU-bound; the only suspension points
// are the store lookups, which belong to the injected repositories.
package dedup

import (
	"context"
	"strings"
	"time"

	"github.com/atlasfeed/atlasfeed/internal/models"
)

// FingerprintMatch points at the resource a stored fingerprint belongs to.
type FingerprintMatch struct {
	ResourceID string
}

// ResourceStore defines the resource lookups and updates the engine needs.
type ResourceStore interface {
	// FindByURL retrieves a resource whose stored URL equals the given
	// one exactly. Returns nil when no resource matches.
	FindByURL(ctx context.Context, url string) (*models.Resource, error)

	// FindByTitlePrefix retrieves up to limit resources whose titles
	// contain the given prefix, case-insensitive. This is a pragmatic
	// pre-filter for the title similarity stage, not an exhaustive scan.
	FindByTitlePrefix(ctx context.Context, prefix string, limit int) ([]models.Resource, error)

	// FindByContentFingerprint looks up a prior audit fingerprint.
	// Returns nil when the fingerprint has never been recorded.
	FindByContentFingerprint(ctx context.Context, fp string) (*FingerprintMatch, error)

	// FindByID retrieves a resource by its ID, nil when absent.
	FindByID(ctx context.Context, id string) (*models.Resource, error)

	// UpdateFields overwrites the supplied non-empty fields on the
	// stored resource.
	UpdateFields(ctx context.Context, id string, fields models.ResourceFields) error
}

// AuditStore persists and counts deduplication audit records.
type AuditStore interface {
	CreateRecord(ctx context.Context, record models.DeduplicationRecord) error
	Count(ctx context.Context, filter models.RecordFilter) (int, error)
}

// MemoryResourceStore implements ResourceStore in memory for tests and
// development.
type MemoryResourceStore struct {
	resources    map[string]models.Resource
	urlIdx       map[string]string // URL -> ID
	fingerprints map[string]string // content fingerprint -> resource ID
}

// NewMemoryResourceStore creates an empty in-memory resource store.
func NewMemoryResourceStore() *MemoryResourceStore {
	return &MemoryResourceStore{
		resources:    make(map[string]models.Resource),
		urlIdx:       make(map[string]string),
		fingerprints: make(map[string]string),
	}
}

// Add stores a resource and indexes its URLs and fingerprint.
func (s *MemoryResourceStore) Add(resource models.Resource) {
	s.resources[resource.ID] = resource
	if resource.URL != "" {
		s.urlIdx[resource.URL] = resource.ID
	}
	if resource.CanonicalURL != "" {
		s.urlIdx[resource.CanonicalURL] = resource.ID
	}
	if resource.ContentFingerprint != "" {
		s.fingerprints[resource.ContentFingerprint] = resource.ID
	}
}

// FindByURL retrieves a resource by exact URL match.
func (s *MemoryResourceStore) FindByURL(ctx context.Context, url string) (*models.Resource, error) {
	id, ok := s.urlIdx[url]
	if !ok {
		return nil, nil
	}
	return s.FindByID(ctx, id)
}

// FindByTitlePrefix retrieves resources whose titles contain the prefix,
// case-insensitive.
func (s *MemoryResourceStore) FindByTitlePrefix(ctx context.Context, prefix string, limit int) ([]models.Resource, error) {
	needle := strings.ToLower(prefix)
	result := make([]models.Resource, 0, limit)

	for _, resource := range s.resources {
		if strings.Contains(strings.ToLower(resource.Title), needle) {
			result = append(result, resource)
			if len(result) >= limit {
				break
			}
		}
	}

	return result, nil
}

// FindByContentFingerprint looks up a recorded fingerprint.
func (s *MemoryResourceStore) FindByContentFingerprint(ctx context.Context, fp string) (*FingerprintMatch, error) {
	id, ok := s.fingerprints[fp]
	if !ok {
		return nil, nil
	}
	return &FingerprintMatch{ResourceID: id}, nil
}

// FindByID retrieves a resource by ID.
func (s *MemoryResourceStore) FindByID(ctx context.Context, id string) (*models.Resource, error) {
	resource, ok := s.resources[id]
	if !ok {
		return nil, nil
	}
	return &resource, nil
}

// UpdateFields overwrites the supplied non-empty fields.
func (s *MemoryResourceStore) UpdateFields(ctx context.Context, id string, fields models.ResourceFields) error {
	resource, ok := s.resources[id]
	if !ok {
		return nil
	}

	if fields.Title != "" {
		resource.Title = fields.Title
	}
	if fields.Abstract != "" {
		resource.Abstract = fields.Abstract
	}
	if fields.Content != "" {
		resource.Content = fields.Content
	}
	if fields.AISummary != "" {
		resource.AISummary = fields.AISummary
	}

	s.resources[id] = resource
	return nil
}

// Size returns the number of stored resources.
func (s *MemoryResourceStore) Size() int {
	return len(s.resources)
}

// MemoryAuditStore implements AuditStore in memory for tests and
// development.
type MemoryAuditStore struct {
	records []models.DeduplicationRecord
}

// NewMemoryAuditStore creates an empty in-memory audit store.
func NewMemoryAuditStore() *MemoryAuditStore {
	return &MemoryAuditStore{}
}

// CreateRecord appends an audit record.
func (s *MemoryAuditStore) CreateRecord(ctx context.Context, record models.DeduplicationRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	s.records = append(s.records, record)
	return nil
}

// Count returns the number of records matching the filter.
func (s *MemoryAuditStore) Count(ctx context.Context, filter models.RecordFilter) (int, error) {
	if filter.Since == nil {
		return len(s.records), nil
	}

	count := 0
	for _, record := range s.records {
		if !record.CreatedAt.Before(*filter.Since) {
			count++
		}
	}
	return count, nil
}

// Records returns a copy of all stored records.
func (s *MemoryAuditStore) Records() []models.DeduplicationRecord {
	out := make([]models.DeduplicationRecord, len(s.records))
	copy(out, s.records)
	return out
}

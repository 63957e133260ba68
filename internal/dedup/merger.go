package dedup

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/atlasfeed/atlasfeed/internal/models"
)

// Merger folds the fields of a duplicate candidate into the surviving
// resource. Field selection is longer-wins only: which record survives as
// the canonical one is the caller's decision, typically informed by source
// credibility; this resolver never consults it.
type Merger struct {
	resources ResourceStore
	logger    *slog.Logger
}

// NewMerger creates a merge resolver backed by the given store.
func NewMerger(resources ResourceStore, logger *slog.Logger) *Merger {
	return &Merger{
		resources: resources,
		logger:    logger,
	}
}

// Merge updates the stored resource with any supplied field whose value is
// longer than the stored one (or where the stored one is absent). Returns
// true iff at least one field was updated.
func (m *Merger) Merge(ctx context.Context, existingID string, fields models.ResourceFields) (bool, error) {
	existing, err := m.resources.FindByID(ctx, existingID)
	if err != nil {
		return false, fmt.Errorf("load resource %s: %w", existingID, err)
	}
	if existing == nil {
		return false, nil
	}

	var updates models.ResourceFields
	var changed []string

	if longerWins(fields.Title, existing.Title) {
		updates.Title = fields.Title
		changed = append(changed, "title")
	}
	if longerWins(fields.Abstract, existing.Abstract) {
		updates.Abstract = fields.Abstract
		changed = append(changed, "abstract")
	}
	if longerWins(fields.Content, existing.Content) {
		updates.Content = fields.Content
		changed = append(changed, "content")
	}
	if longerWins(fields.AISummary, existing.AISummary) {
		updates.AISummary = fields.AISummary
		changed = append(changed, "ai_summary")
	}

	if len(changed) == 0 {
		return false, nil
	}

	if err := m.resources.UpdateFields(ctx, existingID, updates); err != nil {
		return false, fmt.Errorf("update resource %s: %w", existingID, err)
	}

	m.logger.Info("merged resource fields",
		"resource_id", existingID,
		"fields", strings.Join(changed, ","),
	)

	return true, nil
}

// longerWins reports whether the new value should replace the existing one:
// only when supplied and strictly longer than what is stored.
func longerWins(newValue, existing string) bool {
	if newValue == "" {
		return false
	}
	return existing == "" || len(newValue) > len(existing)
}

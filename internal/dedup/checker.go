package dedup

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/atlasfeed/atlasfeed/internal/fingerprint"
	"github.com/atlasfeed/atlasfeed/internal/models"
	"github.com/atlasfeed/atlasfeed/internal/similarity"
	"github.com/atlasfeed/atlasfeed/internal/urlnorm"
)

// Config holds the tunable thresholds of the duplicate resolution cascade.
type Config struct {
	// TitleThreshold is the minimum Jaccard similarity for a title match.
	TitleThreshold float64

	// TitleCandidateLimit bounds the prefix-matched candidate set fetched
	// for the title stage.
	TitleCandidateLimit int

	// FingerprintSimilarity is the fixed similarity reported for a
	// content fingerprint match. Fingerprint equality yields no finer
	// grained score, so this is a constant placeholder.
	FingerprintSimilarity float64
}

// DefaultConfig returns the production cascade thresholds.
func DefaultConfig() Config {
	return Config{
		TitleThreshold:        0.85,
		TitleCandidateLimit:   10,
		FingerprintSimilarity: 0.95,
	}
}

const (
	// minTitleRunes gates the title similarity stage; shorter titles
	// produce too many spurious Jaccard matches.
	minTitleRunes = 10

	// minContentRunes gates the content fingerprint stage.
	minContentRunes = 100

	// titlePrefixRunes is how much of the title seeds the candidate
	// pre-filter query.
	titlePrefixRunes = 50
)

// Checker classifies incoming candidates as new, duplicate, or mergeable
// against previously stored resources. The cascade is precision-first:
// cheapest and most certain checks run before fuzzier ones, and the first
// match wins.
type Checker struct {
	resources ResourceStore
	logger    *slog.Logger
	config    Config
}

// NewChecker creates a checker. Zero config values fall back to defaults.
func NewChecker(resources ResourceStore, logger *slog.Logger, config Config) *Checker {
	defaults := DefaultConfig()
	if config.TitleThreshold <= 0 {
		config.TitleThreshold = defaults.TitleThreshold
	}
	if config.TitleCandidateLimit <= 0 {
		config.TitleCandidateLimit = defaults.TitleCandidateLimit
	}
	if config.FingerprintSimilarity <= 0 {
		config.FingerprintSimilarity = defaults.FingerprintSimilarity
	}

	return &Checker{
		resources: resources,
		logger:    logger,
		config:    config,
	}
}

// Check runs the duplicate cascade for a candidate. Content may be empty;
// the fingerprint stage is skipped below its length gate. Storage failures
// propagate to the caller rather than resolving to a false "created".
func (c *Checker) Check(ctx context.Context, url, title, content string) (models.DeduplicationDecision, error) {
	normalizedURL := urlnorm.Normalize(url)

	// Stage 1: exact URL match against the canonical or raw form.
	lookups := []string{normalizedURL}
	if url != normalizedURL {
		lookups = append(lookups, url)
	}
	for _, candidate := range lookups {
		match, err := c.resources.FindByURL(ctx, candidate)
		if err != nil {
			return models.DeduplicationDecision{}, fmt.Errorf("url lookup: %w", err)
		}
		if match != nil {
			c.logger.Debug("duplicate by exact url", "url", url, "resource_id", match.ID)
			return models.DeduplicationDecision{
				IsDuplicate:       true,
				MatchedResourceID: match.ID,
				Similarity:        1.0,
				Action:            models.ActionSkipped,
				Reason:            models.ReasonExactURL,
			}, nil
		}
	}

	// Stage 2: title similarity over a bounded prefix-matched set.
	if utf8.RuneCountInString(title) >= minTitleRunes {
		prefix := title
		if runes := []rune(title); len(runes) > titlePrefixRunes {
			prefix = string(runes[:titlePrefixRunes])
		}

		candidates, err := c.resources.FindByTitlePrefix(ctx, prefix, c.config.TitleCandidateLimit)
		if err != nil {
			return models.DeduplicationDecision{}, fmt.Errorf("title lookup: %w", err)
		}

		for _, candidate := range candidates {
			score := similarity.Jaccard(title, candidate.Title)
			if score >= c.config.TitleThreshold {
				c.logger.Debug("duplicate by title similarity",
					"title", title,
					"resource_id", candidate.ID,
					"similarity", score,
				)
				return models.DeduplicationDecision{
					IsDuplicate:       true,
					MatchedResourceID: candidate.ID,
					Similarity:        score,
					Action:            models.ActionMerged,
					Reason:            models.ReasonTitleSimilarity,
				}, nil
			}
		}
	}

	// Stage 3: order-insensitive content fingerprint.
	if utf8.RuneCountInString(content) >= minContentRunes {
		fp := fingerprint.ContentFingerprint(content)
		if fp != "" {
			match, err := c.resources.FindByContentFingerprint(ctx, fp)
			if err != nil {
				return models.DeduplicationDecision{}, fmt.Errorf("fingerprint lookup: %w", err)
			}
			if match != nil && match.ResourceID != "" {
				c.logger.Debug("duplicate by content fingerprint",
					"fingerprint", fp,
					"resource_id", match.ResourceID,
				)
				return models.DeduplicationDecision{
					IsDuplicate:       true,
					MatchedResourceID: match.ResourceID,
					Similarity:        c.config.FingerprintSimilarity,
					Action:            models.ActionMerged,
					Reason:            models.ReasonContentFingerprint,
				}, nil
			}
		}
	}

	return models.DeduplicationDecision{
		IsDuplicate: false,
		Action:      models.ActionCreated,
	}, nil
}

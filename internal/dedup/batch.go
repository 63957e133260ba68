package dedup

import (
	"log/slog"

	"github.com/atlasfeed/atlasfeed/internal/similarity"
	"github.com/atlasfeed/atlasfeed/internal/urlnorm"
)

// BatchItem is one crawled candidate inside a single batch.
type BatchItem struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// BatchDetector finds duplicates within a single crawl batch, before any
// storage round-trip: first by canonical URL, then by edit-distance title
// similarity against the items already accepted from the batch.
type BatchDetector struct {
	titleThreshold float64
	logger         *slog.Logger
}

// NewBatchDetector creates a detector. A threshold ≤0 falls back to the
// recall-oriented DefaultBatchTitleThreshold.
func NewBatchDetector(titleThreshold float64, logger *slog.Logger) *BatchDetector {
	if titleThreshold <= 0 {
		titleThreshold = similarity.DefaultBatchTitleThreshold
	}
	return &BatchDetector{
		titleThreshold: titleThreshold,
		logger:         logger,
	}
}

// DetectIndexes returns the indexes of items that duplicate an earlier item
// in the batch. Earlier items always survive; later restatements are the
// duplicates. Titles are whitespace-collapsed before comparison so feed
// formatting differences do not mask a restated headline.
func (d *BatchDetector) DetectIndexes(items []BatchItem) []int {
	duplicates := []int{}
	seen := make(map[string]int) // canonical URL -> index
	var accepted []string        // cleaned titles of surviving items

	for i, item := range items {
		canonical := urlnorm.Normalize(item.URL)
		title := similarity.CleanText(item.Title)

		if _, ok := seen[canonical]; ok {
			duplicates = append(duplicates, i)
			d.logger.Debug("in-batch url duplicate", "title", title, "index", i)
			continue
		}

		isDuplicate := false
		for _, prior := range accepted {
			if similarity.SimilarTitles(title, prior, d.titleThreshold) {
				duplicates = append(duplicates, i)
				isDuplicate = true
				d.logger.Debug("in-batch title duplicate",
					"title", title,
					"similar_to", prior,
					"index", i,
				)
				break
			}
		}

		if !isDuplicate {
			seen[canonical] = i
			accepted = append(accepted, title)
		}
	}

	return duplicates
}

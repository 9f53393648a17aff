package citation

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultRelevanceThreshold drops sources the retrieval layer scored as
// weakly related. Configurable at runtime via SetThreshold.
const DefaultRelevanceThreshold = 0.3

// Store persists citations. A single Attach may fail without affecting
// other citations or the record they belong to.
type Store interface {
	Attach(ctx context.Context, recordID string, c Citation) error
}

// Aggregator turns the conversation's raw source references into
// persisted citations: filter, rank, dedup, attach.
type Aggregator struct {
	store Store
	log   *zap.Logger

	mu        sync.RWMutex
	threshold float64
}

// NewAggregator returns an aggregator persisting through store.
func NewAggregator(store Store, log *zap.Logger) *Aggregator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Aggregator{
		store:     store,
		log:       log,
		threshold: DefaultRelevanceThreshold,
	}
}

// SetThreshold changes the relevance cutoff for future attachments.
func (a *Aggregator) SetThreshold(t float64) {
	a.mu.Lock()
	a.threshold = t
	a.mu.Unlock()
}

// Threshold returns the current relevance cutoff.
func (a *Aggregator) Threshold() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.threshold
}

// Attach filters, ranks, and deduplicates sources, then persists one
// citation per retained source against recordID. It returns the number
// of citations actually attached. A failing store call is logged and
// skipped; it never aborts the remaining citations and never surfaces
// as an error to the caller.
func (a *Aggregator) Attach(ctx context.Context, recordID string, sources []SourceRef) int {
	retained := a.Select(sources)

	attached := 0
	for _, src := range retained {
		c := Citation{
			ID:        uuid.NewString(),
			RecordID:  recordID,
			Path:      sourcePath(src),
			FileName:  src.FileName,
			Section:   src.Section,
			Page:      src.Page,
			Relevance: effectiveRelevance(src),
		}
		if err := a.store.Attach(ctx, recordID, c); err != nil {
			a.log.Warn("citation attach failed, skipping",
				zap.String("record_id", recordID),
				zap.String("path", c.Path),
				zap.Error(err))
			continue
		}
		attached++
	}

	a.log.Debug("citations attached",
		zap.String("record_id", recordID),
		zap.Int("offered", len(sources)),
		zap.Int("retained", len(retained)),
		zap.Int("attached", attached))

	return attached
}

// Select applies eligibility, ranking, and dedup without persisting.
// Exposed so callers can preview what would be attached.
func (a *Aggregator) Select(sources []SourceRef) []SourceRef {
	threshold := a.Threshold()

	eligible := make([]SourceRef, 0, len(sources))
	for _, src := range sources {
		if src.OtherEntity {
			continue
		}
		if src.Relevance != nil && *src.Relevance < threshold {
			continue
		}
		eligible = append(eligible, src)
	}

	// Rank by relevance descending. A missing score sorts as 1.0 so
	// unscored sources keep winning dedup against scored duplicates.
	sort.SliceStable(eligible, func(i, j int) bool {
		return effectiveRelevance(eligible[i]) > effectiveRelevance(eligible[j])
	})

	seen := make(map[string]bool, len(eligible))
	retained := eligible[:0]
	for _, src := range eligible {
		key := normalizePath(sourcePath(src))
		if key == "" {
			continue
		}
		if seen[key] {
			a.log.Debug("duplicate citation path dropped", zap.String("path", key))
			continue
		}
		seen[key] = true
		retained = append(retained, src)
	}

	return retained
}

// effectiveRelevance is the sentinel rule: nil ranks as 1.0.
func effectiveRelevance(src SourceRef) float64 {
	if src.Relevance == nil {
		return 1.0
	}
	return *src.Relevance
}

func sourcePath(src SourceRef) string {
	if src.FilePath != "" {
		return src.FilePath
	}
	return src.FileName
}

// normalizePath is the dedup key: forward slashes, lower case, no
// surrounding whitespace. The desktop app runs on Windows too, so
// backslash paths show up in conversation payloads.
func normalizePath(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	return strings.ToLower(strings.TrimSpace(p))
}

// Package match ranks deal candidates against a free-text reference.
//
// The LLM hands us whatever the user typed ("the acme deal", "Acme Corp")
// and we have to find the record it means. Scoring is a fixed ladder of
// string similarity checks per field; the thresholds below are load-bearing
// because the UI displays them as confidence percentages.
package match

import (
	"sort"
	"strings"

	"github.com/agext/levenshtein"
	"go.uber.org/zap"
)

// Scoring ladder constants. Do not retune without updating the
// confidence display in the frontend.
const (
	// SubstringScore is awarded when the query appears verbatim
	// (case-insensitively) inside a candidate field.
	SubstringScore = 0.90

	// TokenOverlapScore is awarded when any query token contains or is
	// contained by any field token.
	TokenOverlapScore = 0.80

	// EditWeight scales the best token-pair edit similarity.
	EditWeight = 0.85

	// EditFloor is the minimum edit similarity that counts at all.
	EditFloor = 0.60

	// Threshold is the cutoff for returned matches. Candidates scoring
	// at or below it are dropped.
	Threshold = 0.50
)

// Candidate is one entity to score. Fields holds the textual fields
// considered for matching, e.g. deal name, company, contact.
type Candidate struct {
	ID     string
	Label  string
	Fields []string
}

// Match is a candidate that cleared the threshold. Score is in (0.5, 1].
type Match struct {
	Candidate Candidate
	Score     float64
}

// Resolver scores candidates against free-text queries.
type Resolver struct {
	log *zap.Logger
}

// NewResolver returns a resolver logging through the given logger.
func NewResolver(log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{log: log}
}

// Resolve scores every candidate and returns those above Threshold,
// sorted by score descending. The sort is stable: candidates with equal
// scores keep their input order.
func (r *Resolver) Resolve(query string, candidates []Candidate) []Match {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	matches := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		score := scoreCandidate(query, c.Fields)
		if score > Threshold {
			matches = append(matches, Match{Candidate: c, Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	r.log.Debug("resolved entity query",
		zap.String("query", query),
		zap.Int("candidates", len(candidates)),
		zap.Int("matches", len(matches)))

	return matches
}

// scoreCandidate is the maximum field score; a candidate is as good as
// its best field, scores are never summed.
func scoreCandidate(query string, fields []string) float64 {
	best := 0.0
	for _, f := range fields {
		if s := scoreField(query, f); s > best {
			best = s
		}
	}
	return best
}

// scoreField walks the ladder: substring, token overlap, then weighted
// edit similarity over the best token pair.
func scoreField(query, field string) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	f := strings.ToLower(strings.TrimSpace(field))
	if q == "" || f == "" {
		return 0
	}

	if strings.Contains(f, q) {
		return SubstringScore
	}

	qTokens := strings.Fields(q)
	fTokens := strings.Fields(f)

	for _, qt := range qTokens {
		for _, ft := range fTokens {
			if strings.Contains(ft, qt) || strings.Contains(qt, ft) {
				return TokenOverlapScore
			}
		}
	}

	best := 0.0
	for _, qt := range qTokens {
		for _, ft := range fTokens {
			if sim := editSimilarity(qt, ft); sim > EditFloor && sim > best {
				best = sim
			}
		}
	}
	if best == 0 {
		return 0
	}
	return best * EditWeight
}

// editSimilarity is 1 - distance/maxLen with unit-cost Levenshtein.
// Two empty strings have maxLen 0 and are similarity 1 by the formula;
// that edge is intentional and matched by the original scoring, so it
// stays.
func editSimilarity(a, b string) float64 {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1
	}
	dist := levenshtein.Distance(a, b, nil)
	return 1 - float64(dist)/float64(maxLen)
}

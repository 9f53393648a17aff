package match

import (
	"testing"

	"go.uber.org/zap"
)

func candidates(names ...string) []Candidate {
	out := make([]Candidate, 0, len(names))
	for _, n := range names {
		out = append(out, Candidate{ID: n, Label: n, Fields: []string{n}})
	}
	return out
}

func TestResolveExactSubstringRanksFirst(t *testing.T) {
	r := NewResolver(zap.NewNop())

	matches := r.Resolve("Acme Corp", candidates("Acme Corp", "Acme Corporation", "Ace Industries"))
	if len(matches) < 2 {
		t.Fatalf("expected at least 2 matches, got %d", len(matches))
	}

	if matches[0].Candidate.ID != "Acme Corp" {
		t.Errorf("expected Acme Corp first, got %s", matches[0].Candidate.ID)
	}
	if matches[0].Score < SubstringScore {
		t.Errorf("exact substring match scored %.2f, want >= %.2f", matches[0].Score, SubstringScore)
	}
	if matches[1].Candidate.ID != "Acme Corporation" {
		t.Errorf("expected Acme Corporation second, got %s", matches[1].Candidate.ID)
	}
}

func TestResolveCaseInsensitive(t *testing.T) {
	r := NewResolver(nil)

	matches := r.Resolve("acme corp", candidates("ACME Corp"))
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Score != SubstringScore {
		t.Errorf("got score %.2f, want %.2f", matches[0].Score, SubstringScore)
	}
}

func TestResolveThresholdExcludesWeakMatches(t *testing.T) {
	r := NewResolver(nil)

	matches := r.Resolve("Globex", candidates("Initech", "Umbrella Holdings", "Globex Inc"))
	for _, m := range matches {
		if m.Score <= Threshold {
			t.Errorf("match %q with score %.2f should have been filtered", m.Candidate.ID, m.Score)
		}
		if m.Candidate.ID != "Globex Inc" {
			t.Errorf("unexpected match: %q (%.2f)", m.Candidate.ID, m.Score)
		}
	}
}

func TestResolveStableOrderOnTies(t *testing.T) {
	r := NewResolver(nil)

	// Both contain the query verbatim, so both score exactly 0.90
	// and must keep their input order.
	matches := r.Resolve("acme", candidates("Acme West", "Acme East"))
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Candidate.ID != "Acme West" || matches[1].Candidate.ID != "Acme East" {
		t.Errorf("tie order not preserved: %q, %q", matches[0].Candidate.ID, matches[1].Candidate.ID)
	}
}

func TestResolveEmptyQuery(t *testing.T) {
	r := NewResolver(nil)
	if got := r.Resolve("  ", candidates("Acme Corp")); got != nil {
		t.Errorf("blank query should resolve to nil, got %v", got)
	}
}

func TestResolveBestFieldWins(t *testing.T) {
	r := NewResolver(nil)

	c := Candidate{ID: "d1", Fields: []string{"Q3 renewal", "Globex Inc", "Hank Scorpio"}}
	matches := r.Resolve("globex", []Candidate{c})
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	// Score is the best single field, not a sum across fields.
	if matches[0].Score != SubstringScore {
		t.Errorf("got %.2f, want %.2f", matches[0].Score, SubstringScore)
	}
}

func TestScoreFieldLadder(t *testing.T) {
	tests := []struct {
		name  string
		query string
		field string
		want  float64
	}{
		{"substring", "acme", "Acme Corporation", SubstringScore},
		{"token containment", "corp acme", "Acme Ltd", TokenOverlapScore},
		{"no similarity at all", "zzzz", "Acme", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scoreField(tt.query, tt.field); got != tt.want {
				t.Errorf("scoreField(%q, %q) = %.2f, want %.2f", tt.query, tt.field, got, tt.want)
			}
		})
	}
}

func TestScoreFieldEditSimilarity(t *testing.T) {
	// "acme" vs "acne": distance 1, max length 4 -> similarity 0.75,
	// above the floor, weighted by 0.85.
	got := scoreField("acme", "acne")
	want := 0.75 * EditWeight
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("scoreField = %v, want %v", got, want)
	}

	// Similarity at or below the floor does not count.
	if got := scoreField("abcdefghij", "abcdzzzzzz"); got != 0 {
		// distance 6 over length 10 -> similarity 0.4 < floor
		t.Errorf("below-floor similarity should score 0, got %v", got)
	}
}

func TestEditSimilarityEmptyStrings(t *testing.T) {
	// maxLen 0 yields similarity 1 straight from the formula. Documented
	// behavior, kept on purpose.
	if got := editSimilarity("", ""); got != 1 {
		t.Errorf("editSimilarity(\"\", \"\") = %v, want 1", got)
	}
}

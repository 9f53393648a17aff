package confirm

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmed(t *testing.T) {
	g := NewGate(0)

	assert.True(t, g.Confirmed(map[string]any{"confirmed": true}))
	assert.False(t, g.Confirmed(map[string]any{"confirmed": false}))
	assert.False(t, g.Confirmed(map[string]any{"confirmed": "true"}))
	assert.False(t, g.Confirmed(map[string]any{}))
}

func TestPromptEchoesParams(t *testing.T) {
	g := NewGate(0)

	res := g.Prompt("update_deal_stage",
		"Change Acme Corp to stage negotiation? Re-invoke with confirmed=true to proceed.",
		map[string]any{"deal_id": "d-1", "new_stage": "negotiation"})

	assert.False(t, res.Success)
	assert.True(t, res.RequiresConfirmation)
	assert.Empty(t, res.Error)

	data, ok := res.Data.(map[string]any)
	require.True(t, ok, "data should be a map payload")
	assert.Equal(t, "update_deal_stage", data[PendingActionKey])
	assert.Equal(t, "d-1", data["deal_id"])
	assert.Equal(t, "negotiation", data["new_stage"])

	issued, ok := data[IssuedAtKey].(string)
	require.True(t, ok)
	_, err := time.Parse(time.RFC3339, issued)
	assert.NoError(t, err)
}

func TestCheckFresh(t *testing.T) {
	g := NewGate(10 * time.Minute)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return base }

	tests := []struct {
		name    string
		args    map[string]any
		wantErr bool
	}{
		{"fresh", map[string]any{"issuedAt": base.Add(-1 * time.Minute).Format(time.RFC3339)}, false},
		{"at ttl boundary", map[string]any{"issuedAt": base.Add(-10 * time.Minute).Format(time.RFC3339)}, false},
		{"stale", map[string]any{"issuedAt": base.Add(-11 * time.Minute).Format(time.RFC3339)}, true},
		{"missing tolerated", map[string]any{}, false},
		{"malformed", map[string]any{"issuedAt": "yesterday-ish"}, true},
		{"wrong type", map[string]any{"issuedAt": 42}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.CheckFresh(tt.args)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrStalePending), "got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

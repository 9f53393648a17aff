// Package store owns deal and activity persistence for the dispatch
// core. Handlers consume the narrow EntityStore/CitationStore
// interfaces; LocalStore is the SQLite-backed implementation the
// desktop app ships with.
package store

import (
	"context"
	"errors"
	"time"

	"dealdesk/internal/citation"
)

// ErrNotFound is returned when an entity id does not resolve.
var ErrNotFound = errors.New("entity not found")

// Pipeline stages a deal can be in. The gate only accepts these.
const (
	StageLead        = "lead"
	StageQualified   = "qualified"
	StageProposal    = "proposal"
	StageNegotiation = "negotiation"
	StageClosedWon   = "closed_won"
	StageClosedLost  = "closed_lost"
)

// Stages lists every valid pipeline stage, in pipeline order.
var Stages = []string{
	StageLead,
	StageQualified,
	StageProposal,
	StageNegotiation,
	StageClosedWon,
	StageClosedLost,
}

// ValidStage reports whether s is one of the fixed pipeline stages.
func ValidStage(s string) bool {
	for _, stage := range Stages {
		if s == stage {
			return true
		}
	}
	return false
}

// Deal is the primary domain entity.
type Deal struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Company   string    `json:"company"`
	Contact   string    `json:"contact"`
	Stage     string    `json:"stage"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Activity is a child record on a deal: a logged call, meeting, note.
type Activity struct {
	ID        string    `json:"id"`
	DealID    string    `json:"dealId"`
	Kind      string    `json:"kind"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"createdAt"`
}

// EntityStore is the storage collaborator handlers mutate deals
// through. Implementations must return ErrNotFound (possibly wrapped)
// for unknown ids.
type EntityStore interface {
	GetByID(ctx context.Context, id string) (*Deal, error)
	ListAll(ctx context.Context) ([]Deal, error)
	UpdateStage(ctx context.Context, id, stage string) (*Deal, error)
	CreateActivity(ctx context.Context, dealID string, a Activity) (*Activity, error)
}

// CitationStore persists evidence citations. Attach may fail per call
// without affecting the parent record.
type CitationStore interface {
	Attach(ctx context.Context, recordID string, c citation.Citation) error
}

// Package deals registers the tool set the deal-management assistant
// exposes to the model. Read tools resolve free-text deal references
// through the fuzzy matcher; mutating tools run behind the confirmation
// gate.
package deals

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"dealdesk/internal/citation"
	"dealdesk/internal/collab"
	"dealdesk/internal/confirm"
	"dealdesk/internal/match"
	"dealdesk/internal/store"
	"dealdesk/internal/tools"
)

// Handlers wires the dispatch core's collaborators into tool handlers.
type Handlers struct {
	store     store.EntityStore
	citations *citation.Aggregator
	resolver  *match.Resolver
	gate      *confirm.Gate
	email     collab.EmailCollaborator
	crm       collab.CRMCollaborator
	timeout   time.Duration
	log       *zap.Logger
}

// Options configures optional collaborators and limits.
type Options struct {
	Email collab.EmailCollaborator
	CRM   collab.CRMCollaborator

	// CollabTimeout bounds external collaborator calls. It is clamped
	// into the collab.MinTimeout-MaxTimeout band; zero falls back to
	// collab.DefaultTimeout.
	CollabTimeout time.Duration

	// PendingTTL bounds how long a confirmation prompt stays honorable.
	PendingTTL time.Duration
}

// New builds the handler set.
func New(entity store.EntityStore, citations *citation.Aggregator, opts Options, log *zap.Logger) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handlers{
		store:     entity,
		citations: citations,
		resolver:  match.NewResolver(log.Named("resolver")),
		gate:      confirm.NewGate(opts.PendingTTL),
		email:     opts.Email,
		crm:       opts.CRM,
		timeout:   collab.ClampTimeout(opts.CollabTimeout),
		log:       log,
	}
}

// RegisterAll registers every deal tool with the catalog.
func (h *Handlers) RegisterAll(registry *tools.Registry) error {
	all := []*tools.Tool{
		h.getDealTool(),
		h.searchDealsTool(),
		h.listDealsTool(),
		h.updateDealStageTool(),
		h.createActivityTool(),
		h.draftEmailTool(),
		h.syncDealToCRMTool(),
	}
	for _, tool := range all {
		if err := registry.Register(tool); err != nil {
			return err
		}
	}
	return nil
}

// resolveDeal turns a free-text reference into a deal. An exact id hit
// wins; otherwise the fuzzy resolver ranks all deals and the best match
// is taken.
func (h *Handlers) resolveDeal(ctx context.Context, ref string) (*store.Deal, []match.Match, error) {
	deal, err := h.store.GetByID(ctx, ref)
	if err == nil {
		return deal, nil, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, nil, err
	}

	deals, err := h.store.ListAll(ctx)
	if err != nil {
		return nil, nil, err
	}

	candidates := make([]match.Candidate, 0, len(deals))
	for _, d := range deals {
		candidates = append(candidates, match.Candidate{
			ID:     d.ID,
			Label:  d.Name,
			Fields: []string{d.Name, d.Company, d.Contact},
		})
	}

	matches := h.resolver.Resolve(ref, candidates)
	if len(matches) == 0 {
		return nil, nil, fmt.Errorf("%w: no deal matching %q", store.ErrNotFound, ref)
	}

	for _, d := range deals {
		if d.ID == matches[0].Candidate.ID {
			deal := d
			return &deal, matches, nil
		}
	}
	return nil, nil, fmt.Errorf("%w: no deal matching %q", store.ErrNotFound, ref)
}

// confidence converts a resolver score to the percentage the UI shows.
func confidence(score float64) int {
	return int(math.Round(score * 100))
}

// Package dealdesk assembles the tool-call dispatch core: catalog,
// dispatcher, fuzzy resolver, confirmation gate, and citation
// aggregator, wired over the local store and whatever collaborators
// the host application provides.
//
// The package is an in-process library. The desktop app's conversation
// loop feeds model-issued tool calls into Core.Dispatch (or RunTurn for
// a whole turn) and renders the returned result envelopes.
package dealdesk

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"dealdesk/internal/citation"
	"dealdesk/internal/collab"
	"dealdesk/internal/config"
	"dealdesk/internal/deals"
	"dealdesk/internal/dispatch"
	"dealdesk/internal/store"
	"dealdesk/internal/tools"
)

// Core is the assembled dispatch core.
type Core struct {
	cfg        *config.Config
	registry   *tools.Registry
	dispatcher *dispatch.Dispatcher
	local      *store.LocalStore
	log        *zap.Logger
}

// CoreOptions carries the collaborators the host application owns.
type CoreOptions struct {
	// Email is optional; when nil the draft_email tool reports the
	// integration as unconfigured.
	Email collab.EmailCollaborator

	// CRM overrides the webhook client built from config. Mostly for
	// tests and hosts with their own CRM transport.
	CRM collab.CRMCollaborator

	// Logger defaults to a no-op logger.
	Logger *zap.Logger
}

// NewCore opens the local store and registers the full deal tool set.
func NewCore(cfg *config.Config, opts CoreOptions) (*Core, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	local, err := store.NewLocalStore(cfg.Storage.DatabasePath, log.Named("store"))
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	aggregator := citation.NewAggregator(local, log.Named("citations"))
	aggregator.SetThreshold(cfg.Citations.RelevanceThreshold)

	crm := opts.CRM
	if crm == nil && cfg.Integrations.CRM.Enabled {
		crm = collab.NewWebhookCRM(
			cfg.Integrations.CRM.BaseURL,
			cfg.Integrations.CRM.Token,
			cfg.GetCRMTimeout(),
			log.Named("crm"))
	}

	handlers := deals.New(local, aggregator, deals.Options{
		Email:         opts.Email,
		CRM:           crm,
		CollabTimeout: cfg.GetCRMTimeout(),
		PendingTTL:    cfg.GetPendingTTL(),
	}, log.Named("deals"))

	registry := tools.NewRegistry(log.Named("catalog"))
	if err := handlers.RegisterAll(registry); err != nil {
		local.Close()
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return &Core{
		cfg:        cfg,
		registry:   registry,
		dispatcher: dispatch.New(registry, log.Named("dispatch")),
		local:      local,
		log:        log,
	}, nil
}

// Close releases the local store.
func (c *Core) Close() error {
	return c.local.Close()
}

// Dispatch executes one tool call and returns its result envelope.
func (c *Core) Dispatch(ctx context.Context, name string, args map[string]any, turn *tools.TurnContext) *tools.Result {
	return c.dispatcher.Dispatch(ctx, name, args, turn)
}

// RunTurn executes a full model turn, strictly in order.
func (c *Core) RunTurn(ctx context.Context, calls []dispatch.Call, turn *tools.TurnContext) []*tools.Result {
	return c.dispatcher.RunTurn(ctx, calls, turn)
}

// Specs returns the advertised tool catalog for the LLM layer.
func (c *Core) Specs() []tools.Spec {
	return c.registry.Specs()
}

// Store exposes the local store so the host application can seed and
// query deals outside the tool path.
func (c *Core) Store() *store.LocalStore {
	return c.local
}

package deals

import (
	"context"
	"errors"
	"fmt"

	"dealdesk/internal/match"
	"dealdesk/internal/store"
	"dealdesk/internal/tools"
)

type getDealArgs struct {
	Deal string `json:"deal" jsonschema:"description=Deal name or id to look up"`
}

func (h *Handlers) getDealTool() *tools.Tool {
	return &tools.Tool{
		Name:        "get_deal",
		Description: "Look up a deal by name, company, contact, or id and return its details",
		Execute:     h.executeGetDeal,
		Schema:      tools.ReflectSchema[getDealArgs](),
	}
}

func (h *Handlers) executeGetDeal(ctx context.Context, args map[string]any, turn *tools.TurnContext) (*tools.Result, error) {
	in, err := tools.DecodeArgs[getDealArgs](args)
	if err != nil {
		return tools.Fail(err.Error()), nil
	}

	deal, matches, err := h.resolveDeal(ctx, in.Deal)
	if errors.Is(err, store.ErrNotFound) {
		res := tools.Failf("no deal matching %q", in.Deal)
		res.Message = fmt.Sprintf("I couldn't find a deal matching %q.", in.Deal)
		return res, nil
	}
	if err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("Found deal %q (stage: %s).", deal.Name, deal.Stage)
	if len(matches) > 0 {
		msg = fmt.Sprintf("Found deal %q (stage: %s, %d%% match).", deal.Name, deal.Stage, confidence(matches[0].Score))
	}
	return tools.Ok(deal, msg), nil
}

type searchDealsArgs struct {
	Query string `json:"query" jsonschema:"description=Free-text search over deal names and companies and contacts"`
}

// dealMatch is the search result row, confidence in percent.
type dealMatch struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Company    string `json:"company"`
	Stage      string `json:"stage"`
	Confidence int    `json:"confidence"`
}

func (h *Handlers) searchDealsTool() *tools.Tool {
	return &tools.Tool{
		Name:        "search_deals",
		Description: "Fuzzy-search deals and return ranked matches with confidence",
		Execute:     h.executeSearchDeals,
		Schema:      tools.ReflectSchema[searchDealsArgs](),
	}
}

func (h *Handlers) executeSearchDeals(ctx context.Context, args map[string]any, turn *tools.TurnContext) (*tools.Result, error) {
	in, err := tools.DecodeArgs[searchDealsArgs](args)
	if err != nil {
		return tools.Fail(err.Error()), nil
	}

	deals, err := h.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]store.Deal, len(deals))
	candidates := make([]match.Candidate, 0, len(deals))
	for _, d := range deals {
		byID[d.ID] = d
		candidates = append(candidates, match.Candidate{
			ID:     d.ID,
			Label:  d.Name,
			Fields: []string{d.Name, d.Company, d.Contact},
		})
	}

	matches := h.resolver.Resolve(in.Query, candidates)
	rows := make([]dealMatch, 0, len(matches))
	for _, m := range matches {
		d := byID[m.Candidate.ID]
		rows = append(rows, dealMatch{
			ID:         d.ID,
			Name:       d.Name,
			Company:    d.Company,
			Stage:      d.Stage,
			Confidence: confidence(m.Score),
		})
	}

	if len(rows) == 0 {
		return tools.Ok(rows, fmt.Sprintf("No deals match %q.", in.Query)), nil
	}
	return tools.Ok(rows, fmt.Sprintf("Found %d deal(s) matching %q.", len(rows), in.Query)), nil
}

type listDealsArgs struct {
	Stage string `json:"stage,omitempty" jsonschema:"description=Filter by pipeline stage,enum=lead,enum=qualified,enum=proposal,enum=negotiation,enum=closed_won,enum=closed_lost"`
}

func (h *Handlers) listDealsTool() *tools.Tool {
	return &tools.Tool{
		Name:        "list_deals",
		Description: "List deals, optionally filtered by pipeline stage",
		Execute:     h.executeListDeals,
		Schema:      tools.ReflectSchema[listDealsArgs](),
	}
}

func (h *Handlers) executeListDeals(ctx context.Context, args map[string]any, turn *tools.TurnContext) (*tools.Result, error) {
	in, err := tools.DecodeArgs[listDealsArgs](args)
	if err != nil {
		return tools.Fail(err.Error()), nil
	}
	if in.Stage != "" && !store.ValidStage(in.Stage) {
		return tools.Failf("invalid stage %q", in.Stage), nil
	}

	deals, err := h.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	if in.Stage != "" {
		filtered := deals[:0]
		for _, d := range deals {
			if d.Stage == in.Stage {
				filtered = append(filtered, d)
			}
		}
		deals = filtered
	}

	return tools.Ok(deals, fmt.Sprintf("Found %d deal(s).", len(deals))), nil
}

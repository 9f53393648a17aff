package deals

import (
	"context"
	"errors"
	"fmt"

	"dealdesk/internal/store"
	"dealdesk/internal/tools"
)

type createActivityArgs struct {
	DealID  string `json:"deal_id" jsonschema:"description=Id of the deal the activity belongs to"`
	Kind    string `json:"kind" jsonschema:"description=Activity type,enum=call,enum=meeting,enum=note,enum=email"`
	Summary string `json:"summary,omitempty" jsonschema:"description=Short description of what happened"`
}

func (h *Handlers) createActivityTool() *tools.Tool {
	return &tools.Tool{
		Name:        "create_activity",
		Description: "Log an activity on a deal and attach the conversation's supporting sources as citations",
		Mutating:    true,
		Execute:     h.executeCreateActivity,
		Schema:      tools.ReflectSchema[createActivityArgs](),
	}
}

// activityResult is the data payload for create_activity. SourcesAdded
// counts citations actually persisted, after filtering and dedup.
type activityResult struct {
	Activity     *store.Activity `json:"activity"`
	SourcesAdded int             `json:"sourcesAdded"`
}

func (h *Handlers) executeCreateActivity(ctx context.Context, args map[string]any, turn *tools.TurnContext) (*tools.Result, error) {
	in, err := tools.DecodeArgs[createActivityArgs](args)
	if err != nil {
		return tools.Fail(err.Error()), nil
	}

	activity, err := h.store.CreateActivity(ctx, in.DealID, store.Activity{
		Kind:    in.Kind,
		Summary: in.Summary,
	})
	if errors.Is(err, store.ErrNotFound) {
		res := tools.Failf("deal %s not found", in.DealID)
		res.Message = "I couldn't log that: the deal doesn't exist."
		return res, nil
	}
	if err != nil {
		return nil, err
	}

	// Citations ride along after the record exists. Attachment failures
	// are absorbed inside the aggregator; creation of the activity is
	// never rolled back over evidence bookkeeping.
	sourcesAdded := 0
	if turn != nil && len(turn.Sources) > 0 {
		sourcesAdded = h.citations.Attach(ctx, activity.ID, turn.Sources)
	}

	msg := fmt.Sprintf("Logged %s on the deal.", in.Kind)
	if sourcesAdded > 0 {
		msg = fmt.Sprintf("Logged %s on the deal. %d source(s) attached.", in.Kind, sourcesAdded)
	}

	res := tools.Ok(activityResult{Activity: activity, SourcesAdded: sourcesAdded}, msg)
	res.ActionTaken = "activity_created"
	return res, nil
}

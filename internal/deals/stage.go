package deals

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"dealdesk/internal/store"
	"dealdesk/internal/tools"
)

type updateStageArgs struct {
	DealID    string `json:"deal_id" jsonschema:"description=Id of the deal to update"`
	NewStage  string `json:"new_stage" jsonschema:"description=Target pipeline stage,enum=lead,enum=qualified,enum=proposal,enum=negotiation,enum=closed_won,enum=closed_lost"`
	Confirmed bool   `json:"confirmed,omitempty" jsonschema:"description=Set true to execute a previously prompted stage change"`
	IssuedAt  string `json:"issuedAt,omitempty" jsonschema:"description=Echo of the pendingAction issuedAt timestamp"`
}

func (h *Handlers) updateDealStageTool() *tools.Tool {
	return &tools.Tool{
		Name:        "update_deal_stage",
		Description: "Move a deal to a different pipeline stage. Requires explicit confirmation.",
		Mutating:    true,
		Execute:     h.executeUpdateDealStage,
		Schema:      tools.ReflectSchema[updateStageArgs](),
	}
}

// stagePreconditions validates the stage change. It runs identically on
// both handshake steps: the entity must still exist and the target
// stage must be one of the fixed pipeline stages.
func (h *Handlers) stagePreconditions(ctx context.Context, dealID, newStage string) (*store.Deal, *tools.Result) {
	if !store.ValidStage(newStage) {
		res := tools.Failf("invalid stage %q; valid stages: %s", newStage, strings.Join(store.Stages, ", "))
		res.Message = fmt.Sprintf("%q is not a pipeline stage I know.", newStage)
		return nil, res
	}

	deal, err := h.store.GetByID(ctx, dealID)
	if errors.Is(err, store.ErrNotFound) {
		res := tools.Failf("deal %s not found", dealID)
		res.Message = "That deal no longer exists."
		return nil, res
	}
	if err != nil {
		return nil, tools.Fail(err.Error())
	}
	return deal, nil
}

func (h *Handlers) executeUpdateDealStage(ctx context.Context, args map[string]any, turn *tools.TurnContext) (*tools.Result, error) {
	in, err := tools.DecodeArgs[updateStageArgs](args)
	if err != nil {
		return tools.Fail(err.Error()), nil
	}

	deal, failure := h.stagePreconditions(ctx, in.DealID, in.NewStage)
	if failure != nil {
		return failure, nil
	}

	if !h.gate.Confirmed(args) {
		// Step 1: no mutation, just the prompt plus the echoed params.
		msg := fmt.Sprintf("Move deal %q from stage %q to %q? Re-invoke update_deal_stage with confirmed=true to proceed.",
			deal.Name, deal.Stage, in.NewStage)
		return h.gate.Prompt("update_deal_stage", msg, map[string]any{
			"deal_id":   in.DealID,
			"new_stage": in.NewStage,
		}), nil
	}

	// Step 2: same preconditions already re-ran above; a failure there
	// is a plain error, never a second prompt.
	if err := h.gate.CheckFresh(args); err != nil {
		res := tools.Fail(err.Error())
		res.Message = "That confirmation has expired. Please request the stage change again."
		return res, nil
	}

	updated, err := h.store.UpdateStage(ctx, in.DealID, in.NewStage)
	if err != nil {
		return nil, err
	}

	h.log.Info("deal stage updated",
		zap.String("deal_id", updated.ID),
		zap.String("stage", updated.Stage))

	res := tools.Ok(updated, fmt.Sprintf("Deal %q moved to stage %q.", updated.Name, updated.Stage))
	res.ActionTaken = "stage_updated"
	return res, nil
}

package deals

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"dealdesk/internal/collab"
	"dealdesk/internal/store"
	"dealdesk/internal/tools"
)

type draftEmailArgs struct {
	DealID  string `json:"deal_id" jsonschema:"description=Id of the deal the email relates to"`
	To      string `json:"to" jsonschema:"description=Recipient address"`
	Subject string `json:"subject" jsonschema:"description=Email subject line"`
	Body    string `json:"body" jsonschema:"description=Email body text"`
}

func (h *Handlers) draftEmailTool() *tools.Tool {
	return &tools.Tool{
		Name:        "draft_email",
		Description: "Create an email draft for a deal in the user's mail client",
		Execute:     h.executeDraftEmail,
		Schema:      tools.ReflectSchema[draftEmailArgs](),
	}
}

func (h *Handlers) executeDraftEmail(ctx context.Context, args map[string]any, turn *tools.TurnContext) (*tools.Result, error) {
	in, err := tools.DecodeArgs[draftEmailArgs](args)
	if err != nil {
		return tools.Fail(err.Error()), nil
	}
	if h.email == nil {
		return tools.Fail("email integration is not configured"), nil
	}

	if _, err := h.store.GetByID(ctx, in.DealID); errors.Is(err, store.ErrNotFound) {
		return tools.Failf("deal %s not found", in.DealID), nil
	} else if err != nil {
		return nil, err
	}

	cctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	draftID, err := h.email.CreateDraft(cctx, in.DealID, collab.EmailDraft{
		To:      in.To,
		Subject: in.Subject,
		Body:    in.Body,
	})
	if err != nil {
		// Collaborator failures come back as ordinary failed results;
		// the message stays useful without exposing integration internals.
		res := tools.Failf("email draft failed: %v", err)
		res.Message = "I couldn't create the email draft. The mail integration reported an error."
		return res, nil
	}

	res := tools.Ok(map[string]any{"draftId": draftID},
		fmt.Sprintf("Draft to %s created.", in.To))
	res.ActionTaken = "email_drafted"
	return res, nil
}

type syncCRMArgs struct {
	DealID    string `json:"deal_id" jsonschema:"description=Id of the deal to push to the CRM"`
	Confirmed bool   `json:"confirmed,omitempty" jsonschema:"description=Set true to execute a previously prompted sync"`
	IssuedAt  string `json:"issuedAt,omitempty" jsonschema:"description=Echo of the pendingAction issuedAt timestamp"`
}

func (h *Handlers) syncDealToCRMTool() *tools.Tool {
	return &tools.Tool{
		Name:        "sync_deal_to_crm",
		Description: "Push a deal's current state to the external CRM. Requires explicit confirmation.",
		Mutating:    true,
		Execute:     h.executeSyncDealToCRM,
		Schema:      tools.ReflectSchema[syncCRMArgs](),
	}
}

func (h *Handlers) executeSyncDealToCRM(ctx context.Context, args map[string]any, turn *tools.TurnContext) (*tools.Result, error) {
	in, err := tools.DecodeArgs[syncCRMArgs](args)
	if err != nil {
		return tools.Fail(err.Error()), nil
	}
	if h.crm == nil {
		return tools.Fail("CRM integration is not configured"), nil
	}

	// Same precondition on both handshake steps: the deal must exist.
	deal, err := h.store.GetByID(ctx, in.DealID)
	if errors.Is(err, store.ErrNotFound) {
		res := tools.Failf("deal %s not found", in.DealID)
		res.Message = "That deal no longer exists."
		return res, nil
	}
	if err != nil {
		return nil, err
	}

	if !h.gate.Confirmed(args) {
		msg := fmt.Sprintf("Push deal %q (stage %q) to the CRM? Re-invoke sync_deal_to_crm with confirmed=true to proceed.",
			deal.Name, deal.Stage)
		return h.gate.Prompt("sync_deal_to_crm", msg, map[string]any{
			"deal_id": in.DealID,
		}), nil
	}

	if err := h.gate.CheckFresh(args); err != nil {
		res := tools.Fail(err.Error())
		res.Message = "That confirmation has expired. Please request the sync again."
		return res, nil
	}

	cctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	crmID, err := h.crm.PushDeal(cctx, *deal)
	if err != nil {
		res := tools.Failf("CRM sync failed: %v", err)
		res.Message = "The CRM rejected the sync. Nothing was pushed."
		return res, nil
	}

	h.log.Info("deal pushed to crm",
		zap.String("deal_id", deal.ID),
		zap.String("crm_id", crmID))

	res := tools.Ok(map[string]any{"crmId": crmID},
		fmt.Sprintf("Deal %q synced to the CRM.", deal.Name))
	res.ActionTaken = "crm_synced"
	return res, nil
}

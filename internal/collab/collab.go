// Package collab defines the external collaborators the dispatch core
// calls out to. Email and CRM own their authentication and retry
// policy; this core only sets a bounded timeout and surfaces failures
// as ordinary failed results.
package collab

import (
	"context"
	"time"

	"dealdesk/internal/store"
)

// Collaborator call timeouts stay inside the MinTimeout-MaxTimeout
// band no matter where they are configured.
const (
	MinTimeout     = 10 * time.Second
	DefaultTimeout = 15 * time.Second
	MaxTimeout     = 30 * time.Second
)

// ClampTimeout pulls d into the allowed band; non-positive values get
// the default.
func ClampTimeout(d time.Duration) time.Duration {
	switch {
	case d <= 0:
		return DefaultTimeout
	case d < MinTimeout:
		return MinTimeout
	case d > MaxTimeout:
		return MaxTimeout
	}
	return d
}

// EmailDraft is the payload handed to the email collaborator.
type EmailDraft struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// EmailCollaborator drafts emails in the user's mail client. The
// returned id identifies the created draft.
type EmailCollaborator interface {
	CreateDraft(ctx context.Context, dealID string, draft EmailDraft) (string, error)
}

// CRMCollaborator pushes deal state to the external CRM. The returned
// id is the CRM-side record reference.
type CRMCollaborator interface {
	PushDeal(ctx context.Context, deal store.Deal) (string, error)
}

// Package confirm implements the two-step handshake in front of every
// mutating tool.
//
// Step 1 (no confirmed flag) never mutates: it returns a prompt and a
// pendingAction payload that lives only in the conversation transcript.
// Step 2 is the identical call plus confirmed=true; the handler
// re-validates the same preconditions from scratch and only then
// mutates. No pending state is kept server-side, so restarts and
// concurrent conversations need no session table; the cost is that the
// caller must echo the payload back verbatim.
package confirm

import (
	"errors"
	"fmt"
	"time"

	"dealdesk/internal/tools"
)

// Payload field names inside the confirmation data object.
const (
	PendingActionKey = "pendingAction"
	IssuedAtKey      = "issuedAt"
	ConfirmedKey     = "confirmed"
)

// DefaultPendingTTL bounds how long a pendingAction stays honorable.
// A transcript can be replayed long after the prompt was issued; past
// the TTL a confirmed call is rejected rather than trusted.
const DefaultPendingTTL = 10 * time.Minute

// ErrStalePending means the echoed pendingAction is older than the TTL.
var ErrStalePending = errors.New("pending action expired")

// Gate issues confirmation prompts and checks echoed pending actions.
type Gate struct {
	ttl time.Duration
	now func() time.Time
}

// NewGate returns a gate with the given pending-action TTL. A zero ttl
// falls back to DefaultPendingTTL.
func NewGate(ttl time.Duration) *Gate {
	if ttl <= 0 {
		ttl = DefaultPendingTTL
	}
	return &Gate{ttl: ttl, now: time.Now}
}

// Confirmed reports whether the caller sent confirmed=true. Anything
// other than a boolean true is treated as unconfirmed.
func (g *Gate) Confirmed(args map[string]any) bool {
	v, ok := args[ConfirmedKey].(bool)
	return ok && v
}

// Prompt builds the step-1 result: success=false,
// requiresConfirmation=true, with the original parameters echoed into
// the data payload alongside the pendingAction tag and issue timestamp.
func (g *Gate) Prompt(action, message string, params map[string]any) *tools.Result {
	data := make(map[string]any, len(params)+2)
	for k, v := range params {
		data[k] = v
	}
	data[PendingActionKey] = action
	data[IssuedAtKey] = g.now().UTC().Format(time.RFC3339)

	return tools.Confirmation(message, data)
}

// CheckFresh validates the issuedAt echo on a confirmed call. Absence
// is tolerated: transcripts created before timestamps were added still
// confirm. A present but stale or unparseable timestamp is rejected.
func (g *Gate) CheckFresh(args map[string]any) error {
	raw, ok := args[IssuedAtKey]
	if !ok {
		return nil
	}

	s, ok := raw.(string)
	if !ok {
		return fmt.Errorf("%w: malformed issuedAt", ErrStalePending)
	}
	issued, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("%w: malformed issuedAt", ErrStalePending)
	}

	if g.now().Sub(issued) > g.ttl {
		return fmt.Errorf("%w: issued at %s", ErrStalePending, s)
	}
	return nil
}

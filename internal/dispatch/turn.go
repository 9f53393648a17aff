package dispatch

import (
	"context"

	"dealdesk/internal/tools"
)

// Call is one tool invocation as received from the model layer.
type Call struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// RunTurn executes the calls of one model turn strictly sequentially,
// in arrival order. A later call may depend on the effect of an earlier
// one, so calls are never reordered or interleaved. Results come back
// index-aligned with calls.
//
// If the context is cancelled mid-turn, remaining calls are not
// started; they fail with the context error rather than running after
// the turn was abandoned.
func (d *Dispatcher) RunTurn(ctx context.Context, calls []Call, turn *tools.TurnContext) []*tools.Result {
	results := make([]*tools.Result, 0, len(calls))
	for _, call := range calls {
		if err := ctx.Err(); err != nil {
			results = append(results, tools.Failf("call %s not executed: %v", call.Name, err))
			continue
		}
		results = append(results, d.Dispatch(ctx, call.Name, call.Arguments, turn))
	}
	return results
}

// Package dispatch routes model-issued tool calls to their handlers
// and guarantees that every outcome, including a panicking handler,
// comes back as a well-formed result envelope. Nothing escapes this
// boundary as a fault.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"dealdesk/internal/tools"
)

// Dispatcher routes calls through the catalog.
type Dispatcher struct {
	registry *tools.Registry
	log      *zap.Logger
}

// New builds a dispatcher over the given catalog.
func New(registry *tools.Registry, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{registry: registry, log: log}
}

// Dispatch executes one named call against the catalog. The returned
// result always satisfies the envelope invariants: an error string
// implies failure, and a confirmation prompt is never a success.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, args map[string]any, turn *tools.TurnContext) (result *tools.Result) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			d.log.Error("tool handler panicked",
				zap.String("tool", name),
				zap.Any("panic", r))
			result = tools.Failf("internal error in %s: %v", name, r)
		}
		normalize(result)
		d.log.Debug("dispatched tool call",
			zap.String("tool", name),
			zap.Bool("success", result.Success),
			zap.Bool("requires_confirmation", result.RequiresConfirmation),
			zap.Duration("elapsed", time.Since(start)))
	}()

	tool := d.registry.Get(name)
	if tool == nil {
		return tools.Fail(fmt.Sprintf("Unknown tool: %s", name))
	}

	if args == nil {
		args = map[string]any{}
	}
	if err := tools.ValidateArgs(tool, args); err != nil {
		return tools.Fail(err.Error())
	}

	res, err := tool.Execute(ctx, args, turn)
	if err != nil {
		return tools.Fail(err.Error())
	}
	if res == nil {
		return tools.Failf("tool %s returned no result", name)
	}
	return res
}

// normalize enforces the envelope invariants on the way out, whatever
// a handler produced.
func normalize(res *tools.Result) {
	if res == nil {
		return
	}
	if res.Error != "" {
		res.Success = false
	}
	if res.RequiresConfirmation {
		res.Success = false
	}
}

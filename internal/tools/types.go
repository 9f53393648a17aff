// Package tools is the declarative catalog of everything the model is
// allowed to call: tool names, parameter contracts, and the result
// envelope handlers produce.
//
// The catalog is read-mostly. The LLM integration layer reads Specs()
// to advertise tools; the dispatcher reads individual tools to route
// calls. Neither side makes decisions here.
package tools

import (
	"context"

	"dealdesk/internal/citation"
)

// Property describes a single parameter in a tool's contract.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Enum        []any  `json:"enum,omitempty"`
	Default     any    `json:"default,omitempty"`
}

// Schema is the parameter contract for one tool.
type Schema struct {
	Required   []string            `json:"required"`
	Properties map[string]Property `json:"properties"`
}

// TurnContext is the read-only conversation state a handler may consult.
// Sources accumulates the evidence references surfaced so far in the
// conversation; handlers never mutate it.
type TurnContext struct {
	ConversationID string
	Sources        []citation.SourceRef
}

// ExecuteFunc runs a tool. A returned error is recovered into a failed
// result at the dispatch boundary; handlers may also return a failed
// *Result directly when they have a display-ready message for the user.
type ExecuteFunc func(ctx context.Context, args map[string]any, turn *TurnContext) (*Result, error)

// Tool couples a name and parameter contract with its handler.
type Tool struct {
	// Name is the unique identifier the model calls the tool by.
	Name string

	// Description is surfaced to the model when advertising tools.
	Description string

	// Mutating marks tools that change domain state. Mutating tools run
	// behind the confirmation gate inside their handler.
	Mutating bool

	// Execute runs the tool.
	Execute ExecuteFunc

	// Schema is the parameter contract, usually reflected from the
	// handler's typed argument struct.
	Schema Schema
}

// Validate checks the tool definition before registration.
func (t *Tool) Validate() error {
	if t.Name == "" {
		return ErrToolNameEmpty
	}
	if t.Execute == nil {
		return ErrToolExecuteNil
	}
	return nil
}

// Spec is the advertised form of a tool: what the LLM layer needs and
// nothing else.
type Spec struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  Schema `json:"parameters"`
}

// Package model defines the minimal completion interface the session
// orchestrator drives, unified across providers so downstream logic does not
// need per-vendor branching. One Complete call equals one turn.
package model

import (
	"context"
	"fmt"
)

// Stop conditions the orchestrator understands. Any other value reported by a
// provider is passed through verbatim and treated as a protocol error upstream.
const (
	StopEndTurn = "end_turn"
	StopToolUse = "tool_use"
)

// ToolDefinition declaratively exposes a callable capability to the model.
// InputSchema is a minimal JSON-Schema object (properties, required, enums).
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

// Block is one ordered content block of a model response or message.
// Exactly one of Text or ToolUse is meaningful, discriminated by Type.
type Block struct {
	Type    string   `json:"type"` // "text", "tool_use" or "tool_result"
	Text    string   `json:"text,omitempty"`
	ToolUse *ToolUse `json:"tool_use,omitempty"`
	// Tool result fields, set when Type == "tool_result".
	ToolUseID string `json:"tool_use_id,omitempty"`
}

// ToolUse is a tool invocation requested by the model. ID correlates the
// request with its result block.
type ToolUse struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Inputs map[string]any `json:"inputs"`
}

// TextBlock builds a text content block.
func TextBlock(text string) Block {
	return Block{Type: "text", Text: text}
}

// ToolResultBlock builds a result block correlated to a tool_use id.
func ToolResultBlock(toolUseID, text string) Block {
	return Block{Type: "tool_result", ToolUseID: toolUseID, Text: text}
}

// Message is one entry of the accumulated conversation history.
type Message struct {
	Role   string  `json:"role"` // "user" or "assistant"
	Blocks []Block `json:"blocks"`
}

// Request captures the input for one completion turn.
type Request struct {
	System   string           `json:"system"`
	Messages []Message        `json:"messages"`
	Tools    []ToolDefinition `json:"tools,omitempty"`
}

// Response is the completed model output for one turn.
type Response struct {
	Blocks     []Block `json:"blocks"`
	StopReason string  `json:"stop_reason"`
}

// ToolUses returns the tool_use blocks of the response in order.
func (r *Response) ToolUses() []*ToolUse {
	var uses []*ToolUse
	for _, b := range r.Blocks {
		if b.Type == "tool_use" && b.ToolUse != nil {
			uses = append(uses, b.ToolUse)
		}
	}
	return uses
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"`
}

// Model is the interface the orchestrator blocks on once per turn.
type Model interface {
	Complete(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// Mock is a scripted in-memory Model useful for tests. Each Complete call
// pops the next queued response; once the script is exhausted it returns an
// end_turn response so loops always terminate.
type Mock struct {
	info      Info
	script    []*Response
	Requests  []Request // every request received, for assertions
	completes int
}

// NewMock constructs a Mock that will replay the given responses in order.
func NewMock(script ...*Response) *Mock {
	return &Mock{
		info:   Info{Name: "mock", Provider: "mock"},
		script: script,
	}
}

// Complete implements Model.
func (m *Mock) Complete(_ context.Context, req Request) (*Response, error) {
	m.Requests = append(m.Requests, req)
	if m.completes >= len(m.script) {
		return &Response{
			Blocks:     []Block{TextBlock("done")},
			StopReason: StopEndTurn,
		}, nil
	}
	resp := m.script[m.completes]
	m.completes++
	if resp == nil {
		return nil, fmt.Errorf("mock model: scripted transport failure")
	}
	return resp, nil
}

// Info implements Model.
func (m *Mock) Info() Info { return m.info }

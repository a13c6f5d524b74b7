// Package toolbox defines the tool plugin contract and a registry for
// dispatching calls to named tools. Hosting layers (the MCP server, tests)
// use a ToolBox to look up and invoke tools without knowing their domains.
package toolbox

import (
	"context"
	"encoding/json"
	"fmt"
)

// Call identifies one tool invocation.
type Call struct {
	ID        string
	Name      string
	Arguments string
}

// Result is the outcome of a tool invocation. Content is the tool's JSON
// string output. IsError is set only for dispatch failures (unknown tool,
// handler error); domain failures are encoded inside Content by the tool.
type Result struct {
	CallID  string
	Content string
	IsError bool
}

// ToolBox holds a collection of tools keyed by name.
type ToolBox struct {
	tools map[string]Tool
}

// New creates an empty ToolBox.
func New() *ToolBox {
	return &ToolBox{
		tools: make(map[string]Tool),
	}
}

// Register adds one or more tools. A tool with an already-registered name
// replaces the previous one.
func (tb *ToolBox) Register(tools ...Tool) {
	for _, t := range tools {
		tb.tools[t.Name] = t
	}
}

// Get returns a tool by name and whether it was found.
func (tb *ToolBox) Get(name string) (Tool, bool) {
	t, ok := tb.tools[name]
	return t, ok
}

// Merge registers all tools from another ToolBox into this one.
func (tb *ToolBox) Merge(other *ToolBox) {
	for _, t := range other.tools {
		tb.tools[t.Name] = t
	}
}

// Tools returns all registered tools as a slice.
func (tb *ToolBox) Tools() []Tool {
	result := make([]Tool, 0, len(tb.tools))
	for _, t := range tb.tools {
		result = append(result, t)
	}

	return result
}

// Filter returns a ToolBox containing only the named tools. Unknown names are
// skipped. A nil or empty name list returns the receiver unchanged.
func (tb *ToolBox) Filter(names []string) *ToolBox {
	if len(names) == 0 {
		return tb
	}

	filtered := New()
	for _, name := range names {
		if t, ok := tb.tools[name]; ok {
			filtered.Register(t)
		}
	}

	return filtered
}

// Dispatch executes a call and returns its Result. An unknown tool name or a
// handler error yields a Result with IsError set.
func (tb *ToolBox) Dispatch(ctx context.Context, c Call) Result {
	t, ok := tb.tools[c.Name]
	if !ok {
		return Result{
			CallID:  c.ID,
			Content: fmt.Sprintf("tool not found: %s", c.Name),
			IsError: true,
		}
	}

	content, err := t.Handler(ctx, json.RawMessage(c.Arguments))
	if err != nil {
		return Result{
			CallID:  c.ID,
			Content: err.Error(),
			IsError: true,
		}
	}

	return Result{
		CallID:  c.ID,
		Content: content,
	}
}

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/careerverse/backend/models"
)

// Tool is an operation exposed to external agents
type Tool interface {
	// Name returns the tool name
	Name() string

	// Description returns the tool description for the agent
	Description() string

	// InputSchema returns the JSON schema for the tool input
	InputSchema() map[string]interface{}

	// Execute runs the tool with the given input
	Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error)
}

// Restricted is implemented by tools that only some roles may use. Tools
// without it are open to every signed-in role.
type Restricted interface {
	Roles() []models.Role
}

// Allowed reports whether role may see and call tool
func Allowed(tool Tool, role models.Role) bool {
	restricted, ok := tool.(Restricted)
	if !ok {
		return true
	}
	for _, r := range restricted.Roles() {
		if r == role {
			return true
		}
	}
	return false
}

// ToolRegistry holds all available tools
type ToolRegistry struct {
	tools map[string]Tool
}

// NewToolRegistry creates a new tool registry
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{
		tools: make(map[string]Tool),
	}
}

// Register adds a tool to the registry. A later tool with the same name replaces the earlier one.
func (r *ToolRegistry) Register(tool Tool) {
	r.tools[tool.Name()] = tool
}

// Get retrieves a tool by name if role may use it
func (r *ToolRegistry) Get(name string, role models.Role) (Tool, bool) {
	tool, ok := r.tools[name]
	if !ok || !Allowed(tool, role) {
		return nil, false
	}
	return tool, true
}

// List returns the tools role may use, sorted by name
func (r *ToolRegistry) List(role models.Role) []Tool {
	tools := make([]Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		if Allowed(tool, role) {
			tools = append(tools, tool)
		}
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name() < tools[j].Name() })
	return tools
}

// Definition describes a tool to a client
type Definition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// Definitions returns the definitions of the tools role may use
func (r *ToolRegistry) Definitions(role models.Role) []Definition {
	tools := r.List(role)
	definitions := make([]Definition, 0, len(tools))
	for _, tool := range tools {
		definitions = append(definitions, Definition{
			Name:        tool.Name(),
			Description: tool.Description(),
			InputSchema: tool.InputSchema(),
		})
	}
	return definitions
}

// ToolResult represents the result of a tool execution
type ToolResult struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// NewSuccessResult creates a successful tool result
func NewSuccessResult(data interface{}) (json.RawMessage, error) {
	result := ToolResult{Success: true}
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	result.Data = dataBytes
	return json.Marshal(result)
}

// NewErrorResult creates an error tool result
func NewErrorResult(errMsg string) (json.RawMessage, error) {
	result := ToolResult{
		Success: false,
		Error:   errMsg,
	}
	return json.Marshal(result)
}

// decodeInput unmarshals tool input; empty input leaves v untouched
func decodeInput(input json.RawMessage, v interface{}) error {
	if len(input) == 0 || string(input) == "null" {
		return nil
	}
	if err := json.Unmarshal(input, v); err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}
	return nil
}

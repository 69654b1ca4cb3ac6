package agent

import "context"

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one entry of the conversation sent to the model.
type Message struct {
	Role       Role
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
	Name       string
}

type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// ToolSpec describes a callable tool with a JSON schema for its arguments.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

// Reply is either final text or a set of tool invocations.
type Reply struct {
	Content   string
	ToolCalls []ToolCall
}

// Model is a chat completion backend with tool calling.
type Model interface {
	Complete(ctx context.Context, messages []Message, tools []ToolSpec) (*Reply, error)
}

package events

import "encoding/json"

const (
	ToolTypeFunction = "function"
	ToolTypeMCP      = "mcp"
)

// MCPToolConfig describes a remote MCP server the model may call into.
// Exactly one of ServerURL or ConnectorID locates the server.
type MCPToolConfig struct {
	ServerLabel        string            `json:"server_label,omitempty"`
	ServerURL          string            `json:"server_url,omitempty"`
	ServerDescription  string            `json:"server_description,omitempty"`
	ConnectorID        string            `json:"connector_id,omitempty"`
	AuthorizationToken string            `json:"authorization,omitempty"`
	Headers            map[string]string `json:"headers,omitempty"`
	AllowedTools       *AllowedTools     `json:"allowed_tools,omitempty"`
	RequireApproval    *RequireApproval  `json:"require_approval,omitempty"`
}

func (c *MCPToolConfig) Validate() error {
	if c.ServerLabel == "" {
		return validationErrorf("mcp tool: server_label is required")
	}
	if c.ServerURL == "" && c.ConnectorID == "" {
		return validationErrorf("mcp tool %q: one of server_url or connector_id is required", c.ServerLabel)
	}
	return nil
}

// AllowedTools is either a plain list of tool names or a filter object.
type AllowedTools struct {
	Names  []string
	Filter *MCPToolFilter
}

type MCPToolFilter struct {
	ToolNames []string `json:"tool_names,omitempty"`
	ReadOnly  bool     `json:"read_only,omitempty"`
}

func (a AllowedTools) MarshalJSON() ([]byte, error) {
	if a.Filter != nil {
		return json.Marshal(a.Filter)
	}
	return json.Marshal(a.Names)
}

func (a *AllowedTools) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err == nil {
		*a = AllowedTools{Names: names}
		return nil
	}
	var f MCPToolFilter
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*a = AllowedTools{Filter: &f}
	return nil
}

// RequireApproval is either a blanket policy keyword ("always", "never") or a
// per-tool split.
type RequireApproval struct {
	Policy string
	Split  *ApprovalSplit
}

type ApprovalSplit struct {
	Always *MCPToolFilter `json:"always,omitempty"`
	Never  *MCPToolFilter `json:"never,omitempty"`
}

func (r RequireApproval) MarshalJSON() ([]byte, error) {
	if r.Split != nil {
		return json.Marshal(r.Split)
	}
	return json.Marshal(r.Policy)
}

func (r *RequireApproval) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*r = RequireApproval{Policy: s}
		return nil
	}
	var split ApprovalSplit
	if err := json.Unmarshal(data, &split); err != nil {
		return err
	}
	*r = RequireApproval{Split: &split}
	return nil
}

// Tool is a single entry of the session tool list: a function tool with an
// inline schema, or an MCP server descriptor.
type Tool struct {
	Type        string         `json:"type"`
	Name        string         `json:"name,omitempty"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
	MCPToolConfig
}

func FunctionTool(name, description string, parameters map[string]any) Tool {
	return Tool{
		Type:        ToolTypeFunction,
		Name:        name,
		Description: description,
		Parameters:  parameters,
	}
}

func MCPTool(cfg MCPToolConfig) Tool {
	return Tool{Type: ToolTypeMCP, MCPToolConfig: cfg}
}

func (t *Tool) Validate() error {
	switch t.Type {
	case ToolTypeFunction:
		if t.Name == "" {
			return validationErrorf("function tool: name is required")
		}
		return nil
	case ToolTypeMCP:
		return t.MCPToolConfig.Validate()
	default:
		return nil
	}
}

// ToolChoice is either a mode keyword ("auto", "none", "required") or a
// reference to one specific function or MCP tool.
type ToolChoice struct {
	Mode     string
	Function *FunctionChoice
	MCP      *MCPChoice
}

type FunctionChoice struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type MCPChoice struct {
	Type        string `json:"type"`
	ServerLabel string `json:"server_label"`
	Name        string `json:"name,omitempty"`
}

func ToolChoiceAuto() *ToolChoice     { return &ToolChoice{Mode: "auto"} }
func ToolChoiceNone() *ToolChoice     { return &ToolChoice{Mode: "none"} }
func ToolChoiceRequired() *ToolChoice { return &ToolChoice{Mode: "required"} }

func ToolChoiceFunction(name string) *ToolChoice {
	return &ToolChoice{Function: &FunctionChoice{Type: ToolTypeFunction, Name: name}}
}

func (c ToolChoice) MarshalJSON() ([]byte, error) {
	switch {
	case c.Function != nil:
		return json.Marshal(c.Function)
	case c.MCP != nil:
		return json.Marshal(c.MCP)
	default:
		return json.Marshal(c.Mode)
	}
}

func (c *ToolChoice) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = ToolChoice{Mode: s}
		return nil
	}
	switch peekType(data) {
	case ToolTypeMCP:
		var m MCPChoice
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		*c = ToolChoice{MCP: &m}
	default:
		var f FunctionChoice
		if err := json.Unmarshal(data, &f); err != nil {
			return err
		}
		*c = ToolChoice{Function: &f}
	}
	return nil
}

// MCPToolInfo is one tool reported by an MCP server in an mcp_list_tools item.
type MCPToolInfo struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"input_schema,omitempty"`
	Annotations map[string]any `json:"annotations,omitempty"`
}

// MCPError is the failure detail attached to a failed mcp_call item.
type MCPError struct {
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

func (e *MCPError) Error() string {
	if e.Code != "" {
		return "mcp: " + e.Code + ": " + e.Message
	}
	return "mcp: " + e.Message
}

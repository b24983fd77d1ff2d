package events

import "encoding/json"

const (
	ItemStatusInProgress = "in_progress"
	ItemStatusCompleted  = "completed"
	ItemStatusIncomplete = "incomplete"
	ItemStatusFailed     = "failed"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ItemVariant is implemented by every known conversation item type.
type ItemVariant interface {
	itemType() string
}

// Item is one conversation item. Known discriminators decode to a typed
// variant; anything else is kept as raw JSON and re-serialized verbatim.
type Item struct {
	variant ItemVariant
	raw     json.RawMessage
}

func NewItem(v ItemVariant) Item { return Item{variant: v} }

// Variant returns the typed item, or nil when the item is unrecognized.
func (i *Item) Variant() ItemVariant { return i.variant }

// Raw returns the original JSON for an unrecognized item.
func (i *Item) Raw() json.RawMessage { return i.raw }

func (i *Item) Type() string {
	if i.variant != nil {
		return i.variant.itemType()
	}
	return peekType(i.raw)
}

// ID returns the item id for any known variant, or "" for unrecognized items.
func (i *Item) ID() string {
	switch v := i.variant.(type) {
	case *MessageItem:
		return v.ID
	case *FunctionCallItem:
		return v.ID
	case *FunctionCallOutputItem:
		return v.ID
	case *MCPCallItem:
		return v.ID
	case *MCPListToolsItem:
		return v.ID
	case *MCPApprovalRequestItem:
		return v.ID
	case *MCPApprovalResponseItem:
		return v.ID
	}
	return ""
}

func (i Item) MarshalJSON() ([]byte, error) {
	if i.variant != nil {
		return marshalTagged(i.variant.itemType(), i.variant)
	}
	if i.raw == nil {
		return []byte("null"), nil
	}
	return i.raw, nil
}

func (i *Item) UnmarshalJSON(data []byte) error {
	decode, ok := itemDecoders[peekType(data)]
	if !ok {
		i.variant = nil
		i.raw = append(json.RawMessage(nil), data...)
		return nil
	}
	v, err := decode(data)
	if err != nil {
		i.variant = nil
		i.raw = append(json.RawMessage(nil), data...)
		return nil
	}
	i.variant = v
	i.raw = nil
	return nil
}

var itemDecoders = map[string]func(json.RawMessage) (ItemVariant, error){
	"message":               decodeItem[MessageItem],
	"function_call":         decodeItem[FunctionCallItem],
	"function_call_output":  decodeItem[FunctionCallOutputItem],
	"mcp_call":              decodeItem[MCPCallItem],
	"mcp_list_tools":        decodeItem[MCPListToolsItem],
	"mcp_approval_request":  decodeItem[MCPApprovalRequestItem],
	"mcp_approval_response": decodeItem[MCPApprovalResponseItem],
}

func decodeItem[T any, PT interface {
	*T
	ItemVariant
}](data json.RawMessage) (ItemVariant, error) {
	v := PT(new(T))
	if err := json.Unmarshal(data, v); err != nil {
		return nil, err
	}
	return v, nil
}

type MessageItem struct {
	ID      string        `json:"id,omitempty"`
	Object  string        `json:"object,omitempty"`
	Status  string        `json:"status,omitempty"`
	Role    string        `json:"role"`
	Content []ContentPart `json:"content"`
}

func (*MessageItem) itemType() string { return "message" }

// Text concatenates the textual payload of all content parts.
func (m *MessageItem) Text() string {
	var s string
	for i := range m.Content {
		s += m.Content[i].Text()
	}
	return s
}

type FunctionCallItem struct {
	ID        string `json:"id,omitempty"`
	Object    string `json:"object,omitempty"`
	Status    string `json:"status,omitempty"`
	Name      string `json:"name"`
	CallID    string `json:"call_id"`
	Arguments string `json:"arguments"`
}

func (*FunctionCallItem) itemType() string { return "function_call" }

type FunctionCallOutputItem struct {
	ID     string `json:"id,omitempty"`
	Object string `json:"object,omitempty"`
	Status string `json:"status,omitempty"`
	CallID string `json:"call_id"`
	Output string `json:"output"`
}

func (*FunctionCallOutputItem) itemType() string { return "function_call_output" }

type MCPCallItem struct {
	ID                string    `json:"id,omitempty"`
	Object            string    `json:"object,omitempty"`
	ServerLabel       string    `json:"server_label"`
	Name              string    `json:"name"`
	Arguments         string    `json:"arguments"`
	Output            string    `json:"output,omitempty"`
	ApprovalRequestID string    `json:"approval_request_id,omitempty"`
	Error             *MCPError `json:"error,omitempty"`
}

func (*MCPCallItem) itemType() string { return "mcp_call" }

type MCPListToolsItem struct {
	ID          string        `json:"id,omitempty"`
	Object      string        `json:"object,omitempty"`
	ServerLabel string        `json:"server_label"`
	Tools       []MCPToolInfo `json:"tools,omitempty"`
}

func (*MCPListToolsItem) itemType() string { return "mcp_list_tools" }

type MCPApprovalRequestItem struct {
	ID          string `json:"id,omitempty"`
	Object      string `json:"object,omitempty"`
	ServerLabel string `json:"server_label"`
	Name        string `json:"name"`
	Arguments   string `json:"arguments"`
}

func (*MCPApprovalRequestItem) itemType() string { return "mcp_approval_request" }

type MCPApprovalResponseItem struct {
	ID                string `json:"id,omitempty"`
	Object            string `json:"object,omitempty"`
	ApprovalRequestID string `json:"approval_request_id"`
	Approve           bool   `json:"approve"`
	Reason            string `json:"reason,omitempty"`
}

func (*MCPApprovalResponseItem) itemType() string { return "mcp_approval_response" }

func UserMessage(parts ...ContentPart) Item {
	return NewItem(&MessageItem{Role: RoleUser, Content: parts})
}

func UserText(text string) Item {
	return UserMessage(InputText(text))
}

func AssistantMessage(parts ...ContentPart) Item {
	return NewItem(&MessageItem{Role: RoleAssistant, Content: parts})
}

func SystemMessage(text string) Item {
	return NewItem(&MessageItem{Role: RoleSystem, Content: []ContentPart{InputText(text)}})
}

func FunctionCallOutput(callID, output string) Item {
	return NewItem(&FunctionCallOutputItem{CallID: callID, Output: output})
}

func MCPApprovalResponse(requestID string, approve bool, reason string) Item {
	return NewItem(&MCPApprovalResponseItem{
		ApprovalRequestID: requestID,
		Approve:           approve,
		Reason:            reason,
	})
}

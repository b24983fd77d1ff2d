package events

const (
	ResponseStatusInProgress = "in_progress"
	ResponseStatusCompleted  = "completed"
	ResponseStatusCancelled  = "cancelled"
	ResponseStatusIncomplete = "incomplete"
	ResponseStatusFailed     = "failed"
)

// Response is the server-side response object carried by response.created and
// response.done.
type Response struct {
	ID                string          `json:"id,omitempty"`
	Object            string          `json:"object,omitempty"`
	Status            string          `json:"status,omitempty"`
	StatusDetails     *StatusDetails  `json:"status_details,omitempty"`
	Output            []Item          `json:"output,omitempty"`
	OutputModalities  []Modality      `json:"output_modalities,omitempty"`
	ConversationID    string          `json:"conversation_id,omitempty"`
	MaxOutputTokens   *MaxTokens      `json:"max_output_tokens,omitempty"`
	Usage             *Usage          `json:"usage,omitempty"`
	Metadata          map[string]any  `json:"metadata,omitempty"`
	Audio             *AudioConfig    `json:"audio,omitempty"`
	Voice             Voice           `json:"voice,omitempty"`
	Temperature       float64         `json:"temperature,omitempty"`
}

type StatusDetails struct {
	Type   string       `json:"type,omitempty"`
	Reason string       `json:"reason,omitempty"`
	Error  *ServerError `json:"error,omitempty"`
}

// Text concatenates the text of all message items in the response output.
func (r *Response) Text() string {
	var s string
	for i := range r.Output {
		if m, ok := r.Output[i].Variant().(*MessageItem); ok {
			s += m.Text()
		}
	}
	return s
}

// FunctionCalls returns the completed function_call items of the response.
func (r *Response) FunctionCalls() []*FunctionCallItem {
	var calls []*FunctionCallItem
	for i := range r.Output {
		if fc, ok := r.Output[i].Variant().(*FunctionCallItem); ok {
			calls = append(calls, fc)
		}
	}
	return calls
}

// ResponseConfig is the per-response configuration of response.create.
type ResponseConfig struct {
	Conversation     string         `json:"conversation,omitempty"`
	Input            []Item         `json:"input,omitempty"`
	Instructions     string         `json:"instructions,omitempty"`
	OutputModalities []Modality     `json:"output_modalities,omitempty"`
	Modalities       []Modality     `json:"modalities,omitempty"`
	Audio            *AudioConfig   `json:"audio,omitempty"`
	Voice            Voice          `json:"voice,omitempty"`
	Temperature      float64        `json:"temperature,omitempty"`
	MaxOutputTokens  *MaxTokens     `json:"max_output_tokens,omitempty"`
	Tools            []Tool         `json:"tools,omitempty"`
	ToolChoice       *ToolChoice    `json:"tool_choice,omitempty"`
	Metadata         map[string]any `json:"metadata,omitempty"`
}

type Usage struct {
	TotalTokens        int                 `json:"total_tokens,omitempty"`
	InputTokens        int                 `json:"input_tokens,omitempty"`
	OutputTokens       int                 `json:"output_tokens,omitempty"`
	InputTokenDetails  *InputTokenDetails  `json:"input_token_details,omitempty"`
	OutputTokenDetails *OutputTokenDetails `json:"output_token_details,omitempty"`
}

type InputTokenDetails struct {
	TextTokens          int                 `json:"text_tokens,omitempty"`
	AudioTokens         int                 `json:"audio_tokens,omitempty"`
	ImageTokens         int                 `json:"image_tokens,omitempty"`
	CachedTokens        int                 `json:"cached_tokens,omitempty"`
	CachedTokensDetails *CachedTokenDetails `json:"cached_tokens_details,omitempty"`
}

type CachedTokenDetails struct {
	TextTokens  int `json:"text_tokens,omitempty"`
	AudioTokens int `json:"audio_tokens,omitempty"`
	ImageTokens int `json:"image_tokens,omitempty"`
}

type OutputTokenDetails struct {
	TextTokens  int `json:"text_tokens,omitempty"`
	AudioTokens int `json:"audio_tokens,omitempty"`
}

type RateLimit struct {
	Name         string  `json:"name"`
	Limit        int     `json:"limit"`
	Remaining    int     `json:"remaining"`
	ResetSeconds float64 `json:"reset_seconds"`
}

package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseServerEvent_TextDelta(t *testing.T) {
	raw := `{"type":"response.output_text.delta","event_id":"ev_1","response_id":"resp_1","item_id":"item_1","output_index":0,"content_index":0,"delta":"Hel"}`

	ev := ParseServerEvent([]byte(raw))
	delta, ok := ev.(*TextDeltaEvent)
	require.True(t, ok)
	require.Equal(t, "resp_1", delta.ResponseID)
	require.Equal(t, "item_1", delta.ItemID)
	require.Equal(t, "Hel", delta.Delta)
}

func TestParseServerEvent_ResponseDoneWithOutput(t *testing.T) {
	raw := `{
		"type": "response.done",
		"response": {
			"id": "resp_1",
			"status": "completed",
			"output": [
				{
					"type": "message",
					"id": "item_1",
					"role": "assistant",
					"content": [{"type": "output_text", "text": "hello there"}]
				},
				{
					"type": "function_call",
					"id": "item_2",
					"call_id": "call_1",
					"name": "get_weather",
					"arguments": "{\"city\":\"Berlin\"}"
				}
			]
		}
	}`

	ev := ParseServerEvent([]byte(raw))
	done, ok := ev.(*ResponseDoneEvent)
	require.True(t, ok)
	require.Equal(t, ResponseStatusCompleted, done.Response.Status)
	require.Equal(t, "hello there", done.Response.Text())

	calls := done.Response.FunctionCalls()
	require.Len(t, calls, 1)
	require.Equal(t, "call_1", calls[0].CallID)
	require.Equal(t, "get_weather", calls[0].Name)
}

func TestParseServerEvent_SessionCreated(t *testing.T) {
	raw := `{"type":"session.created","session":{"id":"sess_1","model":"gpt-realtime","voice":"marin","turn_detection":{"type":"server_vad","threshold":0.5}}}`

	ev := ParseServerEvent([]byte(raw))
	created, ok := ev.(*SessionCreatedEvent)
	require.True(t, ok)
	require.Equal(t, "sess_1", created.Session.ID)
	require.Equal(t, Voice("marin"), created.Session.Voice)
	require.Equal(t, TurnDetectionServerVAD, created.Session.TurnDetection.Type)
}

func TestParseServerEvent_VoiceObjectForm(t *testing.T) {
	raw := `{"type":"session.updated","session":{"id":"sess_1","voice":{"id":"cedar"}}}`

	ev := ParseServerEvent([]byte(raw))
	updated, ok := ev.(*SessionUpdatedEvent)
	require.True(t, ok)
	require.Equal(t, Voice("cedar"), updated.Session.Voice)
}

func TestParseServerEvent_Error(t *testing.T) {
	raw := `{"type":"error","error":{"type":"invalid_request_error","code":"bad_param","message":"nope","param":"model"}}`

	ev := ParseServerEvent([]byte(raw))
	errEv, ok := ev.(*ErrorEvent)
	require.True(t, ok)
	require.Equal(t, "bad_param", errEv.Error.Code)
	require.EqualError(t, &errEv.Error, "bad_param: nope")
}

func TestParseServerEvent_UnknownTypeKeepsBytes(t *testing.T) {
	raw := `{"type":"conversation.item.exotic","event_id":"ev_9","payload":{"a":[1,2,3],"b":null}}`

	ev := ParseServerEvent([]byte(raw))
	unk, ok := ev.(*UnknownEvent)
	require.True(t, ok)
	require.Equal(t, "conversation.item.exotic", unk.EventType())

	out, err := json.Marshal(unk)
	require.NoError(t, err)
	require.Equal(t, raw, string(out))
}

func TestParseServerEvent_MalformedKnownTypeFallsBack(t *testing.T) {
	// item_id has the wrong JSON type, so the typed decode fails.
	raw := `{"type":"response.output_text.delta","item_id":42}`

	ev := ParseServerEvent([]byte(raw))
	unk, ok := ev.(*UnknownEvent)
	require.True(t, ok)

	out, err := json.Marshal(unk)
	require.NoError(t, err)
	require.Equal(t, raw, string(out))
}

func TestParseServerEvent_MissingTypeFallsBack(t *testing.T) {
	ev := ParseServerEvent([]byte(`{"foo":"bar"}`))
	_, ok := ev.(*UnknownEvent)
	require.True(t, ok)
}

func TestItem_UnknownVariantRoundTrip(t *testing.T) {
	raw := `{"type":"hologram","id":"item_9","shape":"dodecahedron"}`

	var item Item
	require.NoError(t, json.Unmarshal([]byte(raw), &item))
	require.Nil(t, item.Variant())
	require.Equal(t, "hologram", item.Type())

	out, err := json.Marshal(item)
	require.NoError(t, err)
	require.Equal(t, raw, string(out))
}

func TestItem_KnownVariantRoundTrip(t *testing.T) {
	item := UserText("hi there")

	out, err := json.Marshal(item)
	require.NoError(t, err)

	var back Item
	require.NoError(t, json.Unmarshal(out, &back))
	msg, ok := back.Variant().(*MessageItem)
	require.True(t, ok)
	require.Equal(t, RoleUser, msg.Role)
	require.Equal(t, "hi there", msg.Text())
}

func TestItem_MarshalInjectsTypeFirst(t *testing.T) {
	out, err := json.Marshal(FunctionCallOutput("call_1", "42"))
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"function_call_output","call_id":"call_1","output":"42"}`, string(out))
	require.Equal(t, `{"type":"`, string(out[:9]))
}

func TestContentPart_UnknownVariantRoundTrip(t *testing.T) {
	raw := `{"type":"input_video","frames":12}`

	var part ContentPart
	require.NoError(t, json.Unmarshal([]byte(raw), &part))
	require.Nil(t, part.Variant())

	out, err := json.Marshal(part)
	require.NoError(t, err)
	require.Equal(t, raw, string(out))
}

func TestContentPart_AudioFormatBothShapes(t *testing.T) {
	var fromName AudioPartFormat
	require.NoError(t, json.Unmarshal([]byte(`"audio/pcm"`), &fromName))
	require.Equal(t, AudioFormatPCM, fromName.Name)

	var fromObject AudioPartFormat
	require.NoError(t, json.Unmarshal([]byte(`{"type":"audio/pcm","rate":24000}`), &fromObject))
	require.NotNil(t, fromObject.Object)
	require.Equal(t, PCMRate, fromObject.Object.Rate)
}

func TestMaxTokens_Union(t *testing.T) {
	out, err := json.Marshal(MaxTokensInfinite())
	require.NoError(t, err)
	require.Equal(t, `"inf"`, string(out))

	var m MaxTokens
	require.NoError(t, json.Unmarshal([]byte(`4096`), &m))
	require.Equal(t, 4096, m.Count)

	require.NoError(t, json.Unmarshal([]byte(`"inf"`), &m))
	require.True(t, m.Infinite)

	require.Error(t, json.Unmarshal([]byte(`"lots"`), &m))
}

func TestToolChoice_Union(t *testing.T) {
	var c ToolChoice
	require.NoError(t, json.Unmarshal([]byte(`"auto"`), &c))
	require.Equal(t, "auto", c.Mode)

	require.NoError(t, json.Unmarshal([]byte(`{"type":"function","name":"lookup"}`), &c))
	require.NotNil(t, c.Function)
	require.Equal(t, "lookup", c.Function.Name)

	require.NoError(t, json.Unmarshal([]byte(`{"type":"mcp","server_label":"files","name":"read"}`), &c))
	require.NotNil(t, c.MCP)
	require.Equal(t, "files", c.MCP.ServerLabel)

	out, err := json.Marshal(ToolChoiceFunction("lookup"))
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"function","name":"lookup"}`, string(out))
}

func TestTracing_Union(t *testing.T) {
	var tr Tracing
	require.NoError(t, json.Unmarshal([]byte(`"auto"`), &tr))
	require.True(t, tr.Auto)

	require.NoError(t, json.Unmarshal([]byte(`{"workflow_name":"support"}`), &tr))
	require.NotNil(t, tr.Config)
	require.Equal(t, "support", tr.Config.WorkflowName)
}

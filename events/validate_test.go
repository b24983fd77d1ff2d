package events

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateBase64Audio_Valid(t *testing.T) {
	for _, s := range []string{
		"AAAA",
		"AAA=",
		"AA==",
		base64.StdEncoding.EncodeToString([]byte("some pcm bytes here!")),
		"abcd1234+/==",
	} {
		require.NoError(t, ValidateBase64Audio(s), s)
	}
}

func TestValidateBase64Audio_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"length not multiple of four", "AAAAA"},
		{"invalid character", "AA!A"},
		{"url-safe alphabet", "AA-_"},
		{"whitespace", "AAAA AAAA"},
		{"padding in the middle", "AA==AAAA"},
		{"three pads", "A==="},
		{"character after padding", "AA=A"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBase64Audio(tt.input)
			require.Error(t, err)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
		})
	}
}

func TestValidateBase64Audio_SizeLimit(t *testing.T) {
	// 15 MiB decodes from exactly 20 MiB of base64 with no padding.
	atLimit := strings.Repeat("AAAA", MaxInputAudioBytes/3)
	require.Equal(t, MaxInputAudioBytes, DecodedBase64Len(atLimit))
	require.NoError(t, ValidateBase64Audio(atLimit))

	overLimit := atLimit + "AAAA"
	err := ValidateBase64Audio(overLimit)
	require.Error(t, err)
	require.Contains(t, err.Error(), "too large")
}

func TestDecodedBase64Len(t *testing.T) {
	for _, payload := range [][]byte{
		nil,
		{1},
		{1, 2},
		{1, 2, 3},
		[]byte("0123456789"),
	} {
		enc := base64.StdEncoding.EncodeToString(payload)
		if enc == "" {
			continue
		}
		require.Equal(t, len(payload), DecodedBase64Len(enc), enc)
	}
}

func TestAudioFormat_Validate(t *testing.T) {
	require.NoError(t, PCM24kHz().Validate())
	require.NoError(t, (&AudioFormat{Type: AudioFormatPCM}).Validate())
	require.NoError(t, (&AudioFormat{Type: AudioFormatPCMU, Rate: 8000}).Validate())

	err := (&AudioFormat{Type: AudioFormatPCM, Rate: 44100}).Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "24000")
}

func TestSessionUpdateEvent_RejectsBadAudioRate(t *testing.T) {
	ev := NewSessionUpdate(SessionUpdate{
		Audio: &AudioConfig{
			Input: &InputAudioConfig{
				Format: &AudioFormat{Type: AudioFormatPCM, Rate: 16000},
			},
		},
	})
	require.Error(t, ev.Validate())
}

func TestMCPToolConfig_Validate(t *testing.T) {
	require.Error(t, (&MCPToolConfig{}).Validate())
	require.Error(t, (&MCPToolConfig{ServerLabel: "files"}).Validate())
	require.NoError(t, (&MCPToolConfig{ServerLabel: "files", ServerURL: "https://mcp.example.com"}).Validate())
	require.NoError(t, (&MCPToolConfig{ServerLabel: "drive", ConnectorID: "connector_googledrive"}).Validate())
}

func TestInputAudioBufferAppend_Validate(t *testing.T) {
	require.NoError(t, NewInputAudioBufferAppend("AAAA").Validate())
	require.Error(t, NewInputAudioBufferAppend("not base64!").Validate())
	require.Error(t, NewInputAudioBufferAppend("").Validate())
}

func TestConversationItemCreate_ValidatesInlineAudio(t *testing.T) {
	good := NewConversationItemCreate(UserMessage(InputAudio("AAAA")))
	require.NoError(t, good.Validate())

	bad := NewConversationItemCreate(UserMessage(InputAudio("%%%%")))
	require.Error(t, bad.Validate())
}

func TestNewBaseEvent_AssignsID(t *testing.T) {
	a := NewBaseEvent(TypeResponseCreate)
	b := NewBaseEvent(TypeResponseCreate)
	require.NotEmpty(t, a.EventID)
	require.NotEqual(t, a.EventID, b.EventID)
	require.Equal(t, TypeResponseCreate, a.Type)
}

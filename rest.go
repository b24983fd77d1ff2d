package realtime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/voicewire/realtime-go/events"
)

const defaultRESTBaseURL = "https://api.openai.com/v1"

// Calls is a small REST client for the call-control surface that lives next
// to the websocket: ephemeral client secrets, SIP call handling and SDP based
// call creation. It is independent of any Session.
type Calls struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewCalls(apiKey string) *Calls {
	return &Calls{
		apiKey:     apiKey,
		baseURL:    defaultRESTBaseURL,
		httpClient: http.DefaultClient,
	}
}

// WithHTTPClient swaps the underlying HTTP client, for timeouts or proxies.
func (c *Calls) WithHTTPClient(hc *http.Client) *Calls {
	c.httpClient = hc
	return c
}

// WithRESTBaseURL points the client at a different API host.
func (c *Calls) WithRESTBaseURL(baseURL string) *Calls {
	c.baseURL = strings.TrimSuffix(baseURL, "/")
	return c
}

// ClientSecret is an ephemeral credential a browser or device can use to open
// its own realtime connection.
type ClientSecret struct {
	Value     string         `json:"value"`
	ExpiresAt int64          `json:"expires_at"`
	Session   events.Session `json:"session"`
}

type clientSecretRequest struct {
	ExpiresAfter *expiresAfter         `json:"expires_after,omitempty"`
	Session      *events.SessionConfig `json:"session,omitempty"`
}

type expiresAfter struct {
	Anchor  string `json:"anchor"`
	Seconds int    `json:"seconds"`
}

// CreateClientSecret mints an ephemeral secret. ttlSeconds of zero keeps the
// server default; session may be nil.
func (c *Calls) CreateClientSecret(ctx context.Context, ttlSeconds int, session *events.SessionConfig) (*ClientSecret, error) {
	req := clientSecretRequest{Session: session}
	if ttlSeconds > 0 {
		req.ExpiresAfter = &expiresAfter{Anchor: "created_at", Seconds: ttlSeconds}
	}
	var secret ClientSecret
	if err := c.postJSON(ctx, "/realtime/client_secrets", req, &secret); err != nil {
		return nil, err
	}
	return &secret, nil
}

// CreateCall opens a new realtime call from an SDP offer and returns the call
// id and the SDP answer.
func (c *Calls) CreateCall(ctx context.Context, sdpOffer string, session *events.SessionConfig) (callID, sdpAnswer string, err error) {
	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)
	if err := form.WriteField("sdp", sdpOffer); err != nil {
		return "", "", err
	}
	if session != nil {
		sessionJSON, err := json.Marshal(session)
		if err != nil {
			return "", "", fmt.Errorf("encode session: %w", err)
		}
		if err := form.WriteField("session", string(sessionJSON)); err != nil {
			return "", "", err
		}
	}
	if err := form.Close(); err != nil {
		return "", "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/realtime/calls", body)
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	answer, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", err
	}
	if resp.StatusCode >= 300 {
		return "", "", fmt.Errorf("create call: status %d: %s", resp.StatusCode, answer)
	}
	return resp.Header.Get("Location"), string(answer), nil
}

// AcceptCall answers an incoming SIP call with the given session
// configuration.
func (c *Calls) AcceptCall(ctx context.Context, callID string, session events.SessionConfig) error {
	return c.postJSON(ctx, "/realtime/calls/"+callID+"/accept", session, nil)
}

// RejectCall declines an incoming SIP call. statusCode of zero uses the SIP
// default (603 Decline).
func (c *Calls) RejectCall(ctx context.Context, callID string, statusCode int) error {
	body := map[string]any{}
	if statusCode > 0 {
		body["status_code"] = statusCode
	}
	return c.postJSON(ctx, "/realtime/calls/"+callID+"/reject", body, nil)
}

// ReferCall transfers the call to another SIP endpoint.
func (c *Calls) ReferCall(ctx context.Context, callID, targetURI string) error {
	return c.postJSON(ctx, "/realtime/calls/"+callID+"/refer", map[string]string{"target_uri": targetURI}, nil)
}

// HangupCall ends an active call.
func (c *Calls) HangupCall(ctx context.Context, callID string) error {
	return c.postJSON(ctx, "/realtime/calls/"+callID+"/hangup", struct{}{}, nil)
}

func (c *Calls) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s: status %d: %s", path, resp.StatusCode, detail)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

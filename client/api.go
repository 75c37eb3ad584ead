package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/detekoi/iron-golem/models"
)

// API is the HTTP client for the chat service. Zero value is not usable;
// construct with NewAPI.
type API struct {
	baseURL string
	http    *http.Client
}

// NewAPI builds a client for the service at baseURL (scheme://host:port,
// no trailing slash required).
func NewAPI(baseURL string) *API {
	return &API{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			// No overall timeout: the chat stream is long-lived by
			// design. Per-call contexts bound the other endpoints.
			Timeout: 0,
		},
	}
}

// Chat opens the streaming chat endpoint. The caller owns the returned
// reader and must Close it to release the connection.
func (a *API) Chat(ctx context.Context, req models.ChatRequest) (*ChatStream, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := a.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("chat request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("chat request rejected: %d %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	return &ChatStream{
		reader: NewStreamReader(resp.Body),
		body:   resp.Body,
	}, nil
}

// ChatStream is an open chat response stream.
type ChatStream struct {
	reader *StreamReader
	body   io.ReadCloser
}

// Next returns the next event; io.EOF after the stream closes.
func (s *ChatStream) Next() (models.StreamEvent, error) {
	return s.reader.Next()
}

// Close releases the underlying connection.
func (s *ChatStream) Close() error {
	return s.body.Close()
}

// Summarize requests a session summary for a transcript.
func (a *API) Summarize(ctx context.Context, msgs []models.ChatMessage) (*models.SessionSummary, error) {
	var summary models.SessionSummary
	err := a.postJSON(ctx, "/api/summary", models.SummaryRequest{Messages: msgs}, &summary)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// GenerateTitle requests a short title for a transcript.
func (a *API) GenerateTitle(ctx context.Context, msgs []models.ChatMessage) (string, error) {
	var resp models.TitleResponse
	if err := a.postJSON(ctx, "/api/generate-title", models.TitleRequest{Messages: msgs}, &resp); err != nil {
		return "", err
	}
	if resp.Title == "" {
		return models.DefaultSessionName, nil
	}
	return resp.Title, nil
}

// ListSessions fetches session metadata, newest first.
func (a *API) ListSessions(ctx context.Context) ([]models.SessionInfo, error) {
	var infos []models.SessionInfo
	if err := a.getJSON(ctx, "/api/sessions", &infos); err != nil {
		return nil, err
	}
	return infos, nil
}

// CreateSession creates a session, optionally named.
func (a *API) CreateSession(ctx context.Context, name string) (*models.ChatSession, error) {
	var session models.ChatSession
	err := a.postJSON(ctx, "/api/sessions", models.CreateSessionRequest{Name: name}, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// GetSession fetches a full session including its transcript.
func (a *API) GetSession(ctx context.Context, id string) (*models.ChatSession, error) {
	var session models.ChatSession
	if err := a.getJSON(ctx, "/api/sessions/"+id, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// SaveSession persists a session wholesale.
func (a *API) SaveSession(ctx context.Context, session models.ChatSession) error {
	return a.putJSON(ctx, "/api/sessions/"+session.ID, session, nil)
}

// SaveSummary updates only the stored summary, leaving the transcript
// untouched.
func (a *API) SaveSummary(ctx context.Context, id string, summary *models.SessionSummary) error {
	return a.putJSON(ctx, "/api/sessions/"+id+"/summary", summary, nil)
}

// DeleteSession removes a session.
func (a *API) DeleteSession(ctx context.Context, id string) error {
	return a.do(ctx, http.MethodDelete, "/api/sessions/"+id, nil, nil)
}

// ActiveSession returns the active session id, empty when unset.
func (a *API) ActiveSession(ctx context.Context) (string, error) {
	var resp struct {
		ID string `json:"id"`
	}
	if err := a.getJSON(ctx, "/api/sessions/active", &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// SetActiveSession records the active session pointer.
func (a *API) SetActiveSession(ctx context.Context, id string) error {
	body := map[string]string{"id": id}
	return a.putJSON(ctx, "/api/sessions/active", body, nil)
}

func (a *API) getJSON(ctx context.Context, path string, out any) error {
	return a.do(ctx, http.MethodGet, path, nil, out)
}

func (a *API) postJSON(ctx context.Context, path string, in, out any) error {
	return a.do(ctx, http.MethodPost, path, in, out)
}

func (a *API) putJSON(ctx context.Context, path string, in, out any) error {
	return a.do(ctx, http.MethodPut, path, in, out)
}

func (a *API) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s %s: %d %s", method, path, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode %s response: %w", path, err)
		}
	}
	return nil
}

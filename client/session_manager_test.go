package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/detekoi/iron-golem/models"
)

// fakeService is a minimal in-memory server speaking the service API,
// counting calls per endpoint.
type fakeService struct {
	mux           *http.ServeMux
	session       models.ChatSession
	summaryCalls  int
	titleCalls    int
	saveCalls     int
	chatFragments []string
}

func newFakeService() *fakeService {
	f := &fakeService{
		chatFragments: []string{"Hello", " world"},
		session: models.ChatSession{
			ID:   "s1",
			Name: models.DefaultSessionName,
		},
	}
	f.mux = http.NewServeMux()

	f.mux.HandleFunc("POST /api/chat", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, fragment := range f.chatFragments {
			event := models.StreamEvent{Type: models.EventText, Content: fragment}
			data, _ := json.Marshal(event)
			fmt.Fprintf(w, "data: %s\n\n", data)
		}
		done, _ := json.Marshal(models.StreamEvent{Type: models.EventDone})
		fmt.Fprintf(w, "data: %s\n\n", done)
	})

	f.mux.HandleFunc("POST /api/summary", func(w http.ResponseWriter, r *http.Request) {
		f.summaryCalls++
		summary := models.SessionSummary{
			SummaryVersion: models.SummaryVersion,
			LastUpdated:    time.Now().UTC().Format(time.RFC3339),
		}
		json.NewEncoder(w).Encode(summary)
	})

	f.mux.HandleFunc("POST /api/generate-title", func(w http.ResponseWriter, r *http.Request) {
		f.titleCalls++
		json.NewEncoder(w).Encode(models.TitleResponse{Title: "Iron Golem Build"})
	})

	f.mux.HandleFunc("GET /api/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(f.session)
	})

	f.mux.HandleFunc("PUT /api/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/active") {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		f.saveCalls++
		json.NewDecoder(r.Body).Decode(&f.session)
		w.WriteHeader(http.StatusNoContent)
	})

	f.mux.HandleFunc("POST /api/sessions", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(f.session)
	})

	return f
}

func newTestManager(t *testing.T) (*SessionManager, *fakeService) {
	t.Helper()
	service := newFakeService()
	server := httptest.NewServer(service.mux)
	t.Cleanup(server.Close)
	return NewSessionManager(NewAPI(server.URL), models.EditionJava, nil), service
}

func TestSend_ReassemblesReplyAndSummarizes(t *testing.T) {
	manager, service := newTestManager(t)
	require.NoError(t, manager.StartSession(context.Background(), ""))

	require.NoError(t, manager.Send(context.Background(), "say hello"))

	msgs := manager.Session().Messages
	require.Len(t, msgs, 2)
	assert.Equal(t, "Hello world", msgs[1].Text())
	assert.False(t, msgs[1].IsStreaming)

	assert.Equal(t, 1, service.summaryCalls, "completed model turn should trigger summarization")
	assert.Equal(t, 1, service.saveCalls)
	assert.Equal(t, "Iron Golem Build", manager.Session().Name)
}

func TestLoadSession_SuppressesOneEvaluation(t *testing.T) {
	manager, service := newTestManager(t)
	service.session.Messages = []models.ChatMessage{
		models.NewTextMessage(models.RoleUser, "old question"),
		models.NewTextMessage(models.RoleModel, "old answer"),
	}

	require.NoError(t, manager.LoadSession(context.Background(), "s1"))

	// Hydration alone must not summarize, even though the restored
	// transcript ends with a completed model turn.
	manager.Evaluate(context.Background())
	assert.Equal(t, 0, service.summaryCalls)

	// The suppression is one-shot: the next evaluation behaves normally.
	manager.Evaluate(context.Background())
	assert.Equal(t, 1, service.summaryCalls)
}

func TestEvaluate_RequiresCompletedModelTurn(t *testing.T) {
	manager, service := newTestManager(t)
	require.NoError(t, manager.StartSession(context.Background(), ""))

	// Only a user turn so far.
	manager.reassembler = NewReassembler([]models.ChatMessage{
		models.NewTextMessage(models.RoleUser, "hello?"),
	})
	manager.Evaluate(context.Background())
	assert.Equal(t, 0, service.summaryCalls)
}

func TestAssignTitle_KeepsCustomName(t *testing.T) {
	manager, service := newTestManager(t)
	require.NoError(t, manager.StartSession(context.Background(), ""))
	manager.session.Name = "My farm notes"

	manager.reassembler = NewReassembler([]models.ChatMessage{
		models.NewTextMessage(models.RoleUser, "q"),
		models.NewTextMessage(models.RoleModel, "a"),
	})
	manager.Evaluate(context.Background())
	assert.Equal(t, 0, service.titleCalls)
	assert.Equal(t, "My farm notes", manager.Session().Name)
}

func TestSend_RefusedWhileBusy(t *testing.T) {
	manager, _ := newTestManager(t)
	manager.busy = true
	err := manager.Send(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "in flight")
}

func TestSummarizationFailureKeepsPreviousSummary(t *testing.T) {
	service := newFakeService()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/summary" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		service.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)

	manager := NewSessionManager(NewAPI(server.URL), models.EditionJava, nil)
	require.NoError(t, manager.StartSession(context.Background(), ""))

	previous := &models.SessionSummary{SummaryVersion: models.SummaryVersion, LastUpdated: "2026-01-01T00:00:00Z"}
	manager.session.Summary = previous

	require.NoError(t, manager.Send(context.Background(), "say hello"))
	assert.Same(t, previous, manager.session.Summary, "failed summarization must retain the previous summary")
}

func TestImportSummaryValidatesShape(t *testing.T) {
	manager := NewSessionManager(NewAPI("http://unused"), models.EditionJava, nil)

	err := manager.ImportSummary(&models.SessionSummary{SummaryVersion: "2.0"})
	require.Error(t, err)
	assert.Nil(t, manager.ExportSummary())

	good := &models.SessionSummary{
		SummaryVersion: models.SummaryVersion,
		LastUpdated:    time.Now().UTC().Format(time.RFC3339),
	}
	require.NoError(t, manager.ImportSummary(good))
	assert.Same(t, good, manager.ExportSummary())
}

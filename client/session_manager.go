package client

import (
	"context"
	"fmt"
	"io"

	"github.com/detekoi/iron-golem/logger"
	"github.com/detekoi/iron-golem/models"
	"github.com/detekoi/iron-golem/schemas"
)

// SessionManager drives one chat session end to end: sending turns,
// reassembling the reply stream, deciding when to re-summarize, assigning
// a title, and persisting state. It is single-threaded by contract, like
// the UI loop it stands in for; callers must not use it concurrently.
type SessionManager struct {
	api *API
	log *logger.Logger

	session     models.ChatSession
	reassembler *Reassembler
	edition     string

	busy bool
	// justHydrated suppresses exactly one evaluation after a session is
	// restored from storage, so loading an old transcript never triggers
	// a fresh summarization.
	justHydrated bool

	// OnEvent, when set, observes every stream event after it has been
	// applied to the transcript.
	OnEvent func(models.StreamEvent)
}

// NewSessionManager starts an empty unsaved session.
func NewSessionManager(api *API, edition string, log *logger.Logger) *SessionManager {
	if log == nil {
		log = logger.New("client")
	}
	return &SessionManager{
		api:     api,
		log:     log,
		edition: edition,
		session: models.ChatSession{Name: models.DefaultSessionName},
	}
}

// Session returns the current session state.
func (m *SessionManager) Session() models.ChatSession {
	m.session.Messages = m.messages()
	return m.session
}

// Busy reports whether a turn is in flight; Send is gated on this.
func (m *SessionManager) Busy() bool { return m.busy }

// StartSession creates a fresh server-side session and makes it current.
func (m *SessionManager) StartSession(ctx context.Context, name string) error {
	session, err := m.api.CreateSession(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	m.session = *session
	m.reassembler = NewReassembler(session.Messages)
	m.justHydrated = false
	if err := m.api.SetActiveSession(ctx, session.ID); err != nil {
		m.log.Warn("Failed to set active session pointer", logger.Fields{
			"sessionId": session.ID,
			"error":     err.Error(),
		})
	}
	return nil
}

// LoadSession restores a saved session. The next evaluation is suppressed
// so hydration alone never causes a summarization call.
func (m *SessionManager) LoadSession(ctx context.Context, id string) error {
	session, err := m.api.GetSession(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	m.session = *session
	m.reassembler = NewReassembler(session.Messages)
	m.justHydrated = true
	if err := m.api.SetActiveSession(ctx, session.ID); err != nil {
		m.log.Warn("Failed to set active session pointer", logger.Fields{
			"sessionId": session.ID,
			"error":     err.Error(),
		})
	}
	return nil
}

// Send submits one user utterance and consumes the full reply stream
// before returning. A new turn is refused while the previous one is still
// in flight.
func (m *SessionManager) Send(ctx context.Context, text string) error {
	if m.busy {
		return fmt.Errorf("a turn is already in flight")
	}
	if m.reassembler == nil {
		m.reassembler = NewReassembler(nil)
	}

	m.busy = true
	defer func() { m.busy = false }()

	m.reassembler.AddUserMessage(text)
	m.reassembler.BeginTurn()

	stream, err := m.api.Chat(ctx, models.ChatRequest{
		Messages: m.requestHistory(),
		Summary:  m.session.Summary,
		Edition:  m.edition,
	})
	if err != nil {
		// The placeholder turn is finalized empty; the sanitizer drops
		// it from later outbound history.
		m.reassembler.Apply(models.StreamEvent{Type: models.EventError, Content: err.Error()})
		return err
	}
	defer stream.Close()

	for {
		event, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			m.reassembler.Apply(models.StreamEvent{Type: models.EventError, Content: err.Error()})
			return fmt.Errorf("stream consumption failed: %w", err)
		}
		m.reassembler.Apply(event)
		if m.OnEvent != nil {
			m.OnEvent(event)
		}
		if event.Type == models.EventDone || event.Type == models.EventError {
			break
		}
	}

	m.Evaluate(ctx)
	return nil
}

// Evaluate runs the post-turn bookkeeping: summarization when the trigger
// condition holds, title assignment, and a save. It is a no-op while a
// turn is in flight, and exactly one evaluation after hydration is
// skipped.
func (m *SessionManager) Evaluate(ctx context.Context) {
	if m.busy && m.reassembler != nil && m.reassembler.Streaming() {
		return
	}
	if m.justHydrated {
		m.justHydrated = false
		return
	}

	msgs := m.messages()
	if m.shouldSummarize(msgs) {
		summary, err := m.api.Summarize(ctx, msgs)
		if err != nil {
			m.log.Warn("Summarization failed, keeping previous summary", logger.Fields{
				"sessionId": m.session.ID,
				"error":     err.Error(),
			})
		} else {
			m.session.Summary = summary
		}
	}

	m.assignTitle(ctx, msgs)
	m.save(ctx, msgs)
}

// shouldSummarize applies the trigger condition: the last message is a
// completed model turn and the conversation has at least two messages.
func (m *SessionManager) shouldSummarize(msgs []models.ChatMessage) bool {
	if len(msgs) < 2 {
		return false
	}
	last := msgs[len(msgs)-1]
	return last.Role == models.RoleModel && !last.IsStreaming
}

// assignTitle replaces the placeholder name once a user message exists.
// Single best-effort attempt per save cycle; a later cycle may retry.
func (m *SessionManager) assignTitle(ctx context.Context, msgs []models.ChatMessage) {
	if m.session.Name != models.DefaultSessionName && m.session.Name != "" {
		return
	}
	hasUserTurn := false
	for _, msg := range msgs {
		if msg.Role == models.RoleUser {
			hasUserTurn = true
			break
		}
	}
	if !hasUserTurn {
		return
	}

	title, err := m.api.GenerateTitle(ctx, msgs)
	if err != nil {
		m.log.Warn("Title generation failed, keeping placeholder", logger.Fields{
			"sessionId": m.session.ID,
			"error":     err.Error(),
		})
		return
	}
	m.session.Name = title
}

// save persists the session. Persistence failure degrades to in-memory
// operation, it never aborts the conversation.
func (m *SessionManager) save(ctx context.Context, msgs []models.ChatMessage) {
	if m.session.ID == "" {
		return
	}
	m.session.Messages = msgs
	if err := m.api.SaveSession(ctx, m.session); err != nil {
		m.log.Warn("Session save failed, continuing unpersisted", logger.Fields{
			"sessionId": m.session.ID,
			"error":     err.Error(),
		})
	}
}

// ExportSummary returns the current session summary, or nil when none has
// been produced yet.
func (m *SessionManager) ExportSummary() *models.SessionSummary {
	return m.session.Summary
}

// ImportSummary installs an externally supplied summary after validating
// its shape. The summary takes effect on the next turn's request.
func (m *SessionManager) ImportSummary(summary *models.SessionSummary) error {
	if summary == nil {
		return fmt.Errorf("summary is nil")
	}
	schemas.ApplyDefaults(summary)
	if err := schemas.ValidateSummary(summary); err != nil {
		return fmt.Errorf("invalid summary: %w", err)
	}
	m.session.Summary = summary
	return nil
}

func (m *SessionManager) messages() []models.ChatMessage {
	if m.reassembler == nil {
		return m.session.Messages
	}
	return m.reassembler.Messages()
}

// requestHistory is the outbound transcript: finished turns plus the
// newest user utterance, without the streaming placeholder.
func (m *SessionManager) requestHistory() []models.ChatMessage {
	msgs := m.messages()
	history := make([]models.ChatMessage, 0, len(msgs))
	for _, msg := range msgs {
		if msg.IsStreaming {
			continue
		}
		history = append(history, msg)
	}
	return history
}

package sessions

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/detekoi/iron-golem/logger"
	"github.com/detekoi/iron-golem/models"
)

// Turn runs one complete chat exchange: it starts the primary reply
// stream and the recipe side-pipeline concurrently, then merges their
// results into a single ordered event stream on the writer.
//
// Event order per turn: zero or more text events in generation order,
// then at most one metadata event, then at most one recipe event, then
// done. An error event, when it occurs, is the last event of the turn
// and suppresses done.
type Turn struct {
	Model  ChatModel
	Writer EventWriter
	Log    *logger.Logger
}

// Run executes the turn. The returned error reports only primary-stream
// failures; side-call failures degrade to an absent recipe card.
func (t *Turn) Run(ctx context.Context, req models.ChatRequest) error {
	if len(req.Messages) == 0 {
		return fmt.Errorf("request has no messages")
	}
	utterance := req.Messages[len(req.Messages)-1].Text()

	recipeChan := t.fetchRecipe(ctx, utterance, req.Edition)
	chunkChan, errChan := t.Model.StreamChat(ctx, req.Messages, req.Summary, req.Edition)

	start := time.Now()
	firstToken := false
	textEvents := 0
	var lastGrounding json.RawMessage

	for {
		select {
		case chunk, ok := <-chunkChan:
			if !ok {
				chunkChan = nil
				break
			}
			if len(chunk.Grounding) > 0 {
				lastGrounding = chunk.Grounding
			}
			if chunk.Text != "" {
				if !firstToken {
					firstToken = true
					t.Log.Info("First token", logger.Fields{
						"durationMs": time.Since(start).Milliseconds(),
					})
				}
				if err := t.emit(models.StreamEvent{Type: models.EventText, Content: chunk.Text}); err != nil {
					return err
				}
				textEvents++
			}

		case err, ok := <-errChan:
			if ok && err != nil {
				t.Log.Error("Turn failed mid-stream", logger.Fields{
					"textEvents": textEvents,
					"error":      err.Error(),
				})
				t.emitError(err)
				return err
			}
			if !ok {
				errChan = nil
			}

		case <-ctx.Done():
			t.Log.Warn("Client disconnected mid-turn", logger.Fields{
				"textEvents": textEvents,
			})
			return ctx.Err()
		}

		if chunkChan == nil && errChan == nil {
			break
		}
	}

	if len(lastGrounding) > 0 {
		if err := t.emit(models.StreamEvent{Type: models.EventMetadata, Metadata: lastGrounding}); err != nil {
			return err
		}
	}

	select {
	case recipe := <-recipeChan:
		if recipe != nil {
			if err := t.emit(models.StreamEvent{Type: models.EventRecipe, Recipe: recipe}); err != nil {
				return err
			}
		}
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := t.emit(models.StreamEvent{Type: models.EventDone}); err != nil {
		return err
	}

	t.Log.Info("Turn finished", logger.Fields{
		"textEvents":  textEvents,
		"hadMetadata": len(lastGrounding) > 0,
		"durationMs":  time.Since(start).Milliseconds(),
	})
	return nil
}

// fetchRecipe launches the two-stage recipe pipeline. The result channel
// is buffered so the goroutine never leaks when the turn aborts early.
func (t *Turn) fetchRecipe(ctx context.Context, utterance, edition string) <-chan *models.CraftingRecipe {
	out := make(chan *models.CraftingRecipe, 1)
	go func() {
		defer close(out)
		out <- t.Model.FetchRecipe(ctx, utterance, edition)
	}()
	return out
}

func (t *Turn) emit(event models.StreamEvent) error {
	if err := t.Writer.WriteEvent(event); err != nil {
		return fmt.Errorf("failed to write %s event: %w", event.Type, err)
	}
	t.Writer.Flush()
	return nil
}

// emitError makes a best effort to surface the failure in-band before the
// stream closes.
func (t *Turn) emitError(err error) {
	writeErr := t.Writer.WriteEvent(models.StreamEvent{
		Type:    models.EventError,
		Content: err.Error(),
	})
	if writeErr != nil {
		t.Log.Error("Failed to write error event", logger.Fields{
			"error": writeErr.Error(),
		})
		return
	}
	t.Writer.Flush()
}

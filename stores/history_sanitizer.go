package stores

import (
	"log"
	"strings"

	"github.com/detekoi/iron-golem/models"
)

// SanitizeHistory ensures a transcript has a valid turn structure before it
// is sent upstream. It handles two issues:
// 1. Truncation or hydration artifacts leaving model turns before the first
//    user turn - the API requires the conversation to open with a user turn.
// 2. Empty messages - a turn whose parts carry no text (for example an
//    aborted stream that never produced a token) is dropped, unless it
//    carries a recipe card, which stands on its own.
//
// The input slice is never mutated; a cleaned copy is returned.
func SanitizeHistory(msgs []models.ChatMessage) []models.ChatMessage {
	if len(msgs) == 0 {
		return msgs
	}

	startIdx := findValidStartIndex(msgs)
	if startIdx == -1 {
		log.Printf("[HISTORY_SANITIZER] No user turn found, returning empty history")
		return []models.ChatMessage{}
	}
	if startIdx > 0 {
		log.Printf("[HISTORY_SANITIZER] Skipping %d leading model turn(s) to find a valid start", startIdx)
	}

	result := make([]models.ChatMessage, 0, len(msgs)-startIdx)
	for _, msg := range msgs[startIdx:] {
		if isEmptyMessage(msg) {
			log.Printf("[HISTORY_SANITIZER] Dropping empty %s message %s", msg.Role, msg.ID)
			continue
		}
		result = append(result, msg)
	}
	return result
}

// findValidStartIndex returns the index of the first user turn, or -1 when
// the history contains none.
func findValidStartIndex(msgs []models.ChatMessage) int {
	for i, msg := range msgs {
		if msg.Role == models.RoleUser {
			return i
		}
	}
	return -1
}

// isEmptyMessage reports whether a message carries no usable content.
func isEmptyMessage(msg models.ChatMessage) bool {
	if msg.CraftingRecipe != nil {
		return false
	}
	return strings.TrimSpace(msg.Text()) == ""
}

// DetectHistoryIssues checks a transcript for problems that would cause API
// errors. Returns a list of issues found, empty if the history is clean.
func DetectHistoryIssues(msgs []models.ChatMessage) []string {
	issues := []string{}

	if len(msgs) == 0 {
		return issues
	}

	if msgs[0].Role == models.RoleModel {
		issues = append(issues, "History starts with a model turn")
	}

	for i := 1; i < len(msgs); i++ {
		if msgs[i-1].Role == models.RoleUser && msgs[i].Role == models.RoleUser {
			issues = append(issues, "Two consecutive user turns")
			break
		}
	}

	for _, msg := range msgs {
		if isEmptyMessage(msg) {
			issues = append(issues, "History contains an empty message")
			break
		}
	}

	return issues
}

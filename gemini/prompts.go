package gemini

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/detekoi/iron-golem/models"
)

const baseInstruction = `You are a helpful and knowledgeable Minecraft expert.
Your goal is to assist players with crafting recipes, game mechanics, updates, building strategies, and redstone tutorials.
Always ensure your answers are accurate and relevant to Minecraft.
If a user asks about a topic unrelated to Minecraft (like furniture styles, general history, or other games), politely steer the conversation back to Minecraft or explain that you specialize only in Minecraft.
Use Markdown to format your responses effectively, using bold text for key terms and lists for steps or items.

SEARCH GROUNDING: When you use search results to answer, prefer recent, authoritative sources. Cite mechanics as they currently work; call out version differences when they matter.`

const javaInstruction = `

The player is on Minecraft Java Edition. Give Java Edition mechanics, recipes and version numbers; mention Bedrock differences only when the player asks.`

const bedrockInstruction = `

The player is on Minecraft Bedrock Edition. Give Bedrock Edition mechanics, recipes and version numbers; mention Java differences only when the player asks.`

// SystemInstruction returns the chat system prompt for an edition.
// Unknown or empty editions fall back to Java.
func SystemInstruction(edition string) string {
	if edition == models.EditionBedrock {
		return baseInstruction + bedrockInstruction
	}
	return baseInstruction + javaInstruction
}

const routerInstruction = `You are a classifier. Answer with exactly one word: "yes" or "no".
Question: is the user asking how to craft a specific item, such that a crafting recipe grid would help?
Answer "yes" only for requests about craftable items. Answer "no" for questions about mobs, strategies, locations, mechanics, or anything else.`

const recipeInstruction = `You are a Minecraft crafting assistant. Call display_crafting_recipe exactly once with the crafting grid for the item the user asked about.
The grid is 9 slots, row major, left to right then top to bottom. Use the literal string "air" for empty slots and lowercase item identifiers (e.g. "oak_planks", "stick") for filled ones.`

const titleInstruction = "You are a specialized assistant that generates short, concise (2-5 words) titles for chat sessions based on their content. Return ONLY the title text, no quotes or prefixes."

// summaryAckMessage is the synthetic model turn acknowledging injected
// session context.
const summaryAckMessage = "I have loaded the session context."

// summaryContextMessage renders a summary as the synthetic user turn that
// precedes the real history.
func summaryContextMessage(summary *models.SessionSummary) (string, error) {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal summary for injection: %w", err)
	}
	return "[SYSTEM: Session Context Loaded]\n\n" + string(data), nil
}

// summaryPrompt builds the extraction prompt for a transcript.
func summaryPrompt(msgs []models.ChatMessage) string {
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		lines = append(lines, fmt.Sprintf("%s: %s", m.Role, m.Text()))
	}
	conversation := strings.Join(lines, "\n\n")

	return `You are analyzing a Minecraft help session. Extract structured information from the conversation below.

CONVERSATION:
` + conversation + `

INSTRUCTIONS:
For currentProjects: Extract any building/farming/crafting projects mentioned. For each project provide:
  - name: The project name
  - type: Category (e.g., "farm", "build", "redstone", "exploration")
  - status: "planning", "in-progress", or "completed"
  - description: What the project is about
  - progress: Estimate 0-100
  - nextSteps: What needs to be done next
  - blockers: Any mentioned obstacles (optional)

For knowledgeBase:
  - mechanicsLearned: Game mechanics discussed (e.g., "villager panic mechanics", "mob spawning")
  - recipesKnown: Items/recipes mentioned
  - strategiesDiscovered: Tips or strategies shared

For goals:
  - shortTerm: Immediate next steps or tasks (things to do soon)
  - longTerm: Bigger objectives or end goals

For resources:
  - currentInventory: Items the user has (as key-value pairs, e.g., {"iron": 10})
  - needed: Items needed for projects (as key-value pairs)
  - farmingLocations: Where to find resources

Provide detailed information. Extract as much as you can from the conversation.`
}

// titlePrompt renders the first turns of a conversation for title
// generation.
func titlePrompt(msgs []models.ChatMessage) string {
	type turn struct {
		Role string `json:"role"`
		Text string `json:"text"`
	}
	turns := make([]turn, 0, len(msgs))
	for _, m := range msgs {
		turns = append(turns, turn{Role: m.Role, Text: m.Text()})
	}
	data, _ := json.Marshal(turns)
	return "Generate a title for this conversation:\n\n" + string(data)
}

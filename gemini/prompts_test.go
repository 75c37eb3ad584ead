package gemini

import (
	"strings"
	"testing"

	"github.com/detekoi/iron-golem/models"
)

func TestSystemInstruction_Editions(t *testing.T) {
	java := SystemInstruction(models.EditionJava)
	if !strings.Contains(java, "Java Edition") || !strings.Contains(java, "Minecraft") {
		t.Errorf("Java instruction missing edition marker")
	}

	bedrock := SystemInstruction(models.EditionBedrock)
	if !strings.Contains(bedrock, "Bedrock Edition") {
		t.Errorf("Bedrock instruction missing edition marker")
	}

	if SystemInstruction("") != java {
		t.Errorf("Empty edition should default to Java")
	}
	if SystemInstruction("pocket") != java {
		t.Errorf("Unknown edition should default to Java")
	}
}

func TestSystemInstruction_IncludesSearchGrounding(t *testing.T) {
	if !strings.Contains(SystemInstruction(models.EditionJava), "SEARCH GROUNDING") {
		t.Errorf("Instruction missing search grounding section")
	}
}

func TestRecipeTool_Declaration(t *testing.T) {
	if len(recipeTool.FunctionDeclarations) != 1 {
		t.Fatalf("Expected exactly one function declaration, got %d", len(recipeTool.FunctionDeclarations))
	}
	decl := recipeTool.FunctionDeclarations[0]
	if decl.Name != "display_crafting_recipe" {
		t.Errorf("Unexpected tool name %q", decl.Name)
	}
	for _, want := range []string{"slots", "outputItem", "outputAmount"} {
		found := false
		for _, r := range decl.Parameters.Required {
			if r == want {
				found = true
			}
		}
		if !found {
			t.Errorf("Parameter %q should be required", want)
		}
	}
}

func TestInjectSummary(t *testing.T) {
	history := []models.ChatMessage{
		models.NewTextMessage(models.RoleUser, "what next for my iron farm?"),
	}
	summary := &models.SessionSummary{
		SummaryVersion: models.SummaryVersion,
		LastUpdated:    "2026-01-01T00:00:00Z",
	}

	injected := injectSummary(history, summary)
	if len(injected) != 3 {
		t.Fatalf("Expected 2 synthetic turns + history, got %d", len(injected))
	}
	if injected[0].Role != models.RoleUser {
		t.Errorf("Context turn should carry the user role")
	}
	if !strings.HasPrefix(injected[0].Text(), "[SYSTEM: Session Context Loaded]") {
		t.Errorf("Context turn missing header: %q", injected[0].Text())
	}
	if injected[1].Text() != summaryAckMessage {
		t.Errorf("Ack turn mismatch: %q", injected[1].Text())
	}
	if injected[2].Text() != history[0].Text() {
		t.Errorf("History turn should follow synthetic turns")
	}

	if got := injectSummary(history, nil); len(got) != 1 {
		t.Errorf("Nil summary should leave history untouched, got %d turns", len(got))
	}
}

func TestToContents(t *testing.T) {
	msgs := []models.ChatMessage{
		models.NewTextMessage(models.RoleUser, "hello"),
		models.NewTextMessage(models.RoleModel, "hi there"),
	}
	contents := toContents(msgs)
	if len(contents) != 2 {
		t.Fatalf("Expected 2 contents, got %d", len(contents))
	}
	if contents[0].Role != "user" || contents[1].Role != "model" {
		t.Errorf("Roles not preserved: %s / %s", contents[0].Role, contents[1].Role)
	}
	if contents[0].Parts[0].Text != "hello" {
		t.Errorf("Part text not preserved: %q", contents[0].Parts[0].Text)
	}
}

func TestSummaryPrompt_ContainsConversation(t *testing.T) {
	msgs := []models.ChatMessage{
		models.NewTextMessage(models.RoleUser, "I am building a villager trading hall"),
	}
	prompt := summaryPrompt(msgs)
	if !strings.Contains(prompt, "user: I am building a villager trading hall") {
		t.Errorf("Prompt missing conversation text")
	}
	if !strings.Contains(prompt, "currentProjects") {
		t.Errorf("Prompt missing extraction instructions")
	}
}

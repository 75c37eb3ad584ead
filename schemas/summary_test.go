package schemas

import (
	"testing"

	"github.com/detekoi/iron-golem/models"
)

func validSummary() models.SessionSummary {
	s := FallbackSummary()
	s.CurrentProjects = []models.Project{
		{
			Name:      "Iron Farm",
			Type:      "farm",
			Status:    "in-progress",
			Progress:  40,
			NextSteps: []string{"place spawning platforms"},
		},
	}
	return s
}

func TestValidateSummary_Valid(t *testing.T) {
	s := validSummary()
	if err := ValidateSummary(&s); err != nil {
		t.Errorf("Expected valid summary, got error: %v", err)
	}
}

func TestValidateSummary_MissingVersion(t *testing.T) {
	s := validSummary()
	s.SummaryVersion = ""
	if err := ValidateSummary(&s); err == nil {
		t.Error("Expected validation error for missing summaryVersion")
	}
}

func TestValidateSummary_WrongVersion(t *testing.T) {
	s := validSummary()
	s.SummaryVersion = "2.0"
	if err := ValidateSummary(&s); err == nil {
		t.Error("Expected validation error for unsupported summaryVersion")
	}
}

func TestValidateSummary_ProgressOutOfRange(t *testing.T) {
	s := validSummary()
	s.CurrentProjects[0].Progress = 101
	if err := ValidateSummary(&s); err == nil {
		t.Error("Expected validation error for progress above 100")
	}

	s.CurrentProjects[0].Progress = -1
	if err := ValidateSummary(&s); err == nil {
		t.Error("Expected validation error for negative progress")
	}
}

func TestValidateSummary_BadProjectStatus(t *testing.T) {
	s := validSummary()
	s.CurrentProjects[0].Status = "abandoned"
	if err := ValidateSummary(&s); err == nil {
		t.Error("Expected validation error for unknown project status")
	}
}

func TestValidateSummary_MissingLastUpdated(t *testing.T) {
	s := validSummary()
	s.LastUpdated = ""
	if err := ValidateSummary(&s); err == nil {
		t.Error("Expected validation error for missing lastUpdated")
	}
}

func TestFallbackSummaryIsValid(t *testing.T) {
	s := FallbackSummary()
	if err := ValidateSummary(&s); err != nil {
		t.Errorf("Fallback summary must validate, got: %v", err)
	}
	if s.SummaryVersion != models.SummaryVersion {
		t.Errorf("Expected version %q, got %q", models.SummaryVersion, s.SummaryVersion)
	}
}

func TestApplyDefaultsFillsSections(t *testing.T) {
	s := models.SessionSummary{}
	ApplyDefaults(&s)
	if s.CurrentProjects == nil || s.Goals.ShortTerm == nil || s.KnowledgeBase.RecipesKnown == nil {
		t.Error("Expected defaults to fill nil sections")
	}
	if s.LastUpdated == "" {
		t.Error("Expected defaults to stamp lastUpdated")
	}
}

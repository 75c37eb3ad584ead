// Package schemas performs structural validation of model-produced
// documents before they are trusted: session summaries coming back from
// the summarization call and crafting recipes coming back as tool-call
// arguments.
package schemas

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/detekoi/iron-golem/models"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateSummary checks a summary document against the required shape:
// version tag present, project statuses in range, progress within 0-100.
func ValidateSummary(s *models.SessionSummary) error {
	if s == nil {
		return fmt.Errorf("summary is nil")
	}
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("summary failed validation: %w", err)
	}
	return nil
}

// ApplyDefaults fills sections the model omitted so a sparse but honest
// extraction still validates. LastUpdated is always server time, never
// whatever the model put there.
func ApplyDefaults(s *models.SessionSummary) {
	if s.SummaryVersion == "" {
		s.SummaryVersion = models.SummaryVersion
	}
	s.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	if s.CurrentProjects == nil {
		s.CurrentProjects = []models.Project{}
	}
	if s.KnowledgeBase.MechanicsLearned == nil {
		s.KnowledgeBase.MechanicsLearned = []string{}
	}
	if s.KnowledgeBase.RecipesKnown == nil {
		s.KnowledgeBase.RecipesKnown = []string{}
	}
	if s.KnowledgeBase.StrategiesDiscovered == nil {
		s.KnowledgeBase.StrategiesDiscovered = []string{}
	}
	if s.Goals.ShortTerm == nil {
		s.Goals.ShortTerm = []string{}
	}
	if s.Goals.LongTerm == nil {
		s.Goals.LongTerm = []string{}
	}
}

// FallbackSummary is the minimal valid document returned when the model
// produced something unusable. Callers prefer this over surfacing a
// validation failure.
func FallbackSummary() models.SessionSummary {
	s := models.SessionSummary{}
	ApplyDefaults(&s)
	return s
}

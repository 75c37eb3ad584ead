package models

// SummaryVersion is the only summary document version this build reads
// and writes. There is no migration path for older documents.
const SummaryVersion = "1.0"

// Project is one tracked building/farming/crafting project.
type Project struct {
	Name        string   `json:"name" validate:"required"`
	Type        string   `json:"type" validate:"required"`
	Status      string   `json:"status" validate:"required,oneof=planning in-progress completed"`
	Description string   `json:"description"`
	Progress    float64  `json:"progress" validate:"min=0,max=100"`
	NextSteps   []string `json:"nextSteps"`
	Blockers    []string `json:"blockers,omitempty"`
}

// KnowledgeBase collects mechanics, recipes and strategies the player has
// picked up during the session.
type KnowledgeBase struct {
	MechanicsLearned     []string `json:"mechanicsLearned"`
	RecipesKnown         []string `json:"recipesKnown"`
	StrategiesDiscovered []string `json:"strategiesDiscovered"`
}

// Goals splits objectives by horizon.
type Goals struct {
	ShortTerm []string `json:"shortTerm"`
	LongTerm  []string `json:"longTerm"`
}

// Resources tracks inventory state and where to farm what is missing.
type Resources struct {
	CurrentInventory map[string]float64 `json:"currentInventory"`
	Needed           map[string]float64 `json:"needed"`
	FarmingLocations []string           `json:"farmingLocations"`
}

// SessionSummary is a compact structured snapshot of conversation state.
// It is re-injected into later chat calls instead of the full transcript.
type SessionSummary struct {
	SummaryVersion  string        `json:"summaryVersion" validate:"required,eq=1.0"`
	LastUpdated     string        `json:"lastUpdated" validate:"required"`
	CurrentProjects []Project     `json:"currentProjects" validate:"dive"`
	KnowledgeBase   KnowledgeBase `json:"knowledgeBase"`
	Goals           Goals         `json:"goals"`
	Resources       *Resources    `json:"resources,omitempty"`
}

package models

type Mode string

const (
	ModeSurprise Mode = "surprise"
	ModeMustSee  Mode = "must-see"
)

// PlanSize - количество событий в одном плане прогулки.
const PlanSize = 3

type Event struct {
	Type     string `json:"type" yaml:"type" validate:"required"`
	Name     string `json:"name" yaml:"name" validate:"required"`
	Cost     int    `json:"cost" yaml:"cost" validate:"gte=0"`
	Duration int    `json:"duration" yaml:"duration" validate:"gt=0"`
	ImageURL string `json:"image_url" yaml:"image_url,omitempty"`
}

type UserPreferences struct {
	Budget    int      `json:"budget" validate:"gte=0"`
	Interests []string `json:"interests"`
	Mode      Mode     `json:"mode" validate:"required,oneof=surprise must-see"`
}

type OutingPlan struct {
	Plan          []Event `json:"plan"`
	TotalCost     int     `json:"total_cost"`
	TotalDuration int     `json:"total_duration"`
	OutingID      string  `json:"outing_id"`
}

type RegenerateRequest struct {
	CurrentPlan         []Event         `json:"current_plan" validate:"required,min=1,dive"`
	EventIndexToReplace int             `json:"event_index_to_replace"`
	UserPreferences     UserPreferences `json:"user_preferences"`
	OutingID            string          `json:"outing_id" validate:"required"`
}

// NewOutingPlan собирает план из копии событий и пересчитывает итоги.
func NewOutingPlan(events []Event, outingID string) OutingPlan {
	plan := OutingPlan{
		Plan:     CloneEvents(events),
		OutingID: outingID,
	}

	for _, event := range plan.Plan {
		plan.TotalCost += event.Cost
		plan.TotalDuration += event.Duration
	}

	return plan
}

// Clone возвращает план с независимой копией событий.
func (p OutingPlan) Clone() OutingPlan {
	return NewOutingPlan(p.Plan, p.OutingID)
}

// Names возвращает имена событий плана в исходном порядке.
func (p OutingPlan) Names() []string {
	return EventNames(p.Plan)
}

func CloneEvents(events []Event) []Event {
	if events == nil {
		return nil
	}

	out := make([]Event, len(events))
	copy(out, events)
	return out
}

func EventNames(events []Event) []string {
	names := make([]string, 0, len(events))
	for _, event := range events {
		names = append(names, event.Name)
	}
	return names
}

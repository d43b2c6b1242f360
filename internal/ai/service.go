package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"example.com/onestop-outings/backend/internal/models"
)

// City - единственный город, для которого строятся планы.
const City = "Dublin"

const systemPrompt = "You are a " + City + " tour planner API. Your entire response must be only the raw JSON text."

type Service struct {
	client Client
	logger *slog.Logger
}

// NewService создает сервис работы с AI-клиентом.
func NewService(client Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, logger: logger}
}

// RequestPlan запрашивает у модели план из трех событий и возвращает сырой текст ответа.
func (s *Service) RequestPlan(ctx context.Context, prefs models.UserPreferences, exclusions []string) (string, error) {
	prompt := buildPlanPrompt(prefs, exclusions)
	return s.chat(ctx, "plan", prompt)
}

// RequestReplacement запрашивает у модели замену события с индексом index.
func (s *Service) RequestReplacement(ctx context.Context, current []models.Event, index int, prefs models.UserPreferences, catalogNames []string) (string, error) {
	if index < 0 || index >= len(current) {
		return "", fmt.Errorf("replacement index %d out of range", index)
	}

	exclusions := mergeNames(models.EventNames(current), catalogNames)
	prompt := buildReplacementPrompt(current[index].Name, prefs, exclusions)
	return s.chat(ctx, "replacement", prompt)
}

func (s *Service) chat(ctx context.Context, kind, prompt string) (string, error) {
	messages := []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: prompt},
	}

	content, raw, err := s.client.Chat(ctx, messages)
	if err != nil {
		s.logger.Warn("ai request failed",
			slog.String("kind", kind),
			slog.String("raw_response", string(raw)),
			slog.Any("error", err))
		return "", err
	}

	s.logger.Info("ai response received",
		slog.String("kind", kind),
		slog.String("content", content))
	return content, nil
}

func modeInstruction(mode models.Mode) string {
	if mode == models.ModeSurprise {
		return "Focus on quirky, offbeat gems."
	}
	return "Focus on iconic, popular landmarks."
}

func replacementInstruction(mode models.Mode) string {
	if mode == models.ModeSurprise {
		return "Suggest a quirky, offbeat alternative."
	}
	return "Suggest an iconic or popular alternative."
}

func buildPlanPrompt(prefs models.UserPreferences, exclusions []string) string {
	return fmt.Sprintf(`Plan a %d-event day in %s based on these user preferences:
- Mode: %s
- Budget: %d
- Interests: %s
Instruction: %s
CRITICAL INSTRUCTION: Do not suggest any of the following well-known places: %s.
IMPORTANT: Respond with ONLY a valid JSON array of objects, with no introductory text, no markdown, and no explanations.
Example format:
[
  {"type": "Breakfast", "name": "The Early Bird Cafe", "cost": 15, "duration": 60},
  {"type": "Activity", "name": "A lesser-known gallery", "cost": 0, "duration": 120},
  {"type": "Lunch", "name": "A unique food market", "cost": 25, "duration": 75}
]`,
		models.PlanSize, City, prefs.Mode, prefs.Budget,
		strings.Join(prefs.Interests, ", "), modeInstruction(prefs.Mode),
		strings.Join(exclusions, ", "))
}

func buildReplacementPrompt(replacedName string, prefs models.UserPreferences, exclusions []string) string {
	return fmt.Sprintf(`A user wants to replace one event in their %s plan.
- Event to Replace: %q
- User Interests: %s
- Planning Mode: %s
Instruction: %s
CRITICAL INSTRUCTION: The new event must not be in the following list: %s.
IMPORTANT: Respond with ONLY a single valid JSON object, with no introductory text, no markdown, and no explanations.
Example format:
{"type": "Pub", "name": "A hidden local pub", "cost": 20, "duration": 90}`,
		City, replacedName, strings.Join(prefs.Interests, ", "), prefs.Mode,
		replacementInstruction(prefs.Mode), strings.Join(exclusions, ", "))
}

// mergeNames объединяет списки имен без повторов (без учета регистра), сохраняя порядок.
func mergeNames(lists ...[]string) []string {
	seen := make(map[string]struct{})
	merged := make([]string, 0)
	for _, list := range lists {
		for _, name := range list {
			key := strings.ToLower(strings.TrimSpace(name))
			if key == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, name)
		}
	}
	return merged
}

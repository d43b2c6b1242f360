package ai

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"example.com/onestop-outings/backend/internal/models"
)

// ParseResult содержит валидные события и описания отброшенных записей.
type ParseResult struct {
	Events  []models.Event
	Dropped []DroppedRecord
}

type DroppedRecord struct {
	Index  int
	Reason string
}

type rawEvent struct {
	Type     *string      `json:"type"`
	Name     *string      `json:"name"`
	Cost     *flexibleInt `json:"cost"`
	Duration *flexibleInt `json:"duration"`
	ImageURL string       `json:"image_url"`
}

// flexibleInt принимает целые числа, числовые строки и токен "free".
type flexibleInt int

func (v *flexibleInt) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return errors.New("value is null")
	}

	if len(trimmed) > 0 && trimmed[0] == '"' {
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return err
		}
		text = strings.TrimSpace(text)
		if strings.EqualFold(text, "free") {
			*v = 0
			return nil
		}
		return v.setNumber(text)
	}

	return v.setNumber(string(trimmed))
}

func (v *flexibleInt) setNumber(text string) error {
	number, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return fmt.Errorf("not a number: %q", text)
	}
	if number != math.Trunc(number) || math.IsInf(number, 0) {
		return fmt.Errorf("not an integer: %q", text)
	}
	*v = flexibleInt(number)
	return nil
}

// ParseEvents разбирает ответ модели со списком событий.
// Некорректные записи отбрасываются, ошибка возвращается только если JSON не читается целиком.
func ParseEvents(raw string) (ParseResult, error) {
	payload := extractJSON(raw)
	if payload == "" {
		return ParseResult{}, fmt.Errorf("%w: response does not contain json", ErrMalformedResponse)
	}

	var records []json.RawMessage
	if strings.HasPrefix(payload, "{") {
		records = []json.RawMessage{json.RawMessage(payload)}
	} else if err := json.Unmarshal([]byte(payload), &records); err != nil {
		return ParseResult{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	result := ParseResult{Events: make([]models.Event, 0, len(records))}
	for i, record := range records {
		event, err := decodeEvent(record)
		if err != nil {
			result.Dropped = append(result.Dropped, DroppedRecord{Index: i, Reason: err.Error()})
			continue
		}
		result.Events = append(result.Events, event)
	}

	return result, nil
}

// ParseEvent разбирает ответ модели с одним событием.
func ParseEvent(raw string) (models.Event, error) {
	payload := extractJSON(raw)
	if payload == "" || !strings.HasPrefix(payload, "{") {
		return models.Event{}, fmt.Errorf("%w: response does not contain a json object", ErrMalformedResponse)
	}

	event, err := decodeEvent(json.RawMessage(payload))
	if err != nil {
		return models.Event{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return event, nil
}

func decodeEvent(record json.RawMessage) (models.Event, error) {
	var raw rawEvent
	if err := json.Unmarshal(record, &raw); err != nil {
		return models.Event{}, err
	}

	switch {
	case raw.Type == nil || strings.TrimSpace(*raw.Type) == "":
		return models.Event{}, errors.New("type is required")
	case raw.Name == nil || strings.TrimSpace(*raw.Name) == "":
		return models.Event{}, errors.New("name is required")
	case raw.Cost == nil:
		return models.Event{}, errors.New("cost is required")
	case raw.Duration == nil:
		return models.Event{}, errors.New("duration is required")
	case *raw.Cost < 0:
		return models.Event{}, errors.New("cost must not be negative")
	case *raw.Duration <= 0:
		return models.Event{}, errors.New("duration must be positive")
	}

	return models.Event{
		Type:     strings.TrimSpace(*raw.Type),
		Name:     strings.TrimSpace(*raw.Name),
		Cost:     int(*raw.Cost),
		Duration: int(*raw.Duration),
		ImageURL: strings.TrimSpace(raw.ImageURL),
	}, nil
}

// extractJSON снимает markdown-ограждение и возвращает первый JSON-массив или объект.
func extractJSON(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}

	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimPrefix(strings.TrimSpace(trimmed), "json")
		trimmed = strings.TrimSpace(trimmed)
		if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
			trimmed = trimmed[:idx]
		}
		trimmed = strings.TrimSpace(trimmed)
	}

	start := strings.IndexAny(trimmed, "[{")
	if start == -1 {
		return ""
	}

	closing := "]"
	if trimmed[start] == '{' {
		closing = "}"
	}

	end := strings.LastIndex(trimmed, closing)
	if end <= start {
		return ""
	}

	return trimmed[start : end+1]
}

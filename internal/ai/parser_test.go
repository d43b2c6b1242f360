package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/onestop-outings/backend/internal/models"
)

// TestParseEventsDropsIncompleteRecord проверяет, что одна неполная запись не ломает весь ответ.
func TestParseEventsDropsIncompleteRecord(t *testing.T) {
	raw := `[
		{"type": "Breakfast", "name": "Bear Market", "cost": 8, "duration": 30},
		{"type": "Activity", "name": "Hidden Garden", "cost": 0},
		{"type": "Lunch", "name": "Fish Shop", "cost": 20, "duration": 60}
	]`

	result, err := ParseEvents(raw)
	require.NoError(t, err)
	require.Len(t, result.Events, 2)
	require.Len(t, result.Dropped, 1)

	assert.Equal(t, 1, result.Dropped[0].Index)
	assert.Contains(t, result.Dropped[0].Reason, "duration")
	assert.Equal(t, []string{"Bear Market", "Fish Shop"}, models.EventNames(result.Events))
}

// TestParseEventsStripsCodeFence проверяет разбор ответа в markdown-ограждении.
func TestParseEventsStripsCodeFence(t *testing.T) {
	raw := "```json\n[{\"type\":\"Pub\",\"name\":\"The Cobblestone\",\"cost\":12,\"duration\":90}]\n```"

	result, err := ParseEvents(raw)
	require.NoError(t, err)
	require.Len(t, result.Events, 1)
	assert.Equal(t, models.Event{Type: "Pub", Name: "The Cobblestone", Cost: 12, Duration: 90}, result.Events[0])
}

// TestParseEventsCostTokens проверяет нормализацию текстовых значений стоимости.
func TestParseEventsCostTokens(t *testing.T) {
	raw := `[
		{"type":"Pub","name":"X","cost":"free","duration":30},
		{"type":"Pub","name":"Y","cost":"FREE","duration":30},
		{"type":"Pub","name":"Z","cost":" 15 ","duration":"45"},
		{"type":"Pub","name":"W","cost":"cheap","duration":30},
		{"type":"Pub","name":"V","cost":12.5,"duration":30}
	]`

	result, err := ParseEvents(raw)
	require.NoError(t, err)
	require.Len(t, result.Events, 3)
	assert.Equal(t, 0, result.Events[0].Cost)
	assert.Equal(t, 0, result.Events[1].Cost)
	assert.Equal(t, 15, result.Events[2].Cost)
	assert.Equal(t, 45, result.Events[2].Duration)
	assert.Len(t, result.Dropped, 2)
}

// TestParseEventsRejectsInvalidValues проверяет отбрасывание отрицательной стоимости и нулевой длительности.
func TestParseEventsRejectsInvalidValues(t *testing.T) {
	raw := `[
		{"type":"Pub","name":"A","cost":-1,"duration":30},
		{"type":"Pub","name":"B","cost":1,"duration":0},
		{"type":"","name":"C","cost":1,"duration":30},
		{"type":"Pub","name":"  ","cost":1,"duration":30},
		{"type":"Pub","name":"D","cost":null,"duration":30},
		"not an object"
	]`

	result, err := ParseEvents(raw)
	require.NoError(t, err)
	assert.Empty(t, result.Events)
	assert.Len(t, result.Dropped, 6)
}

// TestParseEventsMalformed проверяет ошибку для нечитаемого ответа.
func TestParseEventsMalformed(t *testing.T) {
	for _, raw := range []string{"", "Sorry, I cannot help with that.", "[{\"type\": \"Pub\""} {
		_, err := ParseEvents(raw)
		require.ErrorIs(t, err, ErrMalformedResponse, "raw %q", raw)
	}
}

// TestParseEvent проверяет разбор одиночного события.
func TestParseEvent(t *testing.T) {
	event, err := ParseEvent("Here you go: {\"type\":\"Pub\",\"name\":\"X\",\"cost\":\"free\",\"duration\":30}")
	require.NoError(t, err)
	assert.Equal(t, models.Event{Type: "Pub", Name: "X", Cost: 0, Duration: 30}, event)

	_, err = ParseEvent(`{"type":"Pub","name":"X","cost":5}`)
	require.ErrorIs(t, err, ErrMalformedResponse)

	_, err = ParseEvent(`[{"type":"Pub","name":"X","cost":5,"duration":30}]`)
	require.ErrorIs(t, err, ErrMalformedResponse)
}

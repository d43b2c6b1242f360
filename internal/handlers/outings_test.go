package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/onestop-outings/backend/internal/models"
	"example.com/onestop-outings/backend/internal/notifications"
	"example.com/onestop-outings/backend/internal/planner"
)

type testValidator struct {
	validate *validator.Validate
}

func (v testValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

type fakePlanner struct {
	plan      models.OutingPlan
	err       error
	remaining int
	lastPrefs models.UserPreferences
	lastRegen models.RegenerateRequest
}

func (f *fakePlanner) CreatePlan(_ context.Context, prefs models.UserPreferences) (models.OutingPlan, error) {
	f.lastPrefs = prefs
	return f.plan, f.err
}

func (f *fakePlanner) RegenerateEvent(_ context.Context, req models.RegenerateRequest) (models.OutingPlan, error) {
	f.lastRegen = req
	return f.plan, f.err
}

func (f *fakePlanner) RemainingRegenerations(string) int {
	return f.remaining
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = testValidator{validate: validator.New()}
	return e
}

func samplePlan() models.OutingPlan {
	return models.NewOutingPlan([]models.Event{
		{Type: "Lunch", Name: "Boojum", Cost: 12, Duration: 45},
		{Type: "Activity", Name: "Phoenix Park", Cost: 0, Duration: 120},
		{Type: "Museum", Name: "EPIC", Cost: 25, Duration: 90},
	}, "outing-1")
}

func doJSON(e *echo.Echo, handler echo.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	_ = handler(e.NewContext(req, rec))
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, body["error"], body["detail"])
	return body["detail"]
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestRoot проверяет приветственное сообщение.
func TestRoot(t *testing.T) {
	e := newTestEcho()
	h := NewOutingHandler(&fakePlanner{}, nil, discardLogger())

	rec := httptest.NewRecorder()
	require.NoError(t, h.Root(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Welcome to the OneStopOutings API"}`, rec.Body.String())
}

// TestPlan проверяет успешное создание плана.
func TestPlan(t *testing.T) {
	e := newTestEcho()
	fake := &fakePlanner{plan: samplePlan()}
	h := NewOutingHandler(fake, nil, discardLogger())

	rec := doJSON(e, h.Plan, `{"budget": 60, "interests": ["art"], "mode": "surprise"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var plan models.OutingPlan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plan))
	assert.Equal(t, 37, plan.TotalCost)
	assert.Equal(t, "outing-1", plan.OutingID)
	assert.Equal(t, models.ModeSurprise, fake.lastPrefs.Mode)
}

// TestPlanValidation проверяет ответ 400 на некорректные предпочтения.
func TestPlanValidation(t *testing.T) {
	e := newTestEcho()
	h := NewOutingHandler(&fakePlanner{plan: samplePlan()}, nil, discardLogger())

	for _, body := range []string{
		`{"budget": 60, "interests": [], "mode": "relaxed"}`,
		`{"budget": -1, "interests": [], "mode": "surprise"}`,
		`{"budget": 60, "interests": []}`,
		`{"budget": "lots"`,
	} {
		rec := doJSON(e, h.Plan, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

// TestPlanFailure проверяет ответ 500, если план не удалось собрать.
func TestPlanFailure(t *testing.T) {
	e := newTestEcho()
	h := NewOutingHandler(&fakePlanner{err: planner.ErrExhaustedFallback}, nil, discardLogger())

	rec := doJSON(e, h.Plan, `{"budget": 60, "interests": ["art"], "mode": "must-see"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to generate plan from any source.", decodeError(t, rec))
}

const regenerateBody = `{
	"current_plan": [
		{"type": "Lunch", "name": "Boojum", "cost": 12, "duration": 45},
		{"type": "Activity", "name": "Phoenix Park", "cost": 0, "duration": 120},
		{"type": "Museum", "name": "EPIC", "cost": 25, "duration": 90}
	],
	"event_index_to_replace": 1,
	"user_preferences": {"budget": 60, "interests": ["art"], "mode": "surprise"},
	"outing_id": "outing-1"
}`

// TestRegenerateEventStatuses проверяет соответствие ошибок кодам ответа.
func TestRegenerateEventStatuses(t *testing.T) {
	cases := []struct {
		err    error
		status int
		detail string
	}{
		{err: nil, status: http.StatusOK},
		{err: fmt.Errorf("%w: 5 of 3", planner.ErrInvalidIndex), status: http.StatusBadRequest, detail: "event_index_to_replace is out of range"},
		{err: planner.ErrQuotaExceeded, status: http.StatusForbidden, detail: "Regeneration limit of 5 reached for this outing."},
		{err: planner.ErrNoReplacement, status: http.StatusInternalServerError, detail: "Could not find a suitable replacement from any source."},
	}

	for _, tc := range cases {
		e := newTestEcho()
		fake := &fakePlanner{plan: samplePlan(), err: tc.err}
		h := NewOutingHandler(fake, notifications.NewHub(), discardLogger())

		rec := doJSON(e, h.RegenerateEvent, regenerateBody)

		require.Equal(t, tc.status, rec.Code, "error %v", tc.err)
		if tc.detail != "" {
			assert.Equal(t, tc.detail, decodeError(t, rec))
		}
		assert.Equal(t, 1, fake.lastRegen.EventIndexToReplace)
		assert.Len(t, fake.lastRegen.CurrentPlan, 3)
	}
}

// TestRegenerateEventValidation проверяет обязательные поля запроса замены.
func TestRegenerateEventValidation(t *testing.T) {
	e := newTestEcho()
	fake := &fakePlanner{plan: samplePlan()}
	h := NewOutingHandler(fake, nil, discardLogger())

	for _, body := range []string{
		`{"current_plan": [], "event_index_to_replace": 0, "user_preferences": {"mode": "surprise"}, "outing_id": "x"}`,
		`{"current_plan": [{"type": "Pub", "name": "X", "cost": 1, "duration": 10}], "event_index_to_replace": 0, "user_preferences": {"mode": "surprise"}}`,
		`{"current_plan": [{"type": "Pub", "name": "X", "cost": 1, "duration": 0}], "event_index_to_replace": 0, "user_preferences": {"mode": "surprise"}, "outing_id": "x"}`,
		`{"current_plan": [{"type": "Pub", "name": "X", "cost": 1, "duration": 10}], "event_index_to_replace": 0, "user_preferences": {"mode": "other"}, "outing_id": "x"}`,
	} {
		rec := doJSON(e, h.RegenerateEvent, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	assert.Empty(t, fake.lastRegen.OutingID)
}

// TestRegenerateEventPublishes проверяет уведомление подписчиков прогулки.
func TestRegenerateEventPublishes(t *testing.T) {
	e := newTestEcho()
	hub := notifications.NewHub()
	ch, unsubscribe := hub.Subscribe("outing-1")
	defer unsubscribe()

	h := NewOutingHandler(&fakePlanner{plan: samplePlan(), remaining: 4}, hub, discardLogger())
	rec := doJSON(e, h.RegenerateEvent, regenerateBody)
	require.Equal(t, http.StatusOK, rec.Code)

	select {
	case event := <-ch:
		assert.Equal(t, notifications.EventRegenerated, event.Type)
		data := event.Data.(map[string]interface{})
		assert.Equal(t, "Phoenix Park", data["name"])
		assert.Equal(t, 4, data["remaining"])
	case <-time.After(time.Second):
		t.Fatal("expected regeneration event")
	}
}

// TestStatsOverview проверяет ответ статистики.
func TestStatsOverview(t *testing.T) {
	e := newTestEcho()
	h := NewStatsHandler(statsFunc(func() planner.Stats {
		return planner.Stats{CachedPlans: 2, TrackedOutings: 3}
	}))

	rec := httptest.NewRecorder()
	require.NoError(t, h.Overview(e.NewContext(httptest.NewRequest(http.MethodGet, "/stats", nil), rec)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"catalog":null,"cached_plans":2,"tracked_outings":3}`, rec.Body.String())
}

type statsFunc func() planner.Stats

func (f statsFunc) Stats() planner.Stats { return f() }

// TestHealth проверяет статус сервиса.
func TestHealth(t *testing.T) {
	e := newTestEcho()
	rec := httptest.NewRecorder()
	require.NoError(t, Health(e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)))
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

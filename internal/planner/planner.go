package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"example.com/onestop-outings/backend/internal/ai"
	"example.com/onestop-outings/backend/internal/cache"
	"example.com/onestop-outings/backend/internal/catalog"
	"example.com/onestop-outings/backend/internal/metrics"
	"example.com/onestop-outings/backend/internal/models"
)

// LocalRegenLimit - число замен, для которых сначала пробуется локальный каталог.
const LocalRegenLimit = 3

// Категории, из которых собирается резервный план.
var fallbackCategories = []catalog.Category{catalog.Food, catalog.Activity, catalog.Museum}

type Generator interface {
	RequestPlan(ctx context.Context, prefs models.UserPreferences, exclusions []string) (string, error)
	RequestReplacement(ctx context.Context, current []models.Event, index int, prefs models.UserPreferences, catalogNames []string) (string, error)
}

type ImageFinder interface {
	FindImage(ctx context.Context, name string) string
}

type noImages struct{}

func (noImages) FindImage(context.Context, string) string { return "" }

type Planner struct {
	catalog   *catalog.Catalog
	generator Generator
	images    ImageFinder
	plans     *cache.PlanCache
	quota     *cache.Quota
	flights   singleflight.Group
	sessions  keyedMutex
	metrics   *metrics.Metrics
	logger    *slog.Logger
	newID     func() string
}

type Option func(*Planner)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Planner) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Planner) {
		if m != nil {
			p.metrics = m
		}
	}
}

func WithPlanCache(plans *cache.PlanCache) Option {
	return func(p *Planner) {
		if plans != nil {
			p.plans = plans
		}
	}
}

func WithQuota(quota *cache.Quota) Option {
	return func(p *Planner) {
		if quota != nil {
			p.quota = quota
		}
	}
}

// WithIDGenerator подменяет генератор идентификаторов прогулок.
func WithIDGenerator(newID func() string) Option {
	return func(p *Planner) {
		if newID != nil {
			p.newID = newID
		}
	}
}

// New создает оркестратор планов.
func New(cat *catalog.Catalog, generator Generator, images ImageFinder, opts ...Option) *Planner {
	if images == nil {
		images = noImages{}
	}

	p := &Planner{
		catalog:   cat,
		generator: generator,
		images:    images,
		plans:     cache.NewPlanCache(cache.DefaultTTL),
		quota:     cache.NewQuota(),
		logger:    slog.Default(),
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.metrics == nil {
		p.metrics = metrics.New(nil)
	}

	return p
}

type createState int

const (
	stateGenerate createState = iota
	stateParse
	stateLocalFallback
	stateFinalize
)

// CreatePlan возвращает новый план прогулки для предпочтений пользователя.
func (p *Planner) CreatePlan(ctx context.Context, prefs models.UserPreferences) (models.OutingPlan, error) {
	key := cache.Fingerprint(prefs)

	if cached, ok := p.plans.Get(key); ok {
		p.logger.Info("plan cache hit", slog.String("key", key))
		p.metrics.Plans.WithLabelValues(metrics.SourceCache).Inc()
		return p.startOuting(cached.Plan), nil
	}

	value, err, shared := p.flights.Do(key, func() (any, error) {
		// Вызов мог ждать завершения другого построения с тем же ключом.
		if cached, ok := p.plans.Get(key); ok {
			p.metrics.Plans.WithLabelValues(metrics.SourceCache).Inc()
			return cached.Plan, nil
		}
		return p.buildPlan(context.WithoutCancel(ctx), key, prefs)
	})
	if err != nil {
		return models.OutingPlan{}, err
	}
	if shared {
		p.logger.Info("plan request collapsed with identical request", slog.String("key", key))
	}

	return p.startOuting(value.([]models.Event)), nil
}

func (p *Planner) buildPlan(ctx context.Context, key string, prefs models.UserPreferences) ([]models.Event, error) {
	var (
		raw    string
		events []models.Event
		err    error
	)
	source := metrics.SourceLLM
	state := stateGenerate

	for {
		switch state {
		case stateGenerate:
			raw, err = p.generator.RequestPlan(ctx, prefs, p.catalog.Names())
			if err != nil {
				p.metrics.LLMRequests.WithLabelValues("plan", metrics.OutcomeError).Inc()
				p.logger.Error("plan generation failed, attempting local fallback",
					slog.String("key", key), slog.Any("error", err))
				state = stateLocalFallback
				continue
			}
			p.metrics.LLMRequests.WithLabelValues("plan", metrics.OutcomeSuccess).Inc()
			state = stateParse

		case stateParse:
			events, err = p.parsePlan(raw)
			if err != nil {
				p.logger.Error("generated plan unusable, attempting local fallback",
					slog.String("key", key), slog.Any("error", err))
				state = stateLocalFallback
				continue
			}
			state = stateFinalize

		case stateLocalFallback:
			source = metrics.SourceFallback
			events, err = p.fallbackPlan()
			if err != nil {
				p.metrics.Plans.WithLabelValues(metrics.OutcomeFailed).Inc()
				p.logger.Error("local fallback failed", slog.String("key", key), slog.Any("error", err))
				return nil, err
			}
			state = stateFinalize

		case stateFinalize:
			events = p.decorate(ctx, events, source == metrics.SourceLLM)
			if source == metrics.SourceLLM {
				p.plans.Put(key, models.NewOutingPlan(events, ""))
			}
			p.metrics.Plans.WithLabelValues(source).Inc()
			p.logger.Info("plan created", slog.String("key", key), slog.String("source", source))
			return events, nil
		}
	}
}

// parsePlan оставляет первые PlanSize валидных событий с различными именами.
func (p *Planner) parsePlan(raw string) ([]models.Event, error) {
	result, err := ai.ParseEvents(raw)
	if err != nil {
		return nil, err
	}

	for _, dropped := range result.Dropped {
		p.logger.Warn("dropped generated record",
			slog.Int("index", dropped.Index), slog.String("reason", dropped.Reason))
	}
	p.metrics.DroppedRecords.Add(float64(len(result.Dropped)))

	events := make([]models.Event, 0, models.PlanSize)
	for _, event := range result.Events {
		if catalog.ContainsName(models.EventNames(events), event.Name) {
			p.logger.Warn("dropped duplicate generated event", slog.String("name", event.Name))
			continue
		}
		events = append(events, event)
		if len(events) == models.PlanSize {
			return events, nil
		}
	}

	return nil, fmt.Errorf("%w: %d usable events, need %d", ai.ErrMalformedResponse, len(events), models.PlanSize)
}

// fallbackPlan берет по одному случайному событию из каждой резервной категории.
// Совпадение имен не перевыбирается.
func (p *Planner) fallbackPlan() ([]models.Event, error) {
	events := make([]models.Event, 0, len(fallbackCategories))
	for _, category := range fallbackCategories {
		event, ok := p.catalog.Pick(category, nil)
		if !ok {
			return nil, fmt.Errorf("%w: category %s is empty", ErrExhaustedFallback, category)
		}
		if catalog.ContainsName(models.EventNames(events), event.Name) {
			return nil, fmt.Errorf("%w: %q drawn twice", ErrExhaustedFallback, event.Name)
		}
		events = append(events, event)
	}

	return events, nil
}

// decorate подбирает изображения и при необходимости запоминает события в каталоге.
func (p *Planner) decorate(ctx context.Context, events []models.Event, remember bool) []models.Event {
	out := models.CloneEvents(events)
	for i := range out {
		out[i] = p.prepareEvent(ctx, out[i], remember)
	}
	return out
}

func (p *Planner) prepareEvent(ctx context.Context, event models.Event, remember bool) models.Event {
	if event.ImageURL == "" {
		event.ImageURL = p.images.FindImage(ctx, event.Name)
	}
	if remember && p.catalog.Remember(event) {
		p.metrics.CatalogAdditions.Inc()
	}
	return event
}

func (p *Planner) startOuting(events []models.Event) models.OutingPlan {
	outingID := p.newID()
	p.quota.Reset(outingID)
	return models.NewOutingPlan(events, outingID)
}

// RegenerateEvent заменяет одно событие плана с учетом квоты прогулки.
func (p *Planner) RegenerateEvent(ctx context.Context, req models.RegenerateRequest) (models.OutingPlan, error) {
	index := req.EventIndexToReplace
	if index < 0 || index >= len(req.CurrentPlan) {
		return models.OutingPlan{}, fmt.Errorf("%w: %d of %d", ErrInvalidIndex, index, len(req.CurrentPlan))
	}

	unlock := p.sessions.Lock(req.OutingID)
	defer unlock()

	count := p.quota.Count(req.OutingID)
	if count >= cache.MaxRegenerations {
		p.metrics.Regenerations.WithLabelValues(metrics.OutcomeQuota).Inc()
		p.logger.Warn("regeneration limit reached", slog.String("outing_id", req.OutingID))
		return models.OutingPlan{}, ErrQuotaExceeded
	}

	current := models.CloneEvents(req.CurrentPlan)
	key := cache.RegenerationKey(req.OutingID, index, current[index].Name)

	if cached, ok := p.plans.Get(key); ok {
		newCount := p.quota.Increment(req.OutingID)
		p.metrics.Regenerations.WithLabelValues(metrics.SourceCache).Inc()
		p.logger.Info("regeneration cache hit", slog.String("key", key), slog.Int("count", newCount))
		return cached, nil
	}

	p.logger.Info("regenerating event",
		slog.String("outing_id", req.OutingID), slog.Int("index", index), slog.Int("count", count))

	event, source, err := p.findReplacement(ctx, current, index, req.UserPreferences, count)
	if err != nil {
		p.metrics.Regenerations.WithLabelValues(metrics.OutcomeFailed).Inc()
		return models.OutingPlan{}, err
	}

	current[index] = p.prepareEvent(ctx, event, true)
	plan := models.NewOutingPlan(current, req.OutingID)
	p.plans.Put(key, plan)
	newCount := p.quota.Increment(req.OutingID)

	p.metrics.Regenerations.WithLabelValues(source).Inc()
	p.logger.Info("event regenerated",
		slog.String("outing_id", req.OutingID),
		slog.Int("index", index),
		slog.String("source", source),
		slog.Int("count", newCount))

	return plan, nil
}

type replacementSource struct {
	name string
	find func() (models.Event, error)
}

// findReplacement перебирает источники замены в порядке, зависящем от числа уже сделанных замен.
func (p *Planner) findReplacement(ctx context.Context, current []models.Event, index int, prefs models.UserPreferences, count int) (models.Event, string, error) {
	local := replacementSource{name: metrics.SourceLocal, find: func() (models.Event, error) {
		return p.localReplacement(current, index)
	}}
	generated := replacementSource{name: metrics.SourceLLM, find: func() (models.Event, error) {
		return p.generatedReplacement(context.WithoutCancel(ctx), current, index, prefs)
	}}

	order := []replacementSource{local, generated}
	if count >= LocalRegenLimit {
		order = []replacementSource{generated, local}
	}

	var errs []error
	for _, source := range order {
		event, err := source.find()
		if err == nil {
			return event, source.name, nil
		}
		p.logger.Warn("replacement source failed, escalating",
			slog.String("source", source.name), slog.Any("error", err))
		errs = append(errs, err)
	}

	return models.Event{}, "", fmt.Errorf("%w: %w", ErrNoReplacement, errors.Join(errs...))
}

func (p *Planner) localReplacement(current []models.Event, index int) (models.Event, error) {
	category := catalog.CategoryFor(current[index].Type)
	event, ok := p.catalog.Pick(category, models.EventNames(current))
	if !ok {
		return models.Event{}, fmt.Errorf("no local candidate in category %s", category)
	}
	return event, nil
}

func (p *Planner) generatedReplacement(ctx context.Context, current []models.Event, index int, prefs models.UserPreferences) (models.Event, error) {
	catalogNames := p.catalog.Names()

	raw, err := p.generator.RequestReplacement(ctx, current, index, prefs, catalogNames)
	if err != nil {
		p.metrics.LLMRequests.WithLabelValues("replacement", metrics.OutcomeError).Inc()
		return models.Event{}, err
	}
	p.metrics.LLMRequests.WithLabelValues("replacement", metrics.OutcomeSuccess).Inc()

	event, err := ai.ParseEvent(raw)
	if err != nil {
		return models.Event{}, err
	}

	if catalog.ContainsName(models.EventNames(current), event.Name) || catalog.ContainsName(catalogNames, event.Name) {
		return models.Event{}, fmt.Errorf("%w: %q is already known", ai.ErrMalformedResponse, event.Name)
	}

	return event, nil
}

// RemainingRegenerations возвращает число оставшихся замен для прогулки.
func (p *Planner) RemainingRegenerations(outingID string) int {
	return p.quota.Remaining(outingID)
}

// Stats описывает состояние процесса для служебного эндпоинта.
type Stats struct {
	Catalog        map[catalog.Category]int `json:"catalog"`
	CachedPlans    int                      `json:"cached_plans"`
	TrackedOutings int                      `json:"tracked_outings"`
}

func (p *Planner) Stats() Stats {
	return Stats{
		Catalog:        p.catalog.Stats(),
		CachedPlans:    p.plans.Len(),
		TrackedOutings: p.quota.Sessions(),
	}
}

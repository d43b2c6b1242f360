package catalog

import (
	_ "embed"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"

	"example.com/onestop-outings/backend/internal/models"
)

//go:embed seed.yaml
var seedYAML []byte

type Category string

const (
	Museum   Category = "Museum"
	Pub      Category = "Pub"
	Food     Category = "Food"
	Activity Category = "Activity"
)

type categoryRule struct {
	substrings []string
	category   Category
}

// Порядок правил важен: первое совпадение побеждает.
var categoryRules = []categoryRule{
	{substrings: []string{"museum"}, category: Museum},
	{substrings: []string{"pub"}, category: Pub},
	{substrings: []string{"food", "lunch", "dinner", "breakfast", "treat"}, category: Food},
}

// CategoryFor выводит категорию каталога из свободного типа события.
func CategoryFor(eventType string) Category {
	lowered := strings.ToLower(eventType)
	for _, rule := range categoryRules {
		for _, substring := range rule.substrings {
			if strings.Contains(lowered, substring) {
				return rule.category
			}
		}
	}

	return Activity
}

func isDerivable(category Category) bool {
	switch category {
	case Museum, Pub, Food, Activity:
		return true
	default:
		return false
	}
}

type Section struct {
	Category Category       `yaml:"category"`
	Spots    []models.Event `yaml:"spots"`
}

type Catalog struct {
	mu     sync.RWMutex
	spots  *orderedmap.OrderedMap[Category, []models.Event]
	rnd    *rand.Rand
	logger *slog.Logger
}

type Option func(*Catalog)

// WithRand задает источник случайных чисел (нужно для детерминированных тестов).
func WithRand(rnd *rand.Rand) Option {
	return func(c *Catalog) {
		c.rnd = rnd
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New создает каталог из набора секций.
func New(sections []Section, opts ...Option) *Catalog {
	c := &Catalog{
		spots:  orderedmap.New[Category, []models.Event](),
		rnd:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	for _, section := range sections {
		existing, _ := c.spots.Get(section.Category)
		c.spots.Set(section.Category, append(existing, models.CloneEvents(section.Spots)...))
	}

	return c
}

// NewDefault создает каталог из встроенного набора мест Дублина.
func NewDefault(opts ...Option) (*Catalog, error) {
	sections, err := ParseSeed(seedYAML)
	if err != nil {
		return nil, err
	}

	return New(sections, opts...), nil
}

// ParseSeed разбирает YAML-описание каталога.
func ParseSeed(data []byte) ([]Section, error) {
	var sections []Section
	if err := yaml.Unmarshal(data, &sections); err != nil {
		return nil, fmt.Errorf("parse catalog seed: %w", err)
	}

	for _, section := range sections {
		if strings.TrimSpace(string(section.Category)) == "" {
			return nil, fmt.Errorf("parse catalog seed: section without category")
		}
	}

	return sections, nil
}

// Lookup возвращает копию событий категории или пустой список.
func (c *Catalog) Lookup(category Category) []models.Event {
	c.mu.RLock()
	defer c.mu.RUnlock()

	spots, ok := c.spots.Get(category)
	if !ok {
		return []models.Event{}
	}

	return models.CloneEvents(spots)
}

// RecordIfNovel добавляет событие в категорию, если такого имени там еще нет.
func (c *Catalog) RecordIfNovel(category Category, event models.Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	spots, ok := c.spots.Get(category)
	if !ok && !isDerivable(category) {
		c.logger.Warn("catalog category not found, skipping",
			slog.String("category", string(category)),
			slog.String("name", event.Name))
		return false
	}

	for _, spot := range spots {
		if strings.EqualFold(spot.Name, event.Name) {
			c.logger.Info("event already in catalog, skipping",
				slog.String("category", string(category)),
				slog.String("name", event.Name))
			return false
		}
	}

	c.spots.Set(category, append(spots, event))
	c.logger.Info("event added to catalog",
		slog.String("category", string(category)),
		slog.String("name", event.Name))
	return true
}

// Remember добавляет событие в категорию, выведенную из его типа.
func (c *Catalog) Remember(event models.Event) bool {
	return c.RecordIfNovel(CategoryFor(event.Type), event)
}

// Names возвращает все известные имена без повторов в порядке добавления.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[string]struct{})
	names := make([]string, 0)
	for pair := c.spots.Oldest(); pair != nil; pair = pair.Next() {
		for _, spot := range pair.Value {
			key := strings.ToLower(spot.Name)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			names = append(names, spot.Name)
		}
	}

	return names
}

// Pick выбирает случайное событие категории, имя которого не входит в exclude.
func (c *Catalog) Pick(category Category, exclude []string) (models.Event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	spots, _ := c.spots.Get(category)
	candidates := make([]models.Event, 0, len(spots))
	for _, spot := range spots {
		if ContainsName(exclude, spot.Name) {
			continue
		}
		candidates = append(candidates, spot)
	}

	if len(candidates) == 0 {
		return models.Event{}, false
	}

	return candidates[c.rnd.IntN(len(candidates))], true
}

// Stats возвращает количество событий по категориям.
func (c *Catalog) Stats() map[Category]int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := make(map[Category]int, c.spots.Len())
	for pair := c.spots.Oldest(); pair != nil; pair = pair.Next() {
		stats[pair.Key] = len(pair.Value)
	}

	return stats
}

// ContainsName сравнивает имена без учета регистра.
func ContainsName(values []string, target string) bool {
	for _, value := range values {
		if strings.EqualFold(value, target) {
			return true
		}
	}
	return false
}

package cache

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"example.com/onestop-outings/backend/internal/models"
)

// DefaultTTL - время жизни закешированного плана.
const DefaultTTL = 24 * time.Hour

// Fingerprint строит ключ кеша плана, не зависящий от порядка и регистра интересов.
func Fingerprint(prefs models.UserPreferences) string {
	interests := make([]string, 0, len(prefs.Interests))
	for _, interest := range prefs.Interests {
		normalized := strings.ToLower(strings.TrimSpace(interest))
		if normalized == "" {
			continue
		}
		interests = append(interests, strconv.Quote(normalized))
	}
	sort.Strings(interests)

	return fmt.Sprintf("plan-%s-%d-%s", prefs.Mode, prefs.Budget, strings.Join(interests, ","))
}

// RegenerationKey строит ключ кеша замены события в конкретном слоте плана.
func RegenerationKey(outingID string, index int, currentName string) string {
	return fmt.Sprintf("regen-%s-%d-%s", outingID, index, currentName)
}

// PlanCache хранит планы с TTL. Просроченные записи удаляются при следующем обращении.
type PlanCache struct {
	store *gocache.Cache
}

// NewPlanCache создает кеш планов; ttl <= 0 означает DefaultTTL.
func NewPlanCache(ttl time.Duration) *PlanCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &PlanCache{
		store: gocache.New(ttl, 0),
	}
}

// Get возвращает копию плана, если запись существует и не просрочена.
func (c *PlanCache) Get(key string) (models.OutingPlan, bool) {
	value, ok := c.store.Get(key)
	if !ok {
		c.store.Delete(key)
		return models.OutingPlan{}, false
	}

	plan, ok := value.(models.OutingPlan)
	if !ok {
		return models.OutingPlan{}, false
	}

	return plan.Clone(), true
}

func (c *PlanCache) Put(key string, plan models.OutingPlan) {
	c.store.SetDefault(key, plan.Clone())
}

// Len возвращает количество записей, включая еще не удаленные просроченные.
func (c *PlanCache) Len() int {
	return c.store.ItemCount()
}

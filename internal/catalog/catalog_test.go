package catalog

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/onestop-outings/backend/internal/models"
)

func testCatalog() *Catalog {
	return New([]Section{
		{Category: Food, Spots: []models.Event{
			{Type: "Lunch", Name: "Boojum", Cost: 12, Duration: 60},
			{Type: "Treat", Name: "Murphy's Ice Cream", Cost: 5, Duration: 20},
		}},
		{Category: Museum, Spots: []models.Event{
			{Type: "Museum", Name: "Dublinia", Cost: 15, Duration: 90},
		}},
		{Category: "Shopping", Spots: []models.Event{
			{Type: "Shopping", Name: "Dublin Flea Market", Cost: 0, Duration: 120},
		}},
	}, WithRand(rand.New(rand.NewPCG(1, 2))))
}

// TestCategoryFor проверяет порядок правил вывода категории.
func TestCategoryFor(t *testing.T) {
	cases := map[string]Category{
		"Museum":            Museum,
		"Wax Museum Pub":    Museum,
		"Traditional PUB":   Pub,
		"Pub Lunch":         Pub,
		"Breakfast":         Food,
		"Dinner & Show":     Food,
		"Food Experience":   Food,
		"Treat":             Food,
		"Walking tour":      Activity,
		"":                  Activity,
		"Historical Site":   Activity,
		"Evening Entertain": Activity,
	}

	for input, want := range cases {
		assert.Equal(t, want, CategoryFor(input), "type %q", input)
	}
}

// TestLookupUnknownCategory проверяет пустой результат для неизвестной категории.
func TestLookupUnknownCategory(t *testing.T) {
	c := testCatalog()

	got := c.Lookup("Spa")
	require.NotNil(t, got)
	assert.Empty(t, got)
}

// TestLookupReturnsCopy проверяет, что изменение результата не портит каталог.
func TestLookupReturnsCopy(t *testing.T) {
	c := testCatalog()

	spots := c.Lookup(Food)
	spots[0].Name = "changed"

	assert.Equal(t, "Boojum", c.Lookup(Food)[0].Name)
}

// TestRecordIfNovel проверяет дедупликацию по имени без учета регистра.
func TestRecordIfNovel(t *testing.T) {
	c := testCatalog()

	assert.False(t, c.RecordIfNovel(Food, models.Event{Type: "Lunch", Name: "BOOJUM", Cost: 10, Duration: 45}))
	assert.True(t, c.RecordIfNovel(Food, models.Event{Type: "Lunch", Name: "Eatyard", Cost: 20, Duration: 90}))

	names := models.EventNames(c.Lookup(Food))
	assert.Equal(t, []string{"Boojum", "Murphy's Ice Cream", "Eatyard"}, names)
}

// TestRecordIfNovelCreatesDerivableCategory проверяет создание категории Pub.
func TestRecordIfNovelCreatesDerivableCategory(t *testing.T) {
	c := testCatalog()

	added := c.Remember(models.Event{Type: "Pub", Name: "The Long Hall", Cost: 15, Duration: 90})
	require.True(t, added)
	assert.Len(t, c.Lookup(Pub), 1)
}

// TestRecordIfNovelUnknownCategory проверяет, что нераспознанная категория игнорируется.
func TestRecordIfNovelUnknownCategory(t *testing.T) {
	c := testCatalog()

	added := c.RecordIfNovel("Spa", models.Event{Type: "Spa", Name: "Hot Springs", Cost: 40, Duration: 60})
	assert.False(t, added)
	assert.Empty(t, c.Lookup("Spa"))

	assert.True(t, c.RecordIfNovel("Shopping", models.Event{Type: "Shopping", Name: "Jam Art Factory", Cost: 25, Duration: 120}))
}

// TestNames проверяет список имен без повторов.
func TestNames(t *testing.T) {
	c := testCatalog()
	c.RecordIfNovel(Activity, models.Event{Type: "Activity", Name: "dublinia", Cost: 0, Duration: 60})

	assert.Equal(t, []string{"Boojum", "Murphy's Ice Cream", "Dublinia", "Dublin Flea Market"}, c.Names())
}

// TestPickExcludesNames проверяет исключение имен при выборе.
func TestPickExcludesNames(t *testing.T) {
	c := testCatalog()

	for i := 0; i < 20; i++ {
		event, ok := c.Pick(Food, []string{"boojum"})
		require.True(t, ok)
		assert.Equal(t, "Murphy's Ice Cream", event.Name)
	}

	_, ok := c.Pick(Food, []string{"Boojum", "MURPHY'S ICE CREAM"})
	assert.False(t, ok)

	_, ok = c.Pick(Pub, nil)
	assert.False(t, ok)
}

// TestNewDefault проверяет встроенный набор мест.
func TestNewDefault(t *testing.T) {
	c, err := NewDefault()
	require.NoError(t, err)

	for _, category := range []Category{Food, Activity, Museum, Pub} {
		assert.NotEmpty(t, c.Lookup(category), "category %s", category)
	}
	assert.Contains(t, c.Names(), "Guinness Storehouse")
	assert.Equal(t, 5, c.Stats()[Pub])
}

// TestParseSeedRejectsMissingCategory проверяет ошибку для секции без категории.
func TestParseSeedRejectsMissingCategory(t *testing.T) {
	_, err := ParseSeed([]byte("- spots:\n    - {type: Pub, name: X, cost: 1, duration: 1}\n"))
	require.Error(t, err)

	_, err = ParseSeed([]byte("not: [valid"))
	require.Error(t, err)
}

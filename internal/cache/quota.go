package cache

import "sync"

// MaxRegenerations - предел замен событий для одной прогулки.
const MaxRegenerations = 5

// Quota считает замены по идентификатору прогулки. Записи не истекают.
type Quota struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewQuota() *Quota {
	return &Quota{counts: make(map[string]int)}
}

// Count возвращает число замен; для неизвестной прогулки 0.
func (q *Quota) Count(outingID string) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.counts[outingID]
}

// Increment увеличивает счетчик и возвращает новое значение.
func (q *Quota) Increment(outingID string) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.counts[outingID]++
	return q.counts[outingID]
}

// Reset обнуляет счетчик новой прогулки.
func (q *Quota) Reset(outingID string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.counts[outingID] = 0
}

// Remaining возвращает число оставшихся замен.
func (q *Quota) Remaining(outingID string) int {
	remaining := MaxRegenerations - q.Count(outingID)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Sessions возвращает количество отслеживаемых прогулок.
func (q *Quota) Sessions() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.counts)
}

package images

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// DefaultMemoPath - файл, в котором сохраняются найденные изображения.
const DefaultMemoPath = "/tmp/learned_images.json"

// Memo хранит соответствие имени события и URL изображения в JSON-файле.
type Memo struct {
	mu     sync.Mutex
	path   string
	urls   map[string]string
	logger *slog.Logger
}

// LoadMemo читает файл памяти. Отсутствующий или поврежденный файл дает пустую память.
// Пустой path отключает запись на диск.
func LoadMemo(path string, logger *slog.Logger) *Memo {
	if logger == nil {
		logger = slog.Default()
	}

	m := &Memo{
		path:   path,
		urls:   make(map[string]string),
		logger: logger,
	}
	if path == "" {
		return m
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("image memo read failed, starting empty",
				slog.String("path", path), slog.Any("error", err))
		}
		return m
	}

	loaded := make(map[string]string)
	if err := json.Unmarshal(data, &loaded); err != nil {
		logger.Warn("image memo is corrupt, starting empty",
			slog.String("path", path), slog.Any("error", err))
		return m
	}

	m.urls = loaded
	logger.Info("image memo loaded", slog.String("path", path), slog.Int("entries", len(loaded)))
	return m
}

func (m *Memo) Get(name string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	url, ok := m.urls[name]
	return url, ok
}

// Put добавляет запись и переписывает файл целиком.
func (m *Memo) Put(name, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.urls[name] = url
	if m.path == "" {
		return nil
	}

	data, err := json.MarshalIndent(m.urls, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal image memo: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("create image memo dir: %w", err)
	}

	if err := os.WriteFile(m.path, data, 0o644); err != nil {
		return fmt.Errorf("write image memo: %w", err)
	}

	return nil
}

func (m *Memo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.urls)
}

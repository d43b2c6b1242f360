package images

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestLoadMemoCorruptFile проверяет, что поврежденный файл не ломает запуск.
func TestLoadMemoCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memo.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	memo := LoadMemo(path, discardLogger())
	assert.Equal(t, 0, memo.Len())
}

// TestMemoPersists проверяет перезапись файла и повторную загрузку.
func TestMemoPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "memo.json")

	memo := LoadMemo(path, discardLogger())
	require.Equal(t, 0, memo.Len())
	require.NoError(t, memo.Put("EPIC", "https://img/epic.jpg"))
	require.NoError(t, memo.Put("Dublinia", "https://img/dublinia.jpg"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var stored map[string]string
	require.NoError(t, json.Unmarshal(data, &stored))
	assert.Len(t, stored, 2)

	reloaded := LoadMemo(path, discardLogger())
	url, ok := reloaded.Get("EPIC")
	require.True(t, ok)
	assert.Equal(t, "https://img/epic.jpg", url)
}

// TestFindImage проверяет запрос к Pexels и запоминание результата.
func TestFindImage(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Boojum Dublin", r.URL.Query().Get("query"))
		assert.Equal(t, "1", r.URL.Query().Get("per_page"))
		assert.Equal(t, "pexels-key", r.Header.Get("Authorization"))

		_, _ = w.Write([]byte(`{"photos":[{"src":{"tiny":"https://img/boojum.jpg","large":"x"}}]}`))
	}))
	defer server.Close()

	memo := LoadMemo(filepath.Join(t.TempDir(), "memo.json"), discardLogger())
	client := NewPexelsClient("pexels-key", server.URL, "Dublin", memo, discardLogger())

	assert.Equal(t, "https://img/boojum.jpg", client.FindImage(context.Background(), "Boojum"))
	assert.Equal(t, "https://img/boojum.jpg", client.FindImage(context.Background(), "Boojum"))
	assert.Equal(t, int32(1), calls.Load())
}

// TestFindImageFailures проверяет, что ошибки превращаются в пустой URL.
func TestFindImageFailures(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{name: "no photos", status: http.StatusOK, body: `{"photos":[]}`},
		{name: "server error", status: http.StatusInternalServerError, body: `oops`},
		{name: "bad json", status: http.StatusOK, body: `<html>`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			memo := LoadMemo("", discardLogger())
			client := NewPexelsClient("key", server.URL, "Dublin", memo, discardLogger())

			assert.Empty(t, client.FindImage(context.Background(), "Somewhere"))
			assert.Equal(t, 0, memo.Len())
		})
	}
}

// TestFindImageWithoutKey проверяет пропуск поиска без ключа.
func TestFindImageWithoutKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected request")
	}))
	defer server.Close()

	client := NewPexelsClient("", server.URL, "Dublin", nil, discardLogger())
	assert.Empty(t, client.FindImage(context.Background(), "Boojum"))
}

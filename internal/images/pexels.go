package images

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.pexels.com/v1"
	requestTimeout = 30 * time.Second
)

// PexelsClient ищет миниатюры событий через Pexels API.
type PexelsClient struct {
	apiKey     string
	baseURL    string
	city       string
	memo       *Memo
	httpClient *http.Client
	logger     *slog.Logger
}

type pexelsSearchResponse struct {
	Photos []struct {
		Src struct {
			Tiny string `json:"tiny"`
		} `json:"src"`
	} `json:"photos"`
}

// NewPexelsClient создает клиент Pexels. Пустой baseURL означает публичный API.
func NewPexelsClient(apiKey, baseURL, city string, memo *Memo, logger *slog.Logger) *PexelsClient {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	if memo == nil {
		memo = LoadMemo("", logger)
	}

	return &PexelsClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		city:    city,
		memo:    memo,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		logger: logger,
	}
}

// FindImage возвращает URL миниатюры или пустую строку. Ошибки не пробрасываются.
func (c *PexelsClient) FindImage(ctx context.Context, name string) string {
	if cached, ok := c.memo.Get(name); ok {
		c.logger.Info("image memo hit", slog.String("name", name))
		return cached
	}

	if strings.TrimSpace(c.apiKey) == "" {
		c.logger.Warn("pexels api key is missing, skipping image lookup", slog.String("name", name))
		return ""
	}

	imageURL, err := c.search(ctx, name)
	if err != nil {
		c.logger.Error("image lookup failed", slog.String("name", name), slog.Any("error", err))
		return ""
	}
	if imageURL == "" {
		c.logger.Info("no image found", slog.String("name", name))
		return ""
	}

	if err := c.memo.Put(name, imageURL); err != nil {
		c.logger.Warn("image memo write failed", slog.String("name", name), slog.Any("error", err))
	}

	return imageURL
}

func (c *PexelsClient) search(ctx context.Context, name string) (string, error) {
	query := url.Values{}
	query.Set("query", strings.TrimSpace(name+" "+c.city))
	query.Set("per_page", "1")

	endpoint := fmt.Sprintf("%s/search?%s", c.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", c.apiKey)

	response, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return "", fmt.Errorf("pexels status %d", response.StatusCode)
	}

	var parsed pexelsSearchResponse
	if err := json.NewDecoder(response.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode pexels response: %w", err)
	}

	if len(parsed.Photos) == 0 {
		return "", nil
	}

	return parsed.Photos[0].Src.Tiny, nil
}

package vapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

const defaultBaseURL = "https://api.vapi.ai"

// Assistant — конфигурация голосового ассистента на стороне вендора.
// Перечислены только поля, которые читает и правит сервис; остальная
// конфигурация проносится через Raw без изменений.
type Assistant struct {
	ID           string         `json:"id,omitempty"`
	Name         string         `json:"name,omitempty"`
	FirstMessage string         `json:"firstMessage,omitempty"`
	Model        map[string]any `json:"model,omitempty"`
	Voice        map[string]any `json:"voice,omitempty"`
	ServerURL    string         `json:"serverUrl,omitempty"`
}

// AssistantPatch — частичное обновление ассистента. Нулевые поля
// не отправляются вендору.
type AssistantPatch struct {
	Name         string         `json:"name,omitempty"`
	FirstMessage string         `json:"firstMessage,omitempty"`
	Model        map[string]any `json:"model,omitempty"`
	Voice        map[string]any `json:"voice,omitempty"`
	ServerURL    string         `json:"serverUrl,omitempty"`
}

// Client — REST-клиент API голосовой платформы.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *log.Entry
}

// ClientOption настраивает клиент при создании.
type ClientOption func(*Client)

// WithBaseURL подменяет адрес API, используется в тестах.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithHTTPClient подменяет http.Client по умолчанию.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// NewClient создаёт клиент вендора с Bearer-авторизацией.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: log.WithField("component", "vapi-client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetAssistant возвращает текущую конфигурацию ассистента.
func (c *Client) GetAssistant(ctx context.Context, assistantID string) (Assistant, error) {
	var assistant Assistant
	if assistantID == "" {
		return assistant, fmt.Errorf("assistant id is required")
	}
	err := c.doRequest(ctx, http.MethodGet, "/assistant/"+assistantID, nil, &assistant)
	return assistant, err
}

// PatchAssistant применяет частичное обновление конфигурации.
func (c *Client) PatchAssistant(ctx context.Context, assistantID string, patch AssistantPatch) (Assistant, error) {
	var assistant Assistant
	if assistantID == "" {
		return assistant, fmt.Errorf("assistant id is required")
	}
	err := c.doRequest(ctx, http.MethodPatch, "/assistant/"+assistantID, patch, &assistant)
	return assistant, err
}

// Ping проверяет доступность API вендора списком ассистентов.
func (c *Client) Ping(ctx context.Context) error {
	return c.doRequest(ctx, http.MethodGet, "/assistant?limit=1", nil, nil)
}

// doRequest выполняет запрос к API вендора: добавляет авторизацию,
// сериализует тело и разбирает ответ в result (если он не nil).
func (c *Client) doRequest(ctx context.Context, method, path string, body any, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build vendor request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("vendor request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.WithFields(log.Fields{
			"method": method,
			"path":   path,
			"status": resp.StatusCode,
		}).Warn("vendor api returned error")
		return fmt.Errorf("vendor api %s %s: status %d: %s", method, path, resp.StatusCode, bytes.TrimSpace(payload))
	}

	if result == nil {
		// Тело не нужно, но читаем его для переиспользования соединения.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode vendor response: %w", err)
	}
	return nil
}

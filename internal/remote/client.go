// Package remote реализует клиент удалённого REST-хранилища заказов.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/backoffice/internal/domain"
)

const (
	defaultTimeout  = 10 * time.Second
	requestIDHeader = "X-Request-ID"
	maxErrorBody    = 4 << 10
)

// Client — HTTP-клиент ресурса /orders. Повторных попыток нет: неудачный запрос
// возвращает ошибку, а решение о её обработке принимает вызывающий.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Entry
}

// Option настраивает Client.
type Option func(*Client)

// WithHTTPClient подменяет HTTP-клиент (например, в тестах).
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTimeout задаёт таймаут одного запроса.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithLogger задаёт logger клиента.
func WithLogger(logger *log.Entry) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient создаёт клиента для baseURL (например, http://localhost:3001).
func NewClient(baseURL string, options ...Option) (*Client, error) {
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid order store url %q", baseURL)
	}

	c := &Client{
		baseURL:    strings.TrimRight(parsed.String(), "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     log.WithField("component", "order-store-client"),
	}
	for _, option := range options {
		option(c)
	}
	return c, nil
}

// FetchAll загружает все заказы (GET /orders).
func (c *Client) FetchAll(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	if err := c.do(ctx, http.MethodGet, "/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Get загружает один заказ (GET /orders/{id}).
func (c *Client) Get(ctx context.Context, id domain.OrderID) (domain.Order, error) {
	var order domain.Order
	if err := c.do(ctx, http.MethodGet, orderPath(id), nil, &order); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

// Patch отправляет частичное обновление (PATCH /orders/{id}).
func (c *Client) Patch(ctx context.Context, id domain.OrderID, patch domain.OrderPatch) error {
	return c.do(ctx, http.MethodPatch, orderPath(id), patch, nil)
}

// Delete удаляет запись (DELETE /orders/{id}).
func (c *Client) Delete(ctx context.Context, id domain.OrderID) error {
	return c.do(ctx, http.MethodDelete, orderPath(id), nil, nil)
}

// Ping проверяет доступность хранилища для health check.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/orders", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRemoteStore, err)
	}
	_ = resp.Body.Close()
	// Некоторые хранилища не поддерживают HEAD, поэтому 405 тоже считаем ответом.
	if resp.StatusCode >= 500 {
		return &HTTPError{StatusCode: resp.StatusCode, Method: http.MethodHead, Path: "/orders"}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, target interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", domain.ErrRemoteStore, method, path, err)
	}
	defer resp.Body.Close()

	c.logger.WithFields(log.Fields{
		"method":      method,
		"path":        path,
		"status":      resp.StatusCode,
		"request_id":  requestID,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("order store request finished")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &HTTPError{
			StatusCode: resp.StatusCode,
			Method:     method,
			Path:       path,
			Message:    strings.TrimSpace(string(msg)),
		}
	}

	if target == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", domain.ErrRemoteStore, err)
	}
	return nil
}

func orderPath(id domain.OrderID) string {
	return "/orders/" + url.PathEscape(string(id))
}

// HTTPError — ответ хранилища с кодом вне 2xx.
type HTTPError struct {
	StatusCode int
	Method     string
	Path       string
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("order store %s %s: HTTP %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("order store %s %s: HTTP %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// Is позволяет сравнивать ошибку с domain.ErrRemoteStore и domain.ErrOrderNotFound.
func (e *HTTPError) Is(target error) bool {
	switch target {
	case domain.ErrRemoteStore:
		return true
	case domain.ErrOrderNotFound:
		return e.StatusCode == http.StatusNotFound
	default:
		return false
	}
}

// StatusCode извлекает HTTP-код из ошибки клиента (0, если это не HTTPError).
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

var _ domain.RemoteOrderStore = (*Client)(nil)

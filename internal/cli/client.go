package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// --- Request types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// EnqueueEmailRequest — постановка письма в очередь.
type EnqueueEmailRequest struct {
	EmailType    string         `json:"emailType"`
	To           []string       `json:"to"`
	Subject      string         `json:"subject"`
	Content      string         `json:"content,omitempty"`
	TemplateName string         `json:"templateName,omitempty"`
	Variables    map[string]any `json:"variables,omitempty"`
}

// EnqueueExportRequest — постановка экспорта в очередь.
type EnqueueExportRequest struct {
	ExportType string            `json:"exportType"`
	UserID     int64             `json:"userId"`
	FileName   string            `json:"fileName,omitempty"`
	Parameters map[string]string `json:"parameters,omitempty"`
}

// DLQReplayRequest — запрос на replay из DLQ.
type DLQReplayRequest struct {
	Limit int `json:"limit,omitempty"`
}

// --- Response types ---

// EnqueuedResponse — подтверждение постановки.
type EnqueuedResponse struct {
	TaskID   string `json:"taskId"`
	FileName string `json:"fileName,omitempty"`
}

// DLQEntryResponse — сообщение из dead-letter очереди.
type DLQEntryResponse struct {
	MessageID  string          `json:"message_id"`
	Exchange   string          `json:"exchange"`
	RoutingKey string          `json:"routing_key"`
	Reason     string          `json:"reason"`
	Body       json.RawMessage `json:"body"`
}

// DLQReplayResponse — результат replay.
type DLQReplayResponse struct {
	Replayed int `json:"replayed"`
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для Bazaar API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// EnqueueEmail ставит письмо в очередь.
func (c *Client) EnqueueEmail(req EnqueueEmailRequest) (*EnqueuedResponse, error) {
	var resp EnqueuedResponse
	err := c.post("/api/v1/emails", req, &resp)
	return &resp, err
}

// EnqueueExport ставит экспорт в очередь.
func (c *Client) EnqueueExport(req EnqueueExportRequest) (*EnqueuedResponse, error) {
	var resp EnqueuedResponse
	err := c.post("/api/v1/exports", req, &resp)
	return &resp, err
}

// ListDLQ возвращает сообщения dead-letter очереди, не удаляя их.
func (c *Client) ListDLQ(limit int) ([]DLQEntryResponse, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	path := "/api/v1/dlq"
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}

	var entries []DLQEntryResponse
	err := c.doData(http.MethodGet, path, nil, &entries)
	return entries, err
}

// ReplayDLQ переиздаёт сообщения из DLQ в исходные очереди.
func (c *Client) ReplayDLQ(limit int) (*DLQReplayResponse, error) {
	var resp DLQReplayResponse
	err := c.post("/api/v1/dlq/replay", DLQReplayRequest{Limit: limit}, &resp)
	return &resp, err
}

// --- HTTP helpers ---

func (c *Client) post(path string, body any, result any) error {
	return c.doData(http.MethodPost, path, body, result)
}

func (c *Client) doData(method, path string, body any, result any) error {
	resp, err := c.do(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if result != nil {
		return json.Unmarshal(dr.Data, result)
	}
	return nil
}

func (c *Client) do(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}

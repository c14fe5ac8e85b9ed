package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/haple/bazaar/internal/mq"
	"github.com/haple/bazaar/internal/task"
)

// --- Fakes ---

type fakePublisher struct {
	emails  []*task.EmailTask
	exports []*task.ExportTask
	err     error
}

func (p *fakePublisher) EnqueueEmail(ctx context.Context, t *task.EmailTask) error {
	if p.err != nil {
		return p.err
	}
	// Publisher проставляет идентификатор при постановке
	t.TaskID = uuid.New()
	p.emails = append(p.emails, t)
	return nil
}

func (p *fakePublisher) EnqueueExport(ctx context.Context, t *task.ExportTask) error {
	if p.err != nil {
		return p.err
	}
	t.TaskID = uuid.New()
	if t.FileName == "" {
		t.FileName = task.DefaultFileName(t.ExportType, t.TaskID)
	}
	p.exports = append(p.exports, t)
	return nil
}

type fakeDLQ struct {
	entries  []mq.DLQEntry
	replayed int
	err      error
}

func (q *fakeDLQ) Peek(ctx context.Context, limit int) ([]mq.DLQEntry, error) {
	if q.err != nil {
		return nil, q.err
	}
	if limit < len(q.entries) {
		return q.entries[:limit], nil
	}
	return q.entries, nil
}

func (q *fakeDLQ) Replay(ctx context.Context, limit int) (int, error) {
	if q.err != nil {
		return 0, q.err
	}
	return q.replayed, nil
}

func testServer(pub Publisher, dlq DLQBrowser) *httptest.Server {
	h := NewHandler(Config{
		Publisher: pub,
		DLQ:       dlq,
		Logger:    slog.New(slog.DiscardHandler),
	})
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return httptest.NewServer(mux)
}

func decodeData[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var wrapper struct {
		Data T `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&wrapper); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return wrapper.Data
}

func decodeError(t *testing.T, resp *http.Response) ErrorDetail {
	t.Helper()
	var wrapper ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&wrapper); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return wrapper.Error
}

// --- Enqueue email ---

func TestEnqueueEmail(t *testing.T) {
	pub := &fakePublisher{}
	server := testServer(pub, &fakeDLQ{})
	defer server.Close()

	body := `{"emailType":"SIMPLE","to":["user@example.com"],"subject":"hi","content":"hello"}`
	resp, err := http.Post(server.URL+"/api/v1/emails", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	// 202: задача принята, обработка асинхронная
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.StatusCode)
	}

	data := decodeData[EnqueuedResponse](t, resp)
	if data.TaskID == uuid.Nil {
		t.Error("response must contain a task id")
	}
	if len(pub.emails) != 1 {
		t.Fatalf("expected 1 enqueued email, got %d", len(pub.emails))
	}
	if pub.emails[0].EmailType != task.EmailSimple {
		t.Errorf("unexpected email type %s", pub.emails[0].EmailType)
	}
}

func TestEnqueueEmail_InvalidJSON(t *testing.T) {
	server := testServer(&fakePublisher{}, &fakeDLQ{})
	defer server.Close()

	resp, err := http.Post(server.URL+"/api/v1/emails", "application/json", strings.NewReader("{broken"))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if detail := decodeError(t, resp); detail.Code != ErrCodeBadRequest {
		t.Errorf("expected BAD_REQUEST, got %s", detail.Code)
	}
}

func TestEnqueueEmail_ValidationError(t *testing.T) {
	pub := &fakePublisher{err: fmt.Errorf("stamp: %w", task.ErrNoRecipients)}
	server := testServer(pub, &fakeDLQ{})
	defer server.Close()

	resp, err := http.Post(server.URL+"/api/v1/emails", "application/json",
		strings.NewReader(`{"emailType":"SIMPLE","subject":"hi","content":"x"}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestEnqueueEmail_BrokerUnavailable(t *testing.T) {
	pub := &fakePublisher{err: fmt.Errorf("%w: channel closed", mq.ErrPublish)}
	server := testServer(pub, &fakeDLQ{})
	defer server.Close()

	resp, err := http.Post(server.URL+"/api/v1/emails", "application/json",
		strings.NewReader(`{"emailType":"SIMPLE","to":["a@b.c"],"subject":"hi","content":"x"}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
	if detail := decodeError(t, resp); detail.Code != ErrCodeUnavailable {
		t.Errorf("expected QUEUE_UNAVAILABLE, got %s", detail.Code)
	}
}

// --- Enqueue export ---

func TestEnqueueExport(t *testing.T) {
	pub := &fakePublisher{}
	server := testServer(pub, &fakeDLQ{})
	defer server.Close()

	body := `{"exportType":"ORDER_PDF","userId":7,"parameters":{"status":"DELIVERED"}}`
	resp, err := http.Post(server.URL+"/api/v1/exports", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.StatusCode)
	}

	data := decodeData[EnqueuedResponse](t, resp)
	if data.FileName == "" {
		t.Error("response must contain the generated file name")
	}
	if len(pub.exports) != 1 {
		t.Fatalf("expected 1 enqueued export, got %d", len(pub.exports))
	}
	if pub.exports[0].Parameters["status"] != "DELIVERED" {
		t.Error("dataset parameters must be passed through")
	}
}

// --- DLQ ---

func TestListDLQ(t *testing.T) {
	dlq := &fakeDLQ{entries: []mq.DLQEntry{
		{MessageID: "a", Exchange: "email.exchange", Reason: "rejected", Body: json.RawMessage(`{}`)},
		{MessageID: "b", Exchange: "export.exchange", Reason: "expired", Body: json.RawMessage(`{}`)},
	}}
	server := testServer(&fakePublisher{}, dlq)
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/v1/dlq")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	entries := decodeData[[]mq.DLQEntry](t, resp)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
}

func TestListDLQ_Limit(t *testing.T) {
	dlq := &fakeDLQ{entries: []mq.DLQEntry{{MessageID: "a"}, {MessageID: "b"}}}
	server := testServer(&fakePublisher{}, dlq)
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/v1/dlq?limit=1")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	entries := decodeData[[]mq.DLQEntry](t, resp)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
}

func TestListDLQ_BadLimit(t *testing.T) {
	server := testServer(&fakePublisher{}, &fakeDLQ{})
	defer server.Close()

	for _, limit := range []string{"0", "-1", "abc"} {
		resp, err := http.Get(server.URL + "/api/v1/dlq?limit=" + limit)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("limit=%s: expected 400, got %d", limit, resp.StatusCode)
		}
	}
}

func TestReplayDLQ(t *testing.T) {
	dlq := &fakeDLQ{replayed: 3}
	server := testServer(&fakePublisher{}, dlq)
	defer server.Close()

	resp, err := http.Post(server.URL+"/api/v1/dlq/replay", "application/json",
		strings.NewReader(`{"limit":5}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	data := decodeData[DLQReplayResponse](t, resp)
	if data.Replayed != 3 {
		t.Errorf("expected 3 replayed, got %d", data.Replayed)
	}
}

func TestReplayDLQ_EmptyBody(t *testing.T) {
	server := testServer(&fakePublisher{}, &fakeDLQ{})
	defer server.Close()

	// Тело опционально: без него действует лимит по умолчанию
	resp, err := http.Post(server.URL+"/api/v1/dlq/replay", "application/json", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

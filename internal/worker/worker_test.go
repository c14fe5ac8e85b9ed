package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/haple/bazaar/internal/mq"
	"github.com/haple/bazaar/internal/report"
	"github.com/haple/bazaar/internal/task"
)

// --- Fakes ---

// fakeAcker подменяет amqp.Acknowledger и записывает исход доставки.
type fakeAcker struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (a *fakeAcker) Ack(tag uint64, multiple bool) error { a.acked = true; return nil }
func (a *fakeAcker) Nack(tag uint64, multiple, requeue bool) error {
	a.nacked = true
	a.requeue = requeue
	return nil
}
func (a *fakeAcker) Reject(tag uint64, requeue bool) error {
	a.nacked = true
	a.requeue = requeue
	return nil
}

func delivery(t *testing.T, body any) (*mq.Delivery, *fakeAcker) {
	t.Helper()
	data, ok := body.([]byte)
	if !ok {
		var err error
		data, err = json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal delivery body: %v", err)
		}
	}
	acker := &fakeAcker{}
	return &mq.Delivery{
		Body: data,
		Raw:  amqp.Delivery{Acknowledger: acker, DeliveryTag: 1},
	}, acker
}

type fakeMailer struct {
	calls    int
	failures int // первых failures вызовов возвращают ошибку
}

func (m *fakeMailer) Send(ctx context.Context, to []string, subject, body string, isHTML bool) error {
	m.calls++
	if m.calls <= m.failures {
		return errors.New("smtp: connection refused")
	}
	return nil
}

type fakeTemplates struct {
	err error
}

func (f *fakeTemplates) Render(name string, variables map[string]any) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "<html>" + name + "</html>", nil
}

type fakePublisher struct {
	emails   []*task.EmailTask
	exports  []*task.ExportTask
	notified []string
	err      error
}

func (p *fakePublisher) RepublishEmail(ctx context.Context, t *task.EmailTask) error {
	if p.err != nil {
		return p.err
	}
	p.emails = append(p.emails, t)
	return nil
}

func (p *fakePublisher) RepublishExport(ctx context.Context, t *task.ExportTask) error {
	if p.err != nil {
		return p.err
	}
	p.exports = append(p.exports, t)
	return nil
}

func (p *fakePublisher) EnqueueExportReady(ctx context.Context, to string, fileName string) error {
	p.notified = append(p.notified, to+":"+fileName)
	return nil
}

type fakeGuard struct {
	sent map[string]bool
}

func (g *fakeGuard) AlreadySent(ctx context.Context, key string) (bool, error) {
	return g.sent[key], nil
}

func (g *fakeGuard) MarkSent(ctx context.Context, key string) error {
	if g.sent == nil {
		g.sent = make(map[string]bool)
	}
	g.sent[key] = true
	return nil
}

type fakeRenderer struct {
	err error
}

func (f *fakeRenderer) Render(kind task.ExportKind, d *report.Dataset) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.4 fake"), nil
}

type fakeSource struct {
	fetchErr error
}

func (f *fakeSource) Fetch(ctx context.Context, kind task.ExportKind, params map[string]string) (*report.Dataset, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return &report.Dataset{Kind: kind}, nil
}

func (f *fakeSource) UserEmail(ctx context.Context, userID int64) (string, error) {
	return "owner@example.com", nil
}

type fakeSink struct {
	files map[string][]byte
	err   error
}

func (f *fakeSink) Write(fileName string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	if f.files == nil {
		f.files = make(map[string][]byte)
	}
	f.files[fileName] = data
	return nil
}

// testWorker собирает Worker с фейками и мгновенным backoff'ом.
func testWorker(cfg Config) *Worker {
	w := New(cfg)
	w.backoffBase = time.Millisecond
	w.backoffMax = 4 * time.Millisecond
	return w
}

func emailTask(retryCount int) *task.EmailTask {
	return &task.EmailTask{
		TaskID:     uuid.New(),
		To:         []string{"user@example.com"},
		Subject:    "hi",
		Content:    "body",
		EmailType:  task.EmailSimple,
		RetryCount: retryCount,
	}
}

// --- Email state machine ---

func TestHandleEmail_Success(t *testing.T) {
	mailer := &fakeMailer{}
	w := testWorker(Config{Mailer: mailer, Publisher: &fakePublisher{}})

	d, acker := delivery(t, emailTask(0))
	w.handleEmailDelivery(context.Background(), d)

	if !acker.acked {
		t.Error("successful task must be acked")
	}
	if acker.nacked {
		t.Error("successful task must not be nacked")
	}
	if mailer.calls != 1 {
		t.Errorf("expected 1 send, got %d", mailer.calls)
	}
}

func TestHandleEmail_MalformedJSON(t *testing.T) {
	mailer := &fakeMailer{}
	w := testWorker(Config{Mailer: mailer, Publisher: &fakePublisher{}})

	d, acker := delivery(t, []byte("not json"))
	w.handleEmailDelivery(context.Background(), d)

	// Повтор бессмысленен — сразу в DLQ
	if !acker.nacked || acker.requeue {
		t.Errorf("malformed task must be nacked without requeue, got nacked=%v requeue=%v", acker.nacked, acker.requeue)
	}
	if mailer.calls != 0 {
		t.Error("malformed task must not reach the mailer")
	}
}

func TestHandleEmail_InvalidTask(t *testing.T) {
	w := testWorker(Config{Mailer: &fakeMailer{}, Publisher: &fakePublisher{}})

	d, acker := delivery(t, &task.EmailTask{TaskID: uuid.New(), EmailType: "BOGUS"})
	w.handleEmailDelivery(context.Background(), d)

	if !acker.nacked || acker.requeue {
		t.Error("invalid task must be dead-lettered")
	}
}

func TestHandleEmail_TransientFailureRepublishes(t *testing.T) {
	mailer := &fakeMailer{failures: 100}
	pub := &fakePublisher{}
	w := testWorker(Config{Mailer: mailer, Publisher: pub})

	orig := emailTask(1)
	d, acker := delivery(t, orig)
	w.handleEmailDelivery(context.Background(), d)

	// Задача переиздана с retryCount+1, оригинал подтверждён
	if len(pub.emails) != 1 {
		t.Fatalf("expected 1 republished task, got %d", len(pub.emails))
	}
	if pub.emails[0].RetryCount != 2 {
		t.Errorf("expected republished retryCount 2, got %d", pub.emails[0].RetryCount)
	}
	if pub.emails[0].TaskID != orig.TaskID {
		t.Error("republished task must keep the original TaskID")
	}
	if !acker.acked {
		t.Error("original delivery must be acked after republish")
	}
}

func TestHandleEmail_RetriesExhausted(t *testing.T) {
	mailer := &fakeMailer{failures: 100}
	pub := &fakePublisher{}
	w := testWorker(Config{Mailer: mailer, Publisher: pub})

	d, acker := delivery(t, emailTask(task.MaxRetry))
	w.handleEmailDelivery(context.Background(), d)

	if len(pub.emails) != 0 {
		t.Error("exhausted task must not be republished")
	}
	if !acker.nacked || acker.requeue {
		t.Error("exhausted task must be dead-lettered")
	}
}

func TestHandleEmail_TemplateErrorIsPermanent(t *testing.T) {
	pub := &fakePublisher{}
	w := testWorker(Config{
		Mailer:    &fakeMailer{},
		Templates: &fakeTemplates{err: errors.New("missing variable")},
		Publisher: pub,
	})

	tsk := emailTask(0)
	tsk.EmailType = task.EmailOTP
	d, acker := delivery(t, tsk)
	w.handleEmailDelivery(context.Background(), d)

	// Ошибка рендеринга не чинится повтором
	if len(pub.emails) != 0 {
		t.Error("template error must not trigger a retry")
	}
	if !acker.nacked || acker.requeue {
		t.Error("template error must dead-letter the task")
	}
}

func TestHandleEmail_RepublishFailureRequeues(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker gone")}
	w := testWorker(Config{Mailer: &fakeMailer{failures: 100}, Publisher: pub})

	d, acker := delivery(t, emailTask(0))
	w.handleEmailDelivery(context.Background(), d)

	// Брокер недоступен для переиздания — вернуть оригинал в очередь
	if !acker.nacked || !acker.requeue {
		t.Error("failed republish must requeue the original delivery")
	}
	if acker.acked {
		t.Error("original must not be acked when republish fails")
	}
}

func TestHandleEmail_DuplicateDeliverySkipsSend(t *testing.T) {
	mailer := &fakeMailer{}
	guard := &fakeGuard{sent: map[string]bool{}}
	w := testWorker(Config{Mailer: mailer, Publisher: &fakePublisher{}, Guard: guard})

	tsk := emailTask(0)
	guard.sent[tsk.TaskID.String()] = true

	d, acker := delivery(t, tsk)
	w.handleEmailDelivery(context.Background(), d)

	// Повторная доставка уже отправленного письма — ack без отправки
	if mailer.calls != 0 {
		t.Errorf("duplicate delivery must not send, got %d calls", mailer.calls)
	}
	if !acker.acked {
		t.Error("duplicate delivery must still be acked")
	}
}

func TestHandleEmail_MarksSentAfterSend(t *testing.T) {
	guard := &fakeGuard{}
	w := testWorker(Config{Mailer: &fakeMailer{}, Publisher: &fakePublisher{}, Guard: guard})

	tsk := emailTask(0)
	d, _ := delivery(t, tsk)
	w.handleEmailDelivery(context.Background(), d)

	if !guard.sent[tsk.TaskID.String()] {
		t.Error("sent email must be marked in the guard")
	}
}

func TestHandleEmail_SecondTransientThenSuccess(t *testing.T) {
	// Полный путь задачи через две неудачные доставки:
	// rc=0 fail → republish rc=1, rc=1 fail → republish rc=2, rc=2 ok → ack
	mailer := &fakeMailer{failures: 2}
	pub := &fakePublisher{}
	w := testWorker(Config{Mailer: mailer, Publisher: pub})

	current := emailTask(0)
	for attempt := 0; attempt < 3; attempt++ {
		d, acker := delivery(t, current)
		w.handleEmailDelivery(context.Background(), d)
		if !acker.acked {
			t.Fatalf("attempt %d: delivery must be acked", attempt)
		}
		if len(pub.emails) > 0 {
			current = pub.emails[len(pub.emails)-1]
		}
	}

	if mailer.calls != 3 {
		t.Errorf("expected 3 send attempts, got %d", mailer.calls)
	}
	if current.RetryCount != 2 {
		t.Errorf("final attempt should carry retryCount 2, got %d", current.RetryCount)
	}
}

// --- Export state machine ---

func exportTask(retryCount int) *task.ExportTask {
	id := uuid.New()
	return &task.ExportTask{
		TaskID:     id,
		UserID:     7,
		ExportType: task.ExportUserPDF,
		FileName:   task.DefaultFileName(task.ExportUserPDF, id),
		RetryCount: retryCount,
	}
}

func TestHandleExport_Success(t *testing.T) {
	sink := &fakeSink{}
	pub := &fakePublisher{}
	w := testWorker(Config{
		Publisher:    pub,
		Renderer:     &fakeRenderer{},
		DataSource:   &fakeSource{},
		Sink:         sink,
		NotifyExport: true,
	})

	tsk := exportTask(0)
	d, acker := delivery(t, tsk)
	w.handleExportDelivery(context.Background(), d)

	if !acker.acked {
		t.Error("successful export must be acked")
	}
	if _, ok := sink.files[tsk.FileName]; !ok {
		t.Errorf("report must be written as %q, got %v", tsk.FileName, sink.files)
	}
	if len(pub.notified) != 1 {
		t.Fatalf("expected 1 export-ready notification, got %d", len(pub.notified))
	}
	if pub.notified[0] != "owner@example.com:"+tsk.FileName {
		t.Errorf("unexpected notification %q", pub.notified[0])
	}
}

func TestHandleExport_UnknownTypeDeadLetters(t *testing.T) {
	pub := &fakePublisher{}
	w := testWorker(Config{
		Publisher:  pub,
		Renderer:   &fakeRenderer{},
		DataSource: &fakeSource{},
		Sink:       &fakeSink{},
	})

	d, acker := delivery(t, &task.ExportTask{TaskID: uuid.New(), ExportType: "CSV", FileName: "x.csv"})
	w.handleExportDelivery(context.Background(), d)

	if !acker.nacked || acker.requeue {
		t.Error("unknown export type must be dead-lettered immediately")
	}
	if len(pub.exports) != 0 {
		t.Error("unknown export type must not be retried")
	}
}

func TestHandleExport_FetchFailureRetries(t *testing.T) {
	pub := &fakePublisher{}
	w := testWorker(Config{
		Publisher:  pub,
		Renderer:   &fakeRenderer{},
		DataSource: &fakeSource{fetchErr: errors.New("db down")},
		Sink:       &fakeSink{},
	})

	orig := exportTask(0)
	d, acker := delivery(t, orig)
	w.handleExportDelivery(context.Background(), d)

	if len(pub.exports) != 1 {
		t.Fatalf("expected 1 republished export, got %d", len(pub.exports))
	}
	if pub.exports[0].RetryCount != 1 {
		t.Errorf("expected retryCount 1, got %d", pub.exports[0].RetryCount)
	}
	if pub.exports[0].FileName != orig.FileName {
		t.Error("retry must keep the file name so the retry overwrites the same file")
	}
	if !acker.acked {
		t.Error("original delivery must be acked after republish")
	}
}

func TestHandleExport_RetriesExhausted(t *testing.T) {
	pub := &fakePublisher{}
	w := testWorker(Config{
		Publisher:  pub,
		Renderer:   &fakeRenderer{},
		DataSource: &fakeSource{fetchErr: errors.New("db down")},
		Sink:       &fakeSink{},
	})

	d, acker := delivery(t, exportTask(task.MaxRetry))
	w.handleExportDelivery(context.Background(), d)

	if len(pub.exports) != 0 {
		t.Error("exhausted export must not be republished")
	}
	if !acker.nacked || acker.requeue {
		t.Error("exhausted export must be dead-lettered")
	}
}

func TestHandleExport_NotificationFailureDoesNotFailTask(t *testing.T) {
	// notify идёт через fakeSource.UserEmail + publisher; здесь валим только его
	pub := &notifyFailPublisher{}
	sink := &fakeSink{}
	w := testWorker(Config{
		Publisher:    pub,
		Renderer:     &fakeRenderer{},
		DataSource:   &fakeSource{},
		Sink:         sink,
		NotifyExport: true,
	})

	d, acker := delivery(t, exportTask(0))
	w.handleExportDelivery(context.Background(), d)

	if !acker.acked {
		t.Error("export must still be acked when notification fails")
	}
	if len(sink.files) != 1 {
		t.Error("report must still be written")
	}
}

type notifyFailPublisher struct {
	fakePublisher
}

func (p *notifyFailPublisher) EnqueueExportReady(ctx context.Context, to string, fileName string) error {
	return errors.New("broker gone")
}

// --- Backoff ---

func TestBackoff(t *testing.T) {
	w := New(Config{})
	w.backoffBase = time.Second
	w.backoffMax = 30 * time.Second

	tests := []struct {
		retryCount int
		want       time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{10, 30 * time.Second}, // ограничено максимумом
	}

	for _, tt := range tests {
		if got := w.backoff(tt.retryCount); got != tt.want {
			t.Errorf("backoff(%d): expected %v, got %v", tt.retryCount, tt.want, got)
		}
	}
}

func TestUnmarshalTask(t *testing.T) {
	var et task.EmailTask

	err := unmarshalTask([]byte(`{not json`), &et)
	if !errors.Is(err, ErrMalformedTask) {
		t.Errorf("expected ErrMalformedTask, got %v", err)
	}

	if err := unmarshalTask([]byte(`{"emailType":"SIMPLE"}`), &et); err != nil {
		t.Errorf("valid json must parse, got %v", err)
	}
}

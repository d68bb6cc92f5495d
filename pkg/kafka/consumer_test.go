package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"washbook/pkg/logger"
)

type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []kafka.Message
	drained   chan struct{}
	once      sync.Once
}

func newFakeReader(msgs ...kafka.Message) *fakeReader {
	return &fakeReader{queue: msgs, drained: make(chan struct{})}
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		msg := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()
	r.once.Do(func() { close(r.drained) })
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error { return nil }

type fakeWriter struct {
	mu      sync.Mutex
	written []kafka.Message
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.written = append(w.written, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func runUntilDrained(t *testing.T, c *Consumer, r *fakeReader) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	select {
	case <-r.drained:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not drain queue")
	}
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Start() error = %v, want context.Canceled", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}

func TestConsumer_RetriesTransientThenCommits(t *testing.T) {
	reader := newFakeReader(kafka.Message{Key: []byte("p1"), Value: []byte(`{}`), Offset: 7})
	calls := 0
	handler := func(ctx context.Context, msg Message) error {
		calls++
		if calls < 3 {
			return NewTransientError("store unavailable", errors.New("connection refused"))
		}
		return nil
	}

	c := newConsumer(reader, nil, "catalog-events", "group", handler, logger.Discard())
	c.maxRetries = 5
	c.retryBackoff = time.Millisecond

	runUntilDrained(t, c, reader)

	if calls != 3 {
		t.Errorf("handler calls = %d, want 3", calls)
	}
	if len(reader.committed) != 1 || reader.committed[0].Offset != 7 {
		t.Errorf("committed = %+v, want offset 7", reader.committed)
	}
}

func TestConsumer_PermanentErrorGoesToDLQ(t *testing.T) {
	reader := newFakeReader(kafka.Message{Key: []byte("p1"), Value: []byte(`not json`)})
	dlq := &fakeWriter{}
	calls := 0
	handler := func(ctx context.Context, msg Message) error {
		calls++
		return NewPermanentError("decode", errors.New("bad payload"))
	}

	c := newConsumer(reader, dlq, "catalog-events", "group", handler, logger.Discard())
	c.maxRetries = 5
	c.retryBackoff = time.Millisecond

	runUntilDrained(t, c, reader)

	if calls != 1 {
		t.Errorf("handler calls = %d, want 1", calls)
	}
	if len(dlq.written) != 1 {
		t.Fatalf("dlq writes = %d, want 1", len(dlq.written))
	}
	headers := map[string]string{}
	for _, h := range dlq.written[0].Headers {
		headers[h.Key] = string(h.Value)
	}
	if headers[HeaderOriginalTopic] != "catalog-events" {
		t.Errorf("original topic header = %q", headers[HeaderOriginalTopic])
	}
	if headers[HeaderDLQConsumerGroup] != "group" {
		t.Errorf("consumer group header = %q", headers[HeaderDLQConsumerGroup])
	}
	if len(reader.committed) != 1 {
		t.Errorf("committed = %d, want 1", len(reader.committed))
	}
}

func TestConsumer_MiddlewareOrder(t *testing.T) {
	reader := newFakeReader(kafka.Message{Key: []byte("k"), Value: []byte(`{}`)})
	var order []string
	handler := func(ctx context.Context, msg Message) error {
		order = append(order, "handler")
		return nil
	}

	c := newConsumer(reader, nil, "t", "g", handler, logger.Discard())
	for _, name := range []string{"outer", "inner"} {
		c.Use(func(ctx context.Context, msg Message, next MessageHandler) error {
			order = append(order, name)
			return next(ctx, msg)
		})
	}

	runUntilDrained(t, c, reader)

	want := []string{"outer", "inner", "handler"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %s, want %s", i, order[i], want[i])
		}
	}
}

func TestConsumer_StartAfterClose(t *testing.T) {
	c := newConsumer(newFakeReader(), nil, "t", "g", func(context.Context, Message) error { return nil }, logger.Discard())
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := c.Start(context.Background()); !errors.Is(err, ErrConsumerClosed) {
		t.Errorf("Start() error = %v, want ErrConsumerClosed", err)
	}
}

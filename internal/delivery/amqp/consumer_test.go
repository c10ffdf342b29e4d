package amqp

import (
	"context"
	"errors"
	"testing"

	amqplib "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/Harsh-BH/SetForge/internal/domain"
)

func TestDecodeRunRequest(t *testing.T) {
	req, err := decodeRunRequest([]byte(`{"run_id":"0190c5a4-8d3e-7b3c-9a1e-1f2d3c4b5a69","kind":"import","dry_run":true}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Kind != domain.RunImport || !req.DryRun {
		t.Errorf("unexpected request %+v", req)
	}
	if req.RunID.String() != "0190c5a4-8d3e-7b3c-9a1e-1f2d3c4b5a69" {
		t.Errorf("unexpected run id %s", req.RunID)
	}

	if _, err := decodeRunRequest([]byte(`{"kind":"cleanup"}`)); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
	if _, err := decodeRunRequest([]byte(`not json`)); err == nil {
		t.Error("expected an error for malformed body")
	}
}

type ackCall struct {
	tag     uint64
	ack     bool
	requeue bool
}

type fakeAcknowledger struct {
	calls []ackCall
}

func (a *fakeAcknowledger) Ack(tag uint64, _ bool) error {
	a.calls = append(a.calls, ackCall{tag: tag, ack: true})
	return nil
}

func (a *fakeAcknowledger) Nack(tag uint64, _ bool, requeue bool) error {
	a.calls = append(a.calls, ackCall{tag: tag, requeue: requeue})
	return nil
}

func (a *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

func newTestConsumer(runs chan *domain.RunMessage) *Consumer {
	return &Consumer{runs: runs, logger: zap.NewNop(), closeCh: make(chan struct{})}
}

func TestDispatch_HandsOverWithAckCallbacks(t *testing.T) {
	runs := make(chan *domain.RunMessage, 1)
	acker := &fakeAcknowledger{}
	c := newTestConsumer(runs)

	ok := c.dispatch(context.Background(), amqplib.Delivery{
		Acknowledger: acker,
		DeliveryTag:  7,
		Body:         []byte(`{"kind":"aggregate"}`),
	})
	if !ok {
		t.Fatal("expected dispatch to continue")
	}
	if len(acker.calls) != 0 {
		t.Fatalf("expected no ack before the run finished, got %+v", acker.calls)
	}

	msg := <-runs
	if msg.Request.Kind != domain.RunAggregate {
		t.Errorf("unexpected request %+v", msg.Request)
	}
	if err := msg.Ack(); err != nil {
		t.Fatalf("ack failed: %v", err)
	}
	if err := msg.Nack(false); err != nil {
		t.Fatalf("nack failed: %v", err)
	}
	want := []ackCall{{tag: 7, ack: true}, {tag: 7}}
	if len(acker.calls) != 2 || acker.calls[0] != want[0] || acker.calls[1] != want[1] {
		t.Errorf("unexpected ack calls %+v", acker.calls)
	}
}

func TestDispatch_RejectsUndecodableBody(t *testing.T) {
	runs := make(chan *domain.RunMessage, 1)
	acker := &fakeAcknowledger{}
	c := newTestConsumer(runs)

	if !c.dispatch(context.Background(), amqplib.Delivery{Acknowledger: acker, DeliveryTag: 3, Body: []byte(`{"kind":"cleanup"}`)}) {
		t.Fatal("expected dispatch to continue after a bad message")
	}
	if len(runs) != 0 {
		t.Error("expected no run for a bad message")
	}
	if len(acker.calls) != 1 || acker.calls[0] != (ackCall{tag: 3, requeue: false}) {
		t.Errorf("expected a nack without requeue, got %+v", acker.calls)
	}
}

func TestDispatch_RequeuesOnShutdown(t *testing.T) {
	runs := make(chan *domain.RunMessage) // nobody receives
	acker := &fakeAcknowledger{}
	c := newTestConsumer(runs)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if c.dispatch(ctx, amqplib.Delivery{Acknowledger: acker, DeliveryTag: 9, Body: []byte(`{"kind":"import"}`)}) {
		t.Fatal("expected dispatch to stop on a cancelled context")
	}
	if len(acker.calls) != 1 || acker.calls[0] != (ackCall{tag: 9, requeue: true}) {
		t.Errorf("expected a requeueing nack, got %+v", acker.calls)
	}
}

func TestConsumer_IsClosed(t *testing.T) {
	c := newTestConsumer(nil)
	if c.isClosed() {
		t.Fatal("new consumer reported closed")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if !c.isClosed() {
		t.Error("expected consumer to report closed")
	}
	if err := c.Close(); err != nil {
		t.Errorf("second close should be a no-op: %v", err)
	}
}

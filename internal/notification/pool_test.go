package notification

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestWorkerPool_RunsSubmittedTasks(t *testing.T) {
	p := NewWorkerPool(2, 10)
	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		if !p.TrySubmit(func(context.Context) error {
			ran.Add(1)
			return nil
		}) {
			t.Fatalf("submit %d rejected", i)
		}
	}
	if !p.TrySubmit(func(context.Context) error { return errors.New("boom") }) {
		t.Fatalf("submit rejected")
	}

	results := p.Run(context.Background())
	p.Close()

	failed := 0
	for r := range results {
		if r.Err != nil {
			failed++
		}
	}
	if ran.Load() != 5 {
		t.Fatalf("expected 5 tasks to run, got %d", ran.Load())
	}
	if failed != 1 {
		t.Fatalf("expected 1 failed result, got %d", failed)
	}
}

func TestWorkerPool_TrySubmitDoesNotBlockWhenFull(t *testing.T) {
	p := NewWorkerPool(1, 1)
	noop := func(context.Context) error { return nil }

	if !p.TrySubmit(noop) {
		t.Fatalf("first submit should fit in the buffer")
	}

	done := make(chan bool, 1)
	go func() { done <- p.TrySubmit(noop) }()

	select {
	case ok := <-done:
		if ok {
			t.Fatalf("expected full queue to reject")
		}
	case <-time.After(time.Second):
		t.Fatalf("TrySubmit blocked on a full queue")
	}
}

func TestWorkerPool_RejectsAfterClose(t *testing.T) {
	p := NewWorkerPool(1, 4)
	p.Close()
	p.Close()
	if p.TrySubmit(func(context.Context) error { return nil }) {
		t.Fatalf("expected closed pool to reject")
	}
}

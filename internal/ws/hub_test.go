package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"skill-staffing/internal/notification"

	"github.com/google/uuid"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met in time")
}

func TestHub_SendsOnlyToRecipient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil)
	go hub.Run(ctx)

	alice, bob := uuid.New(), uuid.New()
	ca := NewClient(hub, nil, alice)
	cb := NewClient(hub, nil, bob)
	hub.Register(ca)
	hub.Register(cb)
	waitFor(t, func() bool { return hub.ClientCount() == 2 })

	ch := NewChannel(hub)
	if err := ch.Deliver(ctx, notification.Notification{RecipientID: alice, Title: "hi"}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	select {
	case msg := <-ca.send:
		var evt NotificationEvent
		if err := json.Unmarshal(msg, &evt); err != nil {
			t.Fatalf("bad payload: %v", err)
		}
		if evt.Type != "notification" || evt.Notification.Title != "hi" {
			t.Fatalf("unexpected event: %+v", evt)
		}
	default:
		t.Fatalf("expected message for alice")
	}

	select {
	case <-cb.send:
		t.Fatalf("bob should not receive alice's notification")
	default:
	}
}

func TestHub_DropsSlowClient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil)
	go hub.Run(ctx)

	userID := uuid.New()
	c := NewClient(hub, nil, userID)
	hub.Register(c)
	waitFor(t, func() bool { return hub.ClientCount() == 1 })

	for i := 0; i < sendBuffer; i++ {
		if hub.SendToUser(userID, []byte("x")) != 1 {
			t.Fatalf("send %d should be accepted", i)
		}
	}
	if hub.SendToUser(userID, []byte("overflow")) != 0 {
		t.Fatalf("expected overflow to be rejected")
	}
	waitFor(t, func() bool { return hub.ClientCount() == 0 })
}

func TestHub_RegisterAfterStopDoesNotBlock(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil)
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	done := make(chan bool, 1)
	go func() {
		ok := true
		// More than the register buffer holds.
		for i := 0; i < 200; i++ {
			if hub.Register(NewClient(hub, nil, uuid.New())) {
				ok = false
			}
		}
		done <- ok
	}()

	select {
	case ok := <-done:
		if !ok {
			t.Fatalf("register after stop should be refused")
		}
	case <-time.After(time.Second):
		t.Fatalf("register blocked after the hub stopped")
	}

	c := NewClient(hub, nil, uuid.New())
	hub.Register(c)
	if c.trySend([]byte("x")) {
		t.Fatalf("client refused by a stopped hub should be closed")
	}
	if hub.ClientCount() != 0 {
		t.Fatalf("expected no clients, got %d", hub.ClientCount())
	}
}

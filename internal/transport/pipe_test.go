package transport

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestPipeDeliversInOrder(t *testing.T) {
	a, b := Pipe()
	defer a.Close()
	defer b.Close()

	var mu sync.Mutex
	var got []string
	done := make(chan struct{})
	b.Subscribe(func(data []byte) {
		mu.Lock()
		got = append(got, string(data))
		if len(got) == 3 {
			close(done)
		}
		mu.Unlock()
	})

	for _, msg := range []string{"one", "two", "three"} {
		if err := a.Send([]byte(msg)); err != nil {
			t.Fatalf("send %q: %v", msg, err)
		}
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for delivery")
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{"one", "two", "three"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("message %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPipeUnsubscribeStopsDelivery(t *testing.T) {
	a, b := Pipe()
	defer a.Close()
	defer b.Close()

	first := make(chan struct{}, 1)
	cancel := b.Subscribe(func(data []byte) {
		first <- struct{}{}
	})

	if err := a.Send([]byte("hello")); err != nil {
		t.Fatalf("send: %v", err)
	}
	select {
	case <-first:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for first delivery")
	}

	cancel()
	if err := a.Send([]byte("again")); err != nil {
		t.Fatalf("send after cancel: %v", err)
	}
	select {
	case <-first:
		t.Fatal("unexpected delivery after unsubscribe")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPipeSendAfterCloseFails(t *testing.T) {
	a, b := Pipe()
	if err := b.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := a.Send([]byte("x")); !errors.Is(err, ErrClosed) {
		t.Fatalf("send error = %v, want %v", err, ErrClosed)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("close sender: %v", err)
	}
	if err := a.Send([]byte("x")); !errors.Is(err, ErrClosed) {
		t.Fatalf("send on closed end error = %v, want %v", err, ErrClosed)
	}
}

func TestPipeCloseIsIdempotent(t *testing.T) {
	a, _ := Pipe()
	if err := a.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestPipeCopiesPayload(t *testing.T) {
	a, b := Pipe()
	defer a.Close()
	defer b.Close()

	received := make(chan []byte, 1)
	b.Subscribe(func(data []byte) {
		received <- data
	})

	buf := []byte("mutate-me")
	if err := a.Send(buf); err != nil {
		t.Fatalf("send: %v", err)
	}
	buf[0] = 'X'

	select {
	case msg := <-received:
		if string(msg) != "mutate-me" {
			t.Fatalf("payload was not copied: %q", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for delivery")
	}
}

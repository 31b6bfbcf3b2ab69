package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishDelivery(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: "photo.added", Data: map[string]string{"filepath": "1700000000000jpeg"}})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: photo.added") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"filepath":"1700000000000jpeg"`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func drain(ch chan []byte) []string {
	var out []string
	for {
		select {
		case msg := <-ch:
			out = append(out, string(msg))
		default:
			return out
		}
	}
}

func TestPublishGalleryEvent_ChangeThrottle(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishGalleryEvent("added", "2jpeg")
	b.PublishGalleryEvent("deleted", "1jpeg")

	time.Sleep(50 * time.Millisecond)
	changed, photo := 0, 0
	for _, s := range drain(ch) {
		if strings.Contains(s, "gallery.changed") {
			changed++
		} else {
			photo++
		}
	}

	if photo != 2 {
		t.Errorf("photo events = %d, want 2", photo)
	}
	if changed != 1 {
		t.Errorf("gallery.changed events = %d, want 1 (throttled)", changed)
	}
}

func TestPublishGalleryEvent_Kinds(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishGalleryEvent("loaded", "")
	b.PublishGalleryEvent("bogus", "x")
	time.Sleep(50 * time.Millisecond)

	msgs := drain(ch)
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want 2: %q", len(msgs), msgs)
	}
	if !strings.Contains(msgs[0], "event: gallery.loaded") {
		t.Errorf("first = %q", msgs[0])
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.Publish(Event{Type: "photo.deleted", Data: map[string]string{"filepath": "x"}})
	time.Sleep(50 * time.Millisecond)

	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: photo.deleted") {
		t.Errorf("handler output missing event: %q", body)
	}

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// Buffer capacity is 64; extra events must not block.
	for i := 0; i < 70; i++ {
		b.Publish(Event{Type: "test", Data: map[string]string{"i": "x"}})
	}
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	b.Publish(Event{Type: "photo.added", Data: map[string]string{"filepath": "x"}})
	b.PublishGalleryEvent("added", "x")
}

package eventbus

import "testing"

func TestPublishDeliversLatest(t *testing.T) {
	b := New()
	ch, unsubscribe := b.Subscribe()
	defer unsubscribe()

	b.Publish("first")
	b.Publish("second")

	got := <-ch
	if got != "second" {
		t.Fatalf("expected latest event to survive, got %v", got)
	}
	select {
	case extra := <-ch:
		t.Fatalf("expected single-slot channel to be empty, got %v", extra)
	default:
	}
}

func TestPublishWithNoSubscribersDoesNotBlock(t *testing.T) {
	b := New()
	b.Publish("nobody listening")
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New()
	ch, unsubscribe := b.Subscribe()
	unsubscribe()
	b.Publish("event")
	select {
	case v := <-ch:
		t.Fatalf("expected no delivery after unsubscribe, got %v", v)
	default:
	}
}

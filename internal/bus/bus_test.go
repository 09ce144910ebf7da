package bus

import "testing"

func TestPublishDeliversToAllSubscribersOfATopic(t *testing.T) {
	b := New()
	a := b.Subscribe(TopicSnapshot)
	c := b.Subscribe(TopicSnapshot)

	b.Publish(TopicSnapshot, 42)

	if v := <-a; v != 42 {
		t.Errorf("expected subscriber a to receive 42, got %v", v)
	}
	if v := <-c; v != 42 {
		t.Errorf("expected subscriber c to receive 42, got %v", v)
	}
}

func TestPublishDoesNotCrossTopics(t *testing.T) {
	b := New()
	snap := b.Subscribe(TopicSnapshot)
	smart := b.Subscribe(TopicSmart)

	b.Publish(TopicSnapshot, "snapshot-payload")

	select {
	case v := <-snap:
		if v != "snapshot-payload" {
			t.Errorf("unexpected payload %v", v)
		}
	default:
		t.Error("expected snapshot subscriber to receive a publish")
	}

	select {
	case v := <-smart:
		t.Errorf("expected no delivery on unrelated topic, got %v", v)
	default:
	}
}

func TestPublishNeverBlocksOnAFullSubscriber(t *testing.T) {
	b := New()
	ch := b.Subscribe(TopicSnapshot)

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer+5; i++ {
			b.Publish(TopicSnapshot, i)
		}
		close(done)
	}()

	select {
	case <-done:
	default:
	}
	<-done // Publish must return even though nothing drains ch.
	_ = ch
}

func TestUnsubscribeStopsFurtherDelivery(t *testing.T) {
	b := New()
	ch := b.Subscribe(TopicSnapshot)
	b.Unsubscribe(TopicSnapshot, ch)

	b.Publish(TopicSnapshot, "after-unsubscribe")

	if _, ok := <-ch; ok {
		t.Error("expected channel to be closed after Unsubscribe")
	}
}

package events_test

import (
	"testing"

	"github.com/RyanLatimer/Corundum/foundation/events"
)

func Test_Events(t *testing.T) {
	evts := events.New()

	ch1 := evts.Acquire("one")
	ch2 := evts.Acquire("two")

	if evts.Acquire("one") != ch1 {
		t.Fatalf("Should get the same channel for the same id.")
	}

	if evts.Count() != 2 {
		t.Fatalf("Should have two subscribers, got %d.", evts.Count())
	}

	evts.Send("mined block")

	for _, ch := range []<-chan string{ch1, ch2} {
		if got := <-ch; got != "mined block" {
			t.Logf("got: %s", got)
			t.Logf("exp: %s", "mined block")
			t.Fatalf("Should receive the event.")
		}
	}

	dropped, err := evts.Release("one")
	if err != nil || dropped != 0 {
		t.Fatalf("Should be able to release the subscriber: %v", err)
	}

	if _, ok := <-ch1; ok {
		t.Fatalf("Should have the channel closed after release.")
	}

	if _, err := evts.Release("one"); err == nil {
		t.Fatalf("Should not be able to release an unknown id.")
	}

	evts.Shutdown()

	if _, ok := <-ch2; ok {
		t.Fatalf("Should have the channel closed after shutdown.")
	}

	if _, ok := <-evts.Acquire("three"); ok {
		t.Fatalf("Should get a closed channel after shutdown.")
	}
}

func Test_SlowSubscriber(t *testing.T) {
	evts := events.New()
	evts.Acquire("slow")

	const sends = 150
	for i := 0; i < sends; i++ {
		evts.Send("event")
	}

	dropped, err := evts.Release("slow")
	if err != nil {
		t.Fatalf("Should be able to release the subscriber: %s", err)
	}

	if dropped != 50 {
		t.Logf("got: %d", dropped)
		t.Logf("exp: %d", 50)
		t.Fatalf("Should count the events that didn't fit the buffer.")
	}
}

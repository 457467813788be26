package events_test

import (
	"testing"

	"github.com/ardanlabs/simpleminer/foundation/events"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Events(t *testing.T) {
	evts := events.New()

	t.Log("Given two registered receivers.")
	{
		ch1 := evts.Acquire("one")
		ch2 := evts.Acquire("two")

		if evts.Acquire("one") != ch1 || evts.Receivers() != 2 {
			t.Fatalf("\t%s\tShould reuse the channel for a known id.", failed)
		}
		t.Logf("\t%s\tShould reuse the channel for a known id.", success)

		evts.Send("block mined")

		if msg := <-ch1; msg != "block mined" {
			t.Fatalf("\t%s\tShould deliver to the first receiver, got %q.", failed, msg)
		}
		if msg := <-ch2; msg != "block mined" {
			t.Fatalf("\t%s\tShould deliver to the second receiver, got %q.", failed, msg)
		}
		t.Logf("\t%s\tShould deliver to every receiver.", success)

		if err := evts.Release("one"); err != nil {
			t.Fatalf("\t%s\tShould release a known id: %v", failed, err)
		}
		if _, open := <-ch1; open {
			t.Fatalf("\t%s\tShould close a released channel.", failed)
		}
		if err := evts.Release("one"); err == nil {
			t.Fatalf("\t%s\tShould not release an unknown id.", failed)
		}
		t.Logf("\t%s\tShould release receivers.", success)
	}

	t.Log("Given a receiver that stops reading.")
	{
		for i := 0; i < 150; i++ {
			evts.Send("tick")
		}

		if evts.Dropped() != 50 {
			t.Fatalf("\t%s\tShould drop the messages past the buffer, got %d.", failed, evts.Dropped())
		}
		t.Logf("\t%s\tShould drop the messages past the buffer.", success)

		evts.Shutdown()
		if evts.Receivers() != 0 {
			t.Fatalf("\t%s\tShould remove every receiver on shutdown.", failed)
		}
		t.Logf("\t%s\tShould remove every receiver on shutdown.", success)
	}
}

package model

import "testing"

func TestConnStateString(t *testing.T) {
	cases := map[ConnState]string{
		ConnHandshake: "handshake",
		ConnAttached:  "attached",
		ConnDetaching: "detaching",
		ConnClosed:    "closed",
		ConnState(99):  "unknown",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("ConnState(%d).String() = %q, want %q", int(state), got, want)
		}
	}
}

package session

import "testing"

func TestBrokerStartsAnonymous(t *testing.T) {
	b := NewBroker()

	cur := b.Current()
	if !cur.Anonymous || cur.Trusted() {
		t.Fatalf("initial session = %+v, want anonymous untrusted", cur)
	}
}

func TestWatchFiresImmediatelyAndOnSet(t *testing.T) {
	b := NewBroker()

	var got []Session
	cancel := b.Watch(func(s Session) { got = append(got, s) })

	if len(got) != 1 || !got[0].Anonymous {
		t.Fatalf("watch should fire immediately with current session, got %+v", got)
	}

	b.Set(Session{UserID: "u1", Authenticated: true})
	if len(got) != 2 || got[1].UserID != "u1" {
		t.Fatalf("watch should fire on set, got %+v", got)
	}

	cancel()
	b.Set(Anonymous())
	if len(got) != 2 {
		t.Fatalf("cancelled watcher still notified, got %+v", got)
	}
}

func TestTrusted(t *testing.T) {
	cases := []struct {
		s    Session
		want bool
	}{
		{Session{UserID: "u1", Authenticated: true}, true},
		{Session{UserID: "u1", Authenticated: true, Anonymous: true}, false},
		{Session{UserID: "u1"}, false},
		{Anonymous(), false},
	}
	for _, tc := range cases {
		if got := tc.s.Trusted(); got != tc.want {
			t.Errorf("Trusted(%+v) = %v, want %v", tc.s, got, tc.want)
		}
	}
}

package lifecycle

import "testing"

func TestCanTransition(t *testing.T) {
	allow := []struct{ from, to Status }{
		{StatusNew, StatusStaged},
		{StatusNew, StatusDone}, // simple types only; capability-checked by the service
		{StatusStaged, StatusStaged},
		{StatusStaged, StatusReady},
		{StatusStaged, StatusDone},
		{StatusReady, StatusStaged},
		{StatusReady, StatusDone},
		{StatusNew, StatusSkip},
		{StatusStaged, StatusSkip},
		{StatusReady, StatusSkip},
	}
	for _, tc := range allow {
		if !CanTransition(tc.from, tc.to) {
			t.Errorf("%s→%s should be allowed", tc.from, tc.to)
		}
	}

	deny := []struct{ from, to Status }{
		{StatusDone, StatusSkip},
		{StatusDone, StatusStaged},
		{StatusSkip, StatusSkip},
		{StatusSkip, StatusStaged},
		{StatusReady, StatusNew},
		{StatusStaged, StatusNew},
		{StatusNew, StatusReady},
	}
	for _, tc := range deny {
		if CanTransition(tc.from, tc.to) {
			t.Errorf("%s→%s should be rejected", tc.from, tc.to)
		}
	}
}

func TestTerminalAndActive(t *testing.T) {
	for _, s := range []Status{StatusDone, StatusSkip} {
		if !s.Terminal() || s.Active() {
			t.Errorf("%s should be terminal and inactive", s)
		}
	}
	for _, s := range []Status{StatusNew, StatusStaged, StatusReady} {
		if s.Terminal() || !s.Active() {
			t.Errorf("%s should be active and non-terminal", s)
		}
	}
}

func TestParseStatus(t *testing.T) {
	if s, ok := ParseStatus(" Staged "); !ok || s != StatusStaged {
		t.Fatalf("ParseStatus = %q, %v", s, ok)
	}
	if _, ok := ParseStatus("pending"); ok {
		t.Fatal("legacy vocabulary should not parse as current status")
	}
}

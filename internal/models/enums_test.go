package models

import "testing"

func TestParseJobStatus(t *testing.T) {
	for _, st := range JobStatuses {
		got, err := ParseJobStatus(string(st))
		if err != nil || got != st {
			t.Errorf("ParseJobStatus(%q) = %q, %v", st, got, err)
		}
	}
	if got, err := ParseJobStatus(" Applied "); err != nil || got != StatusApplied {
		t.Errorf("case/space folding: %q, %v", got, err)
	}
	if _, err := ParseJobStatus("hired"); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestConnectionStatusCanAdvance(t *testing.T) {
	tests := []struct {
		from, to ConnectionStatus
		want     bool
	}{
		{ConnPending, ConnSent, true},
		{ConnPending, ConnReplied, true},
		{ConnSent, ConnSent, true},
		{ConnSent, ConnAccepted, true},
		{ConnAccepted, ConnNoResponse, true},
		{ConnNoResponse, ConnReplied, true},
		{ConnSent, ConnPending, false},
		{ConnReplied, ConnAccepted, false},
		{ConnAccepted, ConnSent, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanAdvance(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestParseMessageTypeDefault(t *testing.T) {
	if got, err := ParseMessageType(""); err != nil || got != MessageDirect {
		t.Fatalf("got %q, %v", got, err)
	}
	if _, err := ParseMessageType("fax"); err == nil {
		t.Fatal("expected error")
	}
}

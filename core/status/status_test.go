package status

import (
	"testing"
	"time"
)

func TestDerive(t *testing.T) {
	cases := []struct {
		name      string
		total     int
		completed int
		want      Status
	}{
		{"no tasks", 0, 0, Open},
		{"none completed", 3, 0, Open},
		{"one of three completed", 3, 1, InProgress},
		{"all but one completed", 4, 3, InProgress},
		{"all completed", 2, 2, Closed},
		{"single task completed", 1, 1, Closed},
	}
	for _, tc := range cases {
		if got := Derive(tc.total, tc.completed); got != tc.want {
			t.Errorf("%s: Derive(%d, %d) = %q, want %q", tc.name, tc.total, tc.completed, got, tc.want)
		}
	}
}

func TestDeriveIsIdempotent(t *testing.T) {
	for total := 0; total <= 4; total++ {
		for completed := 0; completed <= total; completed++ {
			first := Derive(total, completed)
			if second := Derive(total, completed); second != first {
				t.Fatalf("Derive(%d, %d) not stable: %q then %q", total, completed, first, second)
			}
		}
	}
}

func TestNextForcesInProgressOnTaskCreated(t *testing.T) {
	if got := Next(EventTaskCreated, 0, 0); got != InProgress {
		t.Fatalf("task created on empty incident: got %q, want %q", got, InProgress)
	}
	// Even an incident whose every task is complete reopens into "en curso"
	// when new work is attached.
	if got := Next(EventTaskCreated, 2, 2); got != InProgress {
		t.Fatalf("task created on fully completed incident: got %q, want %q", got, InProgress)
	}
}

func TestNextRederivesOnCompletionEvents(t *testing.T) {
	if got := Next(EventTaskCompleted, 2, 2); got != Closed {
		t.Fatalf("last task completed: got %q, want %q", got, Closed)
	}
	if got := Next(EventTaskUncompleted, 2, 1); got != InProgress {
		t.Fatalf("task reopened with one still done: got %q, want %q", got, InProgress)
	}
	if got := Next(EventTaskUncompleted, 2, 0); got != Open {
		t.Fatalf("all tasks reopened: got %q, want %q", got, Open)
	}
}

func TestValid(t *testing.T) {
	for _, s := range []string{"abierta", "en curso", "cerrada"} {
		if !Valid(s) {
			t.Errorf("Valid(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"", "abierto", "EN CURSO", "closed", "resuelta"} {
		if Valid(s) {
			t.Errorf("Valid(%q) = true, want false", s)
		}
	}
}

func TestClosedAt(t *testing.T) {
	now := time.Now().UTC()
	got := ClosedAt(Closed, now)
	if got == nil || !got.Equal(now) {
		t.Fatalf("ClosedAt(Closed) = %v, want %v", got, now)
	}
	if got := ClosedAt(Open, now); got != nil {
		t.Fatalf("ClosedAt(Open) = %v, want nil", got)
	}
	if got := ClosedAt(InProgress, now); got != nil {
		t.Fatalf("ClosedAt(InProgress) = %v, want nil", got)
	}
}

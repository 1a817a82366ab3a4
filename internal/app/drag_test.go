package app

import "testing"

func TestDragStateTransitions(t *testing.T) {
	var idle DragState
	if idle.Active() || idle.Phase.String() != "idle" {
		t.Fatalf("unexpected zero drag %#v", idle)
	}
	if got := idle.Hover("c2", 1); got != idle {
		t.Fatalf("expected hover while idle to be a no-op, got %#v", got)
	}
	if _, _, ok := idle.Drop("c2", 0); ok {
		t.Fatal("expected drop while idle to report no drag")
	}

	drag := idle.Start("t1", "c1", 2)
	if !drag.Active() || drag.Phase.String() != "dragging" || drag.OverColumnID != "c1" || drag.OverIndex != 2 {
		t.Fatalf("unexpected started drag %#v", drag)
	}
	if again := drag.Start("t2", "c3", 0); again != drag {
		t.Fatalf("expected start while dragging to keep the drag, got %#v", again)
	}

	drag = drag.Hover("c2", 0).Hover("c3", 4)
	if drag.OverColumnID != "c3" || drag.OverIndex != 4 {
		t.Fatalf("expected last hover to win, got %#v", drag)
	}

	intent, next, ok := drag.Drop("c3", 1)
	if !ok || next.Active() {
		t.Fatalf("expected drop to end the drag, got %#v ok=%t", next, ok)
	}
	want := DropIntent{TaskID: "t1", FromColumnID: "c1", ToColumnID: "c3", ToIndex: 1}
	if intent != want {
		t.Fatalf("Drop() intent = %#v, want %#v", intent, want)
	}

	if cancelled := drag.Cancel(); cancelled != (DragState{}) {
		t.Fatalf("expected cancel to clear all fields, got %#v", cancelled)
	}
}

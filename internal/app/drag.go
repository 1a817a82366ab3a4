package app

// DragPhase is the state of a pointer or keyboard drag.
type DragPhase int

// DragIdle and DragActive are the two drag phases.
const (
	DragIdle DragPhase = iota
	DragActive
)

// String returns a readable phase name.
func (p DragPhase) String() string {
	if p == DragActive {
		return "dragging"
	}
	return "idle"
}

// DragState tracks one in-flight drag. It is kept apart from the board so a
// cancelled drag leaves nothing behind.
type DragState struct {
	Phase        DragPhase
	TaskID       string
	FromColumnID string
	OverColumnID string
	OverIndex    int
}

// DropIntent is the move a completed drag asks for.
type DropIntent struct {
	TaskID       string
	FromColumnID string
	ToColumnID   string
	ToIndex      int
}

// Active reports whether a drag is in progress.
func (d DragState) Active() bool {
	return d.Phase == DragActive
}

// Start begins dragging taskID out of columnID at index. Starting while
// already dragging keeps the current drag.
func (d DragState) Start(taskID, columnID string, index int) DragState {
	if d.Active() {
		return d
	}
	return DragState{
		Phase:        DragActive,
		TaskID:       taskID,
		FromColumnID: columnID,
		OverColumnID: columnID,
		OverIndex:    index,
	}
}

// Hover records the current drop target. The latest hover wins; hovering
// while idle does nothing.
func (d DragState) Hover(columnID string, index int) DragState {
	if !d.Active() {
		return d
	}
	d.OverColumnID = columnID
	d.OverIndex = index
	return d
}

// Drop ends the drag at columnID and index. It returns the requested move and
// the idle state; ok is false when no drag was in progress.
func (d DragState) Drop(columnID string, index int) (DropIntent, DragState, bool) {
	if !d.Active() {
		return DropIntent{}, DragState{}, false
	}
	return DropIntent{
		TaskID:       d.TaskID,
		FromColumnID: d.FromColumnID,
		ToColumnID:   columnID,
		ToIndex:      index,
	}, DragState{}, true
}

// Cancel abandons the drag without moving anything.
func (d DragState) Cancel() DragState {
	return DragState{}
}

package usecase

import (
	"testing"
	"time"

	"github.com/St1cky1/kanban-service/internal/entity"
	"github.com/jonboulle/clockwork"
)

func TestCollapseDefaults(t *testing.T) {
	state := NewCollapseState(clockwork.NewRealClock())

	if !state.IsCollapsed("todo", 0) {
		t.Error("Expected empty column to start collapsed")
	}
	if state.IsCollapsed("todo", 2) {
		t.Error("Expected non-empty column to start expanded")
	}
	if state.Toggle("todo", 0) {
		t.Error("Expected toggle to expand the empty column")
	}
	if state.IsCollapsed("todo", 0) {
		t.Error("Expected override to win over the default")
	}
}

func TestCollapseDragAutoExpand(t *testing.T) {
	clk := clockwork.NewFakeClockAt(time.Unix(0, 0))
	state := NewCollapseState(clk)

	state.DragEnter("done", 0)
	clk.Advance(DragExpandDelay - time.Millisecond)
	if !state.IsCollapsed("done", 0) {
		t.Fatal("Expected column to stay collapsed before the delay")
	}
	clk.Advance(time.Millisecond)
	deadline := time.Now().Add(time.Second)
	for state.IsCollapsed("done", 0) {
		if time.Now().After(deadline) {
			t.Fatal("Expected column to expand after the delay")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestCollapseDragLeaveCancels(t *testing.T) {
	clk := clockwork.NewFakeClockAt(time.Unix(0, 0))
	state := NewCollapseState(clk)

	state.DragEnter("done", 0)
	clk.Advance(200 * time.Millisecond)
	state.DragLeave("done")
	clk.Advance(time.Second)
	if !state.IsCollapsed("done", 0) {
		t.Error("Expected cancelled drag to keep the column collapsed")
	}

	state.DragEnter("done", 0)
	state.Close()
	clk.Advance(time.Second)
	time.Sleep(20 * time.Millisecond)
	if !state.IsCollapsed("done", 0) {
		t.Error("Expected Close to cancel the pending expand")
	}
}

func TestGroupByColumn(t *testing.T) {
	view := &entity.BoardView{
		Board: *testBoard(),
		Tasks: []entity.Task{
			{ID: "t1", ColumnID: "todo"},
			{ID: "t2", ColumnID: "todo"},
			{ID: "t3", ColumnID: "done"},
		},
	}
	state := NewCollapseState(clockwork.NewRealClock())
	state.Set("done", true)

	groups := GroupByColumn(view, state)
	if len(groups) != 3 {
		t.Fatalf("Expected 3 groups, got %d", len(groups))
	}
	if groups[0].Count != 2 || groups[0].Collapsed {
		t.Errorf("Expected todo expanded with 2 tasks, got %+v", groups[0])
	}
	if groups[1].Count != 0 || !groups[1].Collapsed || groups[1].Tasks == nil {
		t.Errorf("Expected empty doing collapsed, got %+v", groups[1])
	}
	if !groups[2].Collapsed {
		t.Errorf("Expected done collapsed by override, got %+v", groups[2])
	}
}

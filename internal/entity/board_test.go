package entity

import "testing"

func testBoardView() *BoardView {
	return &BoardView{
		Board: Board{
			ID: "b1",
			Columns: []Column{
				{ID: "todo", Title: "To do"},
				{ID: "doing", Title: "Doing"},
				{ID: "done", Title: "Done"},
			},
		},
		Tasks: []Task{
			{ID: "t1", ColumnID: "todo"},
			{ID: "t2", ColumnID: "doing"},
			{ID: "t3", ColumnID: "todo"},
		},
	}
}

func TestTasksForColumnPartitionsTasks(t *testing.T) {
	view := testBoardView()

	for _, task := range view.Tasks {
		found := 0
		for _, col := range view.Board.Columns {
			for _, ct := range view.TasksForColumn(col.ID) {
				if ct.ID == task.ID {
					found++
					if col.ID != task.ColumnID {
						t.Errorf("task %s found in column %s, expected %s", task.ID, col.ID, task.ColumnID)
					}
				}
			}
		}
		if found != 1 {
			t.Errorf("task %s appears in %d columns, expected exactly 1", task.ID, found)
		}
	}
}

func TestMoveTaskInsertsAtFront(t *testing.T) {
	view := testBoardView()
	view.Tasks = append(view.Tasks, Task{ID: "t4", ColumnID: "doing"})

	moved, err := view.MoveTask("t3", "doing")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !moved {
		t.Fatal("expected task to be moved")
	}

	doing := view.TasksForColumn("doing")
	if len(doing) != 3 || doing[0].ID != "t3" {
		t.Fatalf("expected t3 first in doing, got %+v", doing)
	}
	if doing[0].Position != 0 {
		t.Errorf("expected position 0, got %d", doing[0].Position)
	}
	if len(view.TasksForColumn("todo")) != 1 {
		t.Errorf("expected one task left in todo")
	}
}

func TestMoveTaskToCurrentColumnIsNoop(t *testing.T) {
	view := testBoardView()
	before := len(view.Tasks)

	moved, err := view.MoveTask("t1", "todo")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if moved {
		t.Error("expected redundant move to report no change")
	}
	if len(view.Tasks) != before {
		t.Errorf("expected %d tasks, got %d", before, len(view.Tasks))
	}
	if got := view.TasksForColumn("todo"); len(got) != 2 || got[0].ID != "t1" {
		t.Errorf("expected todo order unchanged, got %+v", got)
	}
}

func TestMoveTaskUnknownColumn(t *testing.T) {
	view := testBoardView()
	if _, err := view.MoveTask("t1", "archive"); err != ErrColumnNotFound {
		t.Errorf("Expected ErrColumnNotFound, got %v", err)
	}
	if _, err := view.MoveTask("missing", "done"); err != ErrTaskNotFound {
		t.Errorf("Expected ErrTaskNotFound, got %v", err)
	}
}

func TestValidateDetectsDanglingColumn(t *testing.T) {
	view := testBoardView()
	if err := view.Validate(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	view.Tasks[0].ColumnID = "ghost"
	if err := view.Validate(); err != ErrColumnNotFound {
		t.Errorf("Expected ErrColumnNotFound, got %v", err)
	}
}

func TestPatchAttachments(t *testing.T) {
	view := testBoardView()
	ok := view.PatchAttachments("t2", func(list []Attachment) []Attachment {
		return append(list, Attachment{ID: "a1"})
	})
	if !ok {
		t.Fatal("expected patch to find task")
	}
	task, _ := view.Task("t2")
	if len(task.Attachments) != 1 || task.Attachments[0].ID != "a1" {
		t.Errorf("expected attachment a1, got %+v", task.Attachments)
	}
	if view.PatchAttachments("nope", func(l []Attachment) []Attachment { return l }) {
		t.Error("expected false for unknown task")
	}
}

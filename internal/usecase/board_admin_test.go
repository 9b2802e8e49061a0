package usecase

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/St1cky1/kanban-service/internal/entity"
	"github.com/jackc/pgx/v5"
	"github.com/jonboulle/clockwork"
)

func newAdminService(boardRepo *MockBoardRepository, taskRepo *MockTaskRepository, cache *MockBoardViewCache) *BoardService {
	return NewBoardService(boardRepo, taskRepo, &MockAttachmentRepository{}, cache, nil, clockwork.NewRealClock())
}

func TestCreateBoardSeedsDefaultColumns(t *testing.T) {
	scope, notices := testScope()
	boardRepo, taskRepo := boardFixture()

	var gotColumns []entity.ColumnInput
	boardRepo.CreateFunc = func(ctx context.Context, workspaceID string, input *entity.CreateBoardInput, columns []entity.ColumnInput) (*entity.Board, error) {
		gotColumns = columns
		return &entity.Board{ID: "b2", WorkspaceID: workspaceID, Title: input.Title}, nil
	}
	service := newAdminService(boardRepo, taskRepo, &MockBoardViewCache{})

	board, err := service.CreateBoard(context.Background(), scope, &entity.CreateBoardInput{Title: "  Launch  "})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if board.Title != "Launch" || board.WorkspaceID != "ws1" {
		t.Errorf("Unexpected board %+v", board)
	}
	if len(gotColumns) != 4 || gotColumns[0].Title != "To do" || gotColumns[3].Title != "Done" {
		t.Errorf("Expected the four default columns, got %+v", gotColumns)
	}
	if !hasNotice(notices, NoticeSuccess) {
		t.Error("Expected success notice")
	}
}

func TestCreateBoardRequiresTitle(t *testing.T) {
	scope, _ := testScope()
	boardRepo, taskRepo := boardFixture()
	boardRepo.CreateFunc = func(ctx context.Context, workspaceID string, input *entity.CreateBoardInput, columns []entity.ColumnInput) (*entity.Board, error) {
		t.Fatal("Create must not be called for a blank title")
		return nil, nil
	}
	service := newAdminService(boardRepo, taskRepo, &MockBoardViewCache{})

	_, err := service.CreateBoard(context.Background(), scope, &entity.CreateBoardInput{Title: "   "})
	if !errors.Is(err, entity.ErrInvalidBoardData) || !IsInvalidInput(err) {
		t.Errorf("Expected ErrInvalidBoardData, got %v", err)
	}
}

func TestCreateColumnDefaultsColor(t *testing.T) {
	scope, _ := testScope()
	boardRepo, taskRepo := boardFixture()
	cache := &MockBoardViewCache{}
	service := newAdminService(boardRepo, taskRepo, cache)

	column, err := service.CreateColumn(context.Background(), scope, "b1", &entity.ColumnInput{Title: "Review"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if column.Color != entity.DefaultColumnColor {
		t.Errorf("Expected default color, got %s", column.Color)
	}
	if !slices.Contains(cache.Invalidated, "b1") {
		t.Error("Expected board cache to be invalidated")
	}

	if _, err := service.CreateColumn(context.Background(), scope, "other", &entity.ColumnInput{Title: "Review"}); err != entity.ErrBoardNotFound {
		t.Errorf("Expected ErrBoardNotFound, got %v", err)
	}
}

func TestUpdateColumnUnknown(t *testing.T) {
	scope, _ := testScope()
	boardRepo, taskRepo := boardFixture()
	service := newAdminService(boardRepo, taskRepo, &MockBoardViewCache{})

	title := "Renamed"
	if _, err := service.UpdateColumn(context.Background(), scope, "b1", "ghost", &entity.UpdateColumnInput{Title: &title}); err != entity.ErrColumnNotFound {
		t.Errorf("Expected ErrColumnNotFound, got %v", err)
	}
}

func TestDeleteColumnWithTasks(t *testing.T) {
	scope, _ := testScope()
	boardRepo, taskRepo := boardFixture()

	var deleted, movedTo string
	boardRepo.DeleteColumnFunc = func(ctx context.Context, boardID, columnID, moveTo string) error {
		deleted, movedTo = columnID, moveTo
		return nil
	}
	service := newAdminService(boardRepo, taskRepo, &MockBoardViewCache{})
	ctx := context.Background()

	if err := service.DeleteColumn(ctx, scope, "b1", "todo", ""); err != entity.ErrColumnNotEmpty {
		t.Fatalf("Expected ErrColumnNotEmpty, got %v", err)
	}
	if deleted != "" {
		t.Fatal("Expected non-empty column to survive")
	}

	if err := service.DeleteColumn(ctx, scope, "b1", "todo", "todo"); !errors.Is(err, entity.ErrInvalidBoardData) {
		t.Errorf("Expected moving into itself to fail, got %v", err)
	}
	if err := service.DeleteColumn(ctx, scope, "b1", "todo", "ghost"); err != entity.ErrColumnNotFound {
		t.Errorf("Expected ErrColumnNotFound for the target, got %v", err)
	}

	if err := service.DeleteColumn(ctx, scope, "b1", "todo", "done"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if deleted != "todo" || movedTo != "done" {
		t.Errorf("Expected todo deleted into done, got %s into %s", deleted, movedTo)
	}
}

func TestDeleteEmptyColumn(t *testing.T) {
	scope, _ := testScope()
	boardRepo, taskRepo := boardFixture()
	called := false
	boardRepo.DeleteColumnFunc = func(ctx context.Context, boardID, columnID, moveTo string) error {
		called = true
		return nil
	}
	service := newAdminService(boardRepo, taskRepo, &MockBoardViewCache{})

	if err := service.DeleteColumn(context.Background(), scope, "b1", "done", ""); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !called {
		t.Error("Expected empty column to be deleted")
	}
}

func TestReorderColumnsRequiresPermutation(t *testing.T) {
	scope, _ := testScope()
	boardRepo, taskRepo := boardFixture()

	var saved []string
	boardRepo.ReorderColumnsFunc = func(ctx context.Context, boardID string, order []string) error {
		saved = order
		return nil
	}
	service := newAdminService(boardRepo, taskRepo, &MockBoardViewCache{})
	ctx := context.Background()

	bad := [][]string{
		{"todo", "doing"},
		{"todo", "doing", "doing"},
		{"todo", "doing", "ghost"},
	}
	for _, order := range bad {
		if _, err := service.ReorderColumns(ctx, scope, "b1", order); err != entity.ErrInvalidColumnOrder {
			t.Errorf("Expected ErrInvalidColumnOrder for %v, got %v", order, err)
		}
	}
	if saved != nil {
		t.Fatal("Expected invalid orders not to be saved")
	}

	if _, err := service.ReorderColumns(ctx, scope, "b1", []string{"done", "todo", "doing"}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !slices.Equal(saved, []string{"done", "todo", "doing"}) {
		t.Errorf("Unexpected saved order %v", saved)
	}
}

func TestDeleteBoardUnknown(t *testing.T) {
	scope, _ := testScope()
	boardRepo, taskRepo := boardFixture()
	boardRepo.DeleteFunc = func(ctx context.Context, workspaceID, boardID string) error {
		return pgx.ErrNoRows
	}
	service := newAdminService(boardRepo, taskRepo, &MockBoardViewCache{})

	if err := service.DeleteBoard(context.Background(), scope, "ghost"); err != entity.ErrBoardNotFound {
		t.Errorf("Expected ErrBoardNotFound, got %v", err)
	}
}

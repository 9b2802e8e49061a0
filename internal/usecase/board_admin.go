package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/St1cky1/kanban-service/internal/entity"
	"github.com/jackc/pgx/v5"
)

// ListBoards - доски активной организации
func (s *BoardService) ListBoards(ctx context.Context, scope Scope) ([]entity.Board, error) {
	boards, err := s.boardRepo.List(ctx, scope.WorkspaceID)
	if err != nil {
		return nil, err
	}
	if boards == nil {
		boards = []entity.Board{}
	}
	return boards, nil
}

// CreateBoard создает доску с колонками по умолчанию
func (s *BoardService) CreateBoard(ctx context.Context, scope Scope, in *entity.CreateBoardInput) (*entity.Board, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidBoardData, err)
	}

	board, err := s.boardRepo.Create(ctx, scope.WorkspaceID, in, entity.DefaultColumns)
	if err != nil {
		scope.fail("Failed to create board", err)
		return nil, err
	}

	log.Printf("✅ Доска %s создана в %s", board.ID, scope.WorkspaceID)
	scope.notify(NoticeSuccess, "Board created")
	return board, nil
}

func (s *BoardService) UpdateBoard(ctx context.Context, scope Scope, boardID string, in *entity.UpdateBoardInput) (*entity.Board, error) {
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		in.Title = &title
	}
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidBoardData, err)
	}

	board, err := s.boardRepo.Update(ctx, scope.WorkspaceID, boardID, in)
	if err != nil {
		return nil, err
	}
	if board == nil {
		return nil, entity.ErrBoardNotFound
	}

	s.invalidate(ctx, boardID)
	return board, nil
}

func (s *BoardService) DeleteBoard(ctx context.Context, scope Scope, boardID string) error {
	if err := s.boardRepo.Delete(ctx, scope.WorkspaceID, boardID); err != nil {
		if err == pgx.ErrNoRows {
			return entity.ErrBoardNotFound
		}
		return err
	}

	s.invalidate(ctx, boardID)
	scope.notify(NoticeSuccess, "Board deleted")
	return nil
}

// CreateColumn добавляет колонку в конец доски
func (s *BoardService) CreateColumn(ctx context.Context, scope Scope, boardID string, in *entity.ColumnInput) (*entity.Column, error) {
	in.Normalize()
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidBoardData, err)
	}
	if _, err := s.board(ctx, scope, boardID); err != nil {
		return nil, err
	}

	column, err := s.boardRepo.CreateColumn(ctx, boardID, in)
	if err != nil {
		scope.fail("Failed to create column", err)
		return nil, err
	}

	s.invalidate(ctx, boardID)
	return column, nil
}

func (s *BoardService) UpdateColumn(ctx context.Context, scope Scope, boardID, columnID string, in *entity.UpdateColumnInput) (*entity.Column, error) {
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		in.Title = &title
	}
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidBoardData, err)
	}
	if _, err := s.board(ctx, scope, boardID); err != nil {
		return nil, err
	}

	column, err := s.boardRepo.UpdateColumn(ctx, boardID, columnID, in)
	if err != nil {
		return nil, err
	}
	if column == nil {
		return nil, entity.ErrColumnNotFound
	}

	s.invalidate(ctx, boardID)
	return column, nil
}

// DeleteColumn удаляет колонку. Колонку с задачами удалить можно только
// указав moveTo: задачи переедут туда в конец.
func (s *BoardService) DeleteColumn(ctx context.Context, scope Scope, boardID, columnID, moveTo string) error {
	board, err := s.board(ctx, scope, boardID)
	if err != nil {
		return err
	}
	if _, ok := board.Column(columnID); !ok {
		return entity.ErrColumnNotFound
	}

	if moveTo != "" {
		if moveTo == columnID {
			return fmt.Errorf("%w: cannot move tasks into the deleted column", entity.ErrInvalidBoardData)
		}
		if _, ok := board.Column(moveTo); !ok {
			return entity.ErrColumnNotFound
		}
	} else {
		tasks, err := s.taskRepo.ListByBoard(ctx, scope.WorkspaceID, boardID)
		if err != nil {
			return err
		}
		for _, t := range tasks {
			if t.ColumnID == columnID {
				return entity.ErrColumnNotEmpty
			}
		}
	}

	if err := s.boardRepo.DeleteColumn(ctx, boardID, columnID, moveTo); err != nil {
		if err == pgx.ErrNoRows {
			return entity.ErrColumnNotFound
		}
		scope.fail("Failed to delete column", err)
		return err
	}

	s.invalidate(ctx, boardID)
	scope.notify(NoticeSuccess, "Column deleted")
	return nil
}

// ReorderColumns принимает новый порядок всех колонок доски
func (s *BoardService) ReorderColumns(ctx context.Context, scope Scope, boardID string, order []string) (*entity.Board, error) {
	board, err := s.board(ctx, scope, boardID)
	if err != nil {
		return nil, err
	}
	if !board.ColumnOrderValid(order) {
		return nil, entity.ErrInvalidColumnOrder
	}

	if err := s.boardRepo.ReorderColumns(ctx, boardID, order); err != nil {
		scope.fail("Failed to reorder columns", err)
		return nil, err
	}

	s.invalidate(ctx, boardID)
	return s.board(ctx, scope, boardID)
}

func (s *BoardService) board(ctx context.Context, scope Scope, boardID string) (*entity.Board, error) {
	board, err := s.boardRepo.GetByID(ctx, scope.WorkspaceID, boardID)
	if err != nil {
		return nil, err
	}
	if board == nil {
		return nil, entity.ErrBoardNotFound
	}
	return board, nil
}

// invalidate сбрасывает кеш доски после изменения структуры
func (s *BoardService) invalidate(ctx context.Context, boardID string) {
	if err := s.cache.Invalidate(ctx, boardID); err != nil {
		log.Printf("⚠️  Не удалось сбросить кеш доски %s: %v", boardID, err)
	}
}

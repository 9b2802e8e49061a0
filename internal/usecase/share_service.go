package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/St1cky1/kanban-service/internal/entity"
	"github.com/St1cky1/kanban-service/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonboulle/clockwork"
)

// PublicBoardPath - путь публичной доски, к нему дописывается токен
const PublicBoardPath = "/public/boards/"

// ShareService - публичные ссылки на доски только для чтения
type ShareService struct {
	shareRepo repository.IShareRepository
	boards    *BoardService
	baseURL   string
	clock     clockwork.Clock
}

func NewShareService(shareRepo repository.IShareRepository, boards *BoardService, baseURL string, clk clockwork.Clock) *ShareService {
	return &ShareService{
		shareRepo: shareRepo,
		boards:    boards,
		baseURL:   strings.TrimRight(baseURL, "/"),
		clock:     clk,
	}
}

// CreateShare выпускает новую ссылку. Без имени ссылка называется по дате создания.
func (s *ShareService) CreateShare(ctx context.Context, scope Scope, boardID string, in *entity.CreateShareInput) (*entity.BoardShare, error) {
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidBoardData, err)
	}
	if _, err := s.boards.board(ctx, scope, boardID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = "Shared link - " + s.clock.Now().Format("02/01/2006")
	}

	share, err := s.shareRepo.Create(ctx, &entity.BoardShare{
		BoardID:     boardID,
		WorkspaceID: scope.WorkspaceID,
		Name:        name,
		Token:       newShareToken(),
		CreatedBy:   scope.User.ID,
	})
	if err != nil {
		scope.fail("Failed to create share link", err)
		return nil, err
	}

	log.Printf("✅ Публичная ссылка %s на доску %s создана", share.ID, boardID)
	scope.notify(NoticeSuccess, "Share link created")
	return s.withURL(share), nil
}

func (s *ShareService) ListShares(ctx context.Context, scope Scope, boardID string) ([]entity.BoardShare, error) {
	if _, err := s.boards.board(ctx, scope, boardID); err != nil {
		return nil, err
	}

	shares, err := s.shareRepo.ListByBoard(ctx, scope.WorkspaceID, boardID)
	if err != nil {
		return nil, err
	}
	out := make([]entity.BoardShare, 0, len(shares))
	for i := range shares {
		out = append(out, *s.withURL(&shares[i]))
	}
	return out, nil
}

// RevokeShare выключает ссылку, запись остается в списке
func (s *ShareService) RevokeShare(ctx context.Context, scope Scope, boardID, shareID string) (*entity.BoardShare, error) {
	if _, err := s.owned(ctx, scope, boardID, shareID); err != nil {
		return nil, err
	}

	share, err := s.shareRepo.SetActive(ctx, scope.WorkspaceID, shareID, false)
	if err != nil {
		scope.fail("Failed to revoke share link", err)
		return nil, err
	}
	if share == nil {
		return nil, entity.ErrShareNotFound
	}

	scope.notify(NoticeSuccess, "Share link revoked")
	return s.withURL(share), nil
}

func (s *ShareService) DeleteShare(ctx context.Context, scope Scope, boardID, shareID string) error {
	if _, err := s.owned(ctx, scope, boardID, shareID); err != nil {
		return err
	}

	if err := s.shareRepo.Delete(ctx, scope.WorkspaceID, shareID); err != nil {
		if err == pgx.ErrNoRows {
			return entity.ErrShareNotFound
		}
		return err
	}

	scope.notify(NoticeSuccess, "Share link deleted")
	return nil
}

// PublicView - доска по токену активной ссылки, с поиском по задачам.
// Гость не видит email участников, комментарии и историю.
func (s *ShareService) PublicView(ctx context.Context, token, query string) (*entity.PublicBoard, error) {
	share, err := s.shareRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if share == nil || !share.IsActive {
		return nil, entity.ErrShareNotFound
	}

	view, err := s.boards.GetView(ctx, Scope{WorkspaceID: share.WorkspaceID}, share.BoardID)
	if err != nil {
		return nil, err
	}

	board := view.Board
	board.Members = make([]entity.Member, 0, len(view.Board.Members))
	for _, m := range view.Board.Members {
		m.Email = ""
		board.Members = append(board.Members, m)
	}

	tasks := make([]entity.Task, 0, len(view.Tasks))
	for _, t := range FilterTasks(view.Tasks, query) {
		t.Comments = nil
		t.Activity = nil
		tasks = append(tasks, t)
	}

	return &entity.PublicBoard{ShareName: share.Name, Board: board, Tasks: tasks}, nil
}

func (s *ShareService) owned(ctx context.Context, scope Scope, boardID, shareID string) (*entity.BoardShare, error) {
	share, err := s.shareRepo.GetByID(ctx, scope.WorkspaceID, shareID)
	if err != nil {
		return nil, err
	}
	if share == nil || share.BoardID != boardID {
		return nil, entity.ErrShareNotFound
	}
	return share, nil
}

func (s *ShareService) withURL(share *entity.BoardShare) *entity.BoardShare {
	share.URL = s.baseURL + PublicBoardPath + share.Token
	return share
}

func newShareToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

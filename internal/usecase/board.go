package usecase

import (
	"context"
	"log"

	"github.com/St1cky1/kanban-service/internal/entity"
	"github.com/St1cky1/kanban-service/internal/repository"
	"github.com/jonboulle/clockwork"
)

// movePosition - перемещенная задача всегда встает в начало колонки
const movePosition = 0

type BoardService struct {
	boardRepo      repository.IBoardRepository
	taskRepo       repository.ITaskRepository
	attachmentRepo repository.IAttachmentRepository
	cache          BoardViewCache
	publisher      ActivityPublisher
	clock          clockwork.Clock
}

func NewBoardService(
	boardRepo repository.IBoardRepository,
	taskRepo repository.ITaskRepository,
	attachmentRepo repository.IAttachmentRepository,
	cache BoardViewCache,
	publisher ActivityPublisher,
	clk clockwork.Clock,
) *BoardService {
	return &BoardService{
		boardRepo:      boardRepo,
		taskRepo:       taskRepo,
		attachmentRepo: attachmentRepo,
		cache:          cache,
		publisher:      publisher,
		clock:          clk,
	}
}

// GetView читает доску через кеш. Ошибки кеша не фатальны.
func (s *BoardService) GetView(ctx context.Context, scope Scope, boardID string) (*entity.BoardView, error) {
	view, err := s.cache.Get(ctx, boardID)
	if err != nil {
		log.Printf("⚠️  Кеш доски %s недоступен: %v", boardID, err)
	}
	if view != nil && view.Board.WorkspaceID == scope.WorkspaceID {
		return view, nil
	}

	view, err = s.load(ctx, scope.WorkspaceID, boardID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Put(ctx, view); err != nil {
		log.Printf("⚠️  Не удалось записать доску %s в кеш: %v", boardID, err)
	}
	return view, nil
}

func (s *BoardService) load(ctx context.Context, workspaceID, boardID string) (*entity.BoardView, error) {
	board, err := s.boardRepo.GetByID(ctx, workspaceID, boardID)
	if err != nil {
		return nil, err
	}
	if board == nil {
		return nil, entity.ErrBoardNotFound
	}

	tasks, err := s.taskRepo.ListByBoard(ctx, workspaceID, boardID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	attachments, err := s.attachmentRepo.ListByTasks(ctx, ids)
	if err != nil {
		return nil, err
	}

	byTask := make(map[string][]entity.Attachment)
	for _, a := range taskLevel(attachments) {
		byTask[a.TaskID] = append(byTask[a.TaskID], a)
	}
	for i := range tasks {
		tasks[i].Attachments = byTask[tasks[i].ID]
		if tasks[i].Attachments == nil {
			tasks[i].Attachments = []entity.Attachment{}
		}
	}

	return &entity.BoardView{Board: *board, Tasks: tasks}, nil
}

// MoveTask переносит задачу в колонку локально, потом сохраняет.
// Ошибка сохранения логируется и уходит уведомлением, локальный перенос не откатывается.
// Перенос в текущую колонку ничего не делает и не ходит в базу.
func (s *BoardService) MoveTask(ctx context.Context, scope Scope, boardID, taskID, columnID string) (*entity.BoardView, error) {
	view, err := s.GetView(ctx, scope, boardID)
	if err != nil {
		return nil, err
	}

	task, ok := view.Task(taskID)
	if !ok {
		return nil, entity.ErrTaskNotFound
	}
	fromColumn := task.ColumnID

	moved, err := view.MoveTask(taskID, columnID)
	if err != nil {
		return nil, err
	}
	if !moved {
		return view, nil
	}

	persisted, err := s.taskRepo.Move(ctx, scope.WorkspaceID, taskID, columnID, movePosition)
	if err == nil && persisted == nil {
		err = entity.ErrTaskNotFound
	}
	if err != nil {
		scope.fail("Failed to move task", err)
		// при следующем чтении доска придет из базы
		if cerr := s.cache.Invalidate(ctx, boardID); cerr != nil {
			log.Printf("⚠️  Не удалось сбросить кеш доски %s: %v", boardID, cerr)
		}
		return view, nil
	}

	if err := s.cache.Put(ctx, view); err != nil {
		log.Printf("⚠️  Не удалось обновить доску %s в кеше: %v", boardID, err)
	}

	publishActivity(s.publisher, scope, taskID, s.clock.Now(), activityEvent{
		Type:     entity.ActivityMoved,
		Field:    "columnId",
		OldValue: fromColumn,
		NewValue: columnID,
	})

	return view, nil
}

package usecase

import (
	"context"
	"fmt"
	"log"

	"github.com/St1cky1/kanban-service/internal/entity"
	"github.com/St1cky1/kanban-service/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jonboulle/clockwork"
)

type TaskService struct {
	taskRepo       repository.ITaskRepository
	boardRepo      repository.IBoardRepository
	attachmentRepo repository.IAttachmentRepository
	cache          BoardViewCache
	publisher      ActivityPublisher
	clock          clockwork.Clock
}

func NewTaskService(
	taskRepo repository.ITaskRepository,
	boardRepo repository.IBoardRepository,
	attachmentRepo repository.IAttachmentRepository,
	cache BoardViewCache,
	publisher ActivityPublisher,
	clk clockwork.Clock,
) *TaskService {
	return &TaskService{
		taskRepo:       taskRepo,
		boardRepo:      boardRepo,
		attachmentRepo: attachmentRepo,
		cache:          cache,
		publisher:      publisher,
		clock:          clk,
	}
}

func (s *TaskService) CreateTask(ctx context.Context, scope Scope, in *entity.CreateTaskInput) (*entity.Task, error) {
	// 1. Проверяем вход
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidTaskData, err)
	}

	// 2. Колонка должна существовать на доске этого workspace
	board, err := s.boardRepo.GetByID(ctx, scope.WorkspaceID, in.BoardID)
	if err != nil {
		return nil, err
	}
	if board == nil {
		return nil, entity.ErrBoardNotFound
	}
	if _, ok := board.Column(in.ColumnID); !ok {
		return nil, entity.ErrColumnNotFound
	}

	// 3. Создаем задачу
	task, err := s.taskRepo.Create(ctx, scope.WorkspaceID, in, scope.User.ID)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, task.BoardID)

	// 4. Асинхронно отправляем событие
	publishActivity(s.publisher, scope, task.ID, s.clock.Now(), activityEvent{Type: entity.ActivityCreated, NewValue: task.Title})

	return task, nil
}

func (s *TaskService) GetTask(ctx context.Context, scope Scope, taskID string) (*entity.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, scope.WorkspaceID, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, entity.ErrTaskNotFound
	}

	attachments, err := s.attachmentRepo.ListByTasks(ctx, []string{task.ID})
	if err != nil {
		return nil, err
	}
	task.Attachments = taskLevel(attachments)

	return task, nil
}

func (s *TaskService) UpdateTask(ctx context.Context, scope Scope, taskID string, in entity.UpdateTaskInput) (*entity.Task, error) {
	if in.IsEmpty() {
		return nil, entity.ErrNoFieldsToUpdate
	}
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidTaskData, err)
	}

	// 1. Получаем текущую задачу
	oldTask, err := s.taskRepo.GetByID(ctx, scope.WorkspaceID, taskID)
	if err != nil {
		return nil, err
	}
	if oldTask == nil {
		return nil, entity.ErrTaskNotFound
	}

	// 2. Подготавливаем обновления
	updates, err := taskUpdates(in)
	if err != nil {
		return nil, err
	}

	// 3. Обновляем задачу
	updatedTask, err := s.taskRepo.Update(ctx, scope.WorkspaceID, taskID, updates)
	if err != nil {
		return nil, err
	}
	if updatedTask == nil {
		return nil, entity.ErrTaskNotFound
	}

	s.invalidate(ctx, updatedTask.BoardID)

	// 4. Асинхронно отправляем события
	publishActivity(s.publisher, scope, taskID, s.clock.Now(), taskChangeEvents(oldTask, updatedTask)...)

	return updatedTask, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, scope Scope, taskID string) error {
	task, err := s.taskRepo.GetByID(ctx, scope.WorkspaceID, taskID)
	if err != nil {
		return err
	}
	if task == nil {
		return entity.ErrTaskNotFound
	}

	if err := s.taskRepo.Delete(ctx, scope.WorkspaceID, taskID); err != nil {
		if err == pgx.ErrNoRows {
			return entity.ErrTaskNotFound
		}
		return err
	}

	s.invalidate(ctx, task.BoardID)
	return nil
}

// invalidate сбрасывает кеш доски, чтобы следующее чтение пошло в базу
func (s *TaskService) invalidate(ctx context.Context, boardID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, boardID); err != nil {
		log.Printf("⚠️  Не удалось сбросить кеш доски %s: %v", boardID, err)
	}
}

func taskUpdates(in entity.UpdateTaskInput) (map[string]any, error) {
	updates := make(map[string]any)

	if in.Title != nil {
		updates["title"] = *in.Title
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Priority != nil {
		p, err := entity.ParsePriority(string(*in.Priority))
		if err != nil {
			return nil, err
		}
		updates["priority"] = string(p)
	}
	if in.StartDate != nil {
		updates["start_date"] = *in.StartDate
	}
	if in.DueDate != nil {
		updates["due_date"] = *in.DueDate
	}
	if in.AssignedMembers != nil {
		members := *in.AssignedMembers
		if members == nil {
			members = []string{}
		}
		updates["assigned_members"] = members
	}
	if in.Tags != nil {
		tags := *in.Tags
		if tags == nil {
			tags = []entity.Tag{}
		}
		updates["tags"] = tags
	}
	if in.Checklist != nil {
		checklist := *in.Checklist
		if checklist == nil {
			checklist = []entity.ChecklistItem{}
		}
		updates["checklist"] = checklist
	}

	if len(updates) == 0 {
		return nil, entity.ErrNoFieldsToUpdate
	}
	return updates, nil
}

// taskLevel - вложения описания, без картинок комментариев
func taskLevel(attachments []entity.Attachment) []entity.Attachment {
	out := make([]entity.Attachment, 0, len(attachments))
	for _, a := range attachments {
		if a.CommentID == "" {
			out = append(out, a)
		}
	}
	return out
}

package usecase

import (
	"context"

	"github.com/St1cky1/kanban-service/internal/entity"
)

// CommitResult - созданная задача и что стало с отложенными файлами и комментариями
type CommitResult struct {
	Task     *entity.Task     `json:"task"`
	Uploads  BatchResult      `json:"uploads"`
	Comments []entity.Comment `json:"comments"`
}

// DraftService доводит черновик до сервера
type DraftService struct {
	tasks    *TaskService
	uploader *AttachmentUploader
	comments *CommentService
}

func NewDraftService(tasks *TaskService, uploader *AttachmentUploader, comments *CommentService) *DraftService {
	return &DraftService{
		tasks:    tasks,
		uploader: uploader,
		comments: comments,
	}
}

// Commit создает задачу, потом по одному грузит отложенные файлы, потом по порядку
// отправляет отложенные комментарии. Буферы очищаются только после создания задачи.
func (s *DraftService) Commit(ctx context.Context, scope Scope, draft *Draft, progress ProgressFunc) (*CommitResult, error) {
	if !draft.IsNew() {
		return nil, entity.ErrInvalidTaskData
	}

	// 1. Проверяем форму
	in, err := draft.Submission()
	if err != nil {
		return nil, err
	}

	// 2. Создаем задачу
	task, err := s.tasks.CreateTask(ctx, scope, in)
	if err != nil {
		if !IsInvalidInput(err) {
			scope.fail("Failed to create task", err)
		}
		return nil, err
	}
	draft.TaskID = task.ID
	result := &CommitResult{Task: task, Comments: []entity.Comment{}}

	// 3. Отложенные файлы
	if len(draft.PendingFiles) > 0 {
		files := make([]FileUpload, 0, len(draft.PendingFiles))
		for _, p := range draft.PendingFiles {
			files = append(files, p.File)
		}
		uploads, err := s.uploader.UploadTaskFiles(ctx, scope, task, files, progress)
		if err != nil {
			return nil, err
		}
		result.Uploads = uploads
	}

	// 4. Отложенные комментарии в порядке добавления
	for _, pc := range draft.PendingComments {
		comment, err := s.comments.Submit(ctx, scope, task.ID, pc.Content, pc.Images, progress)
		if err != nil {
			continue
		}
		result.Comments = append(result.Comments, *comment)
	}

	// 5. Чистим буферы
	draft.clearPending()
	draft.PendingComments = nil

	scope.notify(NoticeSuccess, "Task created")
	return result, nil
}

// Save отправляет изменения черновика редактирования. Без изменений удаленного вызова нет.
func (s *DraftService) Save(ctx context.Context, scope Scope, draft *Draft) (*entity.Task, error) {
	changes, err := draft.Changes()
	if err != nil {
		return nil, err
	}
	if changes.IsEmpty() {
		return draft.original, nil
	}

	task, err := s.tasks.UpdateTask(ctx, scope, draft.TaskID, changes)
	if err != nil {
		if !IsInvalidInput(err) {
			scope.fail("Failed to update task", err)
		}
		return nil, err
	}
	draft.original = task

	scope.notify(NoticeSuccess, "Task updated")
	return task, nil
}

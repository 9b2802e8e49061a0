package repository

import (
	"context"

	"github.com/St1cky1/kanban-service/internal/entity"
)

// ITaskRepository - интерфейс для TaskRepository
type ITaskRepository interface {
	Create(ctx context.Context, workspaceID string, task *entity.CreateTaskInput, createdBy string) (*entity.Task, error)
	GetByID(ctx context.Context, workspaceID, taskID string) (*entity.Task, error)
	ListByBoard(ctx context.Context, workspaceID, boardID string) ([]entity.Task, error)
	Update(ctx context.Context, workspaceID, taskID string, updates map[string]any) (*entity.Task, error)
	Delete(ctx context.Context, workspaceID, taskID string) error
	Move(ctx context.Context, workspaceID, taskID, columnID string, position int) (*entity.Task, error)
}

// IBoardRepository - интерфейс для BoardRepository
type IBoardRepository interface {
	GetByID(ctx context.Context, workspaceID, boardID string) (*entity.Board, error)
	List(ctx context.Context, workspaceID string) ([]entity.Board, error)
	Create(ctx context.Context, workspaceID string, input *entity.CreateBoardInput, columns []entity.ColumnInput) (*entity.Board, error)
	Update(ctx context.Context, workspaceID, boardID string, input *entity.UpdateBoardInput) (*entity.Board, error)
	Delete(ctx context.Context, workspaceID, boardID string) error
	CreateColumn(ctx context.Context, boardID string, input *entity.ColumnInput) (*entity.Column, error)
	UpdateColumn(ctx context.Context, boardID, columnID string, input *entity.UpdateColumnInput) (*entity.Column, error)
	DeleteColumn(ctx context.Context, boardID, columnID, moveTo string) error
	ReorderColumns(ctx context.Context, boardID string, order []string) error
}

// IShareRepository - интерфейс для ShareRepository
type IShareRepository interface {
	Create(ctx context.Context, share *entity.BoardShare) (*entity.BoardShare, error)
	ListByBoard(ctx context.Context, workspaceID, boardID string) ([]entity.BoardShare, error)
	GetByID(ctx context.Context, workspaceID, shareID string) (*entity.BoardShare, error)
	GetByToken(ctx context.Context, token string) (*entity.BoardShare, error)
	SetActive(ctx context.Context, workspaceID, shareID string, active bool) (*entity.BoardShare, error)
	Delete(ctx context.Context, workspaceID, shareID string) error
}

// ICommentRepository - интерфейс для CommentRepository
type ICommentRepository interface {
	Create(ctx context.Context, comment *entity.Comment) (*entity.Comment, error)
	GetByID(ctx context.Context, taskID, commentID string) (*entity.Comment, error)
	Update(ctx context.Context, taskID, commentID, content string) (*entity.Comment, error)
	Delete(ctx context.Context, taskID, commentID string) error
	ListByTask(ctx context.Context, taskID string) ([]entity.Comment, error)
}

// IActivityRepository - интерфейс для ActivityRepository
type IActivityRepository interface {
	Create(ctx context.Context, activity *entity.Activity) error
	ListByTask(ctx context.Context, taskID string) ([]entity.Activity, error)
}

// IAttachmentRepository - интерфейс для AttachmentRepository.
// ListByTasks возвращает и вложения описания, и картинки комментариев.
type IAttachmentRepository interface {
	Create(ctx context.Context, attachment *entity.Attachment) (*entity.Attachment, error)
	GetByID(ctx context.Context, taskID, attachmentID string) (*entity.Attachment, error)
	Delete(ctx context.Context, taskID, attachmentID string) error
	ListByTasks(ctx context.Context, taskIDs []string) ([]entity.Attachment, error)
}

// ITimerRepository - интерфейс для TimerRepository
type ITimerRepository interface {
	Get(ctx context.Context, taskID string) (*entity.TimeTracking, error)
	Save(ctx context.Context, taskID string, tracking *entity.TimeTracking) (*entity.TimeTracking, error)
}

// IMemberRepository - интерфейс для MemberRepository
type IMemberRepository interface {
	GetByIDs(ctx context.Context, ids []string) ([]entity.Member, error)
	ListByWorkspace(ctx context.Context, workspaceID string) ([]entity.Member, error)
	IsMember(ctx context.Context, workspaceID, memberID string) (bool, error)
}

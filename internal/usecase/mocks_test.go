package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/St1cky1/kanban-service/internal/entity"
	"github.com/St1cky1/kanban-service/internal/repository"
)

// MockTaskRepository - мок для ITaskRepository
type MockTaskRepository struct {
	CreateFunc      func(ctx context.Context, workspaceID string, task *entity.CreateTaskInput, createdBy string) (*entity.Task, error)
	GetByIDFunc     func(ctx context.Context, workspaceID, taskID string) (*entity.Task, error)
	ListByBoardFunc func(ctx context.Context, workspaceID, boardID string) ([]entity.Task, error)
	UpdateFunc      func(ctx context.Context, workspaceID, taskID string, updates map[string]any) (*entity.Task, error)
	DeleteFunc      func(ctx context.Context, workspaceID, taskID string) error
	MoveFunc        func(ctx context.Context, workspaceID, taskID, columnID string, position int) (*entity.Task, error)
}

var _ repository.ITaskRepository = (*MockTaskRepository)(nil)

func (m *MockTaskRepository) Create(ctx context.Context, workspaceID string, task *entity.CreateTaskInput, createdBy string) (*entity.Task, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, workspaceID, task, createdBy)
	}
	return nil, nil
}

func (m *MockTaskRepository) GetByID(ctx context.Context, workspaceID, taskID string) (*entity.Task, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, workspaceID, taskID)
	}
	return nil, nil
}

func (m *MockTaskRepository) ListByBoard(ctx context.Context, workspaceID, boardID string) ([]entity.Task, error) {
	if m.ListByBoardFunc != nil {
		return m.ListByBoardFunc(ctx, workspaceID, boardID)
	}
	return nil, nil
}

func (m *MockTaskRepository) Update(ctx context.Context, workspaceID, taskID string, updates map[string]any) (*entity.Task, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, workspaceID, taskID, updates)
	}
	return nil, nil
}

func (m *MockTaskRepository) Delete(ctx context.Context, workspaceID, taskID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, workspaceID, taskID)
	}
	return nil
}

func (m *MockTaskRepository) Move(ctx context.Context, workspaceID, taskID, columnID string, position int) (*entity.Task, error) {
	if m.MoveFunc != nil {
		return m.MoveFunc(ctx, workspaceID, taskID, columnID, position)
	}
	return nil, nil
}

// MockBoardRepository - мок для IBoardRepository
type MockBoardRepository struct {
	GetByIDFunc        func(ctx context.Context, workspaceID, boardID string) (*entity.Board, error)
	ListFunc           func(ctx context.Context, workspaceID string) ([]entity.Board, error)
	CreateFunc         func(ctx context.Context, workspaceID string, input *entity.CreateBoardInput, columns []entity.ColumnInput) (*entity.Board, error)
	UpdateFunc         func(ctx context.Context, workspaceID, boardID string, input *entity.UpdateBoardInput) (*entity.Board, error)
	DeleteFunc         func(ctx context.Context, workspaceID, boardID string) error
	CreateColumnFunc   func(ctx context.Context, boardID string, input *entity.ColumnInput) (*entity.Column, error)
	UpdateColumnFunc   func(ctx context.Context, boardID, columnID string, input *entity.UpdateColumnInput) (*entity.Column, error)
	DeleteColumnFunc   func(ctx context.Context, boardID, columnID, moveTo string) error
	ReorderColumnsFunc func(ctx context.Context, boardID string, order []string) error
}

var _ repository.IBoardRepository = (*MockBoardRepository)(nil)

func (m *MockBoardRepository) GetByID(ctx context.Context, workspaceID, boardID string) (*entity.Board, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, workspaceID, boardID)
	}
	return nil, nil
}

func (m *MockBoardRepository) List(ctx context.Context, workspaceID string) ([]entity.Board, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, workspaceID)
	}
	return nil, nil
}

func (m *MockBoardRepository) Create(ctx context.Context, workspaceID string, input *entity.CreateBoardInput, columns []entity.ColumnInput) (*entity.Board, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, workspaceID, input, columns)
	}
	return &entity.Board{ID: "b-new", WorkspaceID: workspaceID, Title: input.Title}, nil
}

func (m *MockBoardRepository) Update(ctx context.Context, workspaceID, boardID string, input *entity.UpdateBoardInput) (*entity.Board, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, workspaceID, boardID, input)
	}
	return nil, nil
}

func (m *MockBoardRepository) Delete(ctx context.Context, workspaceID, boardID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, workspaceID, boardID)
	}
	return nil
}

func (m *MockBoardRepository) CreateColumn(ctx context.Context, boardID string, input *entity.ColumnInput) (*entity.Column, error) {
	if m.CreateColumnFunc != nil {
		return m.CreateColumnFunc(ctx, boardID, input)
	}
	return &entity.Column{ID: "c-new", BoardID: boardID, Title: input.Title, Color: input.Color}, nil
}

func (m *MockBoardRepository) UpdateColumn(ctx context.Context, boardID, columnID string, input *entity.UpdateColumnInput) (*entity.Column, error) {
	if m.UpdateColumnFunc != nil {
		return m.UpdateColumnFunc(ctx, boardID, columnID, input)
	}
	return nil, nil
}

func (m *MockBoardRepository) DeleteColumn(ctx context.Context, boardID, columnID, moveTo string) error {
	if m.DeleteColumnFunc != nil {
		return m.DeleteColumnFunc(ctx, boardID, columnID, moveTo)
	}
	return nil
}

func (m *MockBoardRepository) ReorderColumns(ctx context.Context, boardID string, order []string) error {
	if m.ReorderColumnsFunc != nil {
		return m.ReorderColumnsFunc(ctx, boardID, order)
	}
	return nil
}

// MockShareRepository - мок для IShareRepository
type MockShareRepository struct {
	CreateFunc      func(ctx context.Context, share *entity.BoardShare) (*entity.BoardShare, error)
	ListByBoardFunc func(ctx context.Context, workspaceID, boardID string) ([]entity.BoardShare, error)
	GetByIDFunc     func(ctx context.Context, workspaceID, shareID string) (*entity.BoardShare, error)
	GetByTokenFunc  func(ctx context.Context, token string) (*entity.BoardShare, error)
	SetActiveFunc   func(ctx context.Context, workspaceID, shareID string, active bool) (*entity.BoardShare, error)
	DeleteFunc      func(ctx context.Context, workspaceID, shareID string) error
}

var _ repository.IShareRepository = (*MockShareRepository)(nil)

func (m *MockShareRepository) Create(ctx context.Context, share *entity.BoardShare) (*entity.BoardShare, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, share)
	}
	created := *share
	created.ID = "s-new"
	created.IsActive = true
	return &created, nil
}

func (m *MockShareRepository) ListByBoard(ctx context.Context, workspaceID, boardID string) ([]entity.BoardShare, error) {
	if m.ListByBoardFunc != nil {
		return m.ListByBoardFunc(ctx, workspaceID, boardID)
	}
	return nil, nil
}

func (m *MockShareRepository) GetByID(ctx context.Context, workspaceID, shareID string) (*entity.BoardShare, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, workspaceID, shareID)
	}
	return nil, nil
}

func (m *MockShareRepository) GetByToken(ctx context.Context, token string) (*entity.BoardShare, error) {
	if m.GetByTokenFunc != nil {
		return m.GetByTokenFunc(ctx, token)
	}
	return nil, nil
}

func (m *MockShareRepository) SetActive(ctx context.Context, workspaceID, shareID string, active bool) (*entity.BoardShare, error) {
	if m.SetActiveFunc != nil {
		return m.SetActiveFunc(ctx, workspaceID, shareID, active)
	}
	return nil, nil
}

func (m *MockShareRepository) Delete(ctx context.Context, workspaceID, shareID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, workspaceID, shareID)
	}
	return nil
}

// MockCommentRepository - мок для ICommentRepository
type MockCommentRepository struct {
	CreateFunc     func(ctx context.Context, comment *entity.Comment) (*entity.Comment, error)
	GetByIDFunc    func(ctx context.Context, taskID, commentID string) (*entity.Comment, error)
	UpdateFunc     func(ctx context.Context, taskID, commentID, content string) (*entity.Comment, error)
	DeleteFunc     func(ctx context.Context, taskID, commentID string) error
	ListByTaskFunc func(ctx context.Context, taskID string) ([]entity.Comment, error)
}

var _ repository.ICommentRepository = (*MockCommentRepository)(nil)

func (m *MockCommentRepository) Create(ctx context.Context, comment *entity.Comment) (*entity.Comment, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, comment)
	}
	return nil, nil
}

func (m *MockCommentRepository) GetByID(ctx context.Context, taskID, commentID string) (*entity.Comment, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, taskID, commentID)
	}
	return nil, nil
}

func (m *MockCommentRepository) Update(ctx context.Context, taskID, commentID, content string) (*entity.Comment, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, taskID, commentID, content)
	}
	return nil, nil
}

func (m *MockCommentRepository) Delete(ctx context.Context, taskID, commentID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, taskID, commentID)
	}
	return nil
}

func (m *MockCommentRepository) ListByTask(ctx context.Context, taskID string) ([]entity.Comment, error) {
	if m.ListByTaskFunc != nil {
		return m.ListByTaskFunc(ctx, taskID)
	}
	return nil, nil
}

// MockActivityRepository - мок для IActivityRepository
type MockActivityRepository struct {
	CreateFunc     func(ctx context.Context, activity *entity.Activity) error
	ListByTaskFunc func(ctx context.Context, taskID string) ([]entity.Activity, error)
}

var _ repository.IActivityRepository = (*MockActivityRepository)(nil)

func (m *MockActivityRepository) Create(ctx context.Context, activity *entity.Activity) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, activity)
	}
	return nil
}

func (m *MockActivityRepository) ListByTask(ctx context.Context, taskID string) ([]entity.Activity, error) {
	if m.ListByTaskFunc != nil {
		return m.ListByTaskFunc(ctx, taskID)
	}
	return nil, nil
}

// MockAttachmentRepository - мок для IAttachmentRepository
type MockAttachmentRepository struct {
	CreateFunc      func(ctx context.Context, attachment *entity.Attachment) (*entity.Attachment, error)
	GetByIDFunc     func(ctx context.Context, taskID, attachmentID string) (*entity.Attachment, error)
	DeleteFunc      func(ctx context.Context, taskID, attachmentID string) error
	ListByTasksFunc func(ctx context.Context, taskIDs []string) ([]entity.Attachment, error)
}

var _ repository.IAttachmentRepository = (*MockAttachmentRepository)(nil)

func (m *MockAttachmentRepository) Create(ctx context.Context, attachment *entity.Attachment) (*entity.Attachment, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, attachment)
	}
	return nil, nil
}

func (m *MockAttachmentRepository) GetByID(ctx context.Context, taskID, attachmentID string) (*entity.Attachment, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, taskID, attachmentID)
	}
	return nil, nil
}

func (m *MockAttachmentRepository) Delete(ctx context.Context, taskID, attachmentID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, taskID, attachmentID)
	}
	return nil
}

func (m *MockAttachmentRepository) ListByTasks(ctx context.Context, taskIDs []string) ([]entity.Attachment, error) {
	if m.ListByTasksFunc != nil {
		return m.ListByTasksFunc(ctx, taskIDs)
	}
	return nil, nil
}

// MockTimerRepository - мок для ITimerRepository
type MockTimerRepository struct {
	GetFunc  func(ctx context.Context, taskID string) (*entity.TimeTracking, error)
	SaveFunc func(ctx context.Context, taskID string, tracking *entity.TimeTracking) (*entity.TimeTracking, error)
}

var _ repository.ITimerRepository = (*MockTimerRepository)(nil)

func (m *MockTimerRepository) Get(ctx context.Context, taskID string) (*entity.TimeTracking, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, taskID)
	}
	return &entity.TimeTracking{Rounding: entity.RoundingNone}, nil
}

func (m *MockTimerRepository) Save(ctx context.Context, taskID string, tracking *entity.TimeTracking) (*entity.TimeTracking, error) {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, taskID, tracking)
	}
	saved := *tracking
	return &saved, nil
}

// MockMemberRepository - мок для IMemberRepository
type MockMemberRepository struct {
	GetByIDsFunc        func(ctx context.Context, ids []string) ([]entity.Member, error)
	ListByWorkspaceFunc func(ctx context.Context, workspaceID string) ([]entity.Member, error)
	IsMemberFunc        func(ctx context.Context, workspaceID, memberID string) (bool, error)
}

var _ repository.IMemberRepository = (*MockMemberRepository)(nil)

func (m *MockMemberRepository) GetByIDs(ctx context.Context, ids []string) ([]entity.Member, error) {
	if m.GetByIDsFunc != nil {
		return m.GetByIDsFunc(ctx, ids)
	}
	return nil, nil
}

func (m *MockMemberRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]entity.Member, error) {
	if m.ListByWorkspaceFunc != nil {
		return m.ListByWorkspaceFunc(ctx, workspaceID)
	}
	return nil, nil
}

func (m *MockMemberRepository) IsMember(ctx context.Context, workspaceID, memberID string) (bool, error) {
	if m.IsMemberFunc != nil {
		return m.IsMemberFunc(ctx, workspaceID, memberID)
	}
	return false, nil
}

// MockActivityPublisher - мок для ActivityPublisher. Публикация идет из горутины,
// поэтому сообщения складываются в канал.
type MockActivityPublisher struct {
	Published chan *entity.ActivityMessage
}

var _ ActivityPublisher = (*MockActivityPublisher)(nil)

func NewMockActivityPublisher() *MockActivityPublisher {
	return &MockActivityPublisher{Published: make(chan *entity.ActivityMessage, 16)}
}

func (m *MockActivityPublisher) PublishActivity(ctx context.Context, message *entity.ActivityMessage) error {
	m.Published <- message
	return nil
}

func (m *MockActivityPublisher) next(timeout time.Duration) *entity.ActivityMessage {
	select {
	case msg := <-m.Published:
		return msg
	case <-time.After(timeout):
		return nil
	}
}

// MockFileStore - мок для FileStore
type MockFileStore struct {
	SaveFunc   func(ctx context.Context, key string, data []byte, contentType string) (string, error)
	DeleteFunc func(ctx context.Context, key string) error

	mu      sync.Mutex
	deleted []string
}

var _ FileStore = (*MockFileStore)(nil)

func (m *MockFileStore) Save(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, key, data, contentType)
	}
	return "/files/" + key, nil
}

func (m *MockFileStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	m.deleted = append(m.deleted, key)
	m.mu.Unlock()
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	return nil
}

// MockBoardViewCache - мок для BoardViewCache
type MockBoardViewCache struct {
	GetFunc              func(ctx context.Context, boardID string) (*entity.BoardView, error)
	PutFunc              func(ctx context.Context, view *entity.BoardView) error
	PatchAttachmentsFunc func(ctx context.Context, boardID, taskID string, updater func([]entity.Attachment) []entity.Attachment) error
	InvalidateFunc       func(ctx context.Context, boardID string) error

	Invalidated []string
}

var _ BoardViewCache = (*MockBoardViewCache)(nil)

func (m *MockBoardViewCache) Get(ctx context.Context, boardID string) (*entity.BoardView, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, boardID)
	}
	return nil, nil
}

func (m *MockBoardViewCache) Put(ctx context.Context, view *entity.BoardView) error {
	if m.PutFunc != nil {
		return m.PutFunc(ctx, view)
	}
	return nil
}

func (m *MockBoardViewCache) PatchAttachments(ctx context.Context, boardID, taskID string, updater func([]entity.Attachment) []entity.Attachment) error {
	if m.PatchAttachmentsFunc != nil {
		return m.PatchAttachmentsFunc(ctx, boardID, taskID, updater)
	}
	return nil
}

func (m *MockBoardViewCache) Invalidate(ctx context.Context, boardID string) error {
	m.Invalidated = append(m.Invalidated, boardID)
	if m.InvalidateFunc != nil {
		return m.InvalidateFunc(ctx, boardID)
	}
	return nil
}

// Общие данные тестов

var testUser = entity.SessionUser{ID: "u1", Name: "Test User", Email: "test@example.com", Image: "https://img/u1.png"}

func testScope() (Scope, *Notices) {
	notices := &Notices{}
	return Scope{WorkspaceID: "ws1", User: testUser, Notices: notices}, notices
}

func testBoard() *entity.Board {
	return &entity.Board{
		ID:          "b1",
		WorkspaceID: "ws1",
		Title:       "Board",
		Columns: []entity.Column{
			{ID: "todo", BoardID: "b1", Title: "To do", Color: "gray"},
			{ID: "doing", BoardID: "b1", Title: "Doing", Color: "blue"},
			{ID: "done", BoardID: "b1", Title: "Done", Color: "green"},
		},
	}
}

// pngData - минимальная сигнатура PNG, достаточная для определения типа
var pngData = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}

func pngFile(name string) FileUpload {
	return FileUpload{Name: name, ContentType: "image/png", Data: pngData}
}

func hasNotice(notices *Notices, level NoticeLevel) bool {
	for _, n := range notices.List() {
		if n.Level == level {
			return true
		}
	}
	return false
}

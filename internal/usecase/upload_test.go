package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/St1cky1/kanban-service/internal/entity"
	"github.com/jonboulle/clockwork"
)

type progressLog struct {
	mu     sync.Mutex
	values []int
	ch     chan int
}

func newProgressLog() *progressLog {
	return &progressLog{ch: make(chan int, 64)}
}

func (p *progressLog) record(name string, pct int) {
	p.mu.Lock()
	p.values = append(p.values, pct)
	p.mu.Unlock()
	select {
	case p.ch <- pct:
	default:
	}
}

func (p *progressLog) waitFor(t *testing.T, want int) {
	t.Helper()
	timeout := time.After(time.Second)
	for {
		select {
		case got := <-p.ch:
			if got == want {
				return
			}
		case <-timeout:
			t.Fatalf("progress never reached %d", want)
		}
	}
}

func (p *progressLog) last() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.values) == 0 {
		return -1
	}
	return p.values[len(p.values)-1]
}

func echoAttachmentRepo() *MockAttachmentRepository {
	n := 0
	return &MockAttachmentRepository{
		CreateFunc: func(ctx context.Context, a *entity.Attachment) (*entity.Attachment, error) {
			n++
			saved := *a
			saved.ID = "a" + string(rune('0'+n))
			return &saved, nil
		},
	}
}

func TestUploadTaskFilesRequiresPersistedTask(t *testing.T) {
	scope, _ := testScope()
	uploader := NewAttachmentUploader(echoAttachmentRepo(), &MockFileStore{}, &MockBoardViewCache{}, clockwork.NewRealClock(), 0)

	_, err := uploader.UploadTaskFiles(context.Background(), scope, &entity.Task{}, []FileUpload{pngFile("a.png")}, nil)
	if err != entity.ErrTaskNotPersisted {
		t.Errorf("Expected ErrTaskNotPersisted, got %v", err)
	}
}

func TestUploadTaskFilesRejectsAndContinues(t *testing.T) {
	scope, notices := testScope()
	store := &MockFileStore{
		SaveFunc: func(ctx context.Context, key string, data []byte, contentType string) (string, error) {
			if strings.HasSuffix(key, ".gif") {
				return "", errors.New("storage unavailable")
			}
			return "/files/" + key, nil
		},
	}

	var patched []entity.Attachment
	cache := &MockBoardViewCache{
		PatchAttachmentsFunc: func(ctx context.Context, boardID, taskID string, updater func([]entity.Attachment) []entity.Attachment) error {
			patched = updater(patched)
			return nil
		},
	}
	uploader := NewAttachmentUploader(echoAttachmentRepo(), store, cache, clockwork.NewRealClock(), 0)

	task := &entity.Task{ID: "t1", BoardID: "b1"}
	files := []FileUpload{
		pngFile("first.png"),
		{Name: "script.exe", ContentType: "application/x-msdownload", Data: []byte("MZ")},
		{Name: "anim.gif", ContentType: "image/gif", Data: []byte("GIF89a")},
		{Name: "notes.txt", ContentType: "text/plain", Data: []byte("hello")},
	}

	result, err := uploader.UploadTaskFiles(context.Background(), scope, task, files, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(result.Uploaded) != 2 {
		t.Fatalf("Expected 2 uploads, got %+v", result.Uploaded)
	}
	if len(result.Rejected) != 1 || !errors.Is(result.Rejected[0], entity.ErrUnsupportedFileType) {
		t.Errorf("Expected exe to be rejected, got %+v", result.Rejected)
	}
	if len(result.Failed) != 1 || result.Failed[0].FileName != "anim.gif" {
		t.Errorf("Expected gif to fail, got %+v", result.Failed)
	}
	if len(task.Attachments) != 2 || task.Attachments[0].FileName != "first.png" || task.Attachments[1].FileName != "notes.txt" {
		t.Errorf("Expected uploads appended in order, got %+v", task.Attachments)
	}
	if len(patched) != 2 {
		t.Errorf("Expected cache patched twice, got %+v", patched)
	}
	if !hasNotice(notices, NoticeSuccess) || !hasNotice(notices, NoticeError) {
		t.Errorf("Expected success and error notices, got %v", notices.List())
	}
}

func TestUploadTaskFilesRejectsOversize(t *testing.T) {
	scope, _ := testScope()
	uploader := NewAttachmentUploader(echoAttachmentRepo(), &MockFileStore{}, &MockBoardViewCache{}, clockwork.NewRealClock(), 8)

	result, err := uploader.UploadTaskFiles(context.Background(), scope, &entity.Task{ID: "t1"}, []FileUpload{pngFile("big.png")}, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(result.Rejected) != 1 || !errors.Is(result.Rejected[0], entity.ErrFileTooLarge) {
		t.Errorf("Expected ErrFileTooLarge, got %+v", result.Rejected)
	}
}

func TestUploadCleansUpStoredFileWhenRecordFails(t *testing.T) {
	scope, _ := testScope()
	store := &MockFileStore{}
	attachmentRepo := &MockAttachmentRepository{
		CreateFunc: func(ctx context.Context, a *entity.Attachment) (*entity.Attachment, error) {
			return nil, errors.New("db down")
		},
	}
	uploader := NewAttachmentUploader(attachmentRepo, store, &MockBoardViewCache{}, clockwork.NewRealClock(), 0)

	result, err := uploader.UploadTaskFiles(context.Background(), scope, &entity.Task{ID: "t1"}, []FileUpload{pngFile("a.png")}, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(result.Failed) != 1 {
		t.Fatalf("Expected one failure, got %+v", result)
	}
	if len(store.deleted) != 1 || !strings.HasPrefix(store.deleted[0], "tasks/t1/") {
		t.Errorf("Expected stored file to be removed, got %v", store.deleted)
	}
}

func TestUploadCacheFailureIsNotFatal(t *testing.T) {
	scope, _ := testScope()
	cache := &MockBoardViewCache{
		PatchAttachmentsFunc: func(ctx context.Context, boardID, taskID string, updater func([]entity.Attachment) []entity.Attachment) error {
			return errors.New("redis down")
		},
	}
	uploader := NewAttachmentUploader(echoAttachmentRepo(), &MockFileStore{}, cache, clockwork.NewRealClock(), 0)

	task := &entity.Task{ID: "t1", BoardID: "b1"}
	result, err := uploader.UploadTaskFiles(context.Background(), scope, task, []FileUpload{pngFile("a.png")}, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(result.Uploaded) != 1 || len(task.Attachments) != 1 {
		t.Errorf("Expected upload to succeed, got %+v", result)
	}
}

func TestUploadSyntheticProgress(t *testing.T) {
	scope, _ := testScope()
	clk := clockwork.NewFakeClockAt(time.Unix(0, 0))
	progress := newProgressLog()

	store := &MockFileStore{
		SaveFunc: func(ctx context.Context, key string, data []byte, contentType string) (string, error) {
			for pct := progressStep; pct <= progressCap; pct += progressStep {
				clk.Advance(ProgressInterval)
				progress.waitFor(t, pct)
			}
			clk.Advance(time.Second)
			return "/files/" + key, nil
		},
	}
	uploader := NewAttachmentUploader(echoAttachmentRepo(), store, &MockBoardViewCache{}, clk, 0)

	_, err := uploader.UploadTaskFiles(context.Background(), scope, &entity.Task{ID: "t1"}, []FileUpload{pngFile("a.png")}, progress.record)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got := progress.last(); got != 100 {
		t.Fatalf("Expected 100 on completion, got %d", got)
	}

	clk.Advance(ProgressResetDelay)
	progress.waitFor(t, 0)

	progress.mu.Lock()
	defer progress.mu.Unlock()
	for _, v := range progress.values {
		if v > 90 && v != 100 {
			t.Errorf("Progress exceeded cap: %d", v)
		}
	}
}

func TestIntakeBuffersIntoDraft(t *testing.T) {
	scope, notices := testScope()
	store := &MockFileStore{
		SaveFunc: func(ctx context.Context, key string, data []byte, contentType string) (string, error) {
			t.Fatal("draft intake must not touch storage")
			return "", nil
		},
	}
	uploader := NewAttachmentUploader(echoAttachmentRepo(), store, &MockBoardViewCache{}, clockwork.NewRealClock(), 0)
	previews := NewMemoryPreviews()
	draft := NewDraft("b1", "todo", previews, clockwork.NewRealClock())

	files := []FileUpload{
		pngFile("shot.png"),
		{Name: "report.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4")},
	}
	result, err := uploader.Intake(context.Background(), scope, IntakeTarget{Draft: draft, Policy: ImagePolicy}, files, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(result.Buffered) != 1 || len(draft.PendingFiles) != 1 {
		t.Errorf("Expected one buffered image, got %+v", result.Buffered)
	}
	if len(result.Rejected) != 1 || !hasNotice(notices, NoticeError) {
		t.Errorf("Expected pdf rejected under image policy, got %+v", result.Rejected)
	}
	if previews.Live() != 1 {
		t.Errorf("Expected one live preview, got %d", previews.Live())
	}
}

func TestIntakeUploadsForPersistedTask(t *testing.T) {
	scope, _ := testScope()
	uploader := NewAttachmentUploader(echoAttachmentRepo(), &MockFileStore{}, &MockBoardViewCache{}, clockwork.NewRealClock(), 0)
	task := &entity.Task{ID: "t1", BoardID: "b1"}

	result, err := uploader.Intake(context.Background(), scope, IntakeTarget{Task: task}, []FileUpload{pngFile("a.png")}, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(result.Uploaded) != 1 || len(task.Attachments) != 1 {
		t.Errorf("Expected immediate upload, got %+v", result)
	}

	if _, err := uploader.Intake(context.Background(), scope, IntakeTarget{}, nil, nil); err != entity.ErrTaskNotPersisted {
		t.Errorf("Expected ErrTaskNotPersisted, got %v", err)
	}
}

func TestDeleteTaskAttachment(t *testing.T) {
	scope, _ := testScope()
	store := &MockFileStore{}
	attachmentRepo := &MockAttachmentRepository{
		GetByIDFunc: func(ctx context.Context, taskID, attachmentID string) (*entity.Attachment, error) {
			switch attachmentID {
			case "a1":
				return &entity.Attachment{ID: "a1", TaskID: taskID, Key: "tasks/t1/a1.png"}, nil
			case "img":
				return &entity.Attachment{ID: "img", TaskID: taskID, CommentID: "c1"}, nil
			}
			return nil, nil
		},
	}
	patched := []entity.Attachment{{ID: "a1"}, {ID: "a2"}}
	cache := &MockBoardViewCache{
		PatchAttachmentsFunc: func(ctx context.Context, boardID, taskID string, updater func([]entity.Attachment) []entity.Attachment) error {
			patched = updater(patched)
			return nil
		},
	}
	uploader := NewAttachmentUploader(attachmentRepo, store, cache, clockwork.NewRealClock(), 0)
	task := &entity.Task{ID: "t1", BoardID: "b1", Attachments: []entity.Attachment{{ID: "a1"}, {ID: "a2"}}}

	if err := uploader.DeleteTaskAttachment(context.Background(), scope, task, "a1"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(task.Attachments) != 1 || task.Attachments[0].ID != "a2" {
		t.Errorf("Expected a1 removed from task, got %+v", task.Attachments)
	}
	if len(patched) != 1 || patched[0].ID != "a2" {
		t.Errorf("Expected a1 removed from cache, got %+v", patched)
	}
	if len(store.deleted) != 1 || store.deleted[0] != "tasks/t1/a1.png" {
		t.Errorf("Expected stored file removed, got %v", store.deleted)
	}

	if err := uploader.DeleteTaskAttachment(context.Background(), scope, task, "img"); err != entity.ErrAttachmentNotFound {
		t.Errorf("Expected comment image to be out of reach, got %v", err)
	}
}

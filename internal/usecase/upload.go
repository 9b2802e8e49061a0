package usecase

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/St1cky1/kanban-service/internal/entity"
	"github.com/St1cky1/kanban-service/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonboulle/clockwork"
)

const (
	ProgressInterval   = 100 * time.Millisecond
	ProgressResetDelay = 500 * time.Millisecond
	progressStep       = 10
	progressCap        = 90
)

const (
	imageTypeDescription = "description"
	imageTypeComment     = "comment"
)

// ProgressFunc получает условный процент загрузки файла.
// Может вызываться из другой горутины.
type ProgressFunc func(fileName string, percent int)

// BatchResult - итог пакета: каждый файл либо загружен, либо отклонен проверкой,
// либо упал на удаленном вызове, либо отложен в черновик
type BatchResult struct {
	Uploaded []entity.Attachment `json:"uploaded"`
	Buffered []PendingFile       `json:"buffered,omitempty"`
	Rejected []FileError         `json:"rejected,omitempty"`
	Failed   []FileError         `json:"failed,omitempty"`
}

// IntakeTarget - куда ведет drop или paste: в сохраненную задачу или в черновик
type IntakeTarget struct {
	Task   *entity.Task
	Draft  *Draft
	Policy AcceptPolicy
}

type AttachmentUploader struct {
	attachmentRepo repository.IAttachmentRepository
	store          FileStore
	cache          BoardViewCache
	clock          clockwork.Clock
	maxSize        int64
}

func NewAttachmentUploader(
	attachmentRepo repository.IAttachmentRepository,
	store FileStore,
	cache BoardViewCache,
	clk clockwork.Clock,
	maxSize int64,
) *AttachmentUploader {
	return &AttachmentUploader{
		attachmentRepo: attachmentRepo,
		store:          store,
		cache:          cache,
		clock:          clk,
		maxSize:        maxSize,
	}
}

func (u *AttachmentUploader) policy(p AcceptPolicy) AcceptPolicy {
	if u.maxSize > 0 {
		return p.WithMaxSize(u.maxSize)
	}
	return p
}

// Intake - общий вход для drop и paste. Без серверного id файлы буферизуются в черновике,
// иначе сразу загружаются.
func (u *AttachmentUploader) Intake(ctx context.Context, scope Scope, target IntakeTarget, files []FileUpload, progress ProgressFunc) (BatchResult, error) {
	policy := target.Policy
	if policy.Types == nil {
		policy = DocumentPolicy
	}
	policy = u.policy(policy)

	if target.Task != nil && target.Task.ID != "" {
		return u.uploadTaskFiles(ctx, scope, target.Task, files, policy, progress), nil
	}
	if target.Draft == nil {
		return BatchResult{}, entity.ErrTaskNotPersisted
	}

	var result BatchResult
	before := len(target.Draft.PendingFiles)
	result.Rejected = target.Draft.AddFiles(files, policy)
	result.Buffered = slices.Clone(target.Draft.PendingFiles[before:])
	for _, fe := range result.Rejected {
		scope.notify(NoticeError, fe.Message)
	}
	return result, nil
}

// UploadTaskFiles загружает файлы описания задачи строго по одному
func (u *AttachmentUploader) UploadTaskFiles(ctx context.Context, scope Scope, task *entity.Task, files []FileUpload, progress ProgressFunc) (BatchResult, error) {
	if task == nil || task.ID == "" {
		return BatchResult{}, entity.ErrTaskNotPersisted
	}
	return u.uploadTaskFiles(ctx, scope, task, files, u.policy(DocumentPolicy), progress), nil
}

func (u *AttachmentUploader) uploadTaskFiles(ctx context.Context, scope Scope, task *entity.Task, files []FileUpload, policy AcceptPolicy, progress ProgressFunc) BatchResult {
	var result BatchResult
	accepted, rejected := screen(scope, files, policy)
	result.Rejected = rejected

	for _, file := range accepted {
		att, err := u.upload(ctx, scope, task.ID, "", file, imageTypeDescription, progress)
		if err != nil {
			result.Failed = append(result.Failed, NewFileError(file.Name, err))
			scope.fail(fmt.Sprintf("Failed to upload %s", file.Name), err)
			continue
		}

		task.Attachments = append(task.Attachments, *att)
		result.Uploaded = append(result.Uploaded, *att)

		uploaded := *att
		u.patchCache(ctx, task.BoardID, task.ID, func(list []entity.Attachment) []entity.Attachment {
			return append(list, uploaded)
		})
	}

	if n := len(result.Uploaded); n > 0 {
		scope.notify(NoticeSuccess, fmt.Sprintf("%d file(s) uploaded", n))
	}
	return result
}

// UploadCommentFiles загружает картинки к уже созданному комментарию, по одной
func (u *AttachmentUploader) UploadCommentFiles(ctx context.Context, scope Scope, taskID string, comment *entity.Comment, files []FileUpload, progress ProgressFunc) (BatchResult, error) {
	if comment == nil || comment.ID == "" {
		return BatchResult{}, entity.ErrCommentNotFound
	}

	var result BatchResult
	accepted, rejected := screen(scope, files, u.policy(ImagePolicy))
	result.Rejected = rejected

	for _, file := range accepted {
		att, err := u.upload(ctx, scope, taskID, comment.ID, file, imageTypeComment, progress)
		if err != nil {
			result.Failed = append(result.Failed, NewFileError(file.Name, err))
			scope.fail(fmt.Sprintf("Failed to upload %s", file.Name), err)
			continue
		}

		comment.Images = append(comment.Images, *att)
		result.Uploaded = append(result.Uploaded, *att)
	}

	return result, nil
}

// ScreenImages проверяет картинки комментария до любых удаленных вызовов.
// Отклоненные сразу уходят уведомлением.
func (u *AttachmentUploader) ScreenImages(scope Scope, files []FileUpload) ([]FileUpload, []FileError) {
	return screen(scope, files, u.policy(ImagePolicy))
}

func screen(scope Scope, files []FileUpload, policy AcceptPolicy) ([]FileUpload, []FileError) {
	var accepted []FileUpload
	var rejected []FileError
	for _, file := range files {
		if err := ValidateFile(&file, policy); err != nil {
			fe := NewFileError(file.Name, err)
			rejected = append(rejected, fe)
			scope.notify(NoticeError, fe.Message)
			continue
		}
		accepted = append(accepted, file)
	}
	return accepted, rejected
}

// DeleteTaskAttachment удаляет вложение описания и патчит кеш доски
func (u *AttachmentUploader) DeleteTaskAttachment(ctx context.Context, scope Scope, task *entity.Task, attachmentID string) error {
	att, err := u.attachmentRepo.GetByID(ctx, task.ID, attachmentID)
	if err != nil {
		scope.fail("Failed to delete attachment", err)
		return err
	}
	if att == nil || att.CommentID != "" {
		return entity.ErrAttachmentNotFound
	}

	if err := u.remove(ctx, att); err != nil {
		scope.fail("Failed to delete attachment", err)
		return err
	}

	task.Attachments = withoutAttachment(task.Attachments, attachmentID)
	u.patchCache(ctx, task.BoardID, task.ID, func(list []entity.Attachment) []entity.Attachment {
		return withoutAttachment(list, attachmentID)
	})

	scope.notify(NoticeSuccess, "Attachment deleted")
	return nil
}

// DeleteCommentAttachment удаляет картинку комментария
func (u *AttachmentUploader) DeleteCommentAttachment(ctx context.Context, scope Scope, taskID, commentID, imageID string) error {
	att, err := u.attachmentRepo.GetByID(ctx, taskID, imageID)
	if err != nil {
		scope.fail("Failed to delete image", err)
		return err
	}
	if att == nil || att.CommentID != commentID {
		return entity.ErrAttachmentNotFound
	}

	if err := u.remove(ctx, att); err != nil {
		scope.fail("Failed to delete image", err)
		return err
	}

	scope.notify(NoticeSuccess, "Image deleted")
	return nil
}

func (u *AttachmentUploader) remove(ctx context.Context, att *entity.Attachment) error {
	if err := u.attachmentRepo.Delete(ctx, att.TaskID, att.ID); err != nil {
		if err == pgx.ErrNoRows {
			return entity.ErrAttachmentNotFound
		}
		return err
	}
	if err := u.store.Delete(ctx, att.Key); err != nil {
		log.Printf("⚠️  Файл %s не удален из хранилища: %v", att.Key, err)
	}
	return nil
}

func (u *AttachmentUploader) upload(ctx context.Context, scope Scope, taskID, commentID string, file FileUpload, imageType string, progress ProgressFunc) (*entity.Attachment, error) {
	finish := u.startProgress(file.Name, progress)

	key := storageKey(taskID, commentID, file.Name)
	url, err := u.store.Save(ctx, key, file.Data, file.ContentType)
	if err != nil {
		finish(false)
		return nil, fmt.Errorf("store file: %w", err)
	}

	att, err := u.attachmentRepo.Create(ctx, &entity.Attachment{
		TaskID:      taskID,
		CommentID:   commentID,
		Key:         key,
		URL:         url,
		FileName:    file.Name,
		FileSize:    file.Size(),
		ContentType: file.ContentType,
		ImageType:   imageType,
		UploadedBy:  scope.User.ID,
	})
	if err != nil {
		if derr := u.store.Delete(ctx, key); derr != nil {
			log.Printf("⚠️  Не удалось убрать файл %s после ошибки: %v", key, derr)
		}
		finish(false)
		return nil, fmt.Errorf("save attachment: %w", err)
	}

	finish(true)
	return att, nil
}

// startProgress ведет условный прогресс: +10% за интервал, но не больше 90%, пока идет вызов.
// finish(true) выставляет 100% и через ProgressResetDelay сбрасывает в 0.
func (u *AttachmentUploader) startProgress(name string, progress ProgressFunc) func(ok bool) {
	if progress == nil {
		return func(bool) {}
	}

	progress(name, 0)
	start := u.clock.Now()
	ticker := u.clock.NewTicker(ProgressInterval)
	done := make(chan struct{})
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)
		last := 0
		for {
			select {
			case <-done:
				return
			case <-ticker.Chan():
				pct := int(u.clock.Now().Sub(start)/ProgressInterval) * progressStep
				if pct > progressCap {
					pct = progressCap
				}
				if pct > last {
					last = pct
					progress(name, pct)
				}
			}
		}
	}()

	return func(ok bool) {
		ticker.Stop()
		close(done)
		<-stopped
		if !ok {
			progress(name, 0)
			return
		}
		progress(name, 100)
		u.clock.AfterFunc(ProgressResetDelay, func() { progress(name, 0) })
	}
}

// patchCache - ошибка патча не фатальна, кеш сойдется при следующей загрузке доски
func (u *AttachmentUploader) patchCache(ctx context.Context, boardID, taskID string, updater func([]entity.Attachment) []entity.Attachment) {
	if u.cache == nil || boardID == "" {
		return
	}
	if err := u.cache.PatchAttachments(ctx, boardID, taskID, updater); err != nil {
		log.Printf("⚠️  Не удалось обновить вложения в кеше доски %s: %v", boardID, err)
	}
}

func storageKey(taskID, commentID, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if len(ext) > 10 {
		ext = ""
	}
	if commentID != "" {
		return fmt.Sprintf("tasks/%s/comments/%s/%s%s", taskID, commentID, uuid.NewString(), ext)
	}
	return fmt.Sprintf("tasks/%s/%s%s", taskID, uuid.NewString(), ext)
}

func withoutAttachment(list []entity.Attachment, id string) []entity.Attachment {
	out := make([]entity.Attachment, 0, len(list))
	for _, a := range list {
		if a.ID != id {
			out = append(out, a)
		}
	}
	return out
}

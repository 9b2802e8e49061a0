package usecase

import (
	"context"
	"log"
	"strings"

	"github.com/St1cky1/kanban-service/internal/entity"
	"github.com/St1cky1/kanban-service/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jonboulle/clockwork"
)

// ImagePlaceholder - текст комментария, в котором есть только картинки
const ImagePlaceholder = "📷"

type CommentService struct {
	commentRepo    repository.ICommentRepository
	activityRepo   repository.IActivityRepository
	taskRepo       repository.ITaskRepository
	boardRepo      repository.IBoardRepository
	attachmentRepo repository.IAttachmentRepository
	uploader       *AttachmentUploader
	resolver       *MemberResolver
	publisher      ActivityPublisher
	clock          clockwork.Clock
}

func NewCommentService(
	commentRepo repository.ICommentRepository,
	activityRepo repository.IActivityRepository,
	taskRepo repository.ITaskRepository,
	boardRepo repository.IBoardRepository,
	attachmentRepo repository.IAttachmentRepository,
	uploader *AttachmentUploader,
	resolver *MemberResolver,
	publisher ActivityPublisher,
	clk clockwork.Clock,
) *CommentService {
	return &CommentService{
		commentRepo:    commentRepo,
		activityRepo:   activityRepo,
		taskRepo:       taskRepo,
		boardRepo:      boardRepo,
		attachmentRepo: attachmentRepo,
		uploader:       uploader,
		resolver:       resolver,
		publisher:      publisher,
		clock:          clk,
	}
}

// Submit создает комментарий, затем по одной грузит картинки с id нового комментария.
// Картинки проверяются до создания: без текста и без годных картинок комментария нет.
// Ошибка загрузки картинки не отменяет комментарий.
func (s *CommentService) Submit(ctx context.Context, scope Scope, taskID, content string, images []FileUpload, progress ProgressFunc) (*entity.Comment, error) {
	content = strings.TrimSpace(content)
	images, _ = s.uploader.ScreenImages(scope, images)
	if content == "" && len(images) == 0 {
		return nil, entity.ErrEmptyComment
	}
	if content == "" {
		content = ImagePlaceholder
	}

	if _, err := s.task(ctx, scope, taskID); err != nil {
		return nil, err
	}

	comment, err := s.commentRepo.Create(ctx, &entity.Comment{
		TaskID:      taskID,
		AuthorID:    scope.User.ID,
		AuthorName:  scope.User.DisplayName(),
		AuthorImage: scope.User.Image,
		Content:     content,
	})
	if err != nil {
		scope.fail("Failed to add comment", err)
		return nil, err
	}
	comment.Images = []entity.Attachment{}

	if len(images) > 0 {
		if _, err := s.uploader.UploadCommentFiles(ctx, scope, taskID, comment, images, progress); err != nil {
			scope.fail("Failed to upload comment images", err)
		}
	}

	publishActivity(s.publisher, scope, taskID, s.clock.Now(), activityEvent{Type: entity.ActivityCommentAdded, NewValue: comment.ID})
	scope.notify(NoticeSuccess, "Comment added")

	return comment, nil
}

// Update меняет текст. Пустой текст допустим только у комментария с картинками.
func (s *CommentService) Update(ctx context.Context, scope Scope, taskID, commentID, content string) (*entity.Comment, error) {
	existing, err := s.own(ctx, scope, taskID, commentID)
	if err != nil {
		return nil, err
	}
	images := s.images(ctx, taskID, commentID)

	content = strings.TrimSpace(content)
	if content == "" {
		if len(images) == 0 {
			return nil, entity.ErrEmptyComment
		}
		content = ImagePlaceholder
	}
	if content == existing.Content {
		existing.Images = images
		return existing, nil
	}

	updated, err := s.commentRepo.Update(ctx, taskID, commentID, content)
	if err != nil {
		scope.fail("Failed to update comment", err)
		return nil, err
	}
	if updated == nil {
		return nil, entity.ErrCommentNotFound
	}
	updated.Images = images

	scope.notify(NoticeSuccess, "Comment updated")
	return updated, nil
}

// Delete удаляет комментарий. Строки картинок уходят каскадом, файлы чистятся после.
func (s *CommentService) Delete(ctx context.Context, scope Scope, taskID, commentID string) error {
	if _, err := s.own(ctx, scope, taskID, commentID); err != nil {
		return err
	}
	images := s.images(ctx, taskID, commentID)

	if err := s.commentRepo.Delete(ctx, taskID, commentID); err != nil {
		if err == pgx.ErrNoRows {
			return entity.ErrCommentNotFound
		}
		scope.fail("Failed to delete comment", err)
		return err
	}

	for _, img := range images {
		if err := s.uploader.store.Delete(ctx, img.Key); err != nil {
			log.Printf("⚠️  Файл %s не удален из хранилища: %v", img.Key, err)
		}
	}

	scope.notify(NoticeSuccess, "Comment deleted")
	return nil
}

// AddImages догружает картинки в свой комментарий
func (s *CommentService) AddImages(ctx context.Context, scope Scope, taskID, commentID string, images []FileUpload, progress ProgressFunc) (*entity.Comment, BatchResult, error) {
	comment, err := s.own(ctx, scope, taskID, commentID)
	if err != nil {
		return nil, BatchResult{}, err
	}
	comment.Images = s.images(ctx, taskID, commentID)

	result, err := s.uploader.UploadCommentFiles(ctx, scope, taskID, comment, images, progress)
	if err != nil {
		return nil, result, err
	}
	return comment, result, nil
}

// RemoveImage удаляет картинку своего комментария
func (s *CommentService) RemoveImage(ctx context.Context, scope Scope, taskID, commentID, imageID string) error {
	if _, err := s.own(ctx, scope, taskID, commentID); err != nil {
		return err
	}
	return s.uploader.DeleteCommentAttachment(ctx, scope, taskID, commentID, imageID)
}

// Feed собирает ленту задачи. Ошибка каталога участников не фатальна:
// авторы остаются с сырыми данными.
func (s *CommentService) Feed(ctx context.Context, scope Scope, taskID string) (Feed, error) {
	task, err := s.task(ctx, scope, taskID)
	if err != nil {
		return Feed{}, err
	}

	comments, err := s.commentRepo.ListByTask(ctx, taskID)
	if err != nil {
		return Feed{}, err
	}
	activity, err := s.activityRepo.ListByTask(ctx, taskID)
	if err != nil {
		return Feed{}, err
	}

	attachments, err := s.attachmentRepo.ListByTasks(ctx, []string{taskID})
	if err != nil {
		return Feed{}, err
	}
	byComment := make(map[string][]entity.Attachment)
	for _, a := range attachments {
		if a.CommentID != "" {
			byComment[a.CommentID] = append(byComment[a.CommentID], a)
		}
	}
	for i := range comments {
		comments[i].Images = byComment[comments[i].ID]
	}

	profiles, err := s.resolver.Resolve(ctx, feedMemberIDs(comments, activity))
	if err != nil {
		log.Printf("⚠️  Каталог участников недоступен: %v", err)
		profiles = map[string]entity.Member{}
	}

	var columns []entity.Column
	board, err := s.boardRepo.GetByID(ctx, scope.WorkspaceID, task.BoardID)
	if err != nil {
		log.Printf("⚠️  Не удалось загрузить колонки доски %s: %v", task.BoardID, err)
	} else if board != nil {
		columns = board.Columns
	}

	return BuildFeed(comments, activity, FeedContext{
		Profiles: profiles,
		Session:  scope.User,
		Columns:  columns,
	}), nil
}

func (s *CommentService) task(ctx context.Context, scope Scope, taskID string) (*entity.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, scope.WorkspaceID, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, entity.ErrTaskNotFound
	}
	return task, nil
}

// own - комментарий задачи этого workspace, написанный текущим пользователем
func (s *CommentService) own(ctx context.Context, scope Scope, taskID, commentID string) (*entity.Comment, error) {
	if _, err := s.task(ctx, scope, taskID); err != nil {
		return nil, err
	}
	comment, err := s.commentRepo.GetByID(ctx, taskID, commentID)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, entity.ErrCommentNotFound
	}
	if comment.AuthorID != scope.User.ID {
		return nil, entity.ErrForbidden
	}
	return comment, nil
}

func (s *CommentService) images(ctx context.Context, taskID, commentID string) []entity.Attachment {
	attachments, err := s.attachmentRepo.ListByTasks(ctx, []string{taskID})
	if err != nil {
		log.Printf("⚠️  Не удалось получить картинки комментария %s: %v", commentID, err)
		return nil
	}
	var images []entity.Attachment
	for _, a := range attachments {
		if a.CommentID == commentID {
			images = append(images, a)
		}
	}
	return images
}

// feedMemberIDs - авторы и участники из событий назначения, без повторов
func feedMemberIDs(comments []entity.Comment, activity []entity.Activity) []string {
	seen := make(map[string]bool)
	var ids []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	for _, c := range comments {
		add(c.AuthorID)
	}
	for _, a := range activity {
		add(a.AuthorID)
		if a.Type == entity.ActivityAssigned || a.Type == entity.ActivityUnassigned {
			for _, id := range entity.ValueIDs(a.OldValue) {
				add(id)
			}
			for _, id := range entity.ValueIDs(a.NewValue) {
				add(id)
			}
		}
	}
	return ids
}

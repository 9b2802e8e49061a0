package api

import (
	"net/http"
	"strings"

	"github.com/St1cky1/kanban-service/internal/api/handlers"
	apimw "github.com/St1cky1/kanban-service/internal/api/middleware"
	"github.com/St1cky1/kanban-service/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jonboulle/clockwork"
)

// Services - все, что нужно роутеру
type Services struct {
	Boards   *usecase.BoardService
	Tasks    *usecase.TaskService
	Drafts   *usecase.DraftService
	Comments *usecase.CommentService
	Uploader *usecase.AttachmentUploader
	Timers   *usecase.TimerService
	Members  *usecase.MemberResolver
	Shares   *usecase.ShareService
	Tokens   apimw.TokenValidator
	Clock    clockwork.Clock

	// Limits - потолки multipart загрузок
	Limits handlers.UploadLimits

	// Files - раздача загруженных файлов, пустой FilesPrefix отключает раздачу
	Files       http.Handler
	FilesPrefix string
}

func NewRouter(s Services) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	boardHandler := handlers.NewBoardHandler(s.Boards, s.Clock)
	taskHandler := handlers.NewTaskHandler(s.Tasks, s.Boards, s.Drafts, s.Comments, s.Uploader, s.Limits, s.Clock)
	commentHandler := handlers.NewCommentHandler(s.Comments, s.Limits)
	attachmentHandler := handlers.NewAttachmentHandler(s.Tasks, s.Uploader, s.Limits)
	timerHandler := handlers.NewTimerHandler(s.Timers, s.Clock)
	memberHandler := handlers.NewMemberHandler(s.Members)
	shareHandler := handlers.NewShareHandler(s.Shares)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	if s.Files != nil && s.FilesPrefix != "" {
		prefix := "/" + strings.Trim(s.FilesPrefix, "/")
		r.Handle(prefix+"/*", http.StripPrefix(prefix, s.Files))
	}

	// публичная доска по ссылке, без сессии
	r.Get("/api/v1"+usecase.PublicBoardPath+"{token}", shareHandler.PublicBoard)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apimw.Session(s.Tokens, s.Members))

		r.Get("/boards", boardHandler.ListBoards)
		r.Post("/boards", boardHandler.CreateBoard)
		r.Route("/boards/{boardID}", func(r chi.Router) {
			r.Get("/", boardHandler.GetBoard)
			r.Patch("/", boardHandler.UpdateBoard)
			r.Delete("/", boardHandler.DeleteBoard)
			r.Post("/tasks/{taskID}/move", boardHandler.MoveTask)

			r.Route("/columns", func(r chi.Router) {
				r.Post("/", boardHandler.CreateColumn)
				r.Put("/order", boardHandler.ReorderColumns)
				r.Patch("/{columnID}", boardHandler.UpdateColumn)
				r.Delete("/{columnID}", boardHandler.DeleteColumn)
			})

			r.Route("/shares", func(r chi.Router) {
				r.Get("/", shareHandler.ListShares)
				r.Post("/", shareHandler.CreateShare)
				r.Post("/{shareID}/revoke", shareHandler.RevokeShare)
				r.Delete("/{shareID}", shareHandler.DeleteShare)
			})
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Post("/", taskHandler.CreateTask)
			r.Route("/{taskID}", func(r chi.Router) {
				r.Get("/", taskHandler.GetTask)
				r.Patch("/", taskHandler.UpdateTask)
				r.Delete("/", taskHandler.DeleteTask)
				r.Get("/feed", taskHandler.Feed)

				r.Route("/comments", func(r chi.Router) {
					r.Post("/", commentHandler.CreateComment)
					r.Route("/{commentID}", func(r chi.Router) {
						r.Patch("/", commentHandler.UpdateComment)
						r.Delete("/", commentHandler.DeleteComment)
						r.Post("/images", commentHandler.AddImages)
						r.Delete("/images/{imageID}", commentHandler.DeleteImage)
					})
				})

				r.Post("/attachments", attachmentHandler.Upload)
				r.Delete("/attachments/{attachmentID}", attachmentHandler.Delete)

				r.Route("/timer", func(r chi.Router) {
					r.Post("/start", timerHandler.Start)
					r.Post("/stop", timerHandler.Stop)
					r.Post("/reset", timerHandler.Reset)
					r.Put("/settings", timerHandler.UpdateSettings)
					r.Get("/stream", timerHandler.Stream)
				})
			})
		})

		r.Route("/members", func(r chi.Router) {
			r.Get("/", memberHandler.Resolve)
			r.Get("/roster", memberHandler.Roster)
		})
	})

	return r
}

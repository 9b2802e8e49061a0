package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/St1cky1/kanban-service/internal/api/middleware"
	"github.com/St1cky1/kanban-service/internal/entity"
	"github.com/St1cky1/kanban-service/internal/usecase"
)

// envelope - ответ API: данные и уведомления, накопленные за запрос
type envelope struct {
	Data    any              `json:"data,omitempty"`
	Error   string           `json:"error,omitempty"`
	Notices []usecase.Notice `json:"notices"`
}

func notices(r *http.Request) []usecase.Notice {
	scope, ok := middleware.ScopeFrom(r.Context())
	if !ok {
		return []usecase.Notice{}
	}
	list, ok := scope.Notices.(*usecase.Notices)
	if !ok {
		return []usecase.Notice{}
	}
	return list.List()
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Data: data, Notices: notices(r)}); err != nil {
		log.Printf("❌ Ошибка записи ответа: %v", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("❌ %s %s: %v", r.Method, r.URL.Path, err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Error: message, Notices: notices(r)})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, entity.ErrTaskNotFound),
		errors.Is(err, entity.ErrBoardNotFound),
		errors.Is(err, entity.ErrColumnNotFound),
		errors.Is(err, entity.ErrCommentNotFound),
		errors.Is(err, entity.ErrAttachmentNotFound),
		errors.Is(err, entity.ErrMemberNotFound),
		errors.Is(err, entity.ErrPendingNotFound),
		errors.Is(err, entity.ErrShareNotFound),
		errors.Is(err, entity.ErrItemNotFound):
		return http.StatusNotFound, err.Error() // 404
	case errors.Is(err, entity.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, err.Error() // 413
	case errors.Is(err, entity.ErrUnsupportedFileType):
		return http.StatusUnsupportedMediaType, err.Error() // 415
	case usecase.IsInvalidInput(err),
		errors.Is(err, entity.ErrNoFieldsToUpdate),
		errors.Is(err, entity.ErrInvalidRounding),
		errors.Is(err, entity.ErrInvalidHourlyRate),
		errors.Is(err, entity.ErrTaskNotPersisted):
		return http.StatusBadRequest, err.Error() // 400
	case errors.Is(err, entity.ErrForbidden):
		return http.StatusForbidden, "access denied" // 403
	case errors.Is(err, entity.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized" // 401
	case errors.Is(err, entity.ErrTimerAlreadyRunning),
		errors.Is(err, entity.ErrTimerNotRunning),
		errors.Is(err, entity.ErrTimerRunning),
		errors.Is(err, entity.ErrColumnNotEmpty):
		return http.StatusConflict, err.Error() // 409
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// scopeOf достает Scope, без него запрос не проходит через Session
func scopeOf(w http.ResponseWriter, r *http.Request) (usecase.Scope, bool) {
	scope, ok := middleware.ScopeFrom(r.Context())
	if !ok {
		writeError(w, r, entity.ErrUnauthorized)
	}
	return scope, ok
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.New("invalid JSON")
	}
	return nil
}

// UploadLimits - потолки загрузки: размер одного файла и число файлов в запросе
type UploadLimits struct {
	MaxFileSize int64
	MaxFiles    int
}

// multipartSlack - запас на поля формы и заголовки частей
const multipartSlack = 1 << 20

func (l UploadLimits) withDefaults() UploadLimits {
	if l.MaxFileSize <= 0 {
		l.MaxFileSize = usecase.MaxFileSize
	}
	if l.MaxFiles <= 0 {
		l.MaxFiles = 10
	}
	return l
}

// bodyLimit - самое большое тело, которое вообще имеет смысл читать
func (l UploadLimits) bodyLimit() int64 {
	return l.MaxFileSize*int64(l.MaxFiles) + multipartSlack
}

// parseMultipart ограничивает тело запроса и разбирает форму.
// Слишком большое тело - 413, битая форма - 400. false значит ответ уже записан.
func parseMultipart(w http.ResponseWriter, r *http.Request, limits UploadLimits) bool {
	r.Body = http.MaxBytesReader(w, r.Body, limits.bodyLimit())
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			writeError(w, r, fmt.Errorf("%w: request exceeds %d bytes", entity.ErrFileTooLarge, limits.bodyLimit()))
			return false
		}
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return false
	}
	return true
}

// readFiles читает файлы multipart поля в память. Файлы больше потолка
// отклоняются по размеру из заголовка части и не читаются.
func readFiles(r *http.Request, field string, limits UploadLimits) ([]usecase.FileUpload, []usecase.FileError, error) {
	if r.MultipartForm == nil {
		return nil, nil, nil
	}
	var files []usecase.FileUpload
	var rejected []usecase.FileError
	for _, header := range r.MultipartForm.File[field] {
		if header.Size > limits.MaxFileSize {
			rejected = append(rejected, usecase.NewFileError(header.Filename,
				fmt.Errorf("%w: %d bytes, limit %d", entity.ErrFileTooLarge, header.Size, limits.MaxFileSize)))
			continue
		}
		f, err := header.Open()
		if err != nil {
			return nil, nil, err
		}
		data, err := io.ReadAll(io.LimitReader(f, limits.MaxFileSize+1))
		f.Close()
		if err != nil {
			return nil, nil, err
		}
		files = append(files, usecase.FileUpload{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return files, rejected, nil
}

// countFiles - сколько файлов во всех полях формы
func countFiles(r *http.Request) int {
	if r.MultipartForm == nil {
		return 0
	}
	n := 0
	for _, headers := range r.MultipartForm.File {
		n += len(headers)
	}
	return n
}

// tooManyFiles пишет 400, если в форме больше файлов, чем разрешено
func tooManyFiles(w http.ResponseWriter, r *http.Request, limits UploadLimits) bool {
	if n := countFiles(r); n > limits.MaxFiles {
		http.Error(w, fmt.Sprintf("Too many files: %d, limit %d", n, limits.MaxFiles), http.StatusBadRequest)
		return true
	}
	return false
}

// announceRejected - отклоненные до чтения файлы попадают в уведомления запроса
func announceRejected(scope usecase.Scope, rejected []usecase.FileError) {
	if scope.Notices == nil {
		return
	}
	for _, fe := range rejected {
		scope.Notices.Notify(usecase.NoticeError, fe.Message)
	}
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// logProgress - прогресс загрузки в лог сервера
func logProgress(fileName string, percent int) {
	if percent == 100 {
		log.Printf("📥 Файл %s загружен", fileName)
	}
}

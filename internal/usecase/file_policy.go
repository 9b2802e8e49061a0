package usecase

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/St1cky1/kanban-service/internal/entity"
	"github.com/gabriel-vasile/mimetype"
)

const MaxFileSize int64 = 10 << 20

// FileUpload - файл, пришедший от клиента (drop, paste или форма)
type FileUpload struct {
	Name        string
	ContentType string
	Data        []byte
}

func (f FileUpload) Size() int64 {
	return int64(len(f.Data))
}

func (f FileUpload) IsImage() bool {
	return strings.HasPrefix(baseContentType(f.ContentType), "image/")
}

// AcceptPolicy - набор разрешенных типов и потолок размера
type AcceptPolicy struct {
	Name    string
	Types   map[string]bool
	MaxSize int64
}

var imageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

var documentTypes = []string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.ms-excel",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"text/plain",
	"text/csv",
}

// ImagePolicy - комментарии и вставка из буфера
var ImagePolicy = newPolicy("image", MaxFileSize, imageTypes)

// DocumentPolicy - вложения описания задачи
var DocumentPolicy = newPolicy("document", MaxFileSize, append(append([]string{}, imageTypes...), documentTypes...))

func newPolicy(name string, maxSize int64, types []string) AcceptPolicy {
	p := AcceptPolicy{Name: name, Types: make(map[string]bool, len(types)), MaxSize: maxSize}
	for _, t := range types {
		p.Types[t] = true
	}
	return p
}

// WithMaxSize - копия политики с другим потолком (из конфига)
func (p AcceptPolicy) WithMaxSize(maxSize int64) AcceptPolicy {
	p.MaxSize = maxSize
	return p
}

// FileError - причина, по которой конкретный файл не попал в пакет
type FileError struct {
	FileName string `json:"file_name"`
	Err      error  `json:"-"`
	Message  string `json:"message"`
}

func NewFileError(name string, err error) FileError {
	return FileError{FileName: name, Err: err, Message: fmt.Sprintf("%s: %v", name, err)}
}

func (e FileError) Error() string { return e.Message }

func (e FileError) Unwrap() error { return e.Err }

// ValidateFile проверяет тип и размер файла. Пустой или общий Content-Type
// определяется по содержимому и записывается обратно в file.
func ValidateFile(file *FileUpload, policy AcceptPolicy) error {
	file.ContentType = detectContentType(*file)

	if !policy.Types[file.ContentType] {
		return fmt.Errorf("%w: %s", entity.ErrUnsupportedFileType, file.ContentType)
	}
	if policy.MaxSize > 0 && file.Size() > policy.MaxSize {
		return fmt.Errorf("%w: %d bytes, limit %d", entity.ErrFileTooLarge, file.Size(), policy.MaxSize)
	}
	return nil
}

func detectContentType(file FileUpload) string {
	ct := baseContentType(file.ContentType)
	if ct != "" && ct != "application/octet-stream" {
		return ct
	}
	if len(file.Data) > 0 {
		detected := baseContentType(mimetype.Detect(file.Data).String())
		if detected != "application/octet-stream" {
			return detected
		}
	}
	if byExt := baseContentType(mime.TypeByExtension(filepath.Ext(file.Name))); byExt != "" {
		return byExt
	}
	return "application/octet-stream"
}

func baseContentType(ct string) string {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

// FromPaste оставляет из буфера обмена только картинки
func FromPaste(items []FileUpload) []FileUpload {
	var images []FileUpload
	for _, item := range items {
		item.ContentType = detectContentType(item)
		if item.IsImage() {
			images = append(images, item)
		}
	}
	return images
}

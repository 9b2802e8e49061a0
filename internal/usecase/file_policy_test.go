package usecase

import (
	"errors"
	"testing"

	"github.com/St1cky1/kanban-service/internal/entity"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestValidateFileSniffsContent(t *testing.T) {
	file := FileUpload{Name: "shot", ContentType: "application/octet-stream", Data: pngHeader}

	if err := ValidateFile(&file, ImagePolicy); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if file.ContentType != "image/png" {
		t.Errorf("Expected image/png, got %s", file.ContentType)
	}
}

func TestValidateFileStripsParams(t *testing.T) {
	file := FileUpload{Name: "notes.txt", ContentType: "text/plain; charset=utf-8", Data: []byte("hello")}

	if err := ValidateFile(&file, DocumentPolicy); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if file.ContentType != "text/plain" {
		t.Errorf("Expected text/plain, got %s", file.ContentType)
	}
}

func TestValidateFileRejectsType(t *testing.T) {
	file := FileUpload{Name: "report.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4")}

	err := ValidateFile(&file, ImagePolicy)
	if !errors.Is(err, entity.ErrUnsupportedFileType) {
		t.Fatalf("Expected ErrUnsupportedFileType, got %v", err)
	}
}

func TestValidateFileRejectsSize(t *testing.T) {
	policy := ImagePolicy.WithMaxSize(4)
	file := FileUpload{Name: "big.png", ContentType: "image/png", Data: pngHeader}

	err := ValidateFile(&file, policy)
	if !errors.Is(err, entity.ErrFileTooLarge) {
		t.Fatalf("Expected ErrFileTooLarge, got %v", err)
	}
	if ImagePolicy.MaxSize != MaxFileSize {
		t.Errorf("Expected base policy untouched, got %d", ImagePolicy.MaxSize)
	}
}

func TestFromPasteKeepsImages(t *testing.T) {
	items := []FileUpload{
		{Name: "clip.png", Data: pngHeader},
		{Name: "text.txt", ContentType: "text/plain", Data: []byte("copied text")},
		{Name: "photo.jpg", ContentType: "image/jpeg", Data: []byte{0xff, 0xd8, 0xff}},
	}

	images := FromPaste(items)
	if len(images) != 2 {
		t.Fatalf("Expected 2 images, got %d", len(images))
	}
	if images[0].ContentType != "image/png" {
		t.Errorf("Expected sniffed image/png, got %s", images[0].ContentType)
	}
	if images[1].Name != "photo.jpg" {
		t.Errorf("Expected photo.jpg, got %s", images[1].Name)
	}
}

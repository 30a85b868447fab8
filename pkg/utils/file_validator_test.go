package utils

import (
	"bytes"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"

	"paper-system/config"
)

func TestValidateFile(t *testing.T) {
	pdf := []byte("%PDF-1.7\n%binary content")

	t.Run("pdf принят", func(t *testing.T) {
		fh := &multipart.FileHeader{Filename: "paper.PDF", Size: int64(len(pdf))}
		assert.NoError(t, ValidateFile(fh, bytes.NewReader(pdf), config.PaperUploadContext))
	})

	t.Run("неверное расширение", func(t *testing.T) {
		fh := &multipart.FileHeader{Filename: "paper.exe", Size: int64(len(pdf))}
		assert.Error(t, ValidateFile(fh, bytes.NewReader(pdf), config.PaperUploadContext))
	})

	t.Run("текст под видом pdf", func(t *testing.T) {
		text := []byte("just some plain text")
		fh := &multipart.FileHeader{Filename: "paper.pdf", Size: int64(len(text))}
		assert.Error(t, ValidateFile(fh, bytes.NewReader(text), config.PaperUploadContext))
	})

	t.Run("превышен размер", func(t *testing.T) {
		fh := &multipart.FileHeader{Filename: "paper.pdf", Size: 51 * 1024 * 1024}
		assert.Error(t, ValidateFile(fh, bytes.NewReader(pdf), config.PaperUploadContext))
	})

	t.Run("неизвестный контекст", func(t *testing.T) {
		fh := &multipart.FileHeader{Filename: "paper.pdf", Size: int64(len(pdf))}
		assert.Error(t, ValidateFile(fh, bytes.NewReader(pdf), "avatars"))
	})
}

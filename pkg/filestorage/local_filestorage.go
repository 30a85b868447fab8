package filestorage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrOutsideStorage = errors.New("путь выходит за пределы хранилища")

type FileStorageInterface interface {
	Save(file io.Reader, originalFileName string, prefix string) (filePath string, size int64, err error)
	Open(filePath string) (*os.File, error)
	Delete(filePath string) error
}

type LocalFileStorage struct {
	basePath string
	now      func() time.Time
}

func NewLocalFileStorage(basePath string) (*LocalFileStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию: %w", err)
	}
	return &LocalFileStorage{basePath: basePath, now: time.Now}, nil
}

// Save пишет файл в prefix/yyyy/mm/dd/<дата>-<uuid><ext> и возвращает путь относительно хранилища.
func (s *LocalFileStorage) Save(file io.Reader, originalFileName string, prefix string) (string, int64, error) {
	now := s.now()
	ext := strings.ToLower(filepath.Ext(originalFileName))
	uniqueFileName := fmt.Sprintf("%s-%s%s", now.Format("2006-01-02"), uuid.New().String(), ext)

	datePath := now.Format("2006/01/02")
	fullDirPath := filepath.Join(s.basePath, prefix, datePath)

	if err := os.MkdirAll(fullDirPath, 0o755); err != nil {
		return "", 0, err
	}

	fullPath := filepath.Join(fullDirPath, uniqueFileName)
	dst, err := os.Create(fullPath)
	if err != nil {
		return "", 0, err
	}
	defer dst.Close()

	size, err := io.Copy(dst, file)
	if err != nil {
		_ = os.Remove(fullPath)
		return "", 0, err
	}

	return filepath.ToSlash(filepath.Join(prefix, datePath, uniqueFileName)), size, nil
}

func (s *LocalFileStorage) Open(filePath string) (*os.File, error) {
	fullPath, err := s.resolve(filePath)
	if err != nil {
		return nil, err
	}
	return os.Open(fullPath)
}

// Delete идемпотентен: отсутствующий файл не считается ошибкой.
func (s *LocalFileStorage) Delete(filePath string) error {
	fullPath, err := s.resolve(filePath)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *LocalFileStorage) resolve(filePath string) (string, error) {
	relativePath := strings.TrimPrefix(filepath.ToSlash(filePath), "/uploads/")
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(relativePath))

	base, err := filepath.Abs(s.basePath)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(fullPath)
	if err != nil {
		return "", err
	}
	if abs != base && !strings.HasPrefix(abs, base+string(os.PathSeparator)) {
		return "", ErrOutsideStorage
	}
	return fullPath, nil
}

package handler

import (
	"errors"
	"io/fs"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shyjal/goplaces/internal/domain"
)

// SavedUpload is the uploaded photo spooled to a temporary file for
// the lifetime of one request. Callers must Discard it when done.
type SavedUpload struct {
	Path      string
	Name      string
	Size      int64
	MediaType string
}

func SaveUpload(c *gin.Context, fh *multipart.FileHeader) (*SavedUpload, error) {
	dst := filepath.Join(os.TempDir(), "goplaces-"+uuid.New().String()+filepath.Ext(fh.Filename))
	if err := c.SaveUploadedFile(fh, dst); err != nil {
		return nil, domain.NewDomainError(domain.ErrCodeInternal, "failed to store the uploaded photo", err)
	}

	mediaType := fh.Header.Get("Content-Type")
	if mediaType == "" || mediaType == "application/octet-stream" {
		mediaType = sniffMediaType(dst)
	}

	return &SavedUpload{
		Path:      dst,
		Name:      filepath.Base(fh.Filename),
		Size:      fh.Size,
		MediaType: mediaType,
	}, nil
}

func (s *SavedUpload) Open() (*os.File, error) {
	return os.Open(s.Path)
}

// Discard removes the temporary file. Removing an already removed
// file is not an error.
func (s *SavedUpload) Discard() error {
	err := os.Remove(s.Path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func sniffMediaType(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return "application/octet-stream"
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, _ := f.Read(buf)
	return http.DetectContentType(buf[:n])
}

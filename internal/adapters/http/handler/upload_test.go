package handler

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// savedFromRequest pushes content through a real multipart request and
// returns the resulting spooled upload. An empty contentType leaves the
// part with the writer's default, application/octet-stream.
func savedFromRequest(t *testing.T, filename, contentType string, content []byte) *SavedUpload {
	t.Helper()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	var fw io.Writer
	var err error
	if contentType == "" {
		fw, err = mw.CreateFormFile("image", filename)
	} else {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, filename))
		header.Set("Content-Type", contentType)
		fw, err = mw.CreatePart(header)
	}
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req

	fh, err := c.FormFile("image")
	require.NoError(t, err)

	saved, err := SaveUpload(c, fh)
	require.NoError(t, err)
	return saved
}

func TestSaveUploadRoundTrip(t *testing.T) {
	content := append([]byte("\x89PNG\r\n\x1a\n"), []byte("png pixel data")...)

	saved := savedFromRequest(t, "pic.png", "", content)
	t.Cleanup(func() { saved.Discard() })

	assert.Equal(t, "pic.png", saved.Name)
	assert.Equal(t, int64(len(content)), saved.Size)
	assert.True(t, strings.HasPrefix(filepath.Base(saved.Path), "goplaces-"))
	assert.Equal(t, ".png", filepath.Ext(saved.Path))

	file, err := saved.Open()
	require.NoError(t, err)
	defer file.Close()

	got, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestSaveUploadSniffsMediaType(t *testing.T) {
	// CreateFormFile declares application/octet-stream, so the saved
	// bytes decide the type
	content := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 16)...)

	saved := savedFromRequest(t, "pic.bin", "", content)
	t.Cleanup(func() { saved.Discard() })

	assert.Equal(t, "image/png", saved.MediaType)
}

func TestSaveUploadKeepsDeclaredMediaType(t *testing.T) {
	saved := savedFromRequest(t, "pic.jpg", "image/jpeg", []byte("not really a jpeg"))
	t.Cleanup(func() { saved.Discard() })

	assert.Equal(t, "image/jpeg", saved.MediaType)
}

func TestSaveUploadStripsDirectoryFromName(t *testing.T) {
	saved := savedFromRequest(t, "../../evil.png", "image/png", []byte("x"))
	t.Cleanup(func() { saved.Discard() })

	assert.Equal(t, "evil.png", saved.Name)
	assert.Equal(t, filepath.Clean(os.TempDir()), filepath.Dir(saved.Path))
}

func TestDiscardIsIdempotent(t *testing.T) {
	saved := savedFromRequest(t, "pic.png", "image/png", []byte("x"))

	require.NoError(t, saved.Discard())
	_, err := os.Stat(saved.Path)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	assert.NoError(t, saved.Discard())
}

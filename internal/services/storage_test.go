package services

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resumeFileHeader(t *testing.T, filename, content string) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("resume", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(&body, writer.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })

	return form.File["resume"][0]
}

func TestSaveResumeStoresPDF(t *testing.T) {
	dir := t.TempDir()
	storage := NewStorageService(dir)
	require.NoError(t, storage.EnsureUploadDir())

	header := resumeFileHeader(t, "cv.pdf", "%PDF-1.4 fake content")
	filename, filePath, err := storage.SaveResume(header)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(filename, "resume_"))
	assert.True(t, strings.HasSuffix(filename, ".pdf"))
	assert.Equal(t, filepath.Join(dir, filename), filePath)

	saved, err := os.ReadFile(filePath)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 fake content", string(saved))
}

func TestSaveResumeRejectsNonPDF(t *testing.T) {
	storage := NewStorageService(t.TempDir())

	header := resumeFileHeader(t, "cv.docx", "not a pdf")
	_, _, err := storage.SaveResume(header)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".docx")
}

func TestDeleteFileRemovesStoredResume(t *testing.T) {
	dir := t.TempDir()
	storage := NewStorageService(dir)

	header := resumeFileHeader(t, "cv.pdf", "%PDF-1.4")
	filename, filePath, err := storage.SaveResume(header)
	require.NoError(t, err)

	require.NoError(t, storage.DeleteFile(filename))
	_, err = os.Stat(filePath)
	assert.True(t, os.IsNotExist(err))
}

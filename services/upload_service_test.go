package services

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func fileHeaderForTest(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("Failed to write form file: %v", err)
	}
	writer.Close()

	req, _ := http.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		t.Fatalf("Failed to parse multipart form: %v", err)
	}
	return req.MultipartForm.File["file"][0]
}

func TestS3UploadServiceWithMockBackend(t *testing.T) {
	mockS3 := NewMockS3Service()
	svc := &S3UploadService{s3Service: mockS3}

	header := fileHeaderForTest(t, "bukti.jpg", []byte("fake image bytes"))

	key, err := svc.UploadImage(header, UploadBuktiPembayaran)
	assert.NoError(t, err)
	assert.Equal(t, "uploads/bukti-pembayaran/mock_bukti.jpg", key)
	assert.True(t, mockS3.FileExists(key))

	url, err := svc.GetFileURL(key)
	assert.NoError(t, err)
	assert.Contains(t, url, key)

	assert.NoError(t, svc.DeleteFile(key))
	assert.False(t, mockS3.FileExists(key))
}

func TestS3UploadServiceRejectsInvalidFiles(t *testing.T) {
	mockS3 := NewMockS3Service()
	svc := &S3UploadService{s3Service: mockS3}

	header := fileHeaderForTest(t, "laporan.pdf", []byte("%PDF-1.4"))

	_, err := svc.UploadImage(header, UploadReferensiDesain)
	assert.Error(t, err)
	assert.Empty(t, mockS3.GetUploadedFiles(), "Nothing may reach storage when validation fails")
}

func TestUploadServiceEmptyKeyShortCircuits(t *testing.T) {
	svc := &S3UploadService{s3Service: NewMockS3Service()}

	url, err := svc.GetFileURL("")
	assert.NoError(t, err)
	assert.Empty(t, url)

	assert.NoError(t, svc.DeleteFile(""))
}

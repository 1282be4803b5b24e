package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"sync"
)

// MockS3Service is an in-memory stand-in for the S3 backend.
// Keys use a "mock_" marker instead of a timestamp so tests can
// predict them from the uploaded filename.
type MockS3Service struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMockS3Service() *MockS3Service {
	return &MockS3Service{
		objects: make(map[string][]byte),
	}
}

// SetAsMockForTesting installs this mock as the global S3 backend.
func (m *MockS3Service) SetAsMockForTesting() {
	SetS3Service(m)
}

func (m *MockS3Service) UploadFile(fileHeader *multipart.FileHeader, keyPrefix string) (string, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	key := fmt.Sprintf("uploads/%s/mock_%s", keyPrefix, fileHeader.Filename)

	m.mu.Lock()
	m.objects[key] = content
	m.mu.Unlock()

	return key, nil
}

func (m *MockS3Service) GetPresignedURL(s3Key string) (string, error) {
	if s3Key == "" {
		return "", nil
	}

	m.mu.RLock()
	_, exists := m.objects[s3Key]
	m.mu.RUnlock()
	if !exists {
		return "", fmt.Errorf("object not found in mock storage: %s", s3Key)
	}

	return fmt.Sprintf("https://test-bucket.s3.us-east-1.amazonaws.com/%s?mock=true", s3Key), nil
}

func (m *MockS3Service) DeleteFile(s3Key string) error {
	if s3Key == "" {
		return nil
	}

	m.mu.Lock()
	delete(m.objects, s3Key)
	m.mu.Unlock()
	return nil
}

// GetUploadedFiles returns a copy of stored objects for assertions.
func (m *MockS3Service) GetUploadedFiles() map[string][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()

	files := make(map[string][]byte, len(m.objects))
	for k, v := range m.objects {
		files[k] = v
	}
	return files
}

// FileExists reports whether an object was stored under the given key.
func (m *MockS3Service) FileExists(s3Key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.objects[s3Key]
	return exists
}

// Clear drops all stored objects.
func (m *MockS3Service) Clear() {
	m.mu.Lock()
	m.objects = make(map[string][]byte)
	m.mu.Unlock()
}

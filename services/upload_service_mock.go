package services

import (
	"fmt"
	"mime/multipart"
	"sync"

	"github.com/ardiansyahdp/konveksi-api/utils"
)

// MockUploadService is a mock implementation of UploadService for testing
type MockUploadService struct {
	uploadedFiles map[string][]byte // map of storage key to file content
	mu            sync.RWMutex
}

// NewMockUploadService creates a new mock upload service
func NewMockUploadService() *MockUploadService {
	return &MockUploadService{
		uploadedFiles: make(map[string][]byte),
	}
}

// SetAsMockForTesting sets this mock as the global upload service instance for testing
func (m *MockUploadService) SetAsMockForTesting() {
	SetUploadService(m)
}

// UploadImage simulates storing an image
func (m *MockUploadService) UploadImage(fileHeader *multipart.FileHeader, kind UploadKind) (string, error) {
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return "", err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	content := make([]byte, fileHeader.Size)
	if _, err := file.Read(content); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	key := fmt.Sprintf("uploads/%s/mock_%s", kind, fileHeader.Filename)

	m.mu.Lock()
	m.uploadedFiles[key] = content
	m.mu.Unlock()

	return key, nil
}

// GetFileURL simulates generating a URL for a stored file
func (m *MockUploadService) GetFileURL(key string) (string, error) {
	if key == "" {
		return "", nil
	}

	m.mu.RLock()
	_, exists := m.uploadedFiles[key]
	m.mu.RUnlock()

	if !exists {
		return "", fmt.Errorf("file not found in mock storage: %s", key)
	}

	return fmt.Sprintf("https://test-bucket.s3.us-east-1.amazonaws.com/%s?mock=true", key), nil
}

// DeleteFile simulates deleting a stored file
func (m *MockUploadService) DeleteFile(key string) error {
	if key == "" {
		return nil
	}

	m.mu.Lock()
	delete(m.uploadedFiles, key)
	m.mu.Unlock()

	return nil
}

// FileExists checks if a file exists in mock storage
func (m *MockUploadService) FileExists(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.uploadedFiles[key]
	return exists
}

// Clear removes all files from mock storage
func (m *MockUploadService) Clear() {
	m.mu.Lock()
	m.uploadedFiles = make(map[string][]byte)
	m.mu.Unlock()
}

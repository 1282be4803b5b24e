package services

import (
	"fmt"
	"mime/multipart"

	"github.com/ardiansyahdp/konveksi-api/utils"
)

// UploadKind selects the storage prefix for an uploaded file.
type UploadKind string

const (
	// UploadBuktiPembayaran is a payment proof screenshot.
	UploadBuktiPembayaran UploadKind = "bukti-pembayaran"
	// UploadReferensiDesain is a customer-supplied design reference.
	UploadReferensiDesain UploadKind = "referensi-desain"
)

// UploadService stores payment proof screenshots and custom design references
// and hands out short-lived URLs for viewing them.
type UploadService interface {
	// UploadImage validates and stores an image, returning the storage key.
	UploadImage(fileHeader *multipart.FileHeader, kind UploadKind) (string, error)

	// GetFileURL generates a URL for accessing a stored file.
	GetFileURL(key string) (string, error)

	// DeleteFile removes a file from storage.
	DeleteFile(key string) error
}

// S3UploadService implements UploadService on AWS S3.
type S3UploadService struct {
	s3Service S3Interface
}

var uploadServiceInstance UploadService

// InitUploadService initializes the upload service with an S3 backend
func InitUploadService(s3Service S3Interface) UploadService {
	uploadServiceInstance = &S3UploadService{s3Service: s3Service}
	return uploadServiceInstance
}

// GetUploadService returns the initialized upload service instance
func GetUploadService() UploadService {
	return uploadServiceInstance
}

// SetUploadService sets the upload service instance (primarily for testing)
func SetUploadService(service UploadService) {
	uploadServiceInstance = service
}

// UploadImage validates the file and stores it under the kind's prefix.
func (s *S3UploadService) UploadImage(fileHeader *multipart.FileHeader, kind UploadKind) (string, error) {
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return "", err
	}

	key, err := s.s3Service.UploadFile(fileHeader, string(kind))
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", kind, err)
	}
	return key, nil
}

// GetFileURL generates a presigned URL for a stored file.
func (s *S3UploadService) GetFileURL(key string) (string, error) {
	if key == "" {
		return "", nil
	}

	url, err := s.s3Service.GetPresignedURL(key)
	if err != nil {
		return "", fmt.Errorf("failed to generate file URL: %w", err)
	}
	return url, nil
}

// DeleteFile removes a stored file.
func (s *S3UploadService) DeleteFile(key string) error {
	if key == "" {
		return nil
	}

	if err := s.s3Service.DeleteFile(key); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

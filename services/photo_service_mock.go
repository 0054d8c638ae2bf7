package services

import (
	"fmt"
	"mime/multipart"
	"sync"

	"github.com/ChiraniSiriwardhana/ASMS-Backend/utils"
)

// MockPhotoService is an in-memory implementation of PhotoService for testing
type MockPhotoService struct {
	photos map[string][]byte // map of photo key to file content
	mu     sync.RWMutex
}

// NewMockPhotoService creates a new mock photo service
func NewMockPhotoService() *MockPhotoService {
	return &MockPhotoService{
		photos: make(map[string][]byte),
	}
}

// SetAsMockForTesting sets this mock as the global photo service instance for testing
func (m *MockPhotoService) SetAsMockForTesting() {
	SetPhotoService(m)
}

// UploadPhoto simulates validating and storing a vehicle photo
func (m *MockPhotoService) UploadPhoto(fileHeader *multipart.FileHeader) (string, error) {
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

	photoKey := fmt.Sprintf("vehicle-photos/mock_%s", fileHeader.Filename)

	m.mu.Lock()
	m.photos[photoKey] = content
	m.mu.Unlock()

	return photoKey, nil
}

// GetPhotoURL simulates generating a photo URL
func (m *MockPhotoService) GetPhotoURL(photoKey string) (string, error) {
	if photoKey == "" {
		return "", nil
	}

	m.mu.RLock()
	_, exists := m.photos[photoKey]
	m.mu.RUnlock()

	if !exists {
		return "", fmt.Errorf("photo not found in mock storage: %s", photoKey)
	}

	return fmt.Sprintf("https://test-bucket.s3.us-east-1.amazonaws.com/%s?mock=true", photoKey), nil
}

// DeletePhoto simulates removing a photo
func (m *MockPhotoService) DeletePhoto(photoKey string) error {
	m.mu.Lock()
	delete(m.photos, photoKey)
	m.mu.Unlock()
	return nil
}

// PhotoExists checks if a photo exists in mock storage
func (m *MockPhotoService) PhotoExists(photoKey string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.photos[photoKey]
	return exists
}

// Clear removes all photos from mock storage
func (m *MockPhotoService) Clear() {
	m.mu.Lock()
	m.photos = make(map[string][]byte)
	m.mu.Unlock()
}

package sdk

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
)

// MaxImageSize is the largest image accepted for upload.
const MaxImageSize = 5 << 20

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// ImageUpload is an image attachment validated for upload.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// NewImageUpload validates data as a JPEG, PNG or GIF no larger than MaxImageSize.
// The content type is sniffed from the bytes; the filename is not trusted.
func NewImageUpload(filename string, data []byte) (*ImageUpload, error) {
	if len(data) > MaxImageSize {
		return nil, &ValidationError{Message: "File is too large. Maximum size is 5MB."}
	}

	contentType := http.DetectContentType(data)
	if !allowedImageTypes[contentType] {
		return nil, &ValidationError{Message: "Invalid file type. Please upload a JPEG, PNG, or GIF."}
	}

	return &ImageUpload{
		Filename:    filepath.Base(filename),
		ContentType: contentType,
		Data:        data,
	}, nil
}

// LoadImage reads and validates an image file from disk.
func LoadImage(path string) (*ImageUpload, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if info.Size() > MaxImageSize {
		return nil, &ValidationError{Message: "File is too large. Maximum size is 5MB."}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return NewImageUpload(path, data)
}

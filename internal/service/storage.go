package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/platebook/backend/config"
)

// ErrUnsupportedImageType is returned for uploads that are not jpg or png.
var ErrUnsupportedImageType = fmt.Errorf("images only (jpg, jpeg, png)")

var imageContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// StorageService resolves uploaded recipe images to stable reference URLs.
// The rest of the system treats the returned reference as an inert string.
type StorageService struct {
	s3Config *config.S3Config
}

// NewStorageService creates a new StorageService instance
func NewStorageService(s3Config *config.S3Config) *StorageService {
	return &StorageService{s3Config: s3Config}
}

// UploadRecipeImage stores a transported image under a unique key and
// returns its public URL.
func (s *StorageService) UploadRecipeImage(ctx context.Context, file *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	contentType, ok := imageContentTypes[ext]
	if !ok {
		return "", ErrUnsupportedImageType
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer func() { _ = src.Close() }()

	data, err := io.ReadAll(src)
	if err != nil {
		return "", fmt.Errorf("failed to read uploaded file: %w", err)
	}

	key := fmt.Sprintf("recipe-images/%s%s", uuid.New().String(), ext)
	return s.upload(ctx, data, key, contentType)
}

// upload writes image data to S3 and returns the public URL.
func (s *StorageService) upload(ctx context.Context, data []byte, key, contentType string) (string, error) {
	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, key), nil
}

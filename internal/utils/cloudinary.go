// Package utils holds supporting infrastructure, currently media storage.
package utils

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"bookhub/internal/config"

	"github.com/cenkalti/backoff/v4"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
)

// StorageConfig holds limits for uploaded media
type StorageConfig struct {
	MaxFileSize     int64
	UploadTimeout   time.Duration
	MaxRetries      uint64
	ValidExtensions map[string][]string
}

// DefaultStorageConfig allows cover images and common book formats
func DefaultStorageConfig() StorageConfig {
	return StorageConfig{
		MaxFileSize:   20 * 1024 * 1024, // 20MB
		UploadTimeout: 30 * time.Second,
		MaxRetries:    3,
		ValidExtensions: map[string][]string{
			"image/jpeg":      {".jpg", ".jpeg"},
			"image/png":       {".png"},
			"image/webp":      {".webp"},
			"application/pdf": {".pdf"},
			"application/epub+zip": {".epub"},
		},
	}
}

// UploadResult contains the outcome of a file upload
type UploadResult struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
	Format   string `json:"format"`
	Size     int    `json:"size"`
}

// FileStorage uploads and deletes media files
type FileStorage interface {
	UploadFile(ctx context.Context, file *multipart.FileHeader, folder string) (*UploadResult, error)
	DeleteFile(ctx context.Context, publicID string) error
}

// Upload failure classes
var (
	ErrFileTooLarge       = fmt.Errorf("file size exceeds limit")
	ErrInvalidContentType = fmt.Errorf("invalid content type")
	ErrInvalidExtension   = fmt.Errorf("invalid file extension")
	ErrMissingCredentials = fmt.Errorf("cloudinary credentials are missing")
)

// CloudinaryService stores uploads in Cloudinary
type CloudinaryService struct {
	client *cloudinary.Cloudinary
	config StorageConfig
	folder string
	logger *zap.Logger
}

// NewCloudinaryService creates the Cloudinary-backed file storage
func NewCloudinaryService(cfg config.CloudinaryConfig, storage StorageConfig, logger *zap.Logger) (*CloudinaryService, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, ErrMissingCredentials
	}

	client, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &CloudinaryService{
		client: client,
		config: storage,
		folder: cfg.Folder,
		logger: logger,
	}, nil
}

// UploadFile validates the file and uploads it, retrying transient
// failures with exponential backoff.
func (s *CloudinaryService) UploadFile(ctx context.Context, file *multipart.FileHeader, folder string) (*UploadResult, error) {
	if err := s.validateFile(file); err != nil {
		return nil, err
	}

	target := s.folder
	if folder != "" {
		target = s.folder + "/" + folder
	}

	var result *UploadResult
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), s.config.MaxRetries), ctx)

	err := backoff.Retry(func() error {
		uploadCtx, cancel := context.WithTimeout(ctx, s.config.UploadTimeout)
		defer cancel()

		src, err := file.Open()
		if err != nil {
			return backoff.Permanent(fmt.Errorf("unable to open file: %w", err))
		}
		defer src.Close()

		resp, err := s.client.Upload.Upload(uploadCtx, src, uploader.UploadParams{
			Folder:         target,
			ResourceType:   "auto",
			UniqueFilename: boolPtr(true),
		})
		if err != nil {
			s.logger.Warn("Upload attempt failed",
				zap.Error(err),
				zap.String("filename", file.Filename),
			)
			return err
		}

		result = &UploadResult{
			URL:      resp.SecureURL,
			PublicID: resp.PublicID,
			Format:   resp.Format,
			Size:     resp.Bytes,
		}
		return nil
	}, policy)
	if err != nil {
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}

	s.logger.Info("File uploaded",
		zap.String("public_id", result.PublicID),
		zap.Int("size", result.Size),
	)
	return result, nil
}

// DeleteFile removes an uploaded file by its public id
func (s *CloudinaryService) DeleteFile(ctx context.Context, publicID string) error {
	_, err := s.client.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *CloudinaryService) validateFile(file *multipart.FileHeader) error {
	if file.Size > s.config.MaxFileSize {
		return ErrFileTooLarge
	}

	contentType := file.Header.Get("Content-Type")
	extensions, ok := s.config.ValidExtensions[contentType]
	if !ok {
		return ErrInvalidContentType
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	for _, valid := range extensions {
		if ext == valid {
			return nil
		}
	}
	return ErrInvalidExtension
}

func boolPtr(b bool) *bool {
	return &b
}

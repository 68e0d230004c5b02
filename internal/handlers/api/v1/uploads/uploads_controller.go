// ===============================
// FILE: internal/handlers/api/v1/uploads/uploads_controller.go
// ===============================

package uploads

import (
	"errors"
	"net/http"

	"bookhub/internal/middleware"
	"bookhub/internal/response"
	"bookhub/internal/services"
	"bookhub/internal/utils"

	"go.uber.org/zap"
)

// maxUploadMemory bounds the in-memory part of multipart parsing
const maxUploadMemory = 32 << 20

// Folders accepted by the upload endpoint
var allowedFolders = map[string]bool{
	"avatars": true,
	"covers":  true,
	"books":   true,
}

// UploadController handles file uploads to the configured storage backend.
// Uploaded URLs are then attached to profiles or books by their own
// endpoints.
type UploadController struct {
	storage         utils.FileStorage
	logger          *zap.Logger
	responseBuilder *response.Builder
}

// NewUploadController creates a new upload controller. storage may be nil
// when no backend is configured; uploads then fail with a service error.
func NewUploadController(
	storage utils.FileStorage,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *UploadController {
	return &UploadController{
		storage:         storage,
		logger:          logger,
		responseBuilder: responseBuilder,
	}
}

// Upload handles POST /api/v1/uploads. Expects a multipart form with a
// `file` part and an optional `folder` field (avatars, covers or books).
func (c *UploadController) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authCtx := middleware.GetAuthContext(ctx)
	if authCtx == nil {
		c.responseBuilder.WriteUnauthorized(ctx, w, "Authentication required")
		return
	}

	if c.storage == nil {
		c.responseBuilder.WriteError(ctx, w, services.NewServiceUnavailableError("File uploads are not configured"))
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		c.responseBuilder.WriteValidationError(ctx, w, "Invalid multipart form")
		return
	}

	folder := r.FormValue("folder")
	if folder != "" && !allowedFolders[folder] {
		c.responseBuilder.WriteValidationError(ctx, w, "Invalid upload folder")
		return
	}

	_, header, err := r.FormFile("file")
	if err != nil {
		c.responseBuilder.WriteValidationError(ctx, w, "A file part is required")
		return
	}

	result, err := c.storage.UploadFile(ctx, header, folder)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrFileTooLarge):
			c.responseBuilder.WriteValidationError(ctx, w, "File size exceeds limit")
		case errors.Is(err, utils.ErrInvalidContentType):
			c.responseBuilder.WriteValidationError(ctx, w, "Unsupported file type")
		default:
			c.logger.Error("Upload failed",
				zap.Error(err),
				zap.Int64("user_id", authCtx.UserID),
				zap.String("filename", header.Filename),
			)
			c.responseBuilder.WriteError(ctx, w, services.NewInternalError("Upload failed"))
		}
		return
	}

	c.logger.Info("File uploaded via API",
		zap.Int64("user_id", authCtx.UserID),
		zap.String("public_id", result.PublicID),
	)
	c.responseBuilder.WriteCreated(ctx, w, result)
}

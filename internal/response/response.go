// Package response standardizes the JSON envelope written by every API
// handler.
package response

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"bookhub/internal/models"
	"bookhub/internal/services"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

// ===============================
// RESPONSE TYPES
// ===============================

// APIResponse is the envelope for every API response
type APIResponse struct {
	Success   bool         `json:"success"`
	Data      interface{}  `json:"data,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
	Meta      interface{}  `json:"meta,omitempty"`
	RequestID string       `json:"request_id,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
	Version   string       `json:"version,omitempty"`
}

// ErrorDetail carries the client-facing view of an error
type ErrorDetail struct {
	Type    string                 `json:"type"`
	Message string                 `json:"message"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Config holds response builder configuration
type Config struct {
	APIVersion         string
	MaskInternalErrors bool
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		APIVersion:         "v1",
		MaskInternalErrors: true,
	}
}

// ===============================
// REQUEST ID MIDDLEWARE
// ===============================

type contextKey string

const requestIDKey contextKey = "request_id"

// Middleware assigns each request an id, echoes it in the X-Request-ID
// header and stores it in the context for the Builder.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			if id, err := uuid.NewV4(); err == nil {
				requestID = id.String()
			}
		}

		w.Header().Set("X-Request-ID", requestID)
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID returns the request id stored by Middleware, if any
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// ===============================
// RESPONSE BUILDER
// ===============================

// Builder writes API responses in the standard envelope
type Builder struct {
	config *Config
	logger *zap.Logger
}

// NewBuilder creates a response builder
func NewBuilder(config *Config, logger *zap.Logger) *Builder {
	if config == nil {
		config = DefaultConfig()
	}
	return &Builder{
		config: config,
		logger: logger,
	}
}

// WriteSuccess writes a 200 response with data
func (b *Builder) WriteSuccess(ctx context.Context, w http.ResponseWriter, data interface{}) {
	b.write(ctx, w, http.StatusOK, &APIResponse{
		Success: true,
		Data:    data,
	})
}

// WriteCreated writes a 201 response with data
func (b *Builder) WriteCreated(ctx context.Context, w http.ResponseWriter, data interface{}) {
	b.write(ctx, w, http.StatusCreated, &APIResponse{
		Success: true,
		Data:    data,
	})
}

// WriteNoContent writes a 204 response
func (b *Builder) WriteNoContent(ctx context.Context, w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WritePaginated writes a 200 response with page data and meta
func WritePaginated[T any](b *Builder, ctx context.Context, w http.ResponseWriter, page *models.PaginatedResponse[T]) {
	b.write(ctx, w, http.StatusOK, &APIResponse{
		Success: true,
		Data:    page.Data,
		Meta: map[string]interface{}{
			"pagination": page.Pagination,
			"filters":    page.Filters,
		},
	})
}

// WriteError maps a service error onto the envelope. Internal errors are
// masked outside development and always logged.
func (b *Builder) WriteError(ctx context.Context, w http.ResponseWriter, err error) {
	serviceErr := services.GetServiceError(err)
	status := serviceErr.GetStatusCode()

	detail := &ErrorDetail{
		Type:    serviceErr.Type,
		Message: serviceErr.Message,
		Code:    serviceErr.Code,
		Details: serviceErr.Details,
	}

	if status >= http.StatusInternalServerError {
		b.logger.Error("Request failed with internal error",
			zap.Error(err),
			zap.String("request_id", GetRequestID(ctx)),
		)
		if b.config.MaskInternalErrors {
			detail.Message = "An internal error occurred"
			detail.Details = nil
		}
	}

	b.write(ctx, w, status, &APIResponse{
		Success: false,
		Error:   detail,
	})
}

// WriteUnauthorized writes a 401 error
func (b *Builder) WriteUnauthorized(ctx context.Context, w http.ResponseWriter, message string) {
	b.WriteError(ctx, w, services.NewUnauthorizedError(message))
}

// WriteForbidden writes a 403 error
func (b *Builder) WriteForbidden(ctx context.Context, w http.ResponseWriter, message string) {
	b.WriteError(ctx, w, services.NewForbiddenError(message))
}

// WriteNotFound writes a 404 error
func (b *Builder) WriteNotFound(ctx context.Context, w http.ResponseWriter, message string) {
	b.WriteError(ctx, w, services.NewNotFoundError(message))
}

// WriteValidationError writes a 400 error
func (b *Builder) WriteValidationError(ctx context.Context, w http.ResponseWriter, message string) {
	b.WriteError(ctx, w, services.NewValidationError(message, nil))
}

func (b *Builder) write(ctx context.Context, w http.ResponseWriter, status int, resp *APIResponse) {
	resp.RequestID = GetRequestID(ctx)
	resp.Timestamp = time.Now().UTC()
	resp.Version = b.config.APIVersion

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		b.logger.Error("Failed to encode response", zap.Error(err))
	}
}

package comments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bookhub/internal/models"
	"bookhub/internal/response"
	"bookhub/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockCommentService is a simplified implementation for controller tests
type mockCommentService struct {
	createFunc func(ctx context.Context, req *services.CreateCommentRequest) (*models.Comment, error)
	listFunc   func(ctx context.Context, bookID int64) ([]*models.Comment, error)
}

func (m *mockCommentService) CreateComment(ctx context.Context, req *services.CreateCommentRequest) (*models.Comment, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, req)
	}
	return nil, nil
}

func (m *mockCommentService) ListComments(ctx context.Context, bookID int64) ([]*models.Comment, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, bookID)
	}
	return nil, nil
}

func (m *mockCommentService) UpdateComment(ctx context.Context, req *services.UpdateCommentRequest) (*models.Comment, error) {
	return nil, nil
}

func (m *mockCommentService) DeleteComment(ctx context.Context, commentID, userID int64) error {
	return nil
}

func newControllerForTest(svc services.CommentService) *CommentController {
	logger := zap.NewNop()
	builder := response.NewBuilder(response.DefaultConfig(), logger)
	collection := &services.ServiceCollection{Comment: svc}
	return NewCommentController(collection, logger, builder)
}

func TestListComments_ReturnsPayload(t *testing.T) {
	authorID := int64(2)
	svc := &mockCommentService{
		listFunc: func(ctx context.Context, bookID int64) ([]*models.Comment, error) {
			assert.Equal(t, int64(10), bookID)
			return []*models.Comment{
				{ID: 100, BookID: bookID, UserID: &authorID, Content: "Great read", ReplyCount: 1},
			}, nil
		},
	}
	controller := newControllerForTest(svc)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/books/10/comments", nil)
	w := httptest.NewRecorder()
	controller.ListComments(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	var resp response.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Data)
}

func TestListComments_BadBookID(t *testing.T) {
	controller := newControllerForTest(&mockCommentService{})

	r := httptest.NewRequest(http.MethodGet, "/api/v1/books/abc/comments", nil)
	w := httptest.NewRecorder()
	controller.ListComments(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListComments_BookMissing(t *testing.T) {
	svc := &mockCommentService{
		listFunc: func(ctx context.Context, bookID int64) ([]*models.Comment, error) {
			return nil, services.NewNotFoundError("Book not found")
		},
	}
	controller := newControllerForTest(svc)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/books/99/comments", nil)
	w := httptest.NewRecorder()
	controller.ListComments(w, r)

	require.Equal(t, http.StatusNotFound, w.Code)

	var resp response.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "Book not found", resp.Error.Message)
}

func TestCreateComment_RequiresAuth(t *testing.T) {
	controller := newControllerForTest(&mockCommentService{})

	body := strings.NewReader(`{"content":"Great read"}`)
	r := httptest.NewRequest(http.MethodPost, "/api/v1/books/10/comments", body)
	w := httptest.NewRecorder()
	controller.CreateComment(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

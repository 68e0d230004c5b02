package services

import (
	"context"
	"testing"

	"bookhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newCommentServiceForTest(commentRepo *fakeCommentRepo, bookRepo *fakeBookRepo) CommentService {
	return NewCommentService(commentRepo, bookRepo, zap.NewNop())
}

func publicBook(id, ownerID int64) *models.Book {
	return &models.Book{ID: id, UserID: ownerID, Title: "Dune", Author: "Frank Herbert"}
}

func TestCreateComment_TopLevel(t *testing.T) {
	bookRepo := &fakeBookRepo{
		getByID: func(ctx context.Context, id int64) (*models.Book, error) {
			return publicBook(10, 1), nil
		},
	}
	var created *models.Comment
	commentRepo := &fakeCommentRepo{
		create: func(ctx context.Context, comment *models.Comment) error {
			comment.ID = 100
			created = comment
			return nil
		},
	}
	svc := newCommentServiceForTest(commentRepo, bookRepo)

	comment, err := svc.CreateComment(context.Background(), &CreateCommentRequest{
		BookID:  10,
		UserID:  2,
		Content: "Great read",
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Nil(t, comment.ParentID)
	assert.Nil(t, comment.ChildID)
	assert.True(t, comment.IsParent())
}

func TestCreateComment_ReplyToTopLevel(t *testing.T) {
	parentID := int64(100)
	bookRepo := &fakeBookRepo{
		getByID: func(ctx context.Context, id int64) (*models.Book, error) {
			return publicBook(10, 1), nil
		},
	}
	authorID := int64(2)
	commentRepo := &fakeCommentRepo{
		getByID: func(ctx context.Context, id int64) (*models.Comment, error) {
			return &models.Comment{ID: parentID, BookID: 10, UserID: &authorID, Content: "Great read"}, nil
		},
		create: func(ctx context.Context, comment *models.Comment) error {
			comment.ID = 101
			return nil
		},
	}
	svc := newCommentServiceForTest(commentRepo, bookRepo)

	reply, err := svc.CreateComment(context.Background(), &CreateCommentRequest{
		BookID:   10,
		UserID:   3,
		Content:  "Agreed",
		ParentID: &parentID,
	})
	require.NoError(t, err)
	require.NotNil(t, reply.ParentID)
	require.NotNil(t, reply.ChildID)
	assert.Equal(t, parentID, *reply.ParentID)
	assert.Equal(t, parentID, *reply.ChildID)
	assert.False(t, reply.IsParent())
}

// Answering a reply keeps the thread one level deep: the new comment is
// re-parented onto the thread's top-level comment while child records the
// reply that was answered.
func TestCreateComment_ReplyToReplyFlattens(t *testing.T) {
	topID := int64(100)
	replyID := int64(101)
	authorID := int64(3)

	bookRepo := &fakeBookRepo{
		getByID: func(ctx context.Context, id int64) (*models.Book, error) {
			return publicBook(10, 1), nil
		},
	}
	commentRepo := &fakeCommentRepo{
		getByID: func(ctx context.Context, id int64) (*models.Comment, error) {
			require.Equal(t, replyID, id)
			return &models.Comment{
				ID:       replyID,
				BookID:   10,
				UserID:   &authorID,
				ParentID: &topID,
				ChildID:  &topID,
				Content:  "Agreed",
			}, nil
		},
		create: func(ctx context.Context, comment *models.Comment) error {
			comment.ID = 102
			return nil
		},
	}
	svc := newCommentServiceForTest(commentRepo, bookRepo)

	second, err := svc.CreateComment(context.Background(), &CreateCommentRequest{
		BookID:   10,
		UserID:   4,
		Content:  "Strongly agreed",
		ParentID: &replyID,
	})
	require.NoError(t, err)
	require.NotNil(t, second.ParentID)
	require.NotNil(t, second.ChildID)
	assert.Equal(t, topID, *second.ParentID, "reply to a reply must re-parent onto the top-level comment")
	assert.Equal(t, replyID, *second.ChildID, "child must record the comment actually answered")
}

func TestCreateComment_ParentFromDifferentBook(t *testing.T) {
	parentID := int64(100)
	authorID := int64(2)
	bookRepo := &fakeBookRepo{
		getByID: func(ctx context.Context, id int64) (*models.Book, error) {
			return publicBook(10, 1), nil
		},
	}
	commentRepo := &fakeCommentRepo{
		getByID: func(ctx context.Context, id int64) (*models.Comment, error) {
			return &models.Comment{ID: parentID, BookID: 99, UserID: &authorID}, nil
		},
	}
	svc := newCommentServiceForTest(commentRepo, bookRepo)

	_, err := svc.CreateComment(context.Background(), &CreateCommentRequest{
		BookID:   10,
		UserID:   3,
		Content:  "Agreed",
		ParentID: &parentID,
	})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestCreateComment_PrivateBookNonOwner(t *testing.T) {
	bookRepo := &fakeBookRepo{
		getByID: func(ctx context.Context, id int64) (*models.Book, error) {
			return &models.Book{ID: 10, UserID: 1, IsPrivate: true}, nil
		},
	}
	svc := newCommentServiceForTest(&fakeCommentRepo{}, bookRepo)

	_, err := svc.CreateComment(context.Background(), &CreateCommentRequest{
		BookID:  10,
		UserID:  2,
		Content: "Hello",
	})
	require.Error(t, err)
	assert.True(t, IsForbiddenError(err))
}

func TestCreateComment_MissingParent(t *testing.T) {
	missingID := int64(404)
	bookRepo := &fakeBookRepo{
		getByID: func(ctx context.Context, id int64) (*models.Book, error) {
			return publicBook(10, 1), nil
		},
	}
	commentRepo := &fakeCommentRepo{
		getByID: func(ctx context.Context, id int64) (*models.Comment, error) {
			return nil, nil
		},
	}
	svc := newCommentServiceForTest(commentRepo, bookRepo)

	_, err := svc.CreateComment(context.Background(), &CreateCommentRequest{
		BookID:   10,
		UserID:   3,
		Content:  "Agreed",
		ParentID: &missingID,
	})
	require.Error(t, err)
	assert.True(t, IsNotFoundError(err))
}

func TestListComments_MergesRepliesAndCounts(t *testing.T) {
	firstID := int64(100)
	secondID := int64(200)
	authorID := int64(2)

	bookRepo := &fakeBookRepo{
		getByID: func(ctx context.Context, id int64) (*models.Book, error) {
			return publicBook(10, 1), nil
		},
	}
	commentRepo := &fakeCommentRepo{
		listTopLevelByBook: func(ctx context.Context, bookID int64) ([]*models.Comment, error) {
			return []*models.Comment{
				{ID: secondID, BookID: 10, UserID: &authorID, Content: "Newer"},
				{ID: firstID, BookID: 10, UserID: &authorID, Content: "Older"},
			}, nil
		},
		listRepliesByParents: func(ctx context.Context, parentIDs []int64) ([]*models.Comment, error) {
			assert.ElementsMatch(t, []int64{firstID, secondID}, parentIDs)
			return []*models.Comment{
				{ID: 101, BookID: 10, UserID: &authorID, ParentID: &firstID, ChildID: &firstID},
				{ID: 102, BookID: 10, UserID: &authorID, ParentID: &firstID, ChildID: &firstID},
			}, nil
		},
	}
	svc := newCommentServiceForTest(commentRepo, bookRepo)

	comments, err := svc.ListComments(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, comments, 2)

	assert.Equal(t, secondID, comments[0].ID)
	assert.Equal(t, 0, comments[0].ReplyCount)
	assert.Empty(t, comments[0].Replies)

	assert.Equal(t, firstID, comments[1].ID)
	assert.Equal(t, 2, comments[1].ReplyCount)
	require.Len(t, comments[1].Replies, 2)
	assert.Equal(t, int64(101), comments[1].Replies[0].ID)
}

func TestUpdateComment_NotAuthor(t *testing.T) {
	authorID := int64(2)
	commentRepo := &fakeCommentRepo{
		getByID: func(ctx context.Context, id int64) (*models.Comment, error) {
			return &models.Comment{ID: 100, BookID: 10, UserID: &authorID, Content: "Original"}, nil
		},
	}
	svc := newCommentServiceForTest(commentRepo, &fakeBookRepo{})

	_, err := svc.UpdateComment(context.Background(), &UpdateCommentRequest{
		CommentID: 100,
		UserID:    3,
		Content:   "Hijacked",
	})
	require.Error(t, err)
	assert.True(t, IsForbiddenError(err))
}

func TestDeleteComment_OrphanedAuthor(t *testing.T) {
	// A comment whose author account was deleted keeps a NULL user_id;
	// nobody can pass the author check on it.
	commentRepo := &fakeCommentRepo{
		getByID: func(ctx context.Context, id int64) (*models.Comment, error) {
			return &models.Comment{ID: 100, BookID: 10, UserID: nil, Content: "Orphaned"}, nil
		},
	}
	svc := newCommentServiceForTest(commentRepo, &fakeBookRepo{})

	err := svc.DeleteComment(context.Background(), 100, 3)
	require.Error(t, err)
	assert.True(t, IsForbiddenError(err))
}

package services

import (
	"context"
	"testing"

	"bookhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newFriendServiceForTest(friendRepo *fakeFriendRepo, userRepo *fakeUserRepo) FriendService {
	return NewFriendService(friendRepo, userRepo, zap.NewNop())
}

func existingUser(id int64) *fakeUserRepo {
	return &fakeUserRepo{
		getByID: func(ctx context.Context, userID int64) (*models.User, error) {
			return &models.User{ID: userID, Username: "reader"}, nil
		},
	}
}

func TestSendFriendRequest_Success(t *testing.T) {
	var created *models.FriendRequest
	friendRepo := &fakeFriendRepo{
		createRequest: func(ctx context.Context, request *models.FriendRequest) error {
			request.ID = 7
			created = request
			return nil
		},
	}
	svc := newFriendServiceForTest(friendRepo, existingUser(2))

	request, err := svc.SendRequest(context.Background(), &SendFriendRequestRequest{FromUserID: 1, ToUserID: 2})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, int64(1), request.FromUserID)
	assert.Equal(t, int64(2), request.ToUserID)
	assert.False(t, request.Accepted)
}

func TestSendFriendRequest_ToSelf(t *testing.T) {
	svc := newFriendServiceForTest(&fakeFriendRepo{}, existingUser(1))

	_, err := svc.SendRequest(context.Background(), &SendFriendRequestRequest{FromUserID: 1, ToUserID: 1})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestSendFriendRequest_Duplicate(t *testing.T) {
	friendRepo := &fakeFriendRepo{
		getRequestBetween: func(ctx context.Context, fromUserID, toUserID int64) (*models.FriendRequest, error) {
			if fromUserID == 1 && toUserID == 2 {
				return &models.FriendRequest{ID: 7, FromUserID: 1, ToUserID: 2}, nil
			}
			return nil, nil
		},
	}
	svc := newFriendServiceForTest(friendRepo, existingUser(2))

	_, err := svc.SendRequest(context.Background(), &SendFriendRequestRequest{FromUserID: 1, ToUserID: 2})
	require.Error(t, err)
	assert.True(t, IsConflictError(err))
	assert.Equal(t, "Friend request already sent", GetServiceError(err).Message)
}

func TestSendFriendRequest_ReversePending(t *testing.T) {
	friendRepo := &fakeFriendRepo{
		getRequestBetween: func(ctx context.Context, fromUserID, toUserID int64) (*models.FriendRequest, error) {
			if fromUserID == 2 && toUserID == 1 {
				return &models.FriendRequest{ID: 7, FromUserID: 2, ToUserID: 1}, nil
			}
			return nil, nil
		},
	}
	svc := newFriendServiceForTest(friendRepo, existingUser(2))

	_, err := svc.SendRequest(context.Background(), &SendFriendRequestRequest{FromUserID: 1, ToUserID: 2})
	require.Error(t, err)
	assert.True(t, IsConflictError(err))
	assert.Equal(t, "Friend request already sent", GetServiceError(err).Message)
}

func TestSendFriendRequest_ReverseAccepted(t *testing.T) {
	friendRepo := &fakeFriendRepo{
		getRequestBetween: func(ctx context.Context, fromUserID, toUserID int64) (*models.FriendRequest, error) {
			if fromUserID == 2 && toUserID == 1 {
				return &models.FriendRequest{ID: 7, FromUserID: 2, ToUserID: 1, Accepted: true}, nil
			}
			return nil, nil
		},
	}
	svc := newFriendServiceForTest(friendRepo, existingUser(2))

	_, err := svc.SendRequest(context.Background(), &SendFriendRequestRequest{FromUserID: 1, ToUserID: 2})
	require.Error(t, err)
	assert.True(t, IsConflictError(err))
	assert.Equal(t, "Friend request already accepted", GetServiceError(err).Message)
}

func TestAcceptRequest_InvalidAction(t *testing.T) {
	svc := newFriendServiceForTest(&fakeFriendRepo{}, existingUser(2))

	_, err := svc.AcceptRequest(context.Background(), &FriendRequestActionRequest{
		RequestID: 7,
		UserID:    2,
		Action:    "reject",
	})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Equal(t, "Invalid action", GetServiceError(err).Message)
}

func TestAcceptRequest_Success(t *testing.T) {
	friendRepo := &fakeFriendRepo{
		getRequestByID: func(ctx context.Context, id int64) (*models.FriendRequest, error) {
			return &models.FriendRequest{ID: 7, FromUserID: 1, ToUserID: 2}, nil
		},
		acceptRequest: func(ctx context.Context, requestID, recipientID int64) (*models.Friend, error) {
			assert.Equal(t, int64(7), requestID)
			assert.Equal(t, int64(2), recipientID)
			return &models.Friend{ID: 3, UserID: 2, FriendID: 1}, nil
		},
	}
	svc := newFriendServiceForTest(friendRepo, existingUser(2))

	friend, err := svc.AcceptRequest(context.Background(), &FriendRequestActionRequest{
		RequestID: 7,
		UserID:    2,
		Action:    "accept",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), friend.UserID)
	assert.Equal(t, int64(1), friend.FriendID)
}

func TestAcceptRequest_NotRecipient(t *testing.T) {
	friendRepo := &fakeFriendRepo{
		getRequestByID: func(ctx context.Context, id int64) (*models.FriendRequest, error) {
			return &models.FriendRequest{ID: 7, FromUserID: 1, ToUserID: 2}, nil
		},
	}
	svc := newFriendServiceForTest(friendRepo, existingUser(2))

	// The sender cannot accept their own request.
	_, err := svc.AcceptRequest(context.Background(), &FriendRequestActionRequest{
		RequestID: 7,
		UserID:    1,
		Action:    "accept",
	})
	require.Error(t, err)
	assert.True(t, IsNotFoundError(err))
	assert.Equal(t, "Friend request does not exist", GetServiceError(err).Message)
}

func TestDeclineRequest_RecipientOnly(t *testing.T) {
	friendRepo := &fakeFriendRepo{
		getRequestByID: func(ctx context.Context, id int64) (*models.FriendRequest, error) {
			return &models.FriendRequest{ID: 7, FromUserID: 1, ToUserID: 2}, nil
		},
	}
	svc := newFriendServiceForTest(friendRepo, existingUser(2))

	err := svc.DeclineRequest(context.Background(), 7, 1)
	require.Error(t, err)
	assert.True(t, IsNotFoundError(err))
}

func TestCancelRequest_EitherEndpoint(t *testing.T) {
	deleted := 0
	friendRepo := &fakeFriendRepo{
		getRequestByID: func(ctx context.Context, id int64) (*models.FriendRequest, error) {
			return &models.FriendRequest{ID: 7, FromUserID: 1, ToUserID: 2}, nil
		},
		deleteRequest: func(ctx context.Context, id int64) error {
			deleted++
			return nil
		},
	}
	svc := newFriendServiceForTest(friendRepo, existingUser(2))

	require.NoError(t, svc.CancelRequest(context.Background(), 7, 1))
	require.NoError(t, svc.CancelRequest(context.Background(), 7, 2))
	assert.Equal(t, 2, deleted)

	err := svc.CancelRequest(context.Background(), 7, 3)
	require.Error(t, err)
	assert.True(t, IsForbiddenError(err))
}

func TestUnfriend_EitherSideOfEdge(t *testing.T) {
	deleted := 0
	friendRepo := &fakeFriendRepo{
		getFriendByID: func(ctx context.Context, id int64) (*models.Friend, error) {
			return &models.Friend{ID: 3, UserID: 2, FriendID: 1}, nil
		},
		deleteFriend: func(ctx context.Context, id int64) error {
			deleted++
			return nil
		},
	}
	svc := newFriendServiceForTest(friendRepo, existingUser(2))

	require.NoError(t, svc.Unfriend(context.Background(), 3, 1))
	require.NoError(t, svc.Unfriend(context.Background(), 3, 2))
	assert.Equal(t, 2, deleted)
}

func TestUnfriend_MissingEdge(t *testing.T) {
	svc := newFriendServiceForTest(&fakeFriendRepo{}, existingUser(2))

	err := svc.Unfriend(context.Background(), 9, 1)
	require.Error(t, err)
	assert.True(t, IsNotFoundError(err))
	assert.Equal(t, "No friend with such id", GetServiceError(err).Message)
}

package services

import (
	"context"
	"time"

	"bookhub/internal/models"
)

// Function-field fakes for the repository interfaces. Tests set only the
// methods a scenario touches; unset methods return zero values.

type fakeUserRepo struct {
	getByID        func(ctx context.Context, id int64) (*models.User, error)
	getByUsername  func(ctx context.Context, username string) (*models.User, error)
	getByEmail     func(ctx context.Context, email string) (*models.User, error)
	create         func(ctx context.Context, user *models.User) error
	update         func(ctx context.Context, user *models.User) error
	delete         func(ctx context.Context, id int64) error
	setVerified    func(ctx context.Context, userID int64) error
	updatePassword func(ctx context.Context, userID int64, passwordHash string) error
	updateLastSeen func(ctx context.Context, userID int64) error
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	if f.create != nil {
		return f.create(ctx, user)
	}
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if f.getByID != nil {
		return f.getByID(ctx, id)
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if f.getByUsername != nil {
		return f.getByUsername(ctx, username)
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.getByEmail != nil {
		return f.getByEmail(ctx, email)
	}
	return nil, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	if f.update != nil {
		return f.update(ctx, user)
	}
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id int64) error {
	if f.delete != nil {
		return f.delete(ctx, id)
	}
	return nil
}

func (f *fakeUserRepo) SetVerified(ctx context.Context, userID int64) error {
	if f.setVerified != nil {
		return f.setVerified(ctx, userID)
	}
	return nil
}

func (f *fakeUserRepo) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	if f.updatePassword != nil {
		return f.updatePassword(ctx, userID, passwordHash)
	}
	return nil
}

func (f *fakeUserRepo) UpdateLastSeen(ctx context.Context, userID int64) error {
	if f.updateLastSeen != nil {
		return f.updateLastSeen(ctx, userID)
	}
	return nil
}

type fakeSessionRepo struct {
	create            func(ctx context.Context, session *models.Session) error
	getByToken        func(ctx context.Context, token string) (*models.Session, error)
	getByRefreshToken func(ctx context.Context, refreshToken string) (*models.Session, error)
	deleteByToken     func(ctx context.Context, token string) error
	deleteByUserID    func(ctx context.Context, userID int64) ([]string, error)
}

func (f *fakeSessionRepo) Create(ctx context.Context, session *models.Session) error {
	if f.create != nil {
		return f.create(ctx, session)
	}
	return nil
}

func (f *fakeSessionRepo) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	if f.getByToken != nil {
		return f.getByToken(ctx, token)
	}
	return nil, nil
}

func (f *fakeSessionRepo) GetByRefreshToken(ctx context.Context, refreshToken string) (*models.Session, error) {
	if f.getByRefreshToken != nil {
		return f.getByRefreshToken(ctx, refreshToken)
	}
	return nil, nil
}

func (f *fakeSessionRepo) DeleteByToken(ctx context.Context, token string) error {
	if f.deleteByToken != nil {
		return f.deleteByToken(ctx, token)
	}
	return nil
}

func (f *fakeSessionRepo) DeleteByUserID(ctx context.Context, userID int64) ([]string, error) {
	if f.deleteByUserID != nil {
		return f.deleteByUserID(ctx, userID)
	}
	return nil, nil
}

func (f *fakeSessionRepo) DeleteExpired(ctx context.Context) (int64, error) { return 0, nil }

type fakeTokenRepo struct {
	create  func(ctx context.Context, userID int64, token, purpose string, expiresAt time.Time) error
	consume func(ctx context.Context, token, purpose string) (int64, error)
}

func (f *fakeTokenRepo) Create(ctx context.Context, userID int64, token, purpose string, expiresAt time.Time) error {
	if f.create != nil {
		return f.create(ctx, userID, token, purpose, expiresAt)
	}
	return nil
}

func (f *fakeTokenRepo) Consume(ctx context.Context, token, purpose string) (int64, error) {
	if f.consume != nil {
		return f.consume(ctx, token, purpose)
	}
	return 0, nil
}

func (f *fakeTokenRepo) DeleteExpired(ctx context.Context) (int64, error) { return 0, nil }

type fakeBookRepo struct {
	create                    func(ctx context.Context, book *models.Book) error
	getByID                   func(ctx context.Context, id int64) (*models.Book, error)
	update                    func(ctx context.Context, book *models.Book) error
	delete                    func(ctx context.Context, id int64) error
	retrieveAndIncrementViews func(ctx context.Context, id int64) (*models.Book, error)
	listPublic                func(ctx context.Context, search, sortBy string, params models.PaginationParams) (*models.PaginatedResponse[*models.Book], error)
	listByOwner               func(ctx context.Context, ownerID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Book], error)
	listPublicByOwner         func(ctx context.Context, ownerID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Book], error)
}

func (f *fakeBookRepo) Create(ctx context.Context, book *models.Book) error {
	if f.create != nil {
		return f.create(ctx, book)
	}
	return nil
}

func (f *fakeBookRepo) GetByID(ctx context.Context, id int64) (*models.Book, error) {
	if f.getByID != nil {
		return f.getByID(ctx, id)
	}
	return nil, nil
}

func (f *fakeBookRepo) Update(ctx context.Context, book *models.Book) error {
	if f.update != nil {
		return f.update(ctx, book)
	}
	return nil
}

func (f *fakeBookRepo) Delete(ctx context.Context, id int64) error {
	if f.delete != nil {
		return f.delete(ctx, id)
	}
	return nil
}

func (f *fakeBookRepo) RetrieveAndIncrementViews(ctx context.Context, id int64) (*models.Book, error) {
	if f.retrieveAndIncrementViews != nil {
		return f.retrieveAndIncrementViews(ctx, id)
	}
	return nil, nil
}

func (f *fakeBookRepo) ListPublic(ctx context.Context, search, sortBy string, params models.PaginationParams) (*models.PaginatedResponse[*models.Book], error) {
	if f.listPublic != nil {
		return f.listPublic(ctx, search, sortBy, params)
	}
	return nil, nil
}

func (f *fakeBookRepo) ListByOwner(ctx context.Context, ownerID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Book], error) {
	if f.listByOwner != nil {
		return f.listByOwner(ctx, ownerID, params)
	}
	return nil, nil
}

func (f *fakeBookRepo) ListPublicByOwner(ctx context.Context, ownerID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Book], error) {
	if f.listPublicByOwner != nil {
		return f.listPublicByOwner(ctx, ownerID, params)
	}
	return nil, nil
}

type fakeCommentRepo struct {
	create               func(ctx context.Context, comment *models.Comment) error
	getByID              func(ctx context.Context, id int64) (*models.Comment, error)
	updateContent        func(ctx context.Context, id int64, content string) error
	delete               func(ctx context.Context, id int64) error
	listTopLevelByBook   func(ctx context.Context, bookID int64) ([]*models.Comment, error)
	listRepliesByParents func(ctx context.Context, parentIDs []int64) ([]*models.Comment, error)
}

func (f *fakeCommentRepo) Create(ctx context.Context, comment *models.Comment) error {
	if f.create != nil {
		return f.create(ctx, comment)
	}
	return nil
}

func (f *fakeCommentRepo) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	if f.getByID != nil {
		return f.getByID(ctx, id)
	}
	return nil, nil
}

func (f *fakeCommentRepo) UpdateContent(ctx context.Context, id int64, content string) error {
	if f.updateContent != nil {
		return f.updateContent(ctx, id, content)
	}
	return nil
}

func (f *fakeCommentRepo) Delete(ctx context.Context, id int64) error {
	if f.delete != nil {
		return f.delete(ctx, id)
	}
	return nil
}

func (f *fakeCommentRepo) ListTopLevelByBook(ctx context.Context, bookID int64) ([]*models.Comment, error) {
	if f.listTopLevelByBook != nil {
		return f.listTopLevelByBook(ctx, bookID)
	}
	return nil, nil
}

func (f *fakeCommentRepo) ListRepliesByParents(ctx context.Context, parentIDs []int64) ([]*models.Comment, error) {
	if f.listRepliesByParents != nil {
		return f.listRepliesByParents(ctx, parentIDs)
	}
	return nil, nil
}

type fakeRatingRepo struct {
	upsert              func(ctx context.Context, rating *models.Rating) error
	getByUserAndBook    func(ctx context.Context, userID, bookID int64) (*models.Rating, error)
	deleteByUserAndBook func(ctx context.Context, userID, bookID int64) error
	summary             func(ctx context.Context, bookID int64) (*models.RatingSummary, error)
}

func (f *fakeRatingRepo) Upsert(ctx context.Context, rating *models.Rating) error {
	if f.upsert != nil {
		return f.upsert(ctx, rating)
	}
	return nil
}

func (f *fakeRatingRepo) GetByUserAndBook(ctx context.Context, userID, bookID int64) (*models.Rating, error) {
	if f.getByUserAndBook != nil {
		return f.getByUserAndBook(ctx, userID, bookID)
	}
	return nil, nil
}

func (f *fakeRatingRepo) DeleteByUserAndBook(ctx context.Context, userID, bookID int64) error {
	if f.deleteByUserAndBook != nil {
		return f.deleteByUserAndBook(ctx, userID, bookID)
	}
	return nil
}

func (f *fakeRatingRepo) Summary(ctx context.Context, bookID int64) (*models.RatingSummary, error) {
	if f.summary != nil {
		return f.summary(ctx, bookID)
	}
	return nil, nil
}

type fakeFriendRepo struct {
	createRequest     func(ctx context.Context, request *models.FriendRequest) error
	getRequestByID    func(ctx context.Context, id int64) (*models.FriendRequest, error)
	getRequestBetween func(ctx context.Context, fromUserID, toUserID int64) (*models.FriendRequest, error)
	listIncoming      func(ctx context.Context, userID int64) ([]*models.FriendRequest, error)
	listOutgoing      func(ctx context.Context, userID int64) ([]*models.FriendRequest, error)
	deleteRequest     func(ctx context.Context, id int64) error
	acceptRequest     func(ctx context.Context, requestID, recipientID int64) (*models.Friend, error)
	getFriendByID     func(ctx context.Context, id int64) (*models.Friend, error)
	listFriends       func(ctx context.Context, userID int64) ([]*models.Friend, error)
	deleteFriend      func(ctx context.Context, id int64) error
	areFriends        func(ctx context.Context, userID, otherID int64) (bool, error)
}

func (f *fakeFriendRepo) CreateRequest(ctx context.Context, request *models.FriendRequest) error {
	if f.createRequest != nil {
		return f.createRequest(ctx, request)
	}
	return nil
}

func (f *fakeFriendRepo) GetRequestByID(ctx context.Context, id int64) (*models.FriendRequest, error) {
	if f.getRequestByID != nil {
		return f.getRequestByID(ctx, id)
	}
	return nil, nil
}

func (f *fakeFriendRepo) GetRequestBetween(ctx context.Context, fromUserID, toUserID int64) (*models.FriendRequest, error) {
	if f.getRequestBetween != nil {
		return f.getRequestBetween(ctx, fromUserID, toUserID)
	}
	return nil, nil
}

func (f *fakeFriendRepo) ListIncoming(ctx context.Context, userID int64) ([]*models.FriendRequest, error) {
	if f.listIncoming != nil {
		return f.listIncoming(ctx, userID)
	}
	return nil, nil
}

func (f *fakeFriendRepo) ListOutgoing(ctx context.Context, userID int64) ([]*models.FriendRequest, error) {
	if f.listOutgoing != nil {
		return f.listOutgoing(ctx, userID)
	}
	return nil, nil
}

func (f *fakeFriendRepo) DeleteRequest(ctx context.Context, id int64) error {
	if f.deleteRequest != nil {
		return f.deleteRequest(ctx, id)
	}
	return nil
}

func (f *fakeFriendRepo) AcceptRequest(ctx context.Context, requestID, recipientID int64) (*models.Friend, error) {
	if f.acceptRequest != nil {
		return f.acceptRequest(ctx, requestID, recipientID)
	}
	return nil, nil
}

func (f *fakeFriendRepo) GetFriendByID(ctx context.Context, id int64) (*models.Friend, error) {
	if f.getFriendByID != nil {
		return f.getFriendByID(ctx, id)
	}
	return nil, nil
}

func (f *fakeFriendRepo) ListFriends(ctx context.Context, userID int64) ([]*models.Friend, error) {
	if f.listFriends != nil {
		return f.listFriends(ctx, userID)
	}
	return nil, nil
}

func (f *fakeFriendRepo) DeleteFriend(ctx context.Context, id int64) error {
	if f.deleteFriend != nil {
		return f.deleteFriend(ctx, id)
	}
	return nil
}

func (f *fakeFriendRepo) AreFriends(ctx context.Context, userID, otherID int64) (bool, error) {
	if f.areFriends != nil {
		return f.areFriends(ctx, userID, otherID)
	}
	return false, nil
}

type fakeMessageRepo struct {
	create           func(ctx context.Context, message *models.Message) error
	listForUser      func(ctx context.Context, userID int64) ([]*models.Message, error)
	listConversation func(ctx context.Context, userID, otherID int64) ([]*models.Message, error)
	markRead         func(ctx context.Context, readerID, otherID int64) error
}

func (f *fakeMessageRepo) Create(ctx context.Context, message *models.Message) error {
	if f.create != nil {
		return f.create(ctx, message)
	}
	return nil
}

func (f *fakeMessageRepo) ListForUser(ctx context.Context, userID int64) ([]*models.Message, error) {
	if f.listForUser != nil {
		return f.listForUser(ctx, userID)
	}
	return nil, nil
}

func (f *fakeMessageRepo) ListConversation(ctx context.Context, userID, otherID int64) ([]*models.Message, error) {
	if f.listConversation != nil {
		return f.listConversation(ctx, userID, otherID)
	}
	return nil, nil
}

func (f *fakeMessageRepo) MarkRead(ctx context.Context, readerID, otherID int64) error {
	if f.markRead != nil {
		return f.markRead(ctx, readerID, otherID)
	}
	return nil
}

// fakeCache is an in-memory cache without TTL handling, enough for
// cache-aside assertions.
type fakeCache struct {
	entries map[string]interface{}
	sets    int
	deletes int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]interface{})}
}

func (c *fakeCache) Get(ctx context.Context, key string) (interface{}, bool) {
	value, ok := c.entries[key]
	return value, ok
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.entries[key] = value
	c.sets++
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, key string) error {
	delete(c.entries, key)
	c.deletes++
	return nil
}

func (c *fakeCache) Exists(ctx context.Context, key string) bool {
	_, ok := c.entries[key]
	return ok
}

func (c *fakeCache) Health(ctx context.Context) error { return nil }
func (c *fakeCache) Close() error                     { return nil }

package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/0xZumii/bleepblorp/internal/mocks"
	"github.com/0xZumii/bleepblorp/internal/models"
	"github.com/0xZumii/bleepblorp/internal/repositories"
	"github.com/0xZumii/bleepblorp/internal/ws"
)

var (
	zed = models.User{ID: "u-zed", ScreenName: "Zed", Online: true}
	moo = models.User{ID: "u-moo", ScreenName: "Moo", Online: true}
)

func setupBuddyRouter(handler *BuddyHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", zed.ID)
		c.Set("screenName", zed.ScreenName)
		c.Next()
	})
	r.GET("/buddies", handler.Snapshot)
	r.POST("/buddies/requests", handler.SendRequest)
	r.POST("/buddies/requests/accept", handler.AcceptRequest)
	r.POST("/buddies/requests/decline", handler.DeclineRequest)
	r.DELETE("/buddies/:screen_name", handler.RemoveFriend)
	return r
}

func expectSnapshots(friendRepo *mocks.FriendRepositoryMock, userIDs ...string) {
	for _, id := range userIDs {
		friendRepo.On("Snapshot", mock.Anything, id).
			Return(models.BuddySnapshot{Friends: []string{}, SentPending: []string{}, ReceivedPending: []string{}}, nil).Once()
	}
}

func TestBuddySnapshotSuccess(t *testing.T) {
	friendRepo := new(mocks.FriendRepositoryMock)
	handler := NewBuddyHandler(new(mocks.UserRepositoryMock), friendRepo, ws.NewHub(), nil)
	router := setupBuddyRouter(handler)

	friendRepo.On("Snapshot", mock.Anything, zed.ID).
		Return(models.BuddySnapshot{Friends: []string{"Moo"}, SentPending: []string{}, ReceivedPending: []string{}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/buddies", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var snap models.BuddySnapshot
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&snap))
	assert.Equal(t, []string{"Moo"}, snap.Friends)
	friendRepo.AssertExpectations(t)
}

func TestSendRequestSuccess(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	friendRepo := new(mocks.FriendRepositoryMock)
	handler := NewBuddyHandler(userRepo, friendRepo, ws.NewHub(), nil)
	router := setupBuddyRouter(handler)

	userRepo.On("GetUserByScreenName", mock.Anything, "Moo").Return(moo, nil).Once()
	friendRepo.On("AreFriends", mock.Anything, zed.ID, moo.ID).Return(false, nil).Once()
	friendRepo.On("HasPendingBetween", mock.Anything, zed.ID, moo.ID).Return(false, nil).Once()
	friendRepo.On("HasDeclined", mock.Anything, zed.ID, moo.ID).Return(false, nil).Once()
	friendRepo.On("CreateRequest", mock.Anything, zed, moo).
		Return(models.FriendRequest{ID: 1, FromID: zed.ID, ToID: moo.ID, Status: models.RequestPending}, nil).Once()
	expectSnapshots(friendRepo, zed.ID, moo.ID)

	req := httptest.NewRequest(http.MethodPost, "/buddies/requests", bytes.NewBufferString(`{"screen_name":"Moo"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	userRepo.AssertExpectations(t)
	friendRepo.AssertExpectations(t)
}

func TestSendRequestToSelf(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewBuddyHandler(userRepo, new(mocks.FriendRepositoryMock), ws.NewHub(), nil)
	router := setupBuddyRouter(handler)

	userRepo.On("GetUserByScreenName", mock.Anything, "Zed").Return(zed, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/buddies/requests", bytes.NewBufferString(`{"screen_name":"Zed"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	userRepo.AssertExpectations(t)
}

func TestSendRequestUnknownUser(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewBuddyHandler(userRepo, new(mocks.FriendRepositoryMock), ws.NewHub(), nil)
	router := setupBuddyRouter(handler)

	userRepo.On("GetUserByScreenName", mock.Anything, "Ghost").
		Return(models.User{}, repositories.ErrUserNotFound).Once()

	req := httptest.NewRequest(http.MethodPost, "/buddies/requests", bytes.NewBufferString(`{"screen_name":"Ghost"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	userRepo.AssertExpectations(t)
}

func TestSendRequestAlreadyFriends(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	friendRepo := new(mocks.FriendRepositoryMock)
	handler := NewBuddyHandler(userRepo, friendRepo, ws.NewHub(), nil)
	router := setupBuddyRouter(handler)

	userRepo.On("GetUserByScreenName", mock.Anything, "Moo").Return(moo, nil).Once()
	friendRepo.On("AreFriends", mock.Anything, zed.ID, moo.ID).Return(true, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/buddies/requests", bytes.NewBufferString(`{"screen_name":"Moo"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	friendRepo.AssertExpectations(t)
}

func TestSendRequestAlreadyPending(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	friendRepo := new(mocks.FriendRepositoryMock)
	handler := NewBuddyHandler(userRepo, friendRepo, ws.NewHub(), nil)
	router := setupBuddyRouter(handler)

	userRepo.On("GetUserByScreenName", mock.Anything, "Moo").Return(moo, nil).Once()
	friendRepo.On("AreFriends", mock.Anything, zed.ID, moo.ID).Return(false, nil).Once()
	friendRepo.On("HasPendingBetween", mock.Anything, zed.ID, moo.ID).Return(true, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/buddies/requests", bytes.NewBufferString(`{"screen_name":"Moo"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	friendRepo.AssertExpectations(t)
}

func TestSendRequestAfterDecline(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	friendRepo := new(mocks.FriendRepositoryMock)
	handler := NewBuddyHandler(userRepo, friendRepo, ws.NewHub(), nil)
	router := setupBuddyRouter(handler)

	userRepo.On("GetUserByScreenName", mock.Anything, "Moo").Return(moo, nil).Once()
	friendRepo.On("AreFriends", mock.Anything, zed.ID, moo.ID).Return(false, nil).Once()
	friendRepo.On("HasPendingBetween", mock.Anything, zed.ID, moo.ID).Return(false, nil).Once()
	friendRepo.On("HasDeclined", mock.Anything, zed.ID, moo.ID).Return(true, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/buddies/requests", bytes.NewBufferString(`{"screen_name":"Moo"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	friendRepo.AssertExpectations(t)
}

func TestAcceptRequestSuccess(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	friendRepo := new(mocks.FriendRepositoryMock)
	handler := NewBuddyHandler(userRepo, friendRepo, ws.NewHub(), nil)
	router := setupBuddyRouter(handler)

	userRepo.On("GetUserByScreenName", mock.Anything, "Moo").Return(moo, nil).Once()
	friendRepo.On("AcceptRequest", mock.Anything, moo.ID, zed.ID).Return(true, nil).Once()
	friendRepo.On("CreateFriendship", mock.Anything, zed, moo).
		Return(models.Friendship{ID: 1, User1ID: moo.ID, User2ID: zed.ID}, nil).Once()
	expectSnapshots(friendRepo, zed.ID, moo.ID)

	req := httptest.NewRequest(http.MethodPost, "/buddies/requests/accept", bytes.NewBufferString(`{"screen_name":"Moo"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	userRepo.AssertExpectations(t)
	friendRepo.AssertExpectations(t)
}

func TestAcceptRequestAlreadyAccepted(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	friendRepo := new(mocks.FriendRepositoryMock)
	handler := NewBuddyHandler(userRepo, friendRepo, ws.NewHub(), nil)
	router := setupBuddyRouter(handler)

	userRepo.On("GetUserByScreenName", mock.Anything, "Moo").Return(moo, nil).Once()
	friendRepo.On("AcceptRequest", mock.Anything, moo.ID, zed.ID).Return(false, nil).Once()
	friendRepo.On("AreFriends", mock.Anything, zed.ID, moo.ID).Return(true, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/buddies/requests/accept", bytes.NewBufferString(`{"screen_name":"Moo"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	friendRepo.AssertExpectations(t)
}

func TestAcceptRequestNoPending(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	friendRepo := new(mocks.FriendRepositoryMock)
	handler := NewBuddyHandler(userRepo, friendRepo, ws.NewHub(), nil)
	router := setupBuddyRouter(handler)

	userRepo.On("GetUserByScreenName", mock.Anything, "Moo").Return(moo, nil).Once()
	friendRepo.On("AcceptRequest", mock.Anything, moo.ID, zed.ID).Return(false, nil).Once()
	friendRepo.On("AreFriends", mock.Anything, zed.ID, moo.ID).Return(false, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/buddies/requests/accept", bytes.NewBufferString(`{"screen_name":"Moo"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	friendRepo.AssertExpectations(t)
}

func TestDeclineRequestSuccess(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	friendRepo := new(mocks.FriendRepositoryMock)
	handler := NewBuddyHandler(userRepo, friendRepo, ws.NewHub(), nil)
	router := setupBuddyRouter(handler)

	userRepo.On("GetUserByScreenName", mock.Anything, "Moo").Return(moo, nil).Once()
	friendRepo.On("DeclineRequest", mock.Anything, moo.ID, zed.ID).Return(true, nil).Once()
	expectSnapshots(friendRepo, zed.ID, moo.ID)

	req := httptest.NewRequest(http.MethodPost, "/buddies/requests/decline", bytes.NewBufferString(`{"screen_name":"Moo"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	friendRepo.AssertExpectations(t)
}

func TestDeclineRequestNoPending(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	friendRepo := new(mocks.FriendRepositoryMock)
	handler := NewBuddyHandler(userRepo, friendRepo, ws.NewHub(), nil)
	router := setupBuddyRouter(handler)

	userRepo.On("GetUserByScreenName", mock.Anything, "Moo").Return(moo, nil).Once()
	friendRepo.On("DeclineRequest", mock.Anything, moo.ID, zed.ID).Return(false, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/buddies/requests/decline", bytes.NewBufferString(`{"screen_name":"Moo"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	friendRepo.AssertExpectations(t)
}

func TestRemoveFriendSuccess(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	friendRepo := new(mocks.FriendRepositoryMock)
	handler := NewBuddyHandler(userRepo, friendRepo, ws.NewHub(), nil)
	router := setupBuddyRouter(handler)

	userRepo.On("GetUserByScreenName", mock.Anything, "Moo").Return(moo, nil).Once()
	friendRepo.On("AreFriends", mock.Anything, zed.ID, moo.ID).Return(true, nil).Once()
	friendRepo.On("RemoveFriendship", mock.Anything, zed.ID, moo.ID).Return(nil).Once()
	expectSnapshots(friendRepo, zed.ID, moo.ID)

	req := httptest.NewRequest(http.MethodDelete, "/buddies/Moo", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	friendRepo.AssertExpectations(t)
}

func TestRemoveFriendNotFriends(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	friendRepo := new(mocks.FriendRepositoryMock)
	handler := NewBuddyHandler(userRepo, friendRepo, ws.NewHub(), nil)
	router := setupBuddyRouter(handler)

	userRepo.On("GetUserByScreenName", mock.Anything, "Moo").Return(moo, nil).Once()
	friendRepo.On("AreFriends", mock.Anything, zed.ID, moo.ID).Return(false, nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/buddies/Moo", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	friendRepo.AssertExpectations(t)
}

func TestSendRequestFriendCheckError(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	friendRepo := new(mocks.FriendRepositoryMock)
	handler := NewBuddyHandler(userRepo, friendRepo, ws.NewHub(), nil)
	router := setupBuddyRouter(handler)

	userRepo.On("GetUserByScreenName", mock.Anything, "Moo").Return(moo, nil).Once()
	friendRepo.On("AreFriends", mock.Anything, zed.ID, moo.ID).Return(false, assert.AnError).Once()

	req := httptest.NewRequest(http.MethodPost, "/buddies/requests", bytes.NewBufferString(`{"screen_name":"Moo"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	friendRepo.AssertExpectations(t)
}

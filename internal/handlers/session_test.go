package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/0xZumii/bleepblorp/internal/mocks"
	"github.com/0xZumii/bleepblorp/internal/models"
	"github.com/0xZumii/bleepblorp/internal/repositories"
	"github.com/0xZumii/bleepblorp/internal/session"
	"github.com/0xZumii/bleepblorp/internal/ws"
)

func setupSessionRouter(userRepo *mocks.UserRepositoryMock, messageRepo *mocks.MessageRepositoryMock) *gin.Engine {
	manager := session.NewManager(userRepo, messageRepo, session.NewMemoryTokenStore(), ws.NewHub(), time.Minute)
	handler := NewSessionHandler(manager, nil)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/session", handler.SignOn)
	r.DELETE("/session", func(c *gin.Context) {
		c.Set("userID", zed.ID)
		c.Set("screenName", zed.ScreenName)
		c.Set("sessionToken", "tok")
		c.Next()
	}, handler.SignOff)
	return r
}

func TestSignOnSuccess(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	router := setupSessionRouter(userRepo, messageRepo)

	userRepo.On("CreateUser", mock.Anything, mock.Anything, "Zed").Return(zed, nil).Once()
	messageRepo.On("AppendMessage", mock.Anything, zed.ID, models.SystemAuthor, "*** Zed has entered BleepBlorp ***", true).
		Return(models.Message{ID: 1, AuthorName: models.SystemAuthor, IsSystem: true}, nil).Once()
	userRepo.On("ListOnline", mock.Anything).Return([]models.User{zed}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/session", bytes.NewBufferString(`{"screen_name":"Zed"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "Zed", resp.User.ScreenName)
	userRepo.AssertExpectations(t)
	messageRepo.AssertExpectations(t)
}

func TestSignOnTrimsScreenName(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	router := setupSessionRouter(userRepo, messageRepo)

	userRepo.On("CreateUser", mock.Anything, mock.Anything, "Zed").Return(zed, nil).Once()
	messageRepo.On("AppendMessage", mock.Anything, zed.ID, models.SystemAuthor, "*** Zed has entered BleepBlorp ***", true).
		Return(models.Message{ID: 1, IsSystem: true}, nil).Once()
	userRepo.On("ListOnline", mock.Anything).Return([]models.User{zed}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/session", bytes.NewBufferString(`{"screen_name":"  Zed  "}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	userRepo.AssertExpectations(t)
}

func TestSignOnMissingScreenName(t *testing.T) {
	router := setupSessionRouter(new(mocks.UserRepositoryMock), new(mocks.MessageRepositoryMock))

	req := httptest.NewRequest(http.MethodPost, "/session", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignOnScreenNameTooLong(t *testing.T) {
	router := setupSessionRouter(new(mocks.UserRepositoryMock), new(mocks.MessageRepositoryMock))

	req := httptest.NewRequest(http.MethodPost, "/session", bytes.NewBufferString(`{"screen_name":"ABCDEFGHIJKLMNOPQ"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignOnScreenNameTaken(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	router := setupSessionRouter(userRepo, new(mocks.MessageRepositoryMock))

	userRepo.On("CreateUser", mock.Anything, mock.Anything, "Zed").
		Return(models.User{}, repositories.ErrScreenNameTaken).Once()

	req := httptest.NewRequest(http.MethodPost, "/session", bytes.NewBufferString(`{"screen_name":"Zed"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	userRepo.AssertExpectations(t)
}

func TestSignOffAnnouncesDeparture(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	router := setupSessionRouter(userRepo, messageRepo)

	userRepo.On("SetOnline", mock.Anything, zed.ID, false).Return(nil).Once()
	messageRepo.On("AppendMessage", mock.Anything, zed.ID, models.SystemAuthor, "*** Zed has left BleepBlorp ***", true).
		Return(models.Message{ID: 2, IsSystem: true}, nil).Once()
	userRepo.On("ListOnline", mock.Anything).Return([]models.User{}, nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/session", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	userRepo.AssertExpectations(t)
	messageRepo.AssertExpectations(t)
}

package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"drift-board/internal/mocks"
	"drift-board/internal/models"
	"drift-board/internal/repositories"
	"drift-board/internal/ws"
)

func setupMemberRouter(handler *MemberHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(identityMiddleware)
	r.GET("/trips/:trip_id/members", handler.ListMembers)
	r.POST("/trips/:trip_id/members", handler.InviteMember)
	r.POST("/trips/:trip_id/members/accept", handler.AcceptInvite)
	r.DELETE("/trips/:trip_id/members/:user_id", handler.RemoveMember)
	return r
}

func acceptedMember(tripID int, userID, name, email string) models.TripMember {
	return models.TripMember{
		TripID:     tripID,
		UserID:     sql.NullString{String: userID, Valid: true},
		Name:       name,
		Email:      email,
		InvitedAt:  time.Now(),
		AcceptedAt: sql.NullTime{Time: time.Now(), Valid: true},
	}
}

func TestListMembersComputesStatus(t *testing.T) {
	memberRepo := new(mocks.MemberRepositoryMock)
	handler := NewMemberHandler(new(mocks.TripRepositoryMock), memberRepo, new(mocks.ActivityRepositoryMock), ws.NewHub(), nil)
	router := setupMemberRouter(handler)

	pending := models.TripMember{TripID: 7, Name: "Cleo", Email: "cleo@example.com", InvitedAt: time.Now()}
	memberRepo.On("IsMember", mock.Anything, 7, "u1").Return(true, nil).Once()
	memberRepo.On("ListMembers", mock.Anything, 7).
		Return([]models.TripMember{acceptedMember(7, "u1", "Ada", "ada@example.com"), pending}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/trips/7/members", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Members []struct {
			Name   string `json:"name"`
			Status string `json:"status"`
		} `json:"members"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Members, 2)
	require.Equal(t, models.MemberStatusOffline, resp.Members[0].Status)
	require.Equal(t, models.MemberStatusPending, resp.Members[1].Status)
}

func TestInviteMemberSuccess(t *testing.T) {
	memberRepo := new(mocks.MemberRepositoryMock)
	handler := NewMemberHandler(new(mocks.TripRepositoryMock), memberRepo, new(mocks.ActivityRepositoryMock), ws.NewHub(), nil)
	router := setupMemberRouter(handler)

	memberRepo.On("IsMember", mock.Anything, 7, "u1").Return(true, nil).Once()
	memberRepo.On("InviteMember", mock.Anything, 7, "Ben", "ben@example.com").
		Return(models.TripMember{TripID: 7, Name: "Ben", Email: "ben@example.com"}, nil).Once()

	body := bytes.NewBufferString(`{"name":"Ben","email":"ben@example.com"}`)
	req := httptest.NewRequest(http.MethodPost, "/trips/7/members", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	memberRepo.AssertExpectations(t)
}

func TestInviteMemberConflict(t *testing.T) {
	memberRepo := new(mocks.MemberRepositoryMock)
	handler := NewMemberHandler(new(mocks.TripRepositoryMock), memberRepo, new(mocks.ActivityRepositoryMock), ws.NewHub(), nil)
	router := setupMemberRouter(handler)

	memberRepo.On("IsMember", mock.Anything, 7, "u1").Return(true, nil).Once()
	memberRepo.On("InviteMember", mock.Anything, 7, "Ben", "ben@example.com").
		Return(models.TripMember{}, repositories.ErrAlreadyInvited).Once()

	body := bytes.NewBufferString(`{"name":"Ben","email":"ben@example.com"}`)
	req := httptest.NewRequest(http.MethodPost, "/trips/7/members", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestAcceptInviteRecordsJoinActivity(t *testing.T) {
	memberRepo := new(mocks.MemberRepositoryMock)
	activityRepo := new(mocks.ActivityRepositoryMock)
	handler := NewMemberHandler(new(mocks.TripRepositoryMock), memberRepo, activityRepo, ws.NewHub(), nil)
	router := setupMemberRouter(handler)

	memberRepo.On("AcceptInvite", mock.Anything, 7, "ada@example.com", "u1").
		Return(acceptedMember(7, "u1", "Ada", "ada@example.com"), nil).Once()
	activityRepo.On("CreateActivity", mock.Anything, 7, models.ActivityJoin, "u1", "Ada", "Ada joined the trip").
		Return(models.Activity{ID: 1, TripID: 7, Type: models.ActivityJoin}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/trips/7/members/accept", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	memberRepo.AssertExpectations(t)
	activityRepo.AssertExpectations(t)
}

func TestAcceptInviteNoPendingInvite(t *testing.T) {
	memberRepo := new(mocks.MemberRepositoryMock)
	handler := NewMemberHandler(new(mocks.TripRepositoryMock), memberRepo, new(mocks.ActivityRepositoryMock), ws.NewHub(), nil)
	router := setupMemberRouter(handler)

	memberRepo.On("AcceptInvite", mock.Anything, 7, "ada@example.com", "u1").
		Return(models.TripMember{}, repositories.ErrMemberNotFound).Once()

	req := httptest.NewRequest(http.MethodPost, "/trips/7/members/accept", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRemoveMemberSelf(t *testing.T) {
	memberRepo := new(mocks.MemberRepositoryMock)
	handler := NewMemberHandler(new(mocks.TripRepositoryMock), memberRepo, new(mocks.ActivityRepositoryMock), ws.NewHub(), nil)
	router := setupMemberRouter(handler)

	memberRepo.On("IsMember", mock.Anything, 7, "u1").Return(true, nil).Once()
	memberRepo.On("RemoveMember", mock.Anything, 7, "u1").Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/trips/7/members/u1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	memberRepo.AssertExpectations(t)
}

func TestRemoveMemberOnlyOwnerRemovesOthers(t *testing.T) {
	tripRepo := new(mocks.TripRepositoryMock)
	memberRepo := new(mocks.MemberRepositoryMock)
	handler := NewMemberHandler(tripRepo, memberRepo, new(mocks.ActivityRepositoryMock), ws.NewHub(), nil)
	router := setupMemberRouter(handler)

	memberRepo.On("IsMember", mock.Anything, 7, "u1").Return(true, nil).Once()
	tripRepo.On("GetTrip", mock.Anything, 7).Return(models.Trip{ID: 7, OwnerID: "someone-else"}, nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/trips/7/members/u2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

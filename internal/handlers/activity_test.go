package handlers

import (
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
)

func setupActivityRouter(handler *ActivityHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(identityMiddleware)
	r.GET("/trips/:trip_id/activities", handler.ListActivities)
	return r
}

func TestListActivitiesMostRecentFirst(t *testing.T) {
	memberRepo := new(mocks.MemberRepositoryMock)
	activityRepo := new(mocks.ActivityRepositoryMock)
	handler := NewActivityHandler(memberRepo, activityRepo)
	router := setupActivityRouter(handler)

	now := time.Now()
	memberRepo.On("IsMember", mock.Anything, 7, "u1").Return(true, nil).Once()
	activityRepo.On("ListActivities", mock.Anything, 7, defaultActivityLimit).
		Return([]models.Activity{
			{ID: 2, Type: models.ActivityBookmark, CreatedAt: now},
			{ID: 1, Type: models.ActivityJoin, CreatedAt: now.Add(-time.Minute)},
		}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/trips/7/activities", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Activities []models.Activity `json:"activities"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Activities, 2)
	require.True(t, resp.Activities[0].CreatedAt.After(resp.Activities[1].CreatedAt))
}

func TestListActivitiesCustomLimit(t *testing.T) {
	memberRepo := new(mocks.MemberRepositoryMock)
	activityRepo := new(mocks.ActivityRepositoryMock)
	handler := NewActivityHandler(memberRepo, activityRepo)
	router := setupActivityRouter(handler)

	memberRepo.On("IsMember", mock.Anything, 7, "u1").Return(true, nil).Once()
	activityRepo.On("ListActivities", mock.Anything, 7, 5).Return([]models.Activity{}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/trips/7/activities?limit=5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	activityRepo.AssertExpectations(t)
}

func TestListActivitiesClampsLimit(t *testing.T) {
	memberRepo := new(mocks.MemberRepositoryMock)
	activityRepo := new(mocks.ActivityRepositoryMock)
	handler := NewActivityHandler(memberRepo, activityRepo)
	router := setupActivityRouter(handler)

	memberRepo.On("IsMember", mock.Anything, 7, "u1").Return(true, nil).Once()
	activityRepo.On("ListActivities", mock.Anything, 7, maxActivityLimit).
		Return([]models.Activity{}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/trips/7/activities?limit=1000000", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	activityRepo.AssertExpectations(t)
}

func TestListActivitiesInvalidLimit(t *testing.T) {
	memberRepo := new(mocks.MemberRepositoryMock)
	handler := NewActivityHandler(memberRepo, new(mocks.ActivityRepositoryMock))
	router := setupActivityRouter(handler)

	memberRepo.On("IsMember", mock.Anything, 7, "u1").Return(true, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/trips/7/activities?limit=zero", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

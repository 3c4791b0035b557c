package mocks

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"drift-board/internal/models"
	"drift-board/internal/repositories"
	"drift-board/internal/sonar"
)

type QueryRepositoryMock struct {
	mock.Mock
}

func (m *QueryRepositoryMock) CreateQuery(ctx context.Context, userID, rawQuery, source, status string, data json.RawMessage) (models.Query, error) {
	args := m.Called(ctx, userID, rawQuery, source, status, data)
	var query models.Query
	if val := args.Get(0); val != nil {
		query = val.(models.Query)
	}
	return query, args.Error(1)
}

func (m *QueryRepositoryMock) UpdateQueryResult(ctx context.Context, queryID int, status string, data json.RawMessage) error {
	args := m.Called(ctx, queryID, status, data)
	return args.Error(0)
}

func (m *QueryRepositoryMock) GetQuery(ctx context.Context, queryID int) (models.Query, error) {
	args := m.Called(ctx, queryID)
	var query models.Query
	if val := args.Get(0); val != nil {
		query = val.(models.Query)
	}
	return query, args.Error(1)
}

func (m *QueryRepositoryMock) ListQueries(ctx context.Context, userID string) ([]models.Query, error) {
	args := m.Called(ctx, userID)
	var queries []models.Query
	if val := args.Get(0); val != nil {
		queries = val.([]models.Query)
	}
	return queries, args.Error(1)
}

type TripRepositoryMock struct {
	mock.Mock
}

func (m *TripRepositoryMock) CreateTrip(ctx context.Context, ownerID, ownerName, ownerEmail, title, destination string, queryID *int) (models.Trip, error) {
	args := m.Called(ctx, ownerID, ownerName, ownerEmail, title, destination, queryID)
	var trip models.Trip
	if val := args.Get(0); val != nil {
		trip = val.(models.Trip)
	}
	return trip, args.Error(1)
}

func (m *TripRepositoryMock) GetTrip(ctx context.Context, tripID int) (models.Trip, error) {
	args := m.Called(ctx, tripID)
	var trip models.Trip
	if val := args.Get(0); val != nil {
		trip = val.(models.Trip)
	}
	return trip, args.Error(1)
}

func (m *TripRepositoryMock) ListTripsForUser(ctx context.Context, userID string) ([]models.Trip, error) {
	args := m.Called(ctx, userID)
	var trips []models.Trip
	if val := args.Get(0); val != nil {
		trips = val.([]models.Trip)
	}
	return trips, args.Error(1)
}

type MemberRepositoryMock struct {
	mock.Mock
}

func (m *MemberRepositoryMock) InviteMember(ctx context.Context, tripID int, name, email string) (models.TripMember, error) {
	args := m.Called(ctx, tripID, name, email)
	var member models.TripMember
	if val := args.Get(0); val != nil {
		member = val.(models.TripMember)
	}
	return member, args.Error(1)
}

func (m *MemberRepositoryMock) AcceptInvite(ctx context.Context, tripID int, email, userID string) (models.TripMember, error) {
	args := m.Called(ctx, tripID, email, userID)
	var member models.TripMember
	if val := args.Get(0); val != nil {
		member = val.(models.TripMember)
	}
	return member, args.Error(1)
}

func (m *MemberRepositoryMock) ListMembers(ctx context.Context, tripID int) ([]models.TripMember, error) {
	args := m.Called(ctx, tripID)
	var members []models.TripMember
	if val := args.Get(0); val != nil {
		members = val.([]models.TripMember)
	}
	return members, args.Error(1)
}

func (m *MemberRepositoryMock) RemoveMember(ctx context.Context, tripID int, userID string) error {
	args := m.Called(ctx, tripID, userID)
	return args.Error(0)
}

func (m *MemberRepositoryMock) IsMember(ctx context.Context, tripID int, userID string) (bool, error) {
	args := m.Called(ctx, tripID, userID)
	return args.Bool(0), args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, tripID int, userID, role, content string) (models.ChatMessage, error) {
	args := m.Called(ctx, tripID, userID, role, content)
	var msg models.ChatMessage
	if val := args.Get(0); val != nil {
		msg = val.(models.ChatMessage)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListMessages(ctx context.Context, tripID int) ([]models.ChatMessage, error) {
	args := m.Called(ctx, tripID)
	var msgs []models.ChatMessage
	if val := args.Get(0); val != nil {
		msgs = val.([]models.ChatMessage)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) RecentMessages(ctx context.Context, tripID int, limit int) ([]models.ChatMessage, error) {
	args := m.Called(ctx, tripID, limit)
	var msgs []models.ChatMessage
	if val := args.Get(0); val != nil {
		msgs = val.([]models.ChatMessage)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) GetMessage(ctx context.Context, messageID int) (models.ChatMessage, error) {
	args := m.Called(ctx, messageID)
	var msg models.ChatMessage
	if val := args.Get(0); val != nil {
		msg = val.(models.ChatMessage)
	}
	return msg, args.Error(1)
}

type ItineraryRepositoryMock struct {
	mock.Mock
}

func (m *ItineraryRepositoryMock) CreateChoice(ctx context.Context, tripID int, userID string, messageID int, payload json.RawMessage) (models.ItineraryChoice, error) {
	args := m.Called(ctx, tripID, userID, messageID, payload)
	var choice models.ItineraryChoice
	if val := args.Get(0); val != nil {
		choice = val.(models.ItineraryChoice)
	}
	return choice, args.Error(1)
}

func (m *ItineraryRepositoryMock) ListChoices(ctx context.Context, tripID int) ([]models.ItineraryChoice, error) {
	args := m.Called(ctx, tripID)
	var choices []models.ItineraryChoice
	if val := args.Get(0); val != nil {
		choices = val.([]models.ItineraryChoice)
	}
	return choices, args.Error(1)
}

func (m *ItineraryRepositoryMock) SaveItinerary(ctx context.Context, tripID int, title string, days int, plan json.RawMessage, createdBy string) (models.Itinerary, error) {
	args := m.Called(ctx, tripID, title, days, plan, createdBy)
	var itinerary models.Itinerary
	if val := args.Get(0); val != nil {
		itinerary = val.(models.Itinerary)
	}
	return itinerary, args.Error(1)
}

func (m *ItineraryRepositoryMock) LatestItinerary(ctx context.Context, tripID int) (models.Itinerary, error) {
	args := m.Called(ctx, tripID)
	var itinerary models.Itinerary
	if val := args.Get(0); val != nil {
		itinerary = val.(models.Itinerary)
	}
	return itinerary, args.Error(1)
}

type BookmarkRepositoryMock struct {
	mock.Mock
}

func (m *BookmarkRepositoryMock) CreateBookmark(ctx context.Context, tripID int, userID, url, title, snippet string) (models.Bookmark, error) {
	args := m.Called(ctx, tripID, userID, url, title, snippet)
	var bookmark models.Bookmark
	if val := args.Get(0); val != nil {
		bookmark = val.(models.Bookmark)
	}
	return bookmark, args.Error(1)
}

func (m *BookmarkRepositoryMock) ListBookmarks(ctx context.Context, tripID int) ([]models.Bookmark, error) {
	args := m.Called(ctx, tripID)
	var bookmarks []models.Bookmark
	if val := args.Get(0); val != nil {
		bookmarks = val.([]models.Bookmark)
	}
	return bookmarks, args.Error(1)
}

func (m *BookmarkRepositoryMock) DeleteBookmark(ctx context.Context, tripID, bookmarkID int) error {
	args := m.Called(ctx, tripID, bookmarkID)
	return args.Error(0)
}

type ActivityRepositoryMock struct {
	mock.Mock
}

func (m *ActivityRepositoryMock) CreateActivity(ctx context.Context, tripID int, activityType, userID, userName, content string) (models.Activity, error) {
	args := m.Called(ctx, tripID, activityType, userID, userName, content)
	var activity models.Activity
	if val := args.Get(0); val != nil {
		activity = val.(models.Activity)
	}
	return activity, args.Error(1)
}

func (m *ActivityRepositoryMock) ListActivities(ctx context.Context, tripID int, limit int) ([]models.Activity, error) {
	args := m.Called(ctx, tripID, limit)
	var activities []models.Activity
	if val := args.Get(0); val != nil {
		activities = val.([]models.Activity)
	}
	return activities, args.Error(1)
}

type SonarClientMock struct {
	mock.Mock
}

func (m *SonarClientMock) Complete(ctx context.Context, req sonar.CompletionRequest) (string, sonar.Usage, error) {
	args := m.Called(ctx, req)
	var usage sonar.Usage
	if val := args.Get(1); val != nil {
		usage = val.(sonar.Usage)
	}
	return args.String(0), usage, args.Error(2)
}

var _ repositories.QueryRepository = (*QueryRepositoryMock)(nil)
var _ repositories.TripRepository = (*TripRepositoryMock)(nil)
var _ repositories.MemberRepository = (*MemberRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.ItineraryRepository = (*ItineraryRepositoryMock)(nil)
var _ repositories.BookmarkRepository = (*BookmarkRepositoryMock)(nil)
var _ repositories.ActivityRepository = (*ActivityRepositoryMock)(nil)
var _ sonar.Client = (*SonarClientMock)(nil)

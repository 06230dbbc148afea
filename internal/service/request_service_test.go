package service

import (
	"context"
	"testing"

	"lendhub/internal/database"
	"lendhub/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestRequestService(repo *mockRepo) *RequestService {
	logger := zerolog.Nop()
	return NewRequestService(repo, &logger)
}

func TestCreateRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestRequestService(repo)
		repo.On("GetUserByID", ctx, int64(1)).Return(testUser(1), nil)
		repo.On("CreateRequest", ctx, mock.AnythingOfType("*models.ItemRequest")).Run(func(args mock.Arguments) {
			args.Get(1).(*models.ItemRequest).ID = 7
		}).Return(nil)

		request, err := svc.CreateRequest(ctx, 1, CreateRequestInput{Description: "need a drill"})
		require.NoError(t, err)
		assert.Equal(t, int64(7), request.ID)
		assert.NotNil(t, request.Items)
		assert.Empty(t, request.Items)
	})

	t.Run("BlankDescription", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestRequestService(repo)
		repo.On("GetUserByID", ctx, int64(1)).Return(testUser(1), nil)

		_, err := svc.CreateRequest(ctx, 1, CreateRequestInput{Description: " "})
		assert.ErrorIs(t, err, ErrBlankField)
	})

	t.Run("RequesterNotFound", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestRequestService(repo)
		repo.On("GetUserByID", ctx, int64(99)).Return(nil, database.ErrUserNotFound)

		_, err := svc.CreateRequest(ctx, 99, CreateRequestInput{Description: "need a drill"})
		assert.ErrorIs(t, err, database.ErrUserNotFound)
	})
}

func TestGetRequest_ItemEnrichment(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepo)
	svc := newTestRequestService(repo)

	request := &models.ItemRequest{ID: 7, Description: "need a drill", RequesterID: 1}
	answer := testItem(5, 2, true)
	answer.RequestID = int64Ptr(7)

	repo.On("GetUserByID", ctx, int64(1)).Return(testUser(1), nil)
	repo.On("GetRequestByID", ctx, int64(7)).Return(request, nil)
	repo.On("GetItemsByRequestID", ctx, int64(7)).Return([]*models.Item{answer}, nil)

	got, err := svc.GetRequest(ctx, 1, 7)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, int64(5), got.Items[0].ID)
}

func TestGetOtherRequests(t *testing.T) {
	ctx := context.Background()

	t.Run("ExcludesCallerAndPages", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestRequestService(repo)

		other := &models.ItemRequest{ID: 8, Description: "need a saw", RequesterID: 2}
		repo.On("GetUserByID", ctx, int64(1)).Return(testUser(1), nil)
		repo.On("GetRequestsExcluding", ctx, int64(1), 10, 0).Return([]*models.ItemRequest{other}, nil)
		repo.On("GetItemsByRequestID", ctx, int64(8)).Return([]*models.Item{}, nil)

		requests, err := svc.GetOtherRequests(ctx, 1, 0, 10)
		require.NoError(t, err)
		require.Len(t, requests, 1)
		assert.Equal(t, int64(8), requests[0].ID)
		repo.AssertExpectations(t)
	})

	t.Run("InvalidPaging", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestRequestService(repo)
		repo.On("GetUserByID", ctx, int64(1)).Return(testUser(1), nil)

		_, err := svc.GetOtherRequests(ctx, 1, -1, 10)
		assert.ErrorIs(t, err, ErrInvalidPaging)
	})
}

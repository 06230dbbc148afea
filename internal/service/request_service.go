package service

import (
	"context"
	"strings"

	"lendhub/internal/domain"
	"lendhub/internal/models"

	"github.com/rs/zerolog"
)

type CreateRequestInput struct {
	Description string `json:"description"`
}

// RequestService manages item requests: wish-list entries other users can
// answer by publishing items that reference the request.
type RequestService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewRequestService(repo domain.Repository, logger *zerolog.Logger) *RequestService {
	return &RequestService{repo: repo, logger: logger}
}

func (s *RequestService) CreateRequest(ctx context.Context, requesterID int64, input CreateRequestInput) (*models.ItemRequest, error) {
	if _, err := s.repo.GetUserByID(ctx, requesterID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, ErrBlankField
	}

	request := &models.ItemRequest{
		Description: input.Description,
		RequesterID: requesterID,
	}
	if err := s.repo.CreateRequest(ctx, request); err != nil {
		return nil, err
	}
	request.Items = []models.Item{}
	return request, nil
}

func (s *RequestService) GetRequest(ctx context.Context, requesterID, requestID int64) (*models.ItemRequest, error) {
	if _, err := s.repo.GetUserByID(ctx, requesterID); err != nil {
		return nil, err
	}
	request, err := s.repo.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := s.attachItems(ctx, request); err != nil {
		return nil, err
	}
	return request, nil
}

func (s *RequestService) GetRequestsByRequester(ctx context.Context, requesterID int64) ([]*models.ItemRequest, error) {
	if _, err := s.repo.GetUserByID(ctx, requesterID); err != nil {
		return nil, err
	}
	requests, err := s.repo.GetRequestsByRequester(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	for _, request := range requests {
		if err := s.attachItems(ctx, request); err != nil {
			return nil, err
		}
	}
	return requests, nil
}

// GetOtherRequests pages through requests opened by everyone except the
// caller, so owners can browse what they might lend out.
func (s *RequestService) GetOtherRequests(ctx context.Context, requesterID int64, from, size int) ([]*models.ItemRequest, error) {
	if _, err := s.repo.GetUserByID(ctx, requesterID); err != nil {
		return nil, err
	}
	limit, offset, err := pageOffset(from, size)
	if err != nil {
		return nil, err
	}
	requests, err := s.repo.GetRequestsExcluding(ctx, requesterID, limit, offset)
	if err != nil {
		return nil, err
	}
	for _, request := range requests {
		if err := s.attachItems(ctx, request); err != nil {
			return nil, err
		}
	}
	return requests, nil
}

func (s *RequestService) attachItems(ctx context.Context, request *models.ItemRequest) error {
	items, err := s.repo.GetItemsByRequestID(ctx, request.ID)
	if err != nil {
		return err
	}
	request.Items = make([]models.Item, 0, len(items))
	for _, item := range items {
		request.Items = append(request.Items, *item)
	}
	return nil
}

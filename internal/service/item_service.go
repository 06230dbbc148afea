package service

import (
	"context"
	"sort"
	"strings"

	"lendhub/internal/domain"
	"lendhub/internal/models"

	"github.com/rs/zerolog"
)

type CreateItemInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   *bool  `json:"available"`
	RequestID   *int64 `json:"request_id"`
}

// UpdateItemInput uses pointers so absent fields keep their stored value.
type UpdateItemInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
}

// ItemDetails is an item as shown to a requester: comments always, the
// adjacent approved bookings only when the requester owns the item.
type ItemDetails struct {
	*models.Item
	LastBooking *models.Booking   `json:"last_booking,omitempty"`
	NextBooking *models.Booking   `json:"next_booking,omitempty"`
	Comments    []*models.Comment `json:"comments"`
}

type ItemService struct {
	repo     domain.Repository
	bookings *BookingService
	logger   *zerolog.Logger
}

func NewItemService(repo domain.Repository, bookings *BookingService, logger *zerolog.Logger) *ItemService {
	return &ItemService{
		repo:     repo,
		bookings: bookings,
		logger:   logger,
	}
}

func (s *ItemService) CreateItem(ctx context.Context, ownerID int64, input CreateItemInput) (*models.Item, error) {
	if _, err := s.repo.GetUserByID(ctx, ownerID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Description) == "" || input.Available == nil {
		return nil, ErrBlankField
	}
	if input.RequestID != nil {
		if _, err := s.repo.GetRequestByID(ctx, *input.RequestID); err != nil {
			return nil, err
		}
	}

	item := &models.Item{
		Name:        input.Name,
		Description: input.Description,
		Available:   *input.Available,
		OwnerID:     ownerID,
		RequestID:   input.RequestID,
	}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *ItemService) GetItem(ctx context.Context, requesterID, itemID int64) (*ItemDetails, error) {
	if _, err := s.repo.GetUserByID(ctx, requesterID); err != nil {
		return nil, err
	}
	item, err := s.repo.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return s.details(ctx, item, requesterID == item.OwnerID)
}

func (s *ItemService) UpdateItem(ctx context.Context, ownerID, itemID int64, input UpdateItemInput) (*models.Item, error) {
	if _, err := s.repo.GetUserByID(ctx, ownerID); err != nil {
		return nil, err
	}
	item, err := s.repo.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != ownerID {
		return nil, ErrAccessDenied
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrBlankField
		}
		item.Name = *input.Name
	}
	if input.Description != nil {
		if strings.TrimSpace(*input.Description) == "" {
			return nil, ErrBlankField
		}
		item.Description = *input.Description
	}
	if input.Available != nil {
		item.Available = *input.Available
	}

	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *ItemService) DeleteItem(ctx context.Context, ownerID, itemID int64) error {
	if _, err := s.repo.GetUserByID(ctx, ownerID); err != nil {
		return err
	}
	item, err := s.repo.GetItemByID(ctx, itemID)
	if err != nil {
		return err
	}
	if item.OwnerID != ownerID {
		return ErrAccessDenied
	}
	return s.repo.DeleteItem(ctx, itemID)
}

// GetItemsByOwner lists the owner's items enriched with bookings and
// comments, ordered by the next approved booking's start time; items with no
// upcoming booking sort last.
func (s *ItemService) GetItemsByOwner(ctx context.Context, ownerID int64, from, size int) ([]*ItemDetails, error) {
	if _, err := s.repo.GetUserByID(ctx, ownerID); err != nil {
		return nil, err
	}
	limit, offset, err := pageOffset(from, size)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.GetItemsByOwner(ctx, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}

	details := make([]*ItemDetails, 0, len(items))
	for _, item := range items {
		d, err := s.details(ctx, item, true)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}

	sort.SliceStable(details, func(i, j int) bool {
		a, b := details[i].NextBooking, details[j].NextBooking
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Start.Before(b.Start)
		}
	})
	return details, nil
}

func (s *ItemService) SearchItems(ctx context.Context, requesterID int64, text string, from, size int) ([]*models.Item, error) {
	if _, err := s.repo.GetUserByID(ctx, requesterID); err != nil {
		return nil, err
	}
	limit, offset, err := pageOffset(from, size)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return []*models.Item{}, nil
	}
	return s.repo.SearchItems(ctx, text, limit, offset)
}

func (s *ItemService) details(ctx context.Context, item *models.Item, isOwner bool) (*ItemDetails, error) {
	comments, err := s.repo.GetCommentsByItem(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	d := &ItemDetails{Item: item, Comments: comments}
	if isOwner {
		last, next, err := s.bookings.LastNextBookings(ctx, item.ID)
		if err != nil {
			return nil, err
		}
		d.LastBooking = last
		d.NextBooking = next
	}
	return d, nil
}

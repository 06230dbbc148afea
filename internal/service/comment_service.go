package service

import (
	"context"
	"strings"
	"time"

	"lendhub/internal/domain"
	"lendhub/internal/events"
	"lendhub/internal/models"

	"github.com/rs/zerolog"
)

type CreateCommentInput struct {
	Text string `json:"text"`
}

// CommentService lets past bookers leave feedback on an item. Authorship is
// gated on at least one booking of the item that has already ended.
type CommentService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewCommentService(repo domain.Repository, eventBus domain.EventPublisher, logger *zerolog.Logger) *CommentService {
	return &CommentService{repo: repo, eventBus: eventBus, logger: logger}
}

func (s *CommentService) AddComment(ctx context.Context, authorID, itemID int64, input CreateCommentInput) (*models.Comment, error) {
	author, err := s.repo.GetUserByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.GetItemByID(ctx, itemID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Text) == "" {
		return nil, ErrBlankField
	}

	completed, err := s.repo.HasCompletedBooking(ctx, authorID, itemID, time.Now())
	if err != nil {
		return nil, err
	}
	if !completed {
		return nil, ErrNoCompletedBooking
	}

	comment := &models.Comment{
		ItemID:   itemID,
		AuthorID: authorID,
		Text:     input.Text,
	}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	comment.AuthorName = author.Name

	if s.eventBus != nil {
		payload := events.CommentEventPayload{CommentID: comment.ID, ItemID: itemID, AuthorID: authorID}
		if err := s.eventBus.PublishJSON(events.EventCommentAdded, payload); err != nil {
			s.logger.Error().Err(err).Int64("comment_id", comment.ID).Msg("publish event error")
		}
	}
	return comment, nil
}

func (s *CommentService) GetCommentsByItem(ctx context.Context, itemID int64) ([]*models.Comment, error) {
	return s.repo.GetCommentsByItem(ctx, itemID)
}

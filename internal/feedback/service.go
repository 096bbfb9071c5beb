package feedback

import (
	"context"

	"ms-booking/internal/apperr"
	"ms-booking/internal/models"
)

type DBLayer interface {
	HasBookingForEvent(ctx context.Context, userID, eventID int64) (bool, error)
	UpsertFeedback(ctx context.Context, fb models.Feedback) error
	ListFeedbackByUser(ctx context.Context, userID int64) ([]models.FeedbackWithEvent, error)
}

type Service struct {
	DB DBLayer
}

func NewService(db DBLayer) *Service {
	return &Service{DB: db}
}

// Submit validates and upserts one user's feedback for an event. Only
// attendees (users holding a booking for a ticket of the event) may
// write; everyone else gets ErrForbidden. Resubmission replaces the
// previous rating and comments.
func (s *Service) Submit(ctx context.Context, userID int64, req models.FeedbackRequest) error {
	if req.EventID == 0 || req.Rating == 0 {
		return apperr.ErrInvalidArgument
	}
	if req.Rating < 1 || req.Rating > 5 {
		return apperr.ErrInvalidArgument
	}

	attended, err := s.DB.HasBookingForEvent(ctx, userID, req.EventID)
	if err != nil {
		return err
	}
	if !attended {
		return apperr.ErrForbidden
	}

	return s.DB.UpsertFeedback(ctx, models.Feedback{
		UserID:   userID,
		EventID:  req.EventID,
		Rating:   req.Rating,
		Comments: req.Comments,
	})
}

func (s *Service) ListByUser(ctx context.Context, userID int64) ([]models.FeedbackWithEvent, error) {
	return s.DB.ListFeedbackByUser(ctx, userID)
}

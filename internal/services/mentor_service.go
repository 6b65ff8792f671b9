package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/mentorbridge/mentorbridge-api/internal/models"
	pkgerrors "github.com/mentorbridge/mentorbridge-api/pkg/errors"
)

// MentorService handles mentor profile reads
type MentorService struct {
	mentorRepo MentorRepositoryInterface
}

// NewMentorService creates a new MentorService
func NewMentorService(mentorRepo MentorRepositoryInterface) *MentorService {
	return &MentorService{mentorRepo: mentorRepo}
}

// GetMentorByID returns a mentor profile with its aggregate stats
func (s *MentorService) GetMentorByID(ctx context.Context, id string) (*models.Mentor, error) {
	mentor, err := s.mentorRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return nil, ErrMentorNotFound
		}
		return nil, fmt.Errorf("failed to fetch mentor: %w", err)
	}

	if !mentor.IsVisible {
		return nil, ErrMentorNotFound
	}

	return mentor, nil
}

// GetMentorInternal returns a mentor for server-to-server callers, including
// profiles hidden from the public listing.
func (s *MentorService) GetMentorInternal(ctx context.Context, id string) (*models.Mentor, error) {
	mentor, err := s.mentorRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return nil, ErrMentorNotFound
		}
		return nil, fmt.Errorf("failed to fetch mentor: %w", err)
	}

	return mentor, nil
}

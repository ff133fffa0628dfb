// Package rating maintains counselor aggregate ratings from client
// feedback on completed appointments.
package rating

import (
	"github.com/Suryathangaraj2003/consulting/internal/apperr"
	"github.com/Suryathangaraj2003/consulting/internal/models"
	"github.com/Suryathangaraj2003/consulting/internal/storage"
)

// Service applies appointment feedback to the counselor's profile.
type Service struct {
	Storage storage.Storage
}

// NewService creates a new rating service.
func NewService(s storage.Storage) *Service {
	return &Service{Storage: s}
}

// Apply records the client's rating on the appointment and folds it into
// the counselor's running average and session count. Only completed
// appointments may be rated, and only once.
func (s *Service) Apply(appt *models.Appointment, score float64, feedback string) error {
	if score < 1 || score > 5 {
		return apperr.Validation("rating", "must be between 1 and 5")
	}
	if appt.Status != models.StatusCompleted {
		return apperr.ErrInvalidState
	}
	if appt.Rating != 0 {
		return apperr.ErrInvalidState
	}

	appt.Rating = score
	appt.Feedback = feedback
	if err := s.Storage.SaveAppointment(appt); err != nil {
		return err
	}

	counselor, err := s.Storage.GetUserByID(appt.CounselorID)
	if err != nil {
		return err
	}

	total := float64(counselor.TotalSessions)
	counselor.Rating = (counselor.Rating*total + score) / (total + 1)
	counselor.TotalSessions++
	return s.Storage.SaveUser(counselor)
}

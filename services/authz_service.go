package services

import (
	"context"
	"fmt"

	"github.com/sporthall/tournament-core/models"
	"github.com/sporthall/tournament-core/repositories"
)

// AuthzService answers the role-authorization question for fixture updates:
// may this actor moderate this sport, at this venue?
type AuthzService interface {
	CanModerateFixture(ctx context.Context, actor *models.User, sportID int, venueID *int) error
}

type authzService struct {
	userRepo repositories.UserRepository
}

func NewAuthzService(userRepo repositories.UserRepository) AuthzService {
	return &authzService{userRepo: userRepo}
}

func (s *authzService) CanModerateFixture(ctx context.Context, actor *models.User, sportID int, venueID *int) error {
	if actor == nil {
		return ErrUnauthorized
	}

	switch actor.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleModerator:
		// fall through to assignment checks
	default:
		return ErrPermissionDenied
	}

	assignments, err := s.userRepo.ListAssignments(ctx, actor.ID)
	if err != nil {
		return fmt.Errorf("load assignments for user %d: %w", actor.ID, err)
	}

	sportCovered := false
	for _, a := range assignments {
		if a.SportID != sportID {
			continue
		}
		sportCovered = true
		// A nil assignment venue covers every venue; a nil fixture venue
		// needs no venue check at all.
		if a.VenueID == nil || venueID == nil || *a.VenueID == *venueID {
			return nil
		}
	}

	if !sportCovered {
		return ErrSportNotAssigned
	}
	return ErrVenueNotAssigned
}

package services

import (
	"context"
	"fmt"

	"ringwin/models"
)

func (s *Service) Competitions(ctx context.Context) ([]models.Competition, error) {
	return s.store.ActiveCompetitions(ctx)
}

func (s *Service) Competition(ctx context.Context, id uint) (*models.Competition, error) {
	return s.store.Competition(ctx, id)
}

// CreateCompetition seeds a competition. Admin-only; games must carry a
// parseable prize table so settlement has something to validate against.
func (s *Service) CreateCompetition(ctx context.Context, comp *models.Competition) error {
	switch comp.Type {
	case models.CompetitionInstant, models.CompetitionSpin, models.CompetitionScratch:
	default:
		return fmt.Errorf("%w: unknown competition type %q", ErrValidation, comp.Type)
	}
	if comp.TicketPrice.Sign() <= 0 {
		return fmt.Errorf("%w: ticket price must be positive", ErrValidation)
	}
	if comp.MaxTickets < 0 || comp.SoldTickets != 0 {
		return fmt.Errorf("%w: invalid ticket counts", ErrValidation)
	}
	if comp.Type != models.CompetitionInstant {
		if _, err := models.ParsePrizeTable(comp.PrizeData); err != nil {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
	}
	comp.IsActive = true
	return s.store.CreateCompetition(ctx, comp)
}

func (s *Service) Transactions(ctx context.Context, userID uint) ([]models.Transaction, error) {
	return s.store.TransactionsByUser(ctx, userID)
}

func (s *Service) Winners(ctx context.Context, userID uint) ([]models.Winner, error) {
	return s.store.WinnersByUser(ctx, userID)
}

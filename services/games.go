package services

import (
	"context"
	"fmt"

	"ringwin/models"
	"ringwin/storage"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PlayResult struct {
	Prize   models.Prize
	Balance decimal.Decimal
	Points  int64
}

func (s *Service) PlaySpin(ctx context.Context, userID, competitionID uint, declared models.Prize) (*PlayResult, error) {
	return s.settlePlay(ctx, userID, competitionID, models.CompetitionSpin, declared)
}

func (s *Service) PlayScratch(ctx context.Context, userID, competitionID uint, declared models.Prize) (*PlayResult, error) {
	return s.settlePlay(ctx, userID, competitionID, models.CompetitionScratch, declared)
}

// settlePlay turns a client-reported game outcome into ledger mutations. The
// declared prize is only a claim: payout happens from the matching entry of
// the competition's own prize table, so the client cannot name an amount the
// server never configured. The play cost is the competition's ticket price.
func (s *Service) settlePlay(ctx context.Context, userID, competitionID uint, compType string, declared models.Prize) (*PlayResult, error) {
	var res PlayResult
	err := s.store.Atomic(ctx, func(tx storage.Tx) error {
		comp, err := tx.Competition(competitionID)
		if err != nil {
			return err
		}
		if !comp.IsActive || comp.Type != compType {
			return storage.ErrNotFound
		}

		applied, err := resolvePrize(comp, declared)
		if err != nil {
			return err
		}

		user, err := tx.UserForUpdate(userID)
		if err != nil {
			return err
		}

		cost := comp.TicketPrice
		if user.Balance.LessThan(cost) {
			return ErrInsufficientBalance
		}

		refID := uuid.New().String()
		before := user.Balance
		user.Balance = user.Balance.Sub(cost)
		if err := tx.SaveUser(user); err != nil {
			return err
		}
		charge := models.Transaction{
			UserID:        user.ID,
			TrxType:       models.TrxWithdrawal,
			Unit:          models.UnitCurrency,
			Amount:        cost.Neg(),
			BalanceBefore: before,
			BalanceAfter:  user.Balance,
			Currency:      user.Currency,
			Note:          compType + " play: " + comp.Title,
			RefID:         refID,
		}
		if err := tx.AppendTransaction(&charge); err != nil {
			return err
		}

		switch applied.Kind {
		case models.PrizeCash:
			before := user.Balance
			user.Balance = user.Balance.Add(applied.Amount)
			if err := tx.SaveUser(user); err != nil {
				return err
			}
			payout := models.Transaction{
				UserID:        user.ID,
				TrxType:       models.TrxPrize,
				Unit:          models.UnitCurrency,
				Amount:        applied.Amount,
				BalanceBefore: before,
				BalanceAfter:  user.Balance,
				Currency:      user.Currency,
				Note:          compType + " prize: " + applied.Describe(),
				RefID:         refID,
			}
			if err := tx.AppendTransaction(&payout); err != nil {
				return err
			}
			if err := tx.CreateWinner(&models.Winner{
				UserID:           user.ID,
				CompetitionID:    &comp.ID,
				PrizeDescription: applied.Describe(),
				PrizeValue:       applied.Amount.StringFixed(2),
				ImageURL:         comp.ImageURL,
			}); err != nil {
				return err
			}

		case models.PrizePoints:
			pointsBefore := user.RingtonePoints
			user.RingtonePoints += applied.Points
			if err := tx.SaveUser(user); err != nil {
				return err
			}
			payout := models.Transaction{
				UserID:        user.ID,
				TrxType:       models.TrxPrize,
				Unit:          models.UnitPoints,
				Amount:        decimal.NewFromInt(applied.Points),
				BalanceBefore: decimal.NewFromInt(pointsBefore),
				BalanceAfter:  decimal.NewFromInt(user.RingtonePoints),
				Currency:      user.Currency,
				Note:          compType + " prize: " + applied.Describe(),
				RefID:         refID,
			}
			if err := tx.AppendTransaction(&payout); err != nil {
				return err
			}
			if err := tx.CreateWinner(&models.Winner{
				UserID:           user.ID,
				CompetitionID:    &comp.ID,
				PrizeDescription: applied.Describe(),
				PrizeValue:       fmt.Sprintf("%d points", applied.Points),
				ImageURL:         comp.ImageURL,
			}); err != nil {
				return err
			}
		}

		res = PlayResult{Prize: applied, Balance: user.Balance, Points: user.RingtonePoints}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// resolvePrize validates a declared outcome against the competition's stored
// prize table and returns the server-held entry as the applied prize. A
// "none" outcome needs no table entry.
func resolvePrize(comp *models.Competition, declared models.Prize) (models.Prize, error) {
	if declared.Kind == "" || declared.Kind == models.PrizeNone {
		return models.NoPrize(), nil
	}

	table, err := models.ParsePrizeTable(comp.PrizeData)
	if err != nil {
		return models.Prize{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	for _, entry := range table {
		if declared.Matches(entry) {
			return entry, nil
		}
	}
	return models.Prize{}, fmt.Errorf("%w: declared prize is not configured for this competition", ErrValidation)
}

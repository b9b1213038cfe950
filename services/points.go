package services

import (
	"context"
	"fmt"

	"ringwin/models"
	"ringwin/storage"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PointsPerCurrencyUnit is the fixed conversion rate: 1000 ringtone points
// buy one currency unit. Conversions below the rate, or not a multiple of
// it, are rejected.
const PointsPerCurrencyUnit = 1000

type ConversionResult struct {
	ConvertedPoints int64
	CurrencyAmount  decimal.Decimal
	NewBalance      decimal.Decimal
	NewPoints       int64
}

// ConvertPoints exchanges ringtone points for wallet balance, writing a
// paired pair of ledger rows (points out, currency in) under one RefID so
// every conversion event reconciles.
func (s *Service) ConvertPoints(ctx context.Context, userID uint, points int64) (*ConversionResult, error) {
	if points < PointsPerCurrencyUnit {
		return nil, fmt.Errorf("%w: minimum conversion is %d points", ErrValidation, PointsPerCurrencyUnit)
	}
	if points%PointsPerCurrencyUnit != 0 {
		return nil, fmt.Errorf("%w: points must be a multiple of %d", ErrValidation, PointsPerCurrencyUnit)
	}

	var res ConversionResult
	err := s.store.Atomic(ctx, func(tx storage.Tx) error {
		user, err := tx.UserForUpdate(userID)
		if err != nil {
			return err
		}
		if points > user.RingtonePoints {
			return ErrInsufficientPoints
		}

		amount := decimal.NewFromInt(points / PointsPerCurrencyUnit)
		refID := uuid.New().String()

		pointsBefore := user.RingtonePoints
		balanceBefore := user.Balance
		user.RingtonePoints -= points
		user.Balance = user.Balance.Add(amount)
		if err := tx.SaveUser(user); err != nil {
			return err
		}

		debit := models.Transaction{
			UserID:        user.ID,
			TrxType:       models.TrxWithdrawal,
			Unit:          models.UnitPoints,
			Amount:        decimal.NewFromInt(-points),
			BalanceBefore: decimal.NewFromInt(pointsBefore),
			BalanceAfter:  decimal.NewFromInt(user.RingtonePoints),
			Currency:      user.Currency,
			Note:          "points conversion",
			RefID:         refID,
		}
		if err := tx.AppendTransaction(&debit); err != nil {
			return err
		}
		credit := models.Transaction{
			UserID:        user.ID,
			TrxType:       models.TrxDeposit,
			Unit:          models.UnitCurrency,
			Amount:        amount,
			BalanceBefore: balanceBefore,
			BalanceAfter:  user.Balance,
			Currency:      user.Currency,
			Note:          "points conversion",
			RefID:         refID,
		}
		if err := tx.AppendTransaction(&credit); err != nil {
			return err
		}

		res = ConversionResult{
			ConvertedPoints: points,
			CurrencyAmount:  amount,
			NewBalance:      user.Balance,
			NewPoints:       user.RingtonePoints,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Deposit credits the wallet, the only way balance enters the system outside
// gateway collections and prizes.
func (s *Service) Deposit(ctx context.Context, userID uint, amount decimal.Decimal, note string) (*models.User, error) {
	if amount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: deposit amount must be positive", ErrValidation)
	}
	if note == "" {
		note = "wallet deposit"
	}

	var out models.User
	err := s.store.Atomic(ctx, func(tx storage.Tx) error {
		user, err := tx.UserForUpdate(userID)
		if err != nil {
			return err
		}
		before := user.Balance
		user.Balance = user.Balance.Add(amount)
		if err := tx.SaveUser(user); err != nil {
			return err
		}
		trx := models.Transaction{
			UserID:        user.ID,
			TrxType:       models.TrxDeposit,
			Unit:          models.UnitCurrency,
			Amount:        amount,
			BalanceBefore: before,
			BalanceAfter:  user.Balance,
			Currency:      user.Currency,
			Note:          note,
			RefID:         uuid.New().String(),
		}
		if err := tx.AppendTransaction(&trx); err != nil {
			return err
		}
		out = *user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

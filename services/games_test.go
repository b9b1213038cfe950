package services

import (
	"context"
	"errors"
	"testing"

	"ringwin/models"
	"ringwin/storage"
)

func seedSpin(t *testing.T, store *storage.MemoryLedger) *models.Competition {
	t.Helper()
	return seedCompetition(t, store, models.Competition{
		Title:       "Lucky Wheel",
		Type:        models.CompetitionSpin,
		TicketPrice: mustDecimal(t, "2.00"),
		PrizeData:   spinPrizeTable(),
	})
}

func TestPlaySpinCashPrize(t *testing.T) {
	svc, store, _ := newTestService(t)
	user := seedUser(t, svc, store, "2.00", 0)
	comp := seedSpin(t, store)

	res, err := svc.PlaySpin(context.Background(), user.ID, comp.ID, models.CashPrize(mustDecimal(t, "50.00")))
	if err != nil {
		t.Fatalf("play failed: %v", err)
	}

	if res.Prize.Kind != models.PrizeCash || !res.Prize.Amount.Equal(mustDecimal(t, "50.00")) {
		t.Fatalf("unexpected applied prize: %+v", res.Prize)
	}
	if !res.Balance.Equal(mustDecimal(t, "50.00")) {
		t.Fatalf("expected balance 50.00, got %s", res.Balance)
	}

	trxs, _ := store.TransactionsByUser(context.Background(), user.ID)
	var withdrawal, prize *models.Transaction
	for i := range trxs {
		switch trxs[i].TrxType {
		case models.TrxWithdrawal:
			withdrawal = &trxs[i]
		case models.TrxPrize:
			prize = &trxs[i]
		}
	}
	if withdrawal == nil || !withdrawal.Amount.Equal(mustDecimal(t, "-2.00")) {
		t.Fatalf("expected -2.00 withdrawal, got %+v", withdrawal)
	}
	if prize == nil || !prize.Amount.Equal(mustDecimal(t, "50.00")) {
		t.Fatalf("expected +50.00 prize, got %+v", prize)
	}

	winners, _ := store.WinnersByUser(context.Background(), user.ID)
	if len(winners) != 1 {
		t.Fatalf("expected one winner record, got %d", len(winners))
	}

	assertLedgerBalance(t, store, user.ID)
}

func TestPlaySpinInsufficientBalance(t *testing.T) {
	svc, store, _ := newTestService(t)
	user := seedUser(t, svc, store, "1.99", 0)
	comp := seedSpin(t, store)

	if _, err := svc.PlaySpin(context.Background(), user.ID, comp.ID, models.NoPrize()); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}

	updated, _ := store.User(context.Background(), user.ID)
	if !updated.Balance.Equal(mustDecimal(t, "1.99")) {
		t.Fatalf("failed play must not touch balance, got %s", updated.Balance)
	}
	winners, _ := store.WinnersByUser(context.Background(), user.ID)
	if len(winners) != 0 {
		t.Fatalf("no winner must be recorded, got %d", len(winners))
	}
}

func TestPlayScratchPointsPrize(t *testing.T) {
	svc, store, _ := newTestService(t)
	user := seedUser(t, svc, store, "5.00", 100)
	comp := seedCompetition(t, store, models.Competition{
		Title:       "Scratch & Win",
		Type:        models.CompetitionScratch,
		TicketPrice: mustDecimal(t, "2.00"),
		PrizeData:   spinPrizeTable(),
	})

	res, err := svc.PlayScratch(context.Background(), user.ID, comp.ID, models.PointsPrize(500))
	if err != nil {
		t.Fatalf("play failed: %v", err)
	}

	if res.Points != 600 {
		t.Fatalf("expected 600 ringtone points, got %d", res.Points)
	}
	if !res.Balance.Equal(mustDecimal(t, "3.00")) {
		t.Fatalf("expected balance 3.00, got %s", res.Balance)
	}

	trxs, _ := store.TransactionsByUser(context.Background(), user.ID)
	var pointsPrize *models.Transaction
	for i := range trxs {
		if trxs[i].TrxType == models.TrxPrize && trxs[i].Unit == models.UnitPoints {
			pointsPrize = &trxs[i]
		}
	}
	if pointsPrize == nil || !pointsPrize.Amount.Equal(mustDecimal(t, "500")) {
		t.Fatalf("expected a 500-point prize row, got %+v", pointsPrize)
	}

	winners, _ := store.WinnersByUser(context.Background(), user.ID)
	if len(winners) != 1 {
		t.Fatalf("expected one winner record, got %d", len(winners))
	}
}

func TestPlayNoPrizeOnlyDebits(t *testing.T) {
	svc, store, _ := newTestService(t)
	user := seedUser(t, svc, store, "5.00", 0)
	comp := seedSpin(t, store)

	res, err := svc.PlaySpin(context.Background(), user.ID, comp.ID, models.NoPrize())
	if err != nil {
		t.Fatalf("play failed: %v", err)
	}
	if res.Prize.Kind != models.PrizeNone {
		t.Fatalf("expected no prize, got %+v", res.Prize)
	}
	if !res.Balance.Equal(mustDecimal(t, "3.00")) {
		t.Fatalf("expected balance 3.00, got %s", res.Balance)
	}

	winners, _ := store.WinnersByUser(context.Background(), user.ID)
	if len(winners) != 0 {
		t.Fatalf("no winner must be recorded for a losing play")
	}
}

func TestPlayRejectsUnconfiguredPrize(t *testing.T) {
	svc, store, _ := newTestService(t)
	user := seedUser(t, svc, store, "100.00", 0)
	comp := seedSpin(t, store)

	// 999.00 is not in the prize table; the declared outcome is refused
	// before any money moves.
	_, err := svc.PlaySpin(context.Background(), user.ID, comp.ID, models.CashPrize(mustDecimal(t, "999.00")))
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	updated, _ := store.User(context.Background(), user.ID)
	if !updated.Balance.Equal(mustDecimal(t, "100.00")) {
		t.Fatalf("rejected play must not touch balance, got %s", updated.Balance)
	}
}

func TestPlayTypeMismatch(t *testing.T) {
	svc, store, _ := newTestService(t)
	user := seedUser(t, svc, store, "10.00", 0)
	comp := seedSpin(t, store)

	if _, err := svc.PlayScratch(context.Background(), user.ID, comp.ID, models.NoPrize()); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("scratch play against a spin competition must 404, got %v", err)
	}
}

package services

import (
	"context"
	"fmt"
	"testing"

	"ringwin/gateway"
	"ringwin/models"
	"ringwin/storage"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// fakeGateway is an in-memory PaymentClient double. Sessions it creates are
// keyed by reference; tests prime statuses to drive the confirmation flows.
type fakeGateway struct {
	nextRef    int
	statuses   map[string]*gateway.PaymentStatus
	createErr  error
	statusErr  error
	lastAmount decimal.Decimal
	lastMeta   gateway.Metadata
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{statuses: map[string]*gateway.PaymentStatus{}}
}

func (g *fakeGateway) CreateSession(ctx context.Context, amount decimal.Decimal, metadata gateway.Metadata) (*gateway.Session, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.nextRef++
	g.lastAmount = amount
	g.lastMeta = metadata
	ref := fmt.Sprintf("ref-%d", g.nextRef)
	g.statuses[ref] = &gateway.PaymentStatus{
		Status:          gateway.StatusPending,
		Metadata:        metadata,
		CollectedAmount: decimal.Zero,
	}
	return &gateway.Session{RedirectURL: "https://pay.example/" + ref, Reference: ref}, nil
}

func (g *fakeGateway) GetStatus(ctx context.Context, reference string) (*gateway.PaymentStatus, error) {
	if g.statusErr != nil {
		return nil, g.statusErr
	}
	status, ok := g.statuses[reference]
	if !ok {
		return nil, &gateway.Error{Op: "get status", Err: fmt.Errorf("unknown reference %s", reference)}
	}
	return status, nil
}

func (g *fakeGateway) complete(reference string, collected decimal.Decimal) {
	status := g.statuses[reference]
	status.Status = gateway.StatusCompleted
	status.CollectedAmount = collected
}

func newTestService(t *testing.T) (*Service, *storage.MemoryLedger, *fakeGateway) {
	t.Helper()
	store := storage.NewMemoryLedger()
	gw := newFakeGateway()
	return New(store, gw), store, gw
}

var userSeq int

// seedUser creates a user and funds it through the deposit flow so the
// transaction ledger reconstructs the starting balance.
func seedUser(t *testing.T, svc *Service, store *storage.MemoryLedger, balance string, points int64) *models.User {
	t.Helper()
	userSeq++
	user := &models.User{
		Username: fmt.Sprintf("player%d", userSeq),
		Balance:  decimal.Zero,
		Currency: "GBP",
		IsActive: true,
	}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	if amount := mustDecimal(t, balance); amount.Sign() > 0 {
		if _, err := svc.Deposit(context.Background(), user.ID, amount, "test funding"); err != nil {
			t.Fatalf("fund user: %v", err)
		}
	}
	if points > 0 {
		err := store.Atomic(context.Background(), func(tx storage.Tx) error {
			u, err := tx.UserForUpdate(user.ID)
			if err != nil {
				return err
			}
			u.RingtonePoints = points
			return tx.SaveUser(u)
		})
		if err != nil {
			t.Fatalf("grant points: %v", err)
		}
	}

	fresh, err := store.User(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	return fresh
}

func seedCompetition(t *testing.T, store *storage.MemoryLedger, comp models.Competition) *models.Competition {
	t.Helper()
	comp.IsActive = true
	if err := store.CreateCompetition(context.Background(), &comp); err != nil {
		t.Fatalf("seed competition: %v", err)
	}
	return &comp
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func spinPrizeTable() datatypes.JSON {
	return datatypes.JSON(`[
		{"kind":"cash","amount":"50.00","label":"£50"},
		{"kind":"cash","amount":"3.50"},
		{"kind":"points","points":500,"label":"500 ringtones"},
		{"kind":"none"}
	]`)
}

// assertLedgerBalance replays a user's currency transactions and checks they
// reconstruct the stored balance.
func assertLedgerBalance(t *testing.T, store *storage.MemoryLedger, userID uint) {
	t.Helper()
	user, err := store.User(context.Background(), userID)
	if err != nil {
		t.Fatalf("load user: %v", err)
	}
	trxs, err := store.TransactionsByUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("load transactions: %v", err)
	}
	sum := decimal.Zero
	for _, trx := range trxs {
		if trx.Unit == models.UnitCurrency {
			sum = sum.Add(trx.Amount)
		}
	}
	if !sum.Equal(user.Balance) {
		t.Fatalf("ledger does not reconstruct balance: sum %s, balance %s", sum, user.Balance)
	}
}

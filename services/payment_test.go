package services

import (
	"context"
	"errors"
	"testing"

	"ringwin/gateway"
	"ringwin/models"
	"ringwin/storage"
)

func createGatewayOrder(t *testing.T, svc *Service, store *storage.MemoryLedger, userID, compID uint, qty int64) *models.Order {
	t.Helper()
	res, err := svc.Purchase(context.Background(), userID, compID, qty)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if res.Order.PaymentMethod != models.PaymentGateway {
		t.Fatalf("expected a gateway order, got %s", res.Order.PaymentMethod)
	}
	return &res.Order
}

func TestCreatePaymentSession(t *testing.T) {
	svc, store, gw := newTestService(t)
	user := seedUser(t, svc, store, "0.00", 0)
	comp := seedCompetition(t, store, models.Competition{
		Type:        models.CompetitionInstant,
		TicketPrice: mustDecimal(t, "4.00"),
		MaxTickets:  50,
	})
	order := createGatewayOrder(t, svc, store, user.ID, comp.ID, 2)

	res, err := svc.CreatePaymentSession(context.Background(), user.ID, order.ID, 2)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if res.RedirectURL == "" || res.SessionID == "" {
		t.Fatalf("incomplete session result: %+v", res)
	}

	if !gw.lastAmount.Equal(mustDecimal(t, "8.00")) {
		t.Fatalf("session amount must be the server-computed total, got %s", gw.lastAmount)
	}
	for _, key := range []string{"orderId", "userId", "competitionId", "quantity"} {
		if gw.lastMeta[key] == "" {
			t.Fatalf("metadata missing %s: %v", key, gw.lastMeta)
		}
	}

	stored, _ := store.Order(context.Background(), order.ID)
	if stored.SessionRef != res.SessionID {
		t.Fatalf("session ref not persisted on order: %q", stored.SessionRef)
	}
}

func TestCreatePaymentSessionRejections(t *testing.T) {
	svc, store, _ := newTestService(t)
	user := seedUser(t, svc, store, "0.00", 0)
	other := seedUser(t, svc, store, "0.00", 0)
	comp := seedCompetition(t, store, models.Competition{
		Type:        models.CompetitionInstant,
		TicketPrice: mustDecimal(t, "4.00"),
		MaxTickets:  50,
	})
	order := createGatewayOrder(t, svc, store, user.ID, comp.ID, 2)

	t.Run("foreign order", func(t *testing.T) {
		if _, err := svc.CreatePaymentSession(context.Background(), other.ID, order.ID, 2); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("quantity mismatch", func(t *testing.T) {
		if _, err := svc.CreatePaymentSession(context.Background(), user.ID, order.ID, 3); !errors.Is(err, ErrValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("wallet order", func(t *testing.T) {
		funded := seedUser(t, svc, store, "50.00", 0)
		res, err := svc.Purchase(context.Background(), funded.ID, comp.ID, 1)
		if err != nil {
			t.Fatalf("wallet purchase: %v", err)
		}
		if _, err := svc.CreatePaymentSession(context.Background(), funded.ID, res.Order.ID, 1); !errors.Is(err, ErrOrderNotPending) {
			t.Fatalf("expected order-not-pending, got %v", err)
		}
	})
}

func TestConfirmPurchaseIssuesTicketsOnce(t *testing.T) {
	svc, store, gw := newTestService(t)
	user := seedUser(t, svc, store, "0.00", 0)
	comp := seedCompetition(t, store, models.Competition{
		Type:        models.CompetitionInstant,
		TicketPrice: mustDecimal(t, "4.00"),
		MaxTickets:  50,
	})
	order := createGatewayOrder(t, svc, store, user.ID, comp.ID, 2)

	session, err := svc.CreatePaymentSession(context.Background(), user.ID, order.ID, 0)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	gw.complete(session.SessionID, mustDecimal(t, "8.00"))

	res, err := svc.ConfirmPurchase(context.Background(), session.SessionID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if res.AlreadyCompleted {
		t.Fatal("first confirmation must not report already-completed")
	}
	if len(res.Tickets) != 2 {
		t.Fatalf("expected 2 tickets, got %d", len(res.Tickets))
	}

	// Duplicate delivery: same session confirmed again.
	again, err := svc.ConfirmPurchase(context.Background(), session.SessionID)
	if err != nil {
		t.Fatalf("second confirm: %v", err)
	}
	if !again.AlreadyCompleted {
		t.Fatal("second confirmation must be a no-op")
	}

	tickets, _ := store.TicketsByOrder(context.Background(), order.ID)
	if len(tickets) != 2 {
		t.Fatalf("tickets issued more than once: %d", len(tickets))
	}

	stored, _ := store.Order(context.Background(), order.ID)
	if stored.Status != models.OrderCompleted {
		t.Fatalf("expected completed order, got %s", stored.Status)
	}

	fresh, _ := store.Competition(context.Background(), comp.ID)
	if fresh.SoldTickets != 2 {
		t.Fatalf("expected 2 sold tickets, got %d", fresh.SoldTickets)
	}

	// The collection and the purchase pair off: wallet balance untouched,
	// ledger still reconstructs it.
	updated, _ := store.User(context.Background(), user.ID)
	if !updated.Balance.Equal(mustDecimal(t, "0.00")) {
		t.Fatalf("gateway purchase must not move the wallet, got %s", updated.Balance)
	}
	assertLedgerBalance(t, store, user.ID)

	trxs, _ := store.TransactionsByUser(context.Background(), user.ID)
	if len(trxs) != 2 {
		t.Fatalf("expected paired deposit+purchase rows, got %d", len(trxs))
	}
}

func TestConfirmPurchaseNotCompleted(t *testing.T) {
	svc, store, _ := newTestService(t)
	user := seedUser(t, svc, store, "0.00", 0)
	comp := seedCompetition(t, store, models.Competition{
		Type:        models.CompetitionSpin,
		TicketPrice: mustDecimal(t, "2.00"),
	})
	order := createGatewayOrder(t, svc, store, user.ID, comp.ID, 1)

	session, err := svc.CreatePaymentSession(context.Background(), user.ID, order.ID, 0)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	if _, err := svc.ConfirmPurchase(context.Background(), session.SessionID); !errors.Is(err, ErrNotCompleted) {
		t.Fatalf("expected not-completed, got %v", err)
	}

	stored, _ := store.Order(context.Background(), order.ID)
	if stored.Status != models.OrderPending {
		t.Fatalf("pending session must not mutate the order, got %s", stored.Status)
	}
}

func TestConfirmPurchaseInvalidMetadata(t *testing.T) {
	svc, _, gw := newTestService(t)

	gw.statuses["ref-bad"] = &gateway.PaymentStatus{
		Status:   gateway.StatusCompleted,
		Metadata: gateway.Metadata{"orderId": "1"},
	}

	if _, err := svc.ConfirmPurchase(context.Background(), "ref-bad"); !errors.Is(err, ErrInvalidMetadata) {
		t.Fatalf("expected invalid metadata, got %v", err)
	}
}

func TestConfirmPurchaseGatewayErrorPropagates(t *testing.T) {
	svc, _, gw := newTestService(t)
	gw.statusErr = &gateway.Error{Op: "get status", Err: errors.New("connection refused")}

	_, err := svc.ConfirmPurchase(context.Background(), "ref-1")
	var gwErr *gateway.Error
	if !errors.As(err, &gwErr) {
		t.Fatalf("expected gateway error, got %v", err)
	}
	if status, _ := HTTPError(err); status != 502 {
		t.Fatalf("gateway errors map to 502, got %d", status)
	}
}

func TestFailPurchase(t *testing.T) {
	svc, store, _ := newTestService(t)
	user := seedUser(t, svc, store, "0.00", 0)
	comp := seedCompetition(t, store, models.Competition{
		Type:        models.CompetitionSpin,
		TicketPrice: mustDecimal(t, "2.00"),
	})
	order := createGatewayOrder(t, svc, store, user.ID, comp.ID, 1)

	session, err := svc.CreatePaymentSession(context.Background(), user.ID, order.ID, 0)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	failed, err := svc.FailPurchase(context.Background(), session.SessionID)
	if err != nil {
		t.Fatalf("fail purchase: %v", err)
	}
	if failed.Status != models.OrderFailed {
		t.Fatalf("expected failed order, got %s", failed.Status)
	}

	// Repeated delivery stays failed without error.
	again, err := svc.FailPurchase(context.Background(), session.SessionID)
	if err != nil {
		t.Fatalf("repeat fail: %v", err)
	}
	if again.Status != models.OrderFailed {
		t.Fatalf("expected failed order, got %s", again.Status)
	}

	trxs, _ := store.TransactionsByUser(context.Background(), user.ID)
	if len(trxs) != 0 {
		t.Fatalf("failed payment must not write ledger rows, got %d", len(trxs))
	}
}

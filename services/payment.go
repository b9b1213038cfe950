package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"ringwin/gateway"
	"ringwin/models"
	"ringwin/storage"

	"github.com/google/uuid"
)

type PaymentSessionResult struct {
	RedirectURL string
	SessionID   string
}

// CreatePaymentSession opens a hosted payment session for a pending
// gateway-routed order. The provider call runs outside any store transaction
// so a slow provider never holds database locks.
func (s *Service) CreatePaymentSession(ctx context.Context, userID, orderID uint, quantity int64) (*PaymentSessionResult, error) {
	order, err := s.store.Order(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, storage.ErrNotFound
	}
	if order.Status != models.OrderPending {
		return nil, ErrOrderNotPending
	}
	if order.PaymentMethod != models.PaymentGateway {
		return nil, fmt.Errorf("%w: order settles from the wallet", ErrValidation)
	}
	if quantity != 0 && quantity != order.Quantity {
		return nil, fmt.Errorf("%w: quantity does not match the order", ErrValidation)
	}

	meta := gateway.Metadata{
		"orderId":       strconv.FormatUint(uint64(order.ID), 10),
		"userId":        strconv.FormatUint(uint64(order.UserID), 10),
		"competitionId": strconv.FormatUint(uint64(order.CompetitionID), 10),
		"quantity":      strconv.FormatInt(order.Quantity, 10),
	}

	session, err := s.gw.CreateSession(ctx, order.TotalAmount, meta)
	if err != nil {
		return nil, err
	}

	if err := s.store.SetOrderSessionRef(ctx, order.ID, session.Reference); err != nil {
		return nil, err
	}

	return &PaymentSessionResult{RedirectURL: session.RedirectURL, SessionID: session.Reference}, nil
}

type ConfirmResult struct {
	OrderID          uint
	AlreadyCompleted bool
	Tickets          []models.Ticket
}

type purchaseContext struct {
	OrderID       uint
	UserID        uint
	CompetitionID uint
	Quantity      int64
}

// ConfirmPurchase reconciles a payment session with the local order. The
// gateway's metadata is the only trusted source of purchase context; the
// request body never is. Safe to call any number of times for the same
// session: a completed order returns success without re-issuing tickets.
func (s *Service) ConfirmPurchase(ctx context.Context, sessionRef string) (*ConfirmResult, error) {
	if sessionRef == "" {
		return nil, fmt.Errorf("%w: session reference is required", ErrValidation)
	}

	// Status poll stays outside the atomic unit below.
	status, err := s.gw.GetStatus(ctx, sessionRef)
	if err != nil {
		return nil, err
	}
	if status.Status != gateway.StatusCompleted {
		return nil, ErrNotCompleted
	}

	pc, err := parsePurchaseContext(status.Metadata)
	if err != nil {
		return nil, err
	}

	var res ConfirmResult
	err = s.store.Atomic(ctx, func(tx storage.Tx) error {
		order, err := tx.OrderForUpdate(pc.OrderID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return ErrInvalidMetadata
			}
			return err
		}
		if order.UserID != pc.UserID || order.CompetitionID != pc.CompetitionID || order.Quantity != pc.Quantity {
			return ErrInvalidMetadata
		}

		if order.Status == models.OrderCompleted {
			res = ConfirmResult{OrderID: order.ID, AlreadyCompleted: true}
			return nil
		}

		comp, err := tx.Competition(order.CompetitionID)
		if err != nil {
			return err
		}
		user, err := tx.UserForUpdate(order.UserID)
		if err != nil {
			return err
		}

		collected := status.CollectedAmount
		if collected.IsZero() {
			collected = order.TotalAmount
		}

		// Paired rows keep the per-user ledger summing to the balance: the
		// collected amount lands as a deposit and immediately funds the
		// purchase, leaving the wallet unchanged.
		refID := uuid.New().String()
		deposit := models.Transaction{
			UserID:        user.ID,
			OrderID:       &order.ID,
			TrxType:       models.TrxDeposit,
			Unit:          models.UnitCurrency,
			Amount:        collected,
			BalanceBefore: user.Balance,
			BalanceAfter:  user.Balance.Add(collected),
			Currency:      user.Currency,
			Note:          "gateway payment collected",
			RefID:         refID,
		}
		if err := tx.AppendTransaction(&deposit); err != nil {
			return err
		}
		purchase := models.Transaction{
			UserID:        user.ID,
			OrderID:       &order.ID,
			TrxType:       models.TrxPurchase,
			Unit:          models.UnitCurrency,
			Amount:        collected.Neg(),
			BalanceBefore: user.Balance.Add(collected),
			BalanceAfter:  user.Balance,
			Currency:      user.Currency,
			Note:          fmt.Sprintf("gateway purchase of %d ticket(s) for competition %d", order.Quantity, comp.ID),
			RefID:         refID,
		}
		if err := tx.AppendTransaction(&purchase); err != nil {
			return err
		}

		tickets, err := completeOrder(tx, comp, order)
		if err != nil {
			return err
		}
		res = ConfirmResult{OrderID: order.ID, Tickets: tickets}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// FailPurchase handles the failed/cancelled return paths. It only moves a
// pending order to failed; nothing is debited or credited, and repeated
// deliveries are harmless.
func (s *Service) FailPurchase(ctx context.Context, sessionRef string) (*models.Order, error) {
	if sessionRef == "" {
		return nil, fmt.Errorf("%w: session reference is required", ErrValidation)
	}

	var out models.Order
	err := s.store.Atomic(ctx, func(tx storage.Tx) error {
		order, err := tx.OrderBySessionRefForUpdate(sessionRef)
		if err != nil {
			return err
		}
		if order.Status == models.OrderPending {
			if _, err := tx.SetOrderStatus(order.ID, models.OrderPending, models.OrderFailed); err != nil {
				return err
			}
			order.Status = models.OrderFailed
		}
		out = *order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func parsePurchaseContext(meta gateway.Metadata) (*purchaseContext, error) {
	if meta == nil {
		return nil, ErrInvalidMetadata
	}
	orderID, err1 := strconv.ParseUint(meta["orderId"], 10, 32)
	userID, err2 := strconv.ParseUint(meta["userId"], 10, 32)
	compID, err3 := strconv.ParseUint(meta["competitionId"], 10, 32)
	quantity, err4 := strconv.ParseInt(meta["quantity"], 10, 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil || quantity < 1 {
		return nil, ErrInvalidMetadata
	}
	return &purchaseContext{
		OrderID:       uint(orderID),
		UserID:        uint(userID),
		CompetitionID: uint(compID),
		Quantity:      quantity,
	}, nil
}

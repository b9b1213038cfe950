package services

import (
	"context"
	"fmt"

	"ringwin/helpers"
	"ringwin/models"
	"ringwin/storage"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PurchaseResult struct {
	Order   models.Order
	Tickets []models.Ticket
}

// Purchase runs the order orchestration: server-side pricing, instant-draw
// capacity checks, payment-method decision, and for wallet orders the whole
// settlement in one atomic unit. Gateway orders come back pending; the caller
// is expected to open a payment session next.
func (s *Service) Purchase(ctx context.Context, userID, competitionID uint, quantity int64) (*PurchaseResult, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}

	var res PurchaseResult
	err := s.store.Atomic(ctx, func(tx storage.Tx) error {
		comp, err := tx.Competition(competitionID)
		if err != nil {
			return err
		}
		if !comp.IsActive {
			return storage.ErrNotFound
		}

		// The client never supplies the amount.
		total := comp.TicketPrice.Mul(decimal.NewFromInt(quantity))

		if comp.Type == models.CompetitionInstant && comp.MaxTickets > 0 {
			remaining := comp.MaxTickets - comp.SoldTickets
			if remaining <= 0 {
				return ErrSoldOut
			}
			if quantity > remaining {
				return ErrInsufficientInventory
			}
		}

		user, err := tx.UserForUpdate(userID)
		if err != nil {
			return err
		}

		order := models.Order{
			UserID:        user.ID,
			CompetitionID: comp.ID,
			Quantity:      quantity,
			TotalAmount:   total,
			Status:        models.OrderPending,
			Currency:      user.Currency,
		}

		if user.Balance.LessThan(total) {
			order.PaymentMethod = models.PaymentGateway
			if err := tx.CreateOrder(&order); err != nil {
				return err
			}
			res = PurchaseResult{Order: order}
			return nil
		}

		order.PaymentMethod = models.PaymentWallet
		if err := tx.CreateOrder(&order); err != nil {
			return err
		}

		before := user.Balance
		user.Balance = user.Balance.Sub(total)
		if err := tx.SaveUser(user); err != nil {
			return err
		}
		trx := models.Transaction{
			UserID:        user.ID,
			OrderID:       &order.ID,
			TrxType:       models.TrxPurchase,
			Unit:          models.UnitCurrency,
			Amount:        total.Neg(),
			BalanceBefore: before,
			BalanceAfter:  user.Balance,
			Currency:      user.Currency,
			Note:          fmt.Sprintf("wallet purchase of %d ticket(s) for competition %d", quantity, comp.ID),
			RefID:         uuid.New().String(),
		}
		if err := tx.AppendTransaction(&trx); err != nil {
			return err
		}

		tickets, err := completeOrder(tx, comp, &order)
		if err != nil {
			return err
		}

		order.Status = models.OrderCompleted
		res = PurchaseResult{Order: order, Tickets: tickets}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// completeOrder performs the one-way pending→completed transition, claims
// instant-draw inventory and issues the order's tickets. It runs inside the
// caller's atomic unit; the conditional transition is what guarantees
// at-most-once issuance per order.
func completeOrder(tx storage.Tx, comp *models.Competition, order *models.Order) ([]models.Ticket, error) {
	ok, err := tx.SetOrderStatus(order.ID, models.OrderPending, models.OrderCompleted)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrOrderNotPending
	}

	if comp.Type == models.CompetitionInstant {
		claimed, err := tx.AddSoldTickets(comp.ID, order.Quantity)
		if err != nil {
			return nil, err
		}
		if !claimed {
			return nil, ErrSoldOut
		}
	}

	tickets := make([]models.Ticket, 0, order.Quantity)
	for i := int64(0); i < order.Quantity; i++ {
		ticket := models.Ticket{
			CompetitionID: comp.ID,
			UserID:        order.UserID,
			OrderID:       order.ID,
			TicketNumber:  helpers.GenerateTicketNumber(),
		}
		if err := tx.CreateTicket(&ticket); err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}
	return tickets, nil
}

package storage

import (
	"context"
	"errors"
	"time"

	"ringwin/models"
)

var ErrNotFound = errors.New("record not found")

// Ledger is the persistent store for all financial and competition state.
// Every read-check-mutate sequence runs inside Atomic so concurrent requests
// cannot interleave partial money mutations.
type Ledger interface {
	Atomic(ctx context.Context, fn func(tx Tx) error) error

	User(ctx context.Context, id uint) (*models.User, error)
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error

	Competition(ctx context.Context, id uint) (*models.Competition, error)
	ActiveCompetitions(ctx context.Context) ([]models.Competition, error)
	CreateCompetition(ctx context.Context, comp *models.Competition) error

	Order(ctx context.Context, id uint) (*models.Order, error)
	OrderBySessionRef(ctx context.Context, ref string) (*models.Order, error)
	SetOrderSessionRef(ctx context.Context, orderID uint, ref string) error
	PendingOrdersBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error)

	TicketsByOrder(ctx context.Context, orderID uint) ([]models.Ticket, error)
	TransactionsByUser(ctx context.Context, userID uint) ([]models.Transaction, error)
	WinnersByUser(ctx context.Context, userID uint) ([]models.Winner, error)

	CreateSession(ctx context.Context, session *models.Session) error
	SessionBySID(ctx context.Context, sid string) (*models.Session, error)
}

// Tx is the mutation surface available inside Atomic. ForUpdate reads take a
// row lock held until the enclosing unit commits or rolls back.
type Tx interface {
	UserForUpdate(id uint) (*models.User, error)
	SaveUser(user *models.User) error

	Competition(id uint) (*models.Competition, error)

	OrderForUpdate(id uint) (*models.Order, error)
	OrderBySessionRefForUpdate(ref string) (*models.Order, error)
	CreateOrder(order *models.Order) error

	// SetOrderStatus transitions an order from one status to another and
	// reports whether the transition happened. A false return with nil error
	// means the order was not in the expected status.
	SetOrderStatus(orderID uint, from, to string) (bool, error)

	// AddSoldTickets atomically claims qty tickets of an instant
	// competition's inventory. It reports false when the claim would exceed
	// MaxTickets.
	AddSoldTickets(competitionID uint, qty int64) (bool, error)

	CreateTicket(ticket *models.Ticket) error
	AppendTransaction(trx *models.Transaction) error
	CreateWinner(winner *models.Winner) error
}

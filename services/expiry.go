package services

import (
	"context"
	"time"

	"ringwin/models"
	"ringwin/storage"
)

// ExpireStaleOrders sweeps pending orders older than maxAge into the expired
// state. Orders completed or failed between the scan and the transition are
// skipped by the conditional status update.
func (s *Service) ExpireStaleOrders(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	orders, err := s.store.PendingOrdersBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, order := range orders {
		err := s.store.Atomic(ctx, func(tx storage.Tx) error {
			ok, err := tx.SetOrderStatus(order.ID, models.OrderPending, models.OrderExpired)
			if err != nil {
				return err
			}
			if ok {
				expired++
			}
			return nil
		})
		if err != nil {
			return expired, err
		}
	}
	return expired, nil
}

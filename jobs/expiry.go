package jobs

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"ringwin/services"
)

// StartOrderExpiryScheduler periodically expires pending orders whose
// payment was never confirmed. The age threshold comes from
// ORDER_EXPIRY_MINUTES (default 60).
func StartOrderExpiryScheduler(svc *services.Service) {
	maxAge := 60 * time.Minute
	if raw := os.Getenv("ORDER_EXPIRY_MINUTES"); raw != "" {
		if mins, err := strconv.Atoi(raw); err == nil && mins > 0 {
			maxAge = time.Duration(mins) * time.Minute
		} else {
			log.Printf("⚠️  Invalid value for ORDER_EXPIRY_MINUTES: %s", raw)
		}
	}

	ticker := time.NewTicker(5 * time.Minute)
	go func() {
		for {
			<-ticker.C
			expired, err := svc.ExpireStaleOrders(context.Background(), maxAge)
			if err != nil {
				log.Printf("❌ error expiring stale orders: %v", err)
				continue
			}
			if expired > 0 {
				log.Printf("🧹 expired %d stale pending order(s)", expired)
			}
		}
	}()
}

package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Quadco-Consults/Saharam-express-sub001/internal/cache"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/db"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/domain/models"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/repositories"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/utils"
)

// SweeperService releases seats held by pending bookings that were never
// paid within the hold window. Without it a shopper who abandons checkout
// would pin their seats forever.
type SweeperService struct {
	DB       *sql.DB
	Cache    *cache.TripCache
	Notifier Notifier
	HoldTTL  time.Duration
	Interval time.Duration
	Now      func() time.Time
}

func (s SweeperService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Run loops until ctx is cancelled.
func (s SweeperService) Run(ctx context.Context) {
	interval := s.Interval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			released, err := s.SweepOnce()
			if err != nil {
				utils.LogEvent("", "sweeper", "sweep", "error: "+err.Error())
				continue
			}
			if released > 0 {
				utils.LogEvent("", "sweeper", "sweep", fmt.Sprintf("released %d expired booking(s)", released))
			}
		}
	}
}

// SweepOnce cancels every pending, unpaid booking older than the hold
// window. Each booking is released in its own transaction; a re-check
// under the row lock guards against a payment landing mid-sweep.
func (s SweeperService) SweepOnce() (int, error) {
	holdTTL := s.HoldTTL
	if holdTTL <= 0 {
		holdTTL = 30 * time.Minute
	}
	cutoff := s.now().Add(-holdTTL)

	expired, err := repositories.BookingRepository{Q: s.DB}.ListPendingOlderThan(cutoff, 100)
	if err != nil {
		return 0, err
	}

	released := 0
	for _, candidate := range expired {
		err := db.WithTx(s.DB, func(tx *sql.Tx) error {
			bookings := repositories.BookingRepository{Q: tx}
			b, err := bookings.GetByIDForUpdate(candidate.ID)
			if err != nil {
				return err
			}
			// The payment may have completed between the list and the lock.
			if b.Status != models.BookingPending || b.PaymentStatus != models.PaymentStatusPending {
				return nil
			}
			if err := releaseBooking(tx, &b, models.PaymentStatusFailed); err != nil {
				return err
			}
			released++
			if s.Notifier != nil {
				s.Notifier.BookingCancelled(b, "booking hold expired")
			}
			return nil
		})
		if err != nil {
			utils.LogEvent("", "sweeper", "release",
				fmt.Sprintf("booking=%s error: %v", candidate.Reference, err))
			continue
		}
		s.Cache.Invalidate(context.Background(), candidate.TripID)
	}
	return released, nil
}

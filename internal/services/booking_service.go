package services

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"time"

	"github.com/Quadco-Consults/Saharam-express-sub001/internal/cache"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/db"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/domain"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/domain/models"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/repositories"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/seatmap"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/utils"
)

const referenceRetries = 3

type BookingService struct {
	DB        *sql.DB
	Cache     *cache.TripCache
	Notifier  Notifier
	RefPrefix string
	RequestID string
	Now       func() time.Time
}

func (s BookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// CreateBookingInput is the validated create-booking request.
type CreateBookingInput struct {
	TripID             int64
	PassengerName      string
	PassengerPhone     string
	PassengerEmail     string
	SeatNumbers        []string
	LoyaltyPointsToUse int64
	Caller             *domain.Caller
}

// CreateBooking reserves seats, prices the booking and debits loyalty
// points as one atomic unit. The trip row lock plus the in-transaction
// re-read of booking_seats makes check-then-reserve safe against a
// concurrent booking for the same seats: whichever transaction commits
// first wins, the loser sees SeatConflictError.
func (s BookingService) CreateBooking(in CreateBookingInput) (models.Booking, error) {
	in.PassengerName = utils.NormalizeSpace(in.PassengerName)
	in.PassengerPhone = utils.TrimOrEmpty(in.PassengerPhone)
	in.PassengerEmail = strings.ToLower(utils.TrimOrEmpty(in.PassengerEmail))
	in.SeatNumbers = utils.NormalizeSeats(in.SeatNumbers)

	if in.PassengerName == "" {
		return models.Booking{}, domain.ValidationError{Field: "passengerName", Msg: "required"}
	}
	if len(in.SeatNumbers) == 0 {
		return models.Booking{}, domain.ValidationError{Field: "seatNumbers", Msg: "at least one seat is required"}
	}
	if in.LoyaltyPointsToUse < 0 {
		return models.Booking{}, domain.ValidationError{Field: "loyaltyPointsToUse", Msg: "must not be negative"}
	}
	if in.LoyaltyPointsToUse > 0 && in.Caller == nil {
		return models.Booking{}, domain.ValidationError{Field: "loyaltyPointsToUse", Msg: "sign in to redeem points"}
	}

	var booking models.Booking
	err := db.WithTx(s.DB, func(tx *sql.Tx) error {
		trips := repositories.TripRepository{Q: tx}
		bookings := repositories.BookingRepository{Q: tx}
		users := repositories.UserRepository{Q: tx}
		ledger := repositories.LoyaltyRepository{Q: tx}

		trip, err := trips.GetByIDForUpdate(in.TripID)
		if err != nil {
			return err
		}
		if !trip.Bookable(s.now()) {
			reason := "trip is no longer open for booking"
			if !trip.Active {
				reason = "trip has been deactivated"
			}
			return domain.NotBookableError{TripID: trip.ID, Reason: reason}
		}

		if err := seatmap.ValidateSeats(trip.TotalSeats, trip.SeatsPerRow, in.SeatNumbers); err != nil {
			return err
		}

		// Live rows, not the counter: the counter is an aggregate and
		// cannot say which seats are taken.
		taken, err := bookings.BookedSeats(trip.ID)
		if err != nil {
			return err
		}
		if conflicts := intersectSeats(in.SeatNumbers, taken); len(conflicts) > 0 {
			return domain.SeatConflictError{TripID: trip.ID, Seats: conflicts}
		}

		if len(in.SeatNumbers) > trip.AvailableSeats {
			return domain.InsufficientCapacityError{
				Requested: len(in.SeatNumbers),
				Available: trip.AvailableSeats,
			}
		}

		var balance int64
		if in.Caller != nil && in.LoyaltyPointsToUse > 0 {
			user, err := users.GetByIDForUpdate(in.Caller.UserID)
			if err != nil {
				return err
			}
			balance = user.LoyaltyPoints
		}

		quote, err := seatmap.Price(trip.BasePrice, len(in.SeatNumbers), in.LoyaltyPointsToUse, balance)
		if err != nil {
			return err
		}

		booking = models.Booking{
			TripID:         trip.ID,
			PassengerName:  in.PassengerName,
			PassengerPhone: in.PassengerPhone,
			PassengerEmail: in.PassengerEmail,
			Seats:          in.SeatNumbers,
			SeatCount:      len(in.SeatNumbers),
			BaseAmount:     quote.BaseAmount,
			PointsUsed:     quote.PointsUsed,
			TotalAmount:    quote.TotalAmount,
			Status:         models.BookingPending,
			PaymentStatus:  models.PaymentStatusPending,
		}
		if in.Caller != nil {
			uid := in.Caller.UserID
			booking.UserID = &uid
		}
		// A fully point-covered booking needs no external charge.
		if booking.TotalAmount == 0 {
			booking.Status = models.BookingConfirmed
			booking.PaymentStatus = models.PaymentStatusCompleted
		}

		if err := s.insertWithReference(bookings, &booking); err != nil {
			return err
		}
		if err := bookings.InsertSeats(booking.ID, trip.ID, in.SeatNumbers); err != nil {
			return err
		}
		if err := trips.DecrementSeats(trip.ID, len(in.SeatNumbers)); err != nil {
			return err
		}

		if booking.PointsUsed > 0 {
			if err := users.AdjustPoints(*booking.UserID, -booking.PointsUsed); err != nil {
				return err
			}
			bid := booking.ID
			if err := ledger.Append(models.LoyaltyTransaction{
				UserID:    *booking.UserID,
				BookingID: &bid,
				Points:    -booking.PointsUsed,
				Reason:    models.LoyaltyRedeemed,
			}); err != nil {
				return err
			}
		}

		trip.AvailableSeats -= len(in.SeatNumbers)
		booking.Trip = &trip
		return nil
	})
	if err != nil {
		return models.Booking{}, err
	}

	s.Cache.Invalidate(context.Background(), booking.TripID)
	if s.Notifier != nil {
		s.Notifier.BookingCreated(booking)
	}
	utils.LogEvent(s.RequestID, "booking", "create",
		"reference="+booking.Reference+" seats="+strings.Join(booking.Seats, ","))
	return booking, nil
}

// insertWithReference retries the probabilistically-unique reference
// against the UNIQUE key until it lands.
func (s BookingService) insertWithReference(bookings repositories.BookingRepository, booking *models.Booking) error {
	var err error
	for attempt := 0; attempt < referenceRetries; attempt++ {
		booking.Reference = utils.NewBookingReference(s.RefPrefix)
		var id int64
		id, err = bookings.Insert(*booking)
		if err == nil {
			booking.ID = id
			booking.CreatedAt = s.now()
			booking.UpdatedAt = booking.CreatedAt
			return nil
		}
		if !domain.IsConflict(err) {
			return err
		}
	}
	return domain.InternalError{Msg: "could not allocate a unique booking reference", Err: err}
}

// GetByReference loads a booking with its seats and trip context.
func (s BookingService) GetByReference(reference string) (models.Booking, error) {
	bookings := repositories.BookingRepository{Q: s.DB}
	booking, err := bookings.GetByReference(reference)
	if err != nil {
		return models.Booking{}, err
	}
	return s.populate(booking)
}

func (s BookingService) GetByID(id int64) (models.Booking, error) {
	bookings := repositories.BookingRepository{Q: s.DB}
	booking, err := bookings.GetByID(id)
	if err != nil {
		return models.Booking{}, err
	}
	return s.populate(booking)
}

func (s BookingService) List(userID int64, status string, limit int) ([]models.Booking, error) {
	return repositories.BookingRepository{Q: s.DB}.List(userID, status, limit)
}

func (s BookingService) populate(booking models.Booking) (models.Booking, error) {
	bookings := repositories.BookingRepository{Q: s.DB}
	seats, err := bookings.Seats(booking.ID)
	if err != nil {
		return models.Booking{}, err
	}
	booking.Seats = seats

	trip, err := repositories.TripRepository{Q: s.DB}.GetByID(booking.TripID)
	if err == nil {
		booking.Trip = &trip
	}
	return booking, nil
}

func intersectSeats(requested, taken []string) []string {
	takenSet := make(map[string]struct{}, len(taken))
	for _, seat := range taken {
		takenSet[seat] = struct{}{}
	}
	var conflicts []string
	for _, seat := range requested {
		if _, ok := takenSet[seat]; ok {
			conflicts = append(conflicts, seat)
		}
	}
	sort.Strings(conflicts)
	return conflicts
}

package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/Quadco-Consults/Saharam-express-sub001/internal/cache"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/domain"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/domain/models"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/repositories"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/seatmap"
)

type TripService struct {
	DB    *sql.DB
	Cache *cache.TripCache
}

// SeatMapView is the seat-map response payload.
type SeatMapView struct {
	TripID         int64         `json:"tripId"`
	VehicleCode    string        `json:"vehicleCode"`
	TotalSeats     int           `json:"totalSeats"`
	AvailableSeats int           `json:"availableSeats"`
	BasePrice      int64         `json:"basePrice"`
	Seats          []seatmap.Seat `json:"seats"`
}

func (s TripService) Search(origin, destination, date string) ([]models.Trip, error) {
	filter := repositories.TripFilter{
		Origin:      origin,
		Destination: destination,
		OnlyActive:  true,
	}
	if date != "" {
		d, err := time.Parse("2006-01-02", date)
		if err != nil {
			return nil, domain.ValidationError{Field: "date", Msg: "expected YYYY-MM-DD"}
		}
		filter.Date = &d
	}
	return repositories.TripRepository{Q: s.DB}.Search(filter)
}

func (s TripService) GetByID(id int64) (models.Trip, error) {
	return repositories.TripRepository{Q: s.DB}.GetByID(id)
}

// SeatMap builds the live seat map for a trip, served from cache when the
// redis layer is configured. Booking commits invalidate the entry.
func (s TripService) SeatMap(ctx context.Context, tripID int64) (SeatMapView, error) {
	var cached SeatMapView
	if s.Cache.GetSeatMap(ctx, tripID, &cached) {
		return cached, nil
	}

	trip, err := repositories.TripRepository{Q: s.DB}.GetByID(tripID)
	if err != nil {
		return SeatMapView{}, err
	}
	booked, err := repositories.BookingRepository{Q: s.DB}.BookedSeats(tripID)
	if err != nil {
		return SeatMapView{}, err
	}

	view := SeatMapView{
		TripID:         trip.ID,
		VehicleCode:    trip.VehicleCode,
		TotalSeats:     trip.TotalSeats,
		AvailableSeats: trip.AvailableSeats,
		BasePrice:      trip.BasePrice,
		Seats:          seatmap.Build(trip.TotalSeats, trip.SeatsPerRow, booked),
	}
	s.Cache.SetSeatMap(ctx, tripID, view)
	return view, nil
}

// CreateTrip provisions a scheduled departure from admin input. Seat
// counts come from the vehicle, never from the request.
func (s TripService) CreateTrip(routeID, vehicleID, driverID int64, departureAt, arrivalAt time.Time, basePrice int64) (models.Trip, error) {
	if basePrice <= 0 {
		return models.Trip{}, domain.ValidationError{Field: "basePrice", Msg: "must be positive"}
	}
	if !arrivalAt.After(departureAt) {
		return models.Trip{}, domain.ValidationError{Field: "arrivalAt", Msg: "must be after departure"}
	}

	fleet := repositories.FleetRepository{Q: s.DB}
	if _, err := fleet.GetRoute(routeID); err != nil {
		return models.Trip{}, err
	}
	vehicle, err := fleet.GetVehicle(vehicleID)
	if err != nil {
		return models.Trip{}, err
	}
	if !vehicle.Active {
		return models.Trip{}, domain.ValidationError{Field: "vehicleId", Msg: "vehicle is not active"}
	}

	trips := repositories.TripRepository{Q: s.DB}
	id, err := trips.Create(models.Trip{
		RouteID:     routeID,
		VehicleID:   vehicleID,
		DriverID:    driverID,
		DepartureAt: departureAt,
		ArrivalAt:   arrivalAt,
		TotalSeats:  vehicle.Capacity,
		BasePrice:   basePrice,
		Active:      true,
	})
	if err != nil {
		return models.Trip{}, err
	}
	return trips.GetByID(id)
}

func (s TripService) UpdateTrip(id int64, departureAt, arrivalAt time.Time, basePrice int64, active bool) (models.Trip, error) {
	trips := repositories.TripRepository{Q: s.DB}
	if err := trips.Update(id, departureAt, arrivalAt, basePrice, active); err != nil {
		return models.Trip{}, err
	}
	return trips.GetByID(id)
}

func (s TripService) DeactivateTrip(id int64) error {
	return repositories.TripRepository{Q: s.DB}.Deactivate(id)
}

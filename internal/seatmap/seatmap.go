// Package seatmap computes deterministic vehicle seat layouts and booking
// prices. Everything here is pure; callers may invoke it concurrently
// without locking.
package seatmap

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Quadco-Consults/Saharam-express-sub001/internal/domain"
)

// Seat statuses within a map.
const (
	StatusAvailable = "available"
	StatusBooked    = "booked"
)

// Seat is one entry in a vehicle's seat map.
type Seat struct {
	ID     string `json:"id"`
	Row    int    `json:"row"`
	Column int    `json:"column"`
	Status string `json:"status"`
}

// Quote is the price breakdown for a booking request.
type Quote struct {
	BaseAmount  int64 `json:"baseAmount"`
	PointsUsed  int64 `json:"pointsUsed"`
	TotalAmount int64 `json:"totalAmount"`
}

// SeatID renders the stable identifier for a zero-based row and 1-based
// column: row 0 = "A", so SeatID(0, 1) = "A1". Rows beyond "Z" extend to
// double letters ("AA1") the way spreadsheet columns do.
func SeatID(row, column int) string {
	return rowLetters(row) + strconv.Itoa(column)
}

// ParseSeatID splits an identifier back into its zero-based row and
// 1-based column.
func ParseSeatID(id string) (row, column int, err error) {
	id = strings.ToUpper(strings.TrimSpace(id))
	split := 0
	for split < len(id) && id[split] >= 'A' && id[split] <= 'Z' {
		split++
	}
	if split == 0 || split == len(id) {
		return 0, 0, domain.ValidationError{Field: "seat", Msg: fmt.Sprintf("malformed seat id %q", id)}
	}

	row = 0
	for i := 0; i < split; i++ {
		row = row*26 + int(id[i]-'A') + 1
	}
	row--

	column, err = strconv.Atoi(id[split:])
	if err != nil || column < 1 {
		return 0, 0, domain.ValidationError{Field: "seat", Msg: fmt.Sprintf("malformed seat id %q", id)}
	}
	return row, column, nil
}

// Layout produces the total, deterministic seat list for a vehicle:
// capacity seats assigned row-major, seatsPerRow per row, each marked
// available.
func Layout(capacity, seatsPerRow int) []Seat {
	if capacity <= 0 {
		return nil
	}
	if seatsPerRow <= 0 {
		seatsPerRow = 4
	}

	seats := make([]Seat, 0, capacity)
	for i := 0; i < capacity; i++ {
		row := i / seatsPerRow
		col := i%seatsPerRow + 1
		seats = append(seats, Seat{
			ID:     SeatID(row, col),
			Row:    row,
			Column: col,
			Status: StatusAvailable,
		})
	}
	return seats
}

// Build marks booked seats within the layout for the given capacity.
// Unknown identifiers in booked are ignored; they cannot appear in a
// map they were never part of.
func Build(capacity, seatsPerRow int, booked []string) []Seat {
	taken := make(map[string]struct{}, len(booked))
	for _, s := range booked {
		taken[strings.ToUpper(strings.TrimSpace(s))] = struct{}{}
	}

	seats := Layout(capacity, seatsPerRow)
	for i := range seats {
		if _, ok := taken[seats[i].ID]; ok {
			seats[i].Status = StatusBooked
		}
	}
	return seats
}

// ValidateSeats rejects any requested identifier that is not a member of
// the layout for the given capacity. The offending ids are listed in the
// error so clients can correct their selection.
func ValidateSeats(capacity, seatsPerRow int, requested []string) error {
	if len(requested) == 0 {
		return domain.ValidationError{Field: "seatNumbers", Msg: "at least one seat is required"}
	}

	valid := make(map[string]struct{}, capacity)
	for _, s := range Layout(capacity, seatsPerRow) {
		valid[s.ID] = struct{}{}
	}

	var unknown []string
	seen := make(map[string]struct{}, len(requested))
	for _, raw := range requested {
		id := strings.ToUpper(strings.TrimSpace(raw))
		if _, dup := seen[id]; dup {
			return domain.ValidationError{Field: "seatNumbers", Msg: fmt.Sprintf("duplicate seat %s", id)}
		}
		seen[id] = struct{}{}
		if _, ok := valid[id]; !ok {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return domain.ValidationError{
			Field: "seatNumbers",
			Msg:   fmt.Sprintf("seats not in vehicle layout: %s", strings.Join(unknown, ", ")),
		}
	}
	return nil
}

// Price computes the booking quote. One loyalty point is worth one naira.
// Requests exceeding the balance are rejected outright, never clamped.
func Price(basePrice int64, seatCount int, pointsRequested, userBalance int64) (Quote, error) {
	if basePrice < 0 {
		return Quote{}, domain.ValidationError{Field: "basePrice", Msg: "must not be negative"}
	}
	if seatCount <= 0 {
		return Quote{}, domain.ValidationError{Field: "seatCount", Msg: "must be positive"}
	}
	if pointsRequested < 0 {
		return Quote{}, domain.ValidationError{Field: "loyaltyPointsToUse", Msg: "must not be negative"}
	}
	if pointsRequested > userBalance {
		return Quote{}, domain.InsufficientPointsError{Requested: pointsRequested, Balance: userBalance}
	}

	base := basePrice * int64(seatCount)
	used := pointsRequested
	if used > base {
		used = base
	}

	return Quote{
		BaseAmount:  base,
		PointsUsed:  used,
		TotalAmount: base - used,
	}, nil
}

func rowLetters(row int) string {
	row++
	var out []byte
	for row > 0 {
		row--
		out = append([]byte{byte('A' + row%26)}, out...)
		row /= 26
	}
	return string(out)
}

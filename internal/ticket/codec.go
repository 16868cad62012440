// Package ticket encodes and verifies the signed payload embedded in a
// rider's QR code. The payload carries everything a gate agent needs
// offline plus an HMAC so edits after issuance are detectable. The HMAC
// only proves the QR was not altered; verification against the stored
// booking still happens server-side.
package ticket

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Validity windows.
const (
	// DepartureGrace keeps a ticket scannable for late buses.
	DepartureGrace = 24 * time.Hour
	// MaxAge rejects QR codes regardless of trip once they get too old.
	MaxAge = 30 * 24 * time.Hour
)

// Validation reasons surfaced to scanning clients.
const (
	ReasonExpired  = "Ticket has expired"
	ReasonTooOld   = "QR code too old"
	ReasonMismatch = "Ticket data mismatch"
)

// Data is the signed ticket payload.
type Data struct {
	BookingReference string    `json:"bookingReference"`
	PassengerName    string    `json:"passengerName"`
	TripID           int64     `json:"tripId"`
	Seats            []string  `json:"seats"`
	DepartureAt      time.Time `json:"departureAt"`
	Route            string    `json:"route"`
	IssuedAt         time.Time `json:"issuedAt"`
	Signature        string    `json:"signature"`
}

// Result reports a validity check.
type Result struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// Codec signs and verifies ticket payloads with a shared secret.
type Codec struct {
	secret []byte
	now    func() time.Time
}

func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret), now: time.Now}
}

// NewCodecAt pins the clock, for tests.
func NewCodecAt(secret string, now func() time.Time) *Codec {
	return &Codec{secret: []byte(secret), now: now}
}

// Encode builds and signs the payload, returning the JSON string to embed
// in the QR image. Deterministic except for IssuedAt.
func (c *Codec) Encode(reference, passengerName string, tripID int64, seats []string, departureAt time.Time, route string) (Data, string, error) {
	data := Data{
		BookingReference: reference,
		PassengerName:    passengerName,
		TripID:           tripID,
		Seats:            append([]string(nil), seats...),
		DepartureAt:      departureAt.UTC(),
		Route:            route,
		IssuedAt:         c.now().UTC(),
	}
	data.Signature = c.sign(data)

	raw, err := json.Marshal(data)
	if err != nil {
		return Data{}, "", err
	}
	return data, string(raw), nil
}

// Decode parses and authenticates a raw QR string. It returns nil on
// malformed JSON, missing fields, or signature mismatch; callers cannot
// tell tampering apart from garbage, which is the point.
func (c *Codec) Decode(raw string) *Data {
	var data Data
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil
	}
	if data.BookingReference == "" || data.PassengerName == "" || data.TripID <= 0 ||
		len(data.Seats) == 0 || data.DepartureAt.IsZero() || data.IssuedAt.IsZero() ||
		data.Signature == "" {
		return nil
	}

	expected := c.sign(data)
	if !hmac.Equal([]byte(expected), []byte(data.Signature)) {
		return nil
	}
	return &data
}

// Validate applies the time-based rules. Booking cross-checks live in the
// ticket service where the authoritative row is available.
func (c *Codec) Validate(data *Data) Result {
	now := c.now()
	if now.After(data.DepartureAt.Add(DepartureGrace)) {
		return Result{Valid: false, Reason: ReasonExpired}
	}
	if now.Sub(data.IssuedAt) > MaxAge {
		return Result{Valid: false, Reason: ReasonTooOld}
	}
	return Result{Valid: true}
}

// sign computes the hex HMAC-SHA256 over a canonical rendering of every
// field except the signature itself. Seats are sorted so order never
// changes the digest.
func (c *Codec) sign(data Data) string {
	seats := append([]string(nil), data.Seats...)
	sort.Strings(seats)

	parts := []string{
		data.BookingReference,
		data.PassengerName,
		strconv.FormatInt(data.TripID, 10),
		strings.Join(seats, ","),
		strconv.FormatInt(data.DepartureAt.UTC().Unix(), 10),
		data.Route,
		strconv.FormatInt(data.IssuedAt.UTC().Unix(), 10),
	}

	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(mac.Sum(nil))
}

package ticket

import (
	"strings"
	"testing"
	"time"
)

var testDeparture = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func testCodec(now time.Time) *Codec {
	return NewCodecAt("test-secret", func() time.Time { return now })
}

func encodeSample(t *testing.T, c *Codec) (Data, string) {
	t.Helper()
	data, raw, err := c.Encode("SAH123456ABCD", "Adaeze Obi", 42, []string{"A1", "A2"}, testDeparture, "Lagos - Ibadan")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return data, raw
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	now := testDeparture.Add(-48 * time.Hour)
	c := testCodec(now)
	original, raw := encodeSample(t, c)

	decoded := c.Decode(raw)
	if decoded == nil {
		t.Fatal("decode returned nil for authentic payload")
	}
	if decoded.BookingReference != original.BookingReference ||
		decoded.PassengerName != original.PassengerName ||
		decoded.TripID != original.TripID ||
		decoded.Route != original.Route {
		t.Fatalf("decoded fields differ: %+v vs %+v", decoded, original)
	}
	if !decoded.DepartureAt.Equal(original.DepartureAt) {
		t.Fatalf("departure mismatch: %v vs %v", decoded.DepartureAt, original.DepartureAt)
	}
	if decoded.IssuedAt.Before(original.IssuedAt) {
		t.Fatalf("issuedAt went backwards: %v < %v", decoded.IssuedAt, original.IssuedAt)
	}
	if len(decoded.Seats) != 2 || decoded.Seats[0] != "A1" || decoded.Seats[1] != "A2" {
		t.Fatalf("seats mismatch: %v", decoded.Seats)
	}
}

func TestDecodeRejectsAnySingleCharacterMutation(t *testing.T) {
	c := testCodec(testDeparture.Add(-time.Hour))
	_, raw := encodeSample(t, c)

	for i := 0; i < len(raw); i++ {
		mutated := []byte(raw)
		if mutated[i] == 'x' {
			mutated[i] = 'y'
		} else {
			mutated[i] = 'x'
		}
		if got := c.Decode(string(mutated)); got != nil {
			t.Fatalf("mutation at byte %d (%q) still decoded", i, raw[i])
		}
	}
}

func TestDecodeRejectsGarbageAndMissingFields(t *testing.T) {
	c := testCodec(time.Now())
	for _, raw := range []string{
		"",
		"not json",
		"{}",
		`{"bookingReference":"SAH1","tripId":1}`,
	} {
		if c.Decode(raw) != nil {
			t.Fatalf("decode(%q) should return nil", raw)
		}
	}
}

func TestDecodeRejectsWrongSecret(t *testing.T) {
	issuer := testCodec(testDeparture.Add(-time.Hour))
	_, raw := encodeSample(t, issuer)

	other := NewCodec("different-secret")
	if other.Decode(raw) != nil {
		t.Fatal("payload signed with another secret should not decode")
	}
}

func TestSignatureIsSeatOrderInsensitive(t *testing.T) {
	now := testDeparture.Add(-time.Hour)
	c := testCodec(now)

	_, raw := encodeSample(t, c)
	swapped := strings.Replace(raw, `["A1","A2"]`, `["A2","A1"]`, 1)
	if swapped == raw {
		t.Fatal("test payload did not contain expected seat list")
	}
	if c.Decode(swapped) == nil {
		t.Fatal("reordering seats should not invalidate the signature")
	}
}

func TestValidateExpiredAfterDeparture(t *testing.T) {
	issued := testCodec(testDeparture.Add(-time.Hour))
	data, _ := encodeSample(t, issued)

	// 30h past departure is beyond the 24h grace.
	scan := testCodec(testDeparture.Add(30 * time.Hour))
	res := scan.Validate(&data)
	if res.Valid || res.Reason != ReasonExpired {
		t.Fatalf("expected expired ticket, got %+v", res)
	}
}

func TestValidateTooOldQR(t *testing.T) {
	farDeparture := testDeparture.Add(90 * 24 * time.Hour)
	issued := NewCodecAt("test-secret", func() time.Time { return testDeparture })
	data, _, err := issued.Encode("SAH123456ABCD", "Adaeze Obi", 42, []string{"A1"}, farDeparture, "Lagos - Ibadan")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	scan := testCodec(testDeparture.Add(31 * 24 * time.Hour))
	res := scan.Validate(&data)
	if res.Valid || res.Reason != ReasonTooOld {
		t.Fatalf("expected too-old QR, got %+v", res)
	}
}

func TestValidateFreshTicket(t *testing.T) {
	issued := testCodec(testDeparture.Add(-time.Hour))
	data, _ := encodeSample(t, issued)

	scan := testCodec(testDeparture.Add(time.Hour))
	if res := scan.Validate(&data); !res.Valid {
		t.Fatalf("fresh ticket should be valid, got %+v", res)
	}
}

package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatNaira renders an integer naira amount with thousand separators.
func FormatNaira(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s₦%s", sign, formatThousand(amount))
}

// NairaToKobo converts a naira amount to the kobo subunit gateways charge in.
func NairaToKobo(amount int64) int64 {
	return amount * 100
}

// KoboToNaira converts a gateway kobo amount back to whole naira.
func KoboToNaira(amount int64) int64 {
	return amount / 100
}

// ParseNairaToInt parses "₦1,000" or "1000" into an integer naira amount.
func ParseNairaToInt(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "₦")
	s = strings.TrimPrefix(strings.ToLower(s), "ngn")
	replacer := strings.NewReplacer(",", "", ".", "", " ", "")
	s = replacer.Replace(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("invalid naira amount")
	}
	return strconv.ParseInt(s, 10, 64)
}

func formatThousand(n int64) string {
	if n == 0 {
		return "0"
	}
	str := strconv.FormatInt(n, 10)
	var out strings.Builder
	for i, c := range str {
		if i != 0 && (len(str)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(c)
	}
	return out.String()
}

package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Env struct {
	AppAddr string
	GinMode string

	DBUser string
	DBPass string
	DBHost string
	DBName string

	JWTSecret    string
	TicketSecret string

	PaystackSecretKey string
	PaystackBaseURL   string
	OPayMerchantID    string
	OPaySecretKey     string
	OPayBaseURL       string

	// LoyaltyEarnRate is the percentage of the paid amount credited back
	// as points on a successful payment.
	LoyaltyEarnRate int

	// BookingHoldTTL bounds how long a pending, unpaid booking may hold
	// its seats before the sweeper releases them.
	BookingHoldTTL time.Duration
	SweepInterval  time.Duration

	// RedisAddr enables the trip cache when non-empty.
	RedisAddr string

	CORSAllowedOrigins []string
}

func LoadEnv() Env {
	env := Env{
		AppAddr: getString("APP_ADDR", ":8080"),
		GinMode: getString("GIN_MODE", ""),

		DBUser: getString("DB_USER", "root"),
		DBPass: getString("DB_PASS", ""),
		DBHost: getString("DB_HOST", "127.0.0.1:3306"),
		DBName: getString("DB_NAME", "saharam_express"),

		JWTSecret:    getString("JWT_SECRET", "change-me-in-production"),
		TicketSecret: getString("TICKET_SECRET", "change-me-in-production"),

		PaystackSecretKey: getString("PAYSTACK_SECRET_KEY", ""),
		PaystackBaseURL:   getString("PAYSTACK_BASE_URL", "https://api.paystack.co"),
		OPayMerchantID:    getString("OPAY_MERCHANT_ID", ""),
		OPaySecretKey:     getString("OPAY_SECRET_KEY", ""),
		OPayBaseURL:       getString("OPAY_BASE_URL", "https://api.opaycheckout.com"),

		LoyaltyEarnRate: getInt("LOYALTY_EARN_RATE", 5),
		BookingHoldTTL:  getDuration("BOOKING_HOLD_TTL", 30*time.Minute),
		SweepInterval:   getDuration("SWEEP_INTERVAL", 5*time.Minute),

		RedisAddr: getString("REDIS_ADDR", ""),
	}

	if raw := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS")); raw != "" {
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				env.CORSAllowedOrigins = append(env.CORSAllowedOrigins, o)
			}
		}
	}

	return env
}

func getString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

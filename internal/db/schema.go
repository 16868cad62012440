package db

import (
	"database/sql"
	"fmt"
)

// EnsureSchema bootstraps all tables. Statements are idempotent so startup
// is safe against an already-provisioned database.
func EnsureSchema(sqldb *sql.DB) error {
	for _, ddl := range schemaDDL {
		if _, err := sqldb.Exec(ddl); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL,
		phone VARCHAR(100) NOT NULL DEFAULT '',
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(20) NOT NULL DEFAULT 'user',
		loyalty_points BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uniq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

	`CREATE TABLE IF NOT EXISTS routes (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		origin VARCHAR(255) NOT NULL,
		destination VARCHAR(255) NOT NULL,
		distance_km INT NOT NULL DEFAULT 0,
		duration_min INT NOT NULL DEFAULT 0,
		active TINYINT(1) NOT NULL DEFAULT 1,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		KEY idx_routes_pair (origin, destination)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

	`CREATE TABLE IF NOT EXISTS vehicles (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		code VARCHAR(50) NOT NULL,
		model VARCHAR(255) NOT NULL DEFAULT '',
		capacity INT NOT NULL,
		seats_per_row INT NOT NULL DEFAULT 4,
		active TINYINT(1) NOT NULL DEFAULT 1,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uniq_vehicles_code (code)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

	`CREATE TABLE IF NOT EXISTS drivers (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		phone VARCHAR(100) NOT NULL DEFAULT '',
		license_no VARCHAR(100) NOT NULL,
		active TINYINT(1) NOT NULL DEFAULT 1,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uniq_drivers_license (license_no)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

	`CREATE TABLE IF NOT EXISTS trips (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		route_id BIGINT NOT NULL,
		vehicle_id BIGINT NOT NULL,
		driver_id BIGINT NOT NULL,
		departure_at DATETIME NOT NULL,
		arrival_at DATETIME NOT NULL,
		total_seats INT NOT NULL,
		available_seats INT NOT NULL,
		base_price BIGINT NOT NULL,
		active TINYINT(1) NOT NULL DEFAULT 1,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		KEY idx_trips_route (route_id),
		KEY idx_trips_departure (departure_at),
		CONSTRAINT chk_trips_seats CHECK (available_seats >= 0 AND available_seats <= total_seats)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

	`CREATE TABLE IF NOT EXISTS bookings (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		reference VARCHAR(32) NOT NULL,
		trip_id BIGINT NOT NULL,
		user_id BIGINT NULL,
		passenger_name VARCHAR(255) NOT NULL,
		passenger_phone VARCHAR(100) NOT NULL DEFAULT '',
		passenger_email VARCHAR(255) NOT NULL DEFAULT '',
		seat_count INT NOT NULL,
		base_amount BIGINT NOT NULL,
		points_used BIGINT NOT NULL DEFAULT 0,
		points_earned BIGINT NOT NULL DEFAULT 0,
		total_amount BIGINT NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		payment_status VARCHAR(20) NOT NULL DEFAULT 'pending',
		payment_method VARCHAR(50) NOT NULL DEFAULT '',
		payment_reference VARCHAR(100) NOT NULL DEFAULT '',
		qr_payload TEXT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uniq_bookings_reference (reference),
		KEY idx_bookings_trip (trip_id),
		KEY idx_bookings_user (user_id),
		KEY idx_bookings_status (status, payment_status)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

	`CREATE TABLE IF NOT EXISTS booking_seats (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		booking_id BIGINT NOT NULL,
		trip_id BIGINT NOT NULL,
		seat_number VARCHAR(10) NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uniq_trip_seat (trip_id, seat_number),
		KEY idx_booking_seats_booking (booking_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

	`CREATE TABLE IF NOT EXISTS payments (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		booking_id BIGINT NOT NULL,
		reference VARCHAR(100) NOT NULL,
		provider VARCHAR(50) NOT NULL,
		amount BIGINT NOT NULL,
		currency VARCHAR(10) NOT NULL DEFAULT 'NGN',
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		gateway_response TEXT NULL,
		paid_at DATETIME NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uniq_payments_reference (reference),
		KEY idx_payments_booking (booking_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

	`CREATE TABLE IF NOT EXISTS loyalty_transactions (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		booking_id BIGINT NULL,
		points BIGINT NOT NULL,
		reason VARCHAR(50) NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		KEY idx_loyalty_user (user_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,
}

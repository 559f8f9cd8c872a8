package db

import (
	"database/sql"
	"fmt"
	"log"
)

type tableDDL struct {
	name string
	ddl  string
}

// Master data tables are owned elsewhere; they are created here only so a
// fresh database can boot.
var schema = []tableDDL{
	{"destinations", `
CREATE TABLE IF NOT EXISTS destinations (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	country VARCHAR(100) NOT NULL DEFAULT ''
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`},
	{"hotels", `
CREATE TABLE IF NOT EXISTS hotels (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	destination_id BIGINT NOT NULL,
	name VARCHAR(255) NOT NULL,
	room_types JSON NULL,
	board_types JSON NULL,
	currencies JSON NULL,
	KEY idx_destination (destination_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`},
	{"agencies", `
CREATE TABLE IF NOT EXISTS agencies (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	name VARCHAR(255) NOT NULL
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`},
	{"users", `
CREATE TABLE IF NOT EXISTS users (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	username VARCHAR(100) NOT NULL,
	email VARCHAR(255) NOT NULL,
	password_hash VARCHAR(255) NOT NULL,
	role VARCHAR(50) NOT NULL DEFAULT 'sales',
	status VARCHAR(50) NOT NULL DEFAULT 'active',
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_username (username),
	UNIQUE KEY uniq_email (email)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`},
	{"sources", `
CREATE TABLE IF NOT EXISTS sources (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	is_agency TINYINT(1) NOT NULL DEFAULT 0
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`},
	{"proposals", `
CREATE TABLE IF NOT EXISTS proposals (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	reference VARCHAR(64) NOT NULL,
	source_id BIGINT NOT NULL DEFAULT 0,
	agency_id BIGINT NULL,
	sales_person_id BIGINT NOT NULL DEFAULT 0,
	destination_ids JSON NOT NULL,
	estimated_nights INT NOT NULL DEFAULT 0,
	status VARCHAR(20) NOT NULL DEFAULT 'NEW',
	overall_margin VARCHAR(32) NOT NULL DEFAULT '',
	commission VARCHAR(32) NOT NULL DEFAULT '',
	pdf_language VARCHAR(10) NOT NULL DEFAULT '',
	display_currency VARCHAR(3) NOT NULL DEFAULT '',
	proposal_currency VARCHAR(3) NOT NULL DEFAULT '',
	start_date VARCHAR(10) NOT NULL DEFAULT '',
	end_date VARCHAR(10) NOT NULL DEFAULT '',
	itinerary JSON NOT NULL,
	copied_from BIGINT NULL,
	version INT NOT NULL DEFAULT 1,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	confirmed_at DATETIME NULL,
	UNIQUE KEY uniq_reference (reference),
	KEY idx_status (status),
	KEY idx_sales_person (sales_person_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`},
	{"vouchers", `
CREATE TABLE IF NOT EXISTS vouchers (
	id CHAR(36) PRIMARY KEY,
	proposal_id BIGINT NOT NULL,
	proposal_reference VARCHAR(64) NOT NULL,
	service_type VARCHAR(20) NOT NULL,
	service_id INT NOT NULL,
	status VARCHAR(20) NOT NULL,
	source_id BIGINT NOT NULL DEFAULT 0,
	agency_id BIGINT NULL,
	sales_person_id BIGINT NOT NULL DEFAULT 0,
	guests JSON NOT NULL,
	adults INT NOT NULL DEFAULT 0,
	children INT NOT NULL DEFAULT 0,
	total_pax INT NOT NULL DEFAULT 0,
	notes TEXT NOT NULL,
	service_data JSON NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	UNIQUE KEY uniq_proposal_service (proposal_id, service_type, service_id),
	KEY idx_status (status)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`},
}

// EnsureSchema creates the tables this service reads and writes when they
// are missing. Existing tables are left alone.
func EnsureSchema(conn *sql.DB) error {
	if conn == nil {
		return fmt.Errorf("db not available")
	}
	for _, t := range schema {
		if HasTable(conn, t.name) {
			continue
		}
		if _, err := conn.Exec(t.ddl); err != nil {
			return fmt.Errorf("create table %s: %w", t.name, err)
		}
		log.Printf("[DB] created table %s", t.name)
	}
	return nil
}

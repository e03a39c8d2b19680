package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS license_plates (
		id                    BIGSERIAL PRIMARY KEY,
		plate_number          TEXT NOT NULL,
		confidence            INT NOT NULL,
		confidence_ocr        INT,
		image_url             TEXT NOT NULL,
		processed_image_url   TEXT,
		province_code         TEXT,
		province_name         TEXT,
		vehicle_type          TEXT,
		plate_type            TEXT,
		plate_format          TEXT,
		plate_serial          TEXT,
		registration_number   TEXT,
		bounding_box          JSONB,
		normalized_plate      TEXT,
		original_plate        TEXT,
		detected_color        TEXT,
		ocr_engine            TEXT,
		is_valid_format       BOOLEAN,
		format_description    TEXT,
		vehicle_category      TEXT,
		plate_type_info       JSONB,
		image_source          TEXT,
		processing_time_ms    INT,
		has_violation         BOOLEAN NOT NULL DEFAULT FALSE,
		violation_types       JSONB,
		violation_description TEXT,
		is_verified           BOOLEAN NOT NULL DEFAULT FALSE,
		verified_by           TEXT,
		verified_at           TIMESTAMPTZ,
		created_at            TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at            TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_license_plates_created_at ON license_plates(created_at);`,
	`CREATE INDEX IF NOT EXISTS idx_license_plates_plate_number ON license_plates(plate_number);`,
	`CREATE INDEX IF NOT EXISTS idx_license_plates_confidence ON license_plates(confidence);`,
	`CREATE INDEX IF NOT EXISTS idx_license_plates_province_code ON license_plates(province_code);`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_license_plates_confidence') THEN
			ALTER TABLE license_plates ADD CONSTRAINT chk_license_plates_confidence
				CHECK (confidence BETWEEN 0 AND 100);
		END IF;
	END
	$$;`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}

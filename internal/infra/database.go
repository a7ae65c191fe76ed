package infra

import (
	"fmt"

	"poultryops/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate
// for all tables, then applies the idempotent SQL patches GORM cannot express
// (sequences, partial indexes).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations is shared with integration tests so a containerized database
// gets the identical schema.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Store{},
		&model.StoreStaff{},
		&model.Supplier{},
		&model.SKU{},
		&model.LedgerEntry{},
		&model.CurrentStock{},
		&model.Purchase{},
		&model.WastageConfig{},
		&model.ProcessingEntry{},
		&model.Sale{},
		&model.SaleItem{},
		&model.StockTransfer{},
		&model.DailySettlement{},
		&model.VarianceLog{},
		&model.StaffPoint{},
		&model.PointsConfig{},
		&model.GradingConfig{},
		&model.MonthlyPerformance{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// Receipt numbers come from a sequence so concurrent sales never collide.
		`CREATE SEQUENCE IF NOT EXISTS sales_receipt_seq START 1`,

		// Partial index for the pending-variance view managers live in.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_variance_logs_pending') THEN
		    CREATE INDEX idx_variance_logs_pending
		        ON variance_logs (store_id, created_at)
		        WHERE status = 'PENDING';
		  END IF;
		END $$`,

		// Draft settlements are unique per (store, date) via the model index;
		// this partial index speeds the daily sweep's settled-store probe.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_settlements_date') THEN
		    CREATE INDEX idx_settlements_date ON daily_settlements (settlement_date);
		  END IF;
		END $$`,
	}
	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("schema patch: %w", err)
		}
	}
	return nil
}

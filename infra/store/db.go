// Package store persists the planning subsystem's data through GORM. The
// demand events and live fleet records are owned by the booking side and are
// only ever read here.
package store

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Config holds the database connection settings.
type Config struct {
	Driver                 string `json:"driver"` // "postgres" or "sqlite"
	DSN                    string `json:"dsn"`
	MaxOpenConns           int    `json:"max_open_conns"`
	MaxIdleConns           int    `json:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `json:"conn_max_lifetime_minutes"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Driver == "" {
		c.Driver = "postgres"
	}
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = 10
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = 5
	}
	if c.ConnMaxLifetimeMinutes <= 0 {
		c.ConnMaxLifetimeMinutes = 30
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Driver != "postgres" && c.Driver != "sqlite" {
		return fmt.Errorf("store: unknown driver %q", c.Driver)
	}
	if c.DSN == "" {
		return fmt.Errorf("store: dsn is required")
	}
	return nil
}

// Open connects to the database and runs migrations. Zero pool values are
// normalized first: with no idle connections retained, a shared in-memory
// sqlite database is dropped between statements.
func Open(cfg Config) (*gorm.DB, error) {
	cfg.SetDefaults()
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		dialector = postgres.Open(cfg.DSN)
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	if err := db.AutoMigrate(
		&DemandEvent{},
		&DemandAggregate{},
		&AvailabilitySnapshot{},
		&FleetVehicle{},
		&DemandForecast{},
		&RebalancingPlan{},
		&AdviceRun{},
	); err != nil {
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	return db, nil
}

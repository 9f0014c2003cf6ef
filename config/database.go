package config

import (
	"fmt"
	"log"
	"os"
	"sync/atomic"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database wraps a GORM handle behind a readiness gate. Opening never
// fails the process: connectivity is probed in the background and the
// HTTP layer answers 503 until the store is reachable and migrated.
type Database struct {
	gdb   *gorm.DB
	ready atomic.Bool
}

// OpenDatabase builds a MySQL-backed Database from configuration and
// starts the background readiness probe. The returned handle is usable
// immediately; queries fail until the store comes up.
func OpenDatabase(modelDefs ...interface{}) *Database {
	cfg := Get()
	var dsn string
	if cfg.DatabaseURI != "" {
		dsn = cfg.DatabaseURI
	} else {
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBName,
		)
	}

	gLogger := logger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             2 * time.Second,
			LogLevel:                  toGormLogLevel(cfg.LogLevel),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	gormCfg := &gorm.Config{
		Logger:                                   gLogger,
		DisableForeignKeyConstraintWhenMigrating: true,
		// The readiness probe owns connectivity checks; Open must not dial.
		DisableAutomaticPing: true,
	}

	gdb, err := gorm.Open(mysql.Open(dsn), gormCfg)
	if err != nil {
		// mysql.Open only fails on a malformed DSN, which no retry fixes.
		log.Fatalf("invalid database configuration: %v", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		log.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	d := &Database{gdb: gdb}
	go d.probe(modelDefs...)
	return d
}

// NewDatabase wraps an already-open GORM handle, migrates the given
// models and marks the gate ready. Used by tests with an in-memory store.
func NewDatabase(gdb *gorm.DB, modelDefs ...interface{}) (*Database, error) {
	d := &Database{gdb: gdb}
	if len(modelDefs) > 0 {
		if err := gdb.AutoMigrate(modelDefs...); err != nil {
			return nil, err
		}
	}
	d.ready.Store(true)
	return d, nil
}

// Gorm returns the underlying GORM handle.
func (d *Database) Gorm() *gorm.DB {
	return d.gdb
}

// Ready reports whether the store is reachable and migrated.
func (d *Database) Ready() bool {
	return d.ready.Load()
}

// probe pings until the store answers, then migrates and applies the
// owner bootstrap. Afterwards the flag tracks periodic pings so a store
// outage flips health checks back to failing.
func (d *Database) probe(modelDefs ...interface{}) {
	sqlDB, err := d.gdb.DB()
	if err != nil {
		log.Printf("database probe disabled: %v", err)
		return
	}

	migrated := false
	for {
		if err := sqlDB.Ping(); err != nil {
			if d.ready.CompareAndSwap(true, false) {
				log.Printf("database unreachable, failing readiness: %v", err)
			}
			time.Sleep(3 * time.Second)
			continue
		}

		if !migrated {
			if err := d.migrate(modelDefs...); err != nil {
				log.Printf("auto migration failed, retrying: %v", err)
				time.Sleep(3 * time.Second)
				continue
			}
			migrated = true
		}

		if d.ready.CompareAndSwap(false, true) {
			log.Println("database ready")
		}
		time.Sleep(15 * time.Second)
	}
}

func (d *Database) migrate(modelDefs ...interface{}) error {
	if len(modelDefs) > 0 {
		if err := d.gdb.AutoMigrate(modelDefs...); err != nil {
			return err
		}
	}

	// Operator-driven owner bootstrap; see AppConfig.OwnerUsername.
	cfg := Get()
	if cfg.OwnerUsername != "" {
		res := d.gdb.Table("users").
			Where("username = ? AND role <> ?", cfg.OwnerUsername, "owner").
			Update("role", "owner")
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			log.Printf("promoted %s to owner", cfg.OwnerUsername)
		}
	}
	return nil
}

// toGormLogLevel maps application LogLevel to GORM's logger level.
func toGormLogLevel(level string) logger.LogLevel {
	switch level {
	case "debug":
		// GORM 'Info' shows SQL; use with caution
		return logger.Info
	case "info", "", "warn":
		return logger.Warn
	case "error":
		return logger.Error
	case "silent":
		return logger.Silent
	default:
		return logger.Warn
	}
}

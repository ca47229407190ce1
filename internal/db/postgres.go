package db

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	"heli-training/logbook/internal/config"
)

var DB *sqlx.DB

// InitSQLX returns a sqlx handle on the same database as orm. Postgres gets
// its own pool; SQLite shares the gorm connection.
func InitSQLX(cfg config.Config, orm *gorm.DB) (*sqlx.DB, error) {
	var err error
	if cfg.Postgres.Enabled() {
		err = InitPostgres(cfg.Postgres.DSN())
	} else {
		DB, err = WrapORM(orm)
	}
	if err != nil {
		return nil, err
	}
	return DB, nil
}

func InitPostgres(dsn string) error {
	var err error

	for i := 0; i < 10; i++ {
		DB, err = sqlx.Connect("postgres", dsn)
		if err == nil {
			return nil
		}
		time.Sleep(500 * time.Millisecond)
	}
	return fmt.Errorf("failed to connect to postgres: %w", err)
}

// WrapORM exposes a gorm SQLite connection to sqlx.
func WrapORM(orm *gorm.DB) (*sqlx.DB, error) {
	sqlDB, err := orm.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql handle: %w", err)
	}
	return sqlx.NewDb(sqlDB, "sqlite3"), nil
}

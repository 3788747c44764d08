package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/codey22/notespace/internal/config"
	"github.com/codey22/notespace/internal/logging"
	"github.com/codey22/notespace/internal/note"
	"github.com/codey22/notespace/internal/prefs"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const slowQueryThreshold = 200 * time.Millisecond

func gormConfig(log logging.Logger) *gorm.Config {
	return &gorm.Config{
		Logger:         logging.NewGormLogger(log, slowQueryThreshold),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}
}

// Connect opens the store. Postgres goes through lib/pq so unique violations
// surface as *pq.Error.
func Connect(driver, dsn string, log logging.Logger) (*gorm.DB, error) {
	switch driver {
	case config.DriverPostgres:
		sqlDB, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, err
		}
		gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gormConfig(log))
		if err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		return gdb, nil
	case config.DriverSQLite:
		gdb, err := gorm.Open(sqlite.Open(dsn), gormConfig(log))
		if err != nil {
			return nil, err
		}
		// sqlite serialises writers anyway; one connection keeps
		// in-memory databases alive and shared.
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		return gdb, nil
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
}

func Close(gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func AutoMigrateAndIndexes(gdb *gorm.DB) error {
	// Tables; uq_notes_slug comes from the struct tag.
	if err := gdb.AutoMigrate(
		&note.Note{},
		&prefs.Preferences{},
	); err != nil {
		return err
	}

	// Both postgres and sqlite support partial indexes with this syntax.
	stmts := []string{
		`create index if not exists idx_notes_owner_list on notes(owner_id, pinned desc, updated_at desc);`,
		`create index if not exists idx_notes_reapable on notes(updated_at)
where title = '' and content = '' and logo_text = 'NoteSpace';`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}

	return nil
}

// 文件路径: internal/migrations/runner.go
// 模块说明: 负责 kv 表结构的升级与回滚，底层交给 goose。
package migrations

import (
	"database/sql"

	"github.com/pressly/goose/v3"
)

func setup() error {
	goose.SetBaseFS(SQLite)
	return goose.SetDialect("sqlite3")
}

// Up migrates the SQLite schema to the latest version.
func Up(db *sql.DB) error {
	if err := setup(); err != nil {
		return err
	}
	return goose.Up(db, "sqlite")
}

// Down rolls back a single migration.
func Down(db *sql.DB) error {
	if err := setup(); err != nil {
		return err
	}
	return goose.Down(db, "sqlite")
}

// Status prints migration status.
func Status(db *sql.DB) error {
	if err := setup(); err != nil {
		return err
	}
	return goose.Status(db, "sqlite")
}

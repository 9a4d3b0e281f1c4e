// Package txdb lets gorm based repositories join a transaction that was
// opened on the underlying *sql.DB, so services can put several repositories
// (gorm and raw SQL alike) behind one BeginTx/Commit.
package txdb

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// Bind returns a gorm handle whose statements run on tx.
func Bind(db *gorm.DB, tx *sql.Tx) *gorm.DB {
	if tx == nil {
		return db
	}
	bound := db.Session(&gorm.Session{NewDB: true, Context: context.Background()})
	bound.Statement.ConnPool = tx
	return bound
}

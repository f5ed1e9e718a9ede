// Package repository is the data-access layer.
//
// Every repository is an interface with a SQLite implementation built on
// database.TxQuerier, so the same constructor works against the pool or
// inside database.WithTx:
//
//	err := database.WithTx(ctx, db, func(tx *sql.Tx) error {
//	    return repository.NewSQLiteLeaveRepo(tx).Create(ctx, leave)
//	})
//
// Lookups that find nothing return pkg.ErrNotFound.
package repository

import (
	"strings"
)

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func stringArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

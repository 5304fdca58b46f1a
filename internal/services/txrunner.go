// Package services holds the batch pipeline passes (extraction, cleanup,
// chapter repair, the audit cycle, candidate generation) and the query
// surface behind the review UI. Every mutating pass runs inside a single
// transaction committed once at the end, so an interrupted run leaves the
// store unchanged.
package services

import (
	"context"

	"gorm.io/gorm"
)

// runTx executes fn inside one transaction. Dry runs execute the full
// read/compute path and then roll back, so reported counts reflect exactly
// what a real run would have done.
func runTx(ctx context.Context, db *gorm.DB, dryRun bool, fn func(tx *gorm.DB) error) error {
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if dryRun {
		return tx.Rollback().Error
	}
	return tx.Commit().Error
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func intPtr(n int) *int { return &n }

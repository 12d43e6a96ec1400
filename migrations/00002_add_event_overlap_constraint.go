package migrations

import (
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigration(upAddEventOverlapConstraint, downAddEventOverlapConstraint)
}

// The application checks for overlaps before inserting, but that check
// alone cannot rule out two transactions racing past each other. This
// exclusion constraint makes the database reject the second insert of any
// pair of blocking-status events with overlapping half-open intervals on
// the same space.
func upAddEventOverlapConstraint(tx *sql.Tx) error {
	if _, err := tx.Exec("CREATE EXTENSION IF NOT EXISTS btree_gist"); err != nil {
		return fmt.Errorf("create btree_gist extension: %w", err)
	}

	query := `
		ALTER TABLE events
		ADD CONSTRAINT events_no_overlap
		EXCLUDE USING gist (
			space_id WITH =,
			tsrange(start_datetime, end_datetime, '[)') WITH &&
		)
		WHERE (status IN ('pending', 'confirmed') AND deleted_at IS NULL)
	`
	if _, err := tx.Exec(query); err != nil {
		return fmt.Errorf("add exclusion constraint: %w", err)
	}
	return nil
}

func downAddEventOverlapConstraint(tx *sql.Tx) error {
	if _, err := tx.Exec("ALTER TABLE events DROP CONSTRAINT IF EXISTS events_no_overlap"); err != nil {
		return fmt.Errorf("drop exclusion constraint: %w", err)
	}
	return nil
}

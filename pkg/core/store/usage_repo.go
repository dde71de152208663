package store

import (
	"context"
	"fmt"
	"time"
)

// UsageEntry records a single reconciliation request for audit and billing.
type UsageEntry struct {
	ID         int64
	UserID     string
	ChannelID  string
	Mode       string
	VendorFile string
	SOAFile    string
	Status     string
	Rating     *int
	CreatedAt  time.Time
}

// localTime returns the current time in the office timezone. Falls back to
// UTC if the zone database is unavailable on the host.
func localTime() time.Time {
	loc, err := time.LoadLocation("Asia/Dubai")
	if err != nil {
		return time.Now().UTC()
	}
	return time.Now().In(loc)
}

// LogUsage inserts a usage record and returns its id so a later rating can
// be attached to it.
func LogUsage(ctx context.Context, entry UsageEntry) (int64, error) {
	if pool == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	var id int64
	err := pool.QueryRow(ctx,
		`INSERT INTO usage_logs (user_id, channel_id, mode, vendor_file, soa_file, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		entry.UserID, entry.ChannelID, entry.Mode, entry.VendorFile, entry.SOAFile, entry.Status, localTime(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert usage log: %w", err)
	}
	return id, nil
}

// LogRating attaches a 1-5 rating to an existing usage record.
func LogRating(ctx context.Context, usageID int64, rating int) error {
	if pool == nil {
		return fmt.Errorf("database not initialized")
	}
	if rating < 1 || rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5, got %d", rating)
	}

	tag, err := pool.Exec(ctx,
		`UPDATE usage_logs SET rating = $1 WHERE id = $2`,
		rating, usageID,
	)
	if err != nil {
		return fmt.Errorf("failed to update rating: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("no usage log with id %d", usageID)
	}
	return nil
}

// RecentUsage returns the most recent entries, newest first.
func RecentUsage(ctx context.Context, limit int) ([]UsageEntry, error) {
	if pool == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	rows, err := pool.Query(ctx,
		`SELECT id, user_id, channel_id, mode,
		        COALESCE(vendor_file, ''), COALESCE(soa_file, ''),
		        status, rating, created_at
		 FROM usage_logs
		 ORDER BY created_at DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query usage logs: %w", err)
	}
	defer rows.Close()

	var entries []UsageEntry
	for rows.Next() {
		var e UsageEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.ChannelID, &e.Mode, &e.VendorFile, &e.SOAFile, &e.Status, &e.Rating, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan usage log: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

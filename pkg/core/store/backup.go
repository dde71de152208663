package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const backupInterval = 24 * time.Hour

// BackupToDrive exports the usage_logs table to CSV and uploads it to the
// Google Drive folder named by DRIVE_BACKUP_FOLDER_ID. Credentials come
// from the service account file at GOOGLE_APPLICATION_CREDENTIALS.
func BackupToDrive(ctx context.Context) error {
	folderID := os.Getenv("DRIVE_BACKUP_FOLDER_ID")
	if folderID == "" {
		return fmt.Errorf("DRIVE_BACKUP_FOLDER_ID environment variable not set")
	}

	entries, err := RecentUsage(ctx, 100000)
	if err != nil {
		return fmt.Errorf("failed to export usage logs: %w", err)
	}

	var sb strings.Builder
	w := csv.NewWriter(&sb)
	w.Write([]string{"id", "user_id", "channel_id", "mode", "vendor_file", "soa_file", "status", "rating", "created_at"})
	for _, e := range entries {
		rating := ""
		if e.Rating != nil {
			rating = strconv.Itoa(*e.Rating)
		}
		w.Write([]string{
			strconv.FormatInt(e.ID, 10),
			e.UserID, e.ChannelID, e.Mode, e.VendorFile, e.SOAFile, e.Status,
			rating,
			e.CreatedAt.Format(time.RFC3339),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to build backup CSV: %w", err)
	}

	srv, err := drive.NewService(ctx, option.WithCredentialsFile(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")))
	if err != nil {
		return fmt.Errorf("failed to create drive client: %w", err)
	}

	name := fmt.Sprintf("usage_logs_%s.csv", localTime().Format("2006-01-02"))
	meta := &drive.File{Name: name, Parents: []string{folderID}, MimeType: "text/csv"}
	if _, err := srv.Files.Create(meta).Media(strings.NewReader(sb.String())).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to upload backup: %w", err)
	}

	fmt.Printf("[store] usage log backup uploaded: %s (%d rows)\n", name, len(entries))
	return nil
}

// StartBackupLoop runs BackupToDrive once a day until ctx is cancelled.
// Failures are logged and retried on the next tick.
func StartBackupLoop(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(backupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := BackupToDrive(ctx); err != nil {
					fmt.Printf("[store] backup failed: %v\n", err)
				}
			}
		}
	}()
}

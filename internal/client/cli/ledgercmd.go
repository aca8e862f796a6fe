package cli

import (
	"context"
	"fmt"
	"log"
)

// History prints the caller's accepted scans, newest first.
func (a *App) History(ctx context.Context) error {
	s := a.sessions.Current()
	if s == nil {
		printlnFn("Please log in first.")
		return nil
	}

	records, err := a.client.History(ctx, s.Token)
	if err != nil {
		log.Printf("History error: %s", err.Error())
		return err
	}

	if len(records) == 0 {
		printlnFn("No scans yet.")
		return nil
	}
	for _, r := range records {
		printlnFn(fmt.Sprintf("%s  %s", r.RecordedAt.Format("2006-01-02 15:04:05"), r.CodeValue))
	}
	return nil
}

// Export asks the server for a ledger snapshot and prints the download URL.
func (a *App) Export(ctx context.Context) error {
	s := a.sessions.Current()
	if s == nil {
		printlnFn("Please log in first.")
		return nil
	}

	key, url, err := a.client.ExportLedger(ctx, s.Token)
	if err != nil {
		log.Printf("Export error: %s", err.Error())
		return err
	}

	printlnFn("Snapshot uploaded:", key)
	printlnFn("Download (valid for a limited time):", url)
	return nil
}

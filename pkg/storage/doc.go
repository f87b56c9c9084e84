// Package storage manages the bot's data directory.
//
// Both durable artifacts (the grade history and the browser session) live
// in one directory that is created on first use. Every write goes through
// WriteFile, which writes to a temporary file in the same directory, syncs
// it and renames it over the target, so a crash mid-write never leaves a
// truncated file behind.
//
// Usage:
//
//	manager, err := storage.NewManager("data")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = manager.WriteFile("grades_history.json", data, 0644)
package storage

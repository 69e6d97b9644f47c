// Command snaptool inspects and restores profile snapshot files. Without
// -restore it prints the snapshot header and state; with -restore it
// writes the snapshot blob back into the profile store, overwriting the
// user's current row.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"oratoria.app/internal/persistence/profile"
	"oratoria.app/internal/persistence/snapshot"
	"oratoria.app/internal/progress"
)

func main() {
	var (
		file    = flag.String("file", "", "snapshot file path (empty: newest for -user under -data)")
		dataDir = flag.String("data", "./data", "runtime data directory")
		user    = flag.String("user", "", "user id (used to find the newest snapshot)")
		restore = flag.Bool("restore", false, "write the snapshot blob into the profile store")
		dbPath  = flag.String("db", "", "profile db path (default: <data>/profiles.db)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[snaptool] ", log.LstdFlags|log.Lmicroseconds)

	path := *file
	if path == "" {
		if *user == "" {
			logger.Fatalf("either -file or -user is required")
		}
		path = snapshot.Latest(*dataDir, *user)
		if path == "" {
			logger.Fatalf("no snapshots for user %s under %s", *user, *dataDir)
		}
	}

	header, blob, err := snapshot.Read(path)
	if err != nil {
		logger.Fatalf("read snapshot: %v", err)
	}

	// Decode through the engine's state loader so a corrupt blob is
	// caught here and never restored.
	state, err := progress.Decode(blob)
	if err != nil {
		logger.Fatalf("snapshot blob does not decode: %v", err)
	}

	fmt.Printf("file:     %s\n", path)
	fmt.Printf("user:     %s\n", header.UserID)
	fmt.Printf("saved_at: %s\n", header.SavedAt.Format(time.RFC3339))
	fmt.Printf("profile:  name=%q level=%d xp=%d coins=%d\n", state.Name, state.Level, state.XP, state.Coins)

	if !*restore {
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, blob, "", "  "); err == nil {
			fmt.Println(pretty.String())
		}
		return
	}

	db := *dbPath
	if db == "" {
		db = *dataDir + "/profiles.db"
	}
	store, err := profile.OpenSQLite(db)
	if err != nil {
		logger.Fatalf("open profile store: %v", err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Save(ctx, header.UserID, blob); err != nil {
		logger.Fatalf("restore: %v", err)
	}
	logger.Printf("restored user=%s from %s", header.UserID, path)
}

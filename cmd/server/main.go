package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"oratoria.app/internal/catalog"
	"oratoria.app/internal/feedback"
	"oratoria.app/internal/persistence/profile"
	"oratoria.app/internal/persistence/snapshot"
	"oratoria.app/internal/session"
	"oratoria.app/internal/transport/ws"
	"oratoria.app/internal/tuning"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		configDir  = flag.String("configs", "./configs", "config directory (catalog overrides + tuning)")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	cat, err := catalog.Load(*configDir)
	if err != nil {
		logger.Fatalf("load catalog: %v", err)
	}

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", tp)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}

	store, err := profile.OpenSQLite(filepath.Join(*dataDir, "profiles.db"))
	if err != nil {
		logger.Fatalf("open profile store: %v", err)
	}

	saver := profile.NewSaver(store, time.Duration(tune.SaveDebounceMs)*time.Millisecond, logger)
	if tune.SnapshotEverySaves > 0 {
		every := tune.SnapshotEverySaves
		saver.OnWrite(func(userID string, writes int) {
			if writes%every != 0 {
				return
			}
			go exportSnapshot(store, *dataDir, userID, logger)
		})
	}

	hub := session.NewHub(cat, store, saver, logger)
	gen := feedback.New(tune.FeedbackURL, time.Duration(tune.FeedbackTimeoutMs)*time.Millisecond, logger)

	ctx, cancel := signalContext()
	defer cancel()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/v1/feedback", feedbackHandler(gen))
	wsSrv := ws.NewServer(hub, cat, logger,
		time.Duration(tune.WSReadTimeoutS)*time.Second,
		time.Duration(tune.WSWriteTimeoutS)*time.Second)
	mux.HandleFunc("/v1/ws", wsSrv.Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}

	// Orderly drain: stop session loops, flush pending saves, then close
	// the store.
	hub.Close()
	if err := saver.Close(); err != nil {
		logger.Printf("saver close: %v", err)
	}
	if err := store.Close(); err != nil {
		logger.Printf("store close: %v", err)
	}
}

func exportSnapshot(store profile.Store, dataDir, userID string, logger *log.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	blob, err := store.Load(ctx, userID)
	if err != nil {
		logger.Printf("snapshot load %s: %v", userID, err)
		return
	}
	path := snapshot.PathFor(dataDir, userID, time.Now())
	if err := snapshot.Write(path, userID, blob); err != nil {
		logger.Printf("snapshot write %s: %v", userID, err)
		return
	}
	logger.Printf("snapshot exported user=%s file=%s", userID, filepath.Base(path))
}

func feedbackHandler(gen *feedback.Generator) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			QuestTitle string `json:"quest_title"`
			Submission string `json:"submission"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.QuestTitle) == "" {
			http.Error(rw, "quest_title is required", http.StatusBadRequest)
			return
		}
		text := gen.QuestFeedback(r.Context(), req.QuestTitle, req.Submission)
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(map[string]string{"feedback": text})
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

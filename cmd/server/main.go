package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"bloombroker.app/internal/persistence/journal"
	"bloombroker.app/internal/persistence/save"
	"bloombroker.app/internal/sim/catalogs"
	"bloombroker.app/internal/sim/shop"
	"bloombroker.app/internal/sim/tuning"
	"bloombroker.app/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		sessionID  = flag.String("session", "shop_1", "session id (doubles as the save slot)")
		seed       = flag.Int64("seed", 0, "rng seed (0 = derive from clock)")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		fresh      = flag.Bool("fresh", false, "ignore any stored save and start a new game")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		logger.Fatalf("load catalogs: %v", err)
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

	sessionDir := filepath.Join(*dataDir, "sessions", *sessionID)
	_ = os.MkdirAll(sessionDir, 0o755)

	store, err := save.Open(filepath.Join(*dataDir, "saves.db"))
	if err != nil {
		logger.Fatalf("open save store: %v", err)
	}
	defer store.Close()

	sess, err := shop.New(shop.Config{ID: *sessionID, Tune: tune, Seed: *seed}, cats)
	if err != nil {
		logger.Fatalf("session: %v", err)
	}

	if !*fresh {
		blob, err := store.Get(*sessionID)
		if err != nil {
			logger.Fatalf("read save: %v", err)
		}
		if blob != nil {
			sv, err := shop.DecodeSave(blob)
			if err != nil {
				logger.Fatalf("decode save: %v", err)
			}
			if err := sess.Import(sv); err != nil {
				logger.Fatalf("import save: %v", err)
			}
			logger.Printf("resumed session=%s tick=%d", *sessionID, sess.CurrentTick())
		}
	}
	sess.SetSaveSink(store)

	activity := journal.NewActivityJournal(sessionDir)
	defer activity.Close()
	sess.SetJournal(activity)

	ctx, cancel := signalContext()
	defer cancel()

	go func() {
		if err := sess.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("session stopped: %v", err)
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")

		m := sess.Metrics()

		// Minimal Prometheus exposition format.
		fmt.Fprintf(rw, "# HELP bloombroker_session_tick Current session tick.\n")
		fmt.Fprintf(rw, "# TYPE bloombroker_session_tick gauge\n")
		fmt.Fprintf(rw, "bloombroker_session_tick{session=%q} %d\n", *sessionID, m.Tick)

		fmt.Fprintf(rw, "# HELP bloombroker_session_gp Current gold pieces on hand.\n")
		fmt.Fprintf(rw, "# TYPE bloombroker_session_gp gauge\n")
		fmt.Fprintf(rw, "bloombroker_session_gp{session=%q} %d\n", *sessionID, m.GP)

		fmt.Fprintf(rw, "# HELP bloombroker_session_inventory Plants held in inventory.\n")
		fmt.Fprintf(rw, "# TYPE bloombroker_session_inventory gauge\n")
		fmt.Fprintf(rw, "bloombroker_session_inventory{session=%q} %d\n", *sessionID, m.Inventory)

		fmt.Fprintf(rw, "# HELP bloombroker_session_clients Connected clients.\n")
		fmt.Fprintf(rw, "# TYPE bloombroker_session_clients gauge\n")
		fmt.Fprintf(rw, "bloombroker_session_clients{session=%q} %d\n", *sessionID, m.Clients)

		auctionActive := 0
		if m.AuctionActive {
			auctionActive = 1
		}
		fmt.Fprintf(rw, "# HELP bloombroker_session_auction_active Whether an auction is live.\n")
		fmt.Fprintf(rw, "# TYPE bloombroker_session_auction_active gauge\n")
		fmt.Fprintf(rw, "bloombroker_session_auction_active{session=%q} %d\n", *sessionID, auctionActive)

		fmt.Fprintf(rw, "# HELP bloombroker_session_step_ms Last tick step duration in milliseconds.\n")
		fmt.Fprintf(rw, "# TYPE bloombroker_session_step_ms gauge\n")
		fmt.Fprintf(rw, "bloombroker_session_step_ms{session=%q} %.3f\n", *sessionID, m.StepMS)
	})
	mux.HandleFunc("/v1/ws", ws.NewServer(sess, logger).Handler())

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

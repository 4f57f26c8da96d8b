package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/sightline-data/linedup/internal/api"
	"github.com/sightline-data/linedup/internal/config"
	"github.com/sightline-data/linedup/internal/linedb"
	"github.com/sightline-data/linedup/internal/monitoring"
)

var (
	listen     = flag.String("listen", ":8080", "Listen address")
	dbFile     = flag.String("db", "linedup.db", "SQLite database file (empty disables persistence)")
	configFile = flag.String("config", "", "JSON file with default reduction tuning")
	debug      = flag.Bool("debug", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	monitoring.SetLogger(log.Printf)
	monitoring.SetDebug(*debug)

	defaults := config.EmptyReduceConfig()
	if *configFile != "" {
		var err error
		defaults, err = config.LoadReduceConfig(*configFile)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}

	var db *linedb.DB
	if *dbFile != "" {
		var err error
		db, err = linedb.Open(*dbFile)
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if err := db.MigrateUp(); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
	} else {
		log.Print("no database file configured, persistence disabled")
	}

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// HTTP server goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()

		mux := api.NewServer(db, defaults).ServeMux()

		h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			monitoring.Debugf("got request %q", r.URL.Path)
			mux.ServeHTTP(w, r)
		})

		server := &http.Server{
			Addr:    *listen,
			Handler: h,
		}

		// Start server in a goroutine so it doesn't block
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		log.Printf("listening on %s", *listen)

		// Wait for context cancellation to shut down server
		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}

		log.Printf("HTTP server routine stopped")
	}()

	wg.Wait()
	log.Printf("Graceful shutdown complete")
}

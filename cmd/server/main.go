/*
main.go - Availability engine server entry point

PURPOSE:
  Boots the HTTP server: loads configuration from flags and environment,
  opens the sqlite store, mounts the API router, and runs until SIGINT
  or SIGTERM with a bounded graceful shutdown.

CONFIGURATION:
  -port / PORT          Listen port (default 8080)
  -db / DATABASE_PATH   Sqlite file path (default availability.db)
  -tz / TIMEZONE        Timezone label stamped on aggregated responses
                        (default UTC; a label, not a conversion)

  A .env file in the working directory is loaded when present; flags
  win over environment values.
*/
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/warp/availability-engine/api"
	"github.com/warp/availability-engine/store/sqlite"
)

func main() {
	_ = godotenv.Load()

	port := flag.String("port", envOr("PORT", "8080"), "server port")
	dbPath := flag.String("db", envOr("DATABASE_PATH", "availability.db"), "sqlite database path")
	timezone := flag.String("tz", envOr("TIMEZONE", "UTC"), "timezone label for aggregated responses")
	flag.Parse()

	db, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	handler := api.NewHandler(db, *timezone)
	router := api.NewRouter(handler)

	srv := &http.Server{
		Addr:         ":" + *port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("availability engine listening on :%s (db=%s)", *port, *dbPath)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("forced shutdown: %v", err)
	}
	log.Println("server stopped")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

package main

import (
	"log"
	"net/http"

	"memematch/internal/config"
	"memematch/internal/db"
	"memematch/internal/server"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	cfg := config.Load()

	conn, err := db.Open()
	if err != nil {
		log.Printf("running without database: %v", err)
		conn = nil
	} else {
		if err := db.Configure(conn, cfg); err != nil {
			log.Fatalf("database pool setup failed: %v", err)
		}
		if err := db.Migrate(conn); err != nil {
			log.Fatalf("database migration failed: %v", err)
		}
	}

	srv := server.New(conn, cfg)
	log.Printf("memematch server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, srv.Handler()); err != nil {
		log.Fatal(err)
	}
}

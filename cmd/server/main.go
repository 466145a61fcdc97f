package main

import (
	"log"
	"net/http"

	"github.com/traindesk/traindesk/internal/config"
	"github.com/traindesk/traindesk/internal/db"
	"github.com/traindesk/traindesk/internal/notify"
	"github.com/traindesk/traindesk/internal/web"
)

func main() {
	if err := config.Load(); err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := db.Init(config.C.DBPath); err != nil {
		log.Fatalf("db init: %v", err)
	}
	notify.StartWatchLoop()

	r := web.Router()

	log.Printf("TrainDesk listening on %s", config.C.Addr)
	if err := http.ListenAndServe(config.C.Addr, r); err != nil {
		log.Fatal(err)
	}
}

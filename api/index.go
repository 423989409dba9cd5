package handler

import (
	"context"
	"net/http"
	"os"

	"github.com/wadjakorntonsri/go-link-in-bio/pkg/app"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/config"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/logging"
)

var mux http.Handler

func init() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	// Note: On Vercel, db.sqlite is ephemeral unless using a remote SQL/Turso URL in DATABASE_URL
	a, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		panic(err)
	}
	mux = a.Handler
}

// Handler is the entrypoint for Vercel
func Handler(w http.ResponseWriter, r *http.Request) {
	mux.ServeHTTP(w, r)
}

package handler

import (
	"crm/config"
	"crm/di"
	"crm/shared/logger"
	"net/http"
	"sync"

	"github.com/rs/zerolog/log"
)

var (
	app     *di.App
	initErr error
	once    sync.Once
)

// Handler serves the API from a serverless function. The application is
// built once per instance and reused across invocations.
func Handler(w http.ResponseWriter, r *http.Request) {
	r.RequestURI = r.URL.String()

	once.Do(func() {
		cfg := config.Get()

		logger.Init(cfg)

		app, initErr = di.InitializeApp()
	})

	if initErr != nil {
		log.Error().Err(initErr).Msg("Failed to initialize application")
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)

		return
	}

	app.HTTP.ServeHTTP(w, r)
}

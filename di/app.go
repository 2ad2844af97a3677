package di

import (
	"crm/infras/kafka"
	"crm/infras/otel"
	"crm/internal/workers/followup"
	"crm/transport/http"
)

// App is everything cmd/app runs and tears down.
type App struct {
	HTTP     *http.HTTP
	FollowUp *followup.Worker
	Kafka    kafka.Client
	Otel     otel.Otel
}

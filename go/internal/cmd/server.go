package main

import (
	"fmt"
	"net/http"

	"github.com/mcdev12/tierdraft/go/internal/draft/api"
)

func setupServer(port string, services *Services) *http.Server {
	mux := http.NewServeMux()

	api.NewHandler(services.Engine).RegisterRoutes(mux)
	services.Gateway.RegisterRoutes(mux)
	api.RegisterHealthCheck(mux)
	api.RegisterMetrics(mux, services.Registry)
	if services.Health != nil {
		mux.Handle("GET /health/outbox", services.Health)
	}

	return api.NewServer(fmt.Sprintf(":%s", port), mux)
}

package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RedisErrors counts Redis command failures by command name.
var RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "warbler_redis_errors_total",
	Help: "Total number of Redis command errors",
}, []string{"command"})

// AuthFailures counts rejected requests by reason (anonymous, ownership, credentials).
var AuthFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "warbler_auth_failures_total",
	Help: "Total number of failed authentication or authorization checks",
}, []string{"reason"})

// SignupsTotal counts successfully created accounts.
var SignupsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "warbler_signups_total",
	Help: "Total number of successful signups",
})

// InitMetrics creates the Prometheus middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware returns the request-instrumentation handler.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}

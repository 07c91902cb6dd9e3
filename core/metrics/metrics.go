package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the service's Prometheus collectors.
type Registry struct {
	reg *prometheus.Registry

	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	// EnvironmentResults counts per-environment outcomes of replicate and repair.
	EnvironmentResults *prometheus.CounterVec
	// SyncStates counts the states observed by checks.
	SyncStates *prometheus.CounterVec
	// Promotions counts promotions by outcome (ok, partial, failed).
	Promotions *prometheus.CounterVec
	// ListItemsRelinked counts list and reservation items moved to a catalog product.
	ListItemsRelinked prometheus.Counter
}

// NewRegistry creates and registers every collector.
func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "giftlist_http_requests_total",
		Help: "Total number of HTTP requests.",
	}, []string{"method", "route", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "giftlist_http_request_duration_seconds",
		Help:    "Histogram of HTTP request durations.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	envResults := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "giftlist_environment_results_total",
		Help: "Per-environment results of replicate and repair.",
	}, []string{"operation", "environment", "result"})
	states := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "giftlist_sync_states_total",
		Help: "Sync states observed by product checks.",
	}, []string{"environment", "state"})
	promotions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "giftlist_promotions_total",
		Help: "Promotions by outcome.",
	}, []string{"outcome"})
	relinked := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "giftlist_list_items_relinked_total",
		Help: "List items moved from an unreviewed to a catalog product.",
	})

	r.MustRegister(requests, duration, envResults, states, promotions, relinked)
	return &Registry{
		reg:                r,
		Requests:           requests,
		RequestDuration:    duration,
		EnvironmentResults: envResults,
		SyncStates:         states,
		Promotions:         promotions,
		ListItemsRelinked:  relinked,
	}
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Handler serves the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// FiberHandler serves the registry from a Fiber route.
func (r *Registry) FiberHandler() fiber.Handler {
	return adaptor.HTTPHandler(r.Handler())
}

// Middleware records the count and duration of every request by route pattern.
func (r *Registry) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		route := c.Route().Path
		r.Requests.WithLabelValues(c.Method(), route, classifyStatus(status)).Inc()
		r.RequestDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

// ObserveResults counts each environment's result as success or failure.
// Messages starting with "Failed" are failures.
func (r *Registry) ObserveResults(operation string, results map[string]string) {
	for env, msg := range results {
		result := "success"
		if strings.HasPrefix(msg, "Failed") {
			result = "failure"
		}
		r.EnvironmentResults.WithLabelValues(operation, env, result).Inc()
	}
}

func classifyStatus(code int) string {
	if code < 100 || code > 599 {
		return "unknown"
	}
	return strconv.Itoa(code/100) + "xx"
}

// Package metrics exposes Prometheus counters for the recipe board.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for LLM requests
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Collector holds the application metrics on a private registry
type Collector struct {
	registry *prometheus.Registry

	llmRequests   *prometheus.CounterVec
	llmDuration   prometheus.Histogram
	cookbookSaves *prometheus.CounterVec
	pdfExports    *prometheus.CounterVec
}

// New creates a collector with its own registry
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		llmRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recipe_remix_llm_requests_total",
			Help: "Chat-completion requests by kind (search, remix) and outcome",
		}, []string{"kind", "outcome"}),
		llmDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "recipe_remix_llm_request_duration_seconds",
			Help:    "Latency of chat-completion requests including parsing",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 60},
		}),
		cookbookSaves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recipe_remix_cookbook_saves_total",
			Help: "Recipes appended to the cookbook by outcome",
		}, []string{"outcome"}),
		pdfExports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recipe_remix_pdf_exports_total",
			Help: "Recipe PDF exports by destination (download, s3) and outcome",
		}, []string{"destination", "outcome"}),
	}

	c.registry.MustRegister(
		c.llmRequests,
		c.llmDuration,
		c.cookbookSaves,
		c.pdfExports,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// ObserveLLMRequest records one fetch
func (c *Collector) ObserveLLMRequest(kind string, err error, seconds float64) {
	if c == nil {
		return
	}
	c.llmRequests.WithLabelValues(kind, outcome(err)).Inc()
	c.llmDuration.Observe(seconds)
}

// ObserveCookbookSave records one save
func (c *Collector) ObserveCookbookSave(err error) {
	if c == nil {
		return
	}
	c.cookbookSaves.WithLabelValues(outcome(err)).Inc()
}

// ObservePDFExport records one export
func (c *Collector) ObservePDFExport(destination string, err error) {
	if c == nil {
		return
	}
	c.pdfExports.WithLabelValues(destination, outcome(err)).Inc()
}

// Handler serves the registry in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeSuccess
}

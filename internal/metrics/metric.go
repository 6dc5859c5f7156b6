// Package metrics defines the registry's prometheus collectors and the
// gin plumbing that exposes and feeds them.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func fqn(name string) string {
	return prometheus.BuildFQName("healthdot", "registry", name)
}

var (
	Mutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: fqn("mutations_total"),
			Help: "Registry mutations by operation and outcome",
		},
		[]string{"op", "outcome"},
	)

	Rejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: fqn("rejections_total"),
			Help: "Rejected registry mutations by error kind",
		},
		[]string{"reason"},
	)

	TokensMinted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: fqn("tokens_minted_total"),
		Help: "Tokens created since process start",
	})

	HttpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    fqn("http_duration"),
			Help:    "HTTP request duration",
			Buckets: []float64{0.01, 0.05, 0.1, 0.2, 0.5, 1, 5, 15},
		},
		[]string{"path", "status"},
	)
)

var registerer = prometheus.NewRegistry()

func init() {
	registerer.MustRegister(Mutations, Rejections, TokensMinted, HttpDuration)
}

// Handler returns the /metrics endpoint handler.
func Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(registerer, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// Middleware observes request durations per route and status.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		HttpDuration.WithLabelValues(path, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

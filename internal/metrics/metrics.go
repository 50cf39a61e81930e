package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// UploadsTotal counts completed uploads by terminal status.
	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "artifact_uploads_total",
		Help: "Completed artifact uploads by terminal status.",
	}, []string{"status"})

	// DeletesTotal counts successful artifact deletions.
	DeletesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "artifact_deletes_total",
		Help: "Successful artifact deletions.",
	})
)

// Register attaches the Prometheus metrics endpoint to the router.
func Register(router *gin.Engine, path string) {
	router.GET(path, gin.WrapH(promhttp.Handler()))
}

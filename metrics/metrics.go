// Package metrics exposes Prometheus counters for the receptionist.
package metrics

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	intentPredictions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "receptionist_intent_predictions_total",
		Help: "Intent predictions by label and by the path that produced them (rules, model, none).",
	}, []string{"intent", "source"})

	callOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "receptionist_calls_total",
		Help: "Processed calls by outcome.",
	}, []string{"outcome"})

	smsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "receptionist_sms_total",
		Help: "Confirmation SMS attempts by result.",
	}, []string{"ok"})

	trainingRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "receptionist_nlu_training_total",
		Help: "Intent model training attempts by result.",
	}, []string{"ok"})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "receptionist_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"method", "route", "status"})
)

func RecordPrediction(intent, source string) {
	intentPredictions.WithLabelValues(intent, source).Inc()
}

func RecordCall(outcome string) {
	callOutcomes.WithLabelValues(outcome).Inc()
}

func RecordSMS(ok bool) {
	smsSent.WithLabelValues(strconv.FormatBool(ok)).Inc()
}

func RecordTraining(ok bool) {
	trainingRuns.WithLabelValues(strconv.FormatBool(ok)).Inc()
}

// Middleware counts requests by matched route, so path parameters do not
// explode the label set.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// Handler serves the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

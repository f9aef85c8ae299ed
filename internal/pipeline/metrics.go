package pipeline

import "github.com/prometheus/client_golang/prometheus"

var (
	metricSubmissions = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gate_submissions_total", Help: "Orders entering the gate"})
	metricBlocked = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gate_blocked_total", Help: "Orders stopped at a gate"}, []string{"gate"})
	metricInvalid = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gate_invalid_total", Help: "Orders rejected by input validation"})
	metricDispatched = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gate_dispatched_total", Help: "Orders handed to an executor"})
	metricErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gate_errors_total", Help: "Submissions that ended in ERROR"})
)

func init() {
	prometheus.MustRegister(
		metricSubmissions, metricBlocked, metricInvalid, metricDispatched, metricErrors,
	)
}

package metrics

import (
	"strconv"
	"time"
)

// Status label values
const (
	StatusOK       = "ok"
	StatusRejected = "rejected"
	StatusFailed   = "failed"
)

// RecordCommand records one editor command
func (r *Registry) RecordCommand(command string, err error, duration time.Duration) {
	status := StatusOK
	if err != nil {
		status = StatusRejected
	}
	r.CommandsTotal.WithLabelValues(command, status).Inc()
	r.CommandDuration.WithLabelValues(command).Observe(duration.Seconds())
}

// RecordHistoryOp records an undo, redo or jump request
func (r *Registry) RecordHistoryOp(op string, applied bool) {
	result := "applied"
	if !applied {
		result = "noop"
	}
	r.HistoryOpsTotal.WithLabelValues(op, result).Inc()
}

// SetHistoryDepth records the current stack sizes
func (r *Registry) SetHistoryDepth(past, future int) {
	r.HistoryDepth.WithLabelValues("past").Set(float64(past))
	r.HistoryDepth.WithLabelValues("future").Set(float64(future))
}

// RecordExport records one export through a sink
func (r *Registry) RecordExport(sink string, rows int, err error, duration time.Duration) {
	status := StatusOK
	if err != nil {
		status = StatusFailed
	}
	r.ExportsTotal.WithLabelValues(sink, status).Inc()
	if err == nil {
		r.ExportRowsTotal.WithLabelValues(sink).Add(float64(rows))
	}
	r.ExportDuration.WithLabelValues(sink).Observe(duration.Seconds())
}

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// SessionOpened increments the active session gauge
func (r *Registry) SessionOpened() { r.SessionsActive.Inc() }

// SessionClosed decrements the active session gauge
func (r *Registry) SessionClosed() { r.SessionsActive.Dec() }

package cushypost

// MetricsRecorder receives one observation per client operation.
type MetricsRecorder interface {
	RecordRequest(operation, status string, duration float64)
	RecordError(operation, code string)
}

type noopMetrics struct{}

func (noopMetrics) RecordRequest(string, string, float64) {}
func (noopMetrics) RecordError(string, string)            {}

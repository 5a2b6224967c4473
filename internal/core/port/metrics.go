package port

// ConsoleMetrics captures telemetry hooks for the authorization and query core.
type ConsoleMetrics interface {
	ObserveFetch(kind string, outcome string)
	ObserveGateDecision(decision string)
	ObserveLoginTransition(from, to string)
	ObserveSessionStatus(status string)
}

// NopMetrics discards every observation.
type NopMetrics struct{}

func (NopMetrics) ObserveFetch(string, string)           {}
func (NopMetrics) ObserveGateDecision(string)            {}
func (NopMetrics) ObserveLoginTransition(string, string) {}
func (NopMetrics) ObserveSessionStatus(string)           {}

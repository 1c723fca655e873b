package domain

import "time"

// Metrics receives observations from the polling pipeline.
type Metrics interface {
	ObserveCycle(outcome string, duration time.Duration)
	ObserveFetch(feed string, duration time.Duration, err error)
	ObserveSkippedTick()
	ObserveUserChoice(choice UserChoice)
	ObserveDismissal()
	SetUpdateAvailable(available bool)
	SetActiveAnnouncements(count int)
}

// NopMetrics discards all observations.
type NopMetrics struct{}

func (NopMetrics) ObserveCycle(string, time.Duration)        {}
func (NopMetrics) ObserveFetch(string, time.Duration, error) {}
func (NopMetrics) ObserveSkippedTick()                       {}
func (NopMetrics) ObserveUserChoice(UserChoice)              {}
func (NopMetrics) ObserveDismissal()                         {}
func (NopMetrics) SetUpdateAvailable(bool)                   {}
func (NopMetrics) SetActiveAnnouncements(int)                {}

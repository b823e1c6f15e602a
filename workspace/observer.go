package workspace

import (
	"time"

	"github.com/goliatone/go-shopadmin/catalog"
)

// Remote search outcomes reported to observers.
const (
	OutcomeApplied = "applied"
	OutcomeStale   = "stale"
	OutcomeDropped = "dropped"
)

// Observer receives workspace activity for metrics.
type Observer interface {
	ObserveLoad(entity catalog.Entity, source string, records int, took time.Duration)
	ObserveQuery(entity catalog.Entity, matched int, took time.Duration)
	ObserveRemoteSearch(entity catalog.Entity, outcome string, results int, took time.Duration)
}

// NopObserver discards everything.
type NopObserver struct{}

func (NopObserver) ObserveLoad(catalog.Entity, string, int, time.Duration)         {}
func (NopObserver) ObserveQuery(catalog.Entity, int, time.Duration)                {}
func (NopObserver) ObserveRemoteSearch(catalog.Entity, string, int, time.Duration) {}

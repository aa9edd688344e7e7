// Package metrics provides application-level counters using stdlib expvar.
// Counters are automatically exported on the /debug/vars HTTP endpoint of
// the API server.
package metrics

import "expvar"

// Operation counters.
var (
	NEOsLoaded         = expvar.NewInt("neos_objects_loaded_total")
	ApproachesLoaded   = expvar.NewInt("neos_approaches_loaded_total")
	ApproachesLinked   = expvar.NewInt("neos_approaches_linked_total")
	ApproachesUnlinked = expvar.NewInt("neos_approaches_unlinked_total")
	QueriesTotal       = expvar.NewInt("neos_queries_total")
	LookupsTotal       = expvar.NewInt("neos_lookups_total")
)

// Inc increments the given counter by 1.
func Inc(counter *expvar.Int) { counter.Add(1) }

// Add increments the given counter by n.
func Add(counter *expvar.Int, n int64) { counter.Add(n) }

// Package database links near-Earth objects to their close approaches and
// answers lookups and filtered queries over the linked dataset.
//
// A Database is built exactly once from the ingested collections and is
// read-only afterwards, so any number of concurrent readers are safe once
// construction returns. Construction mutates the supplied records in place
// (it is the single one-time linking step, not a general operation);
// handing the same slices to New twice would double-link them.
package database

import (
	"iter"
	"log/slog"
	"sort"

	"github.com/chalu/neos/internal/filters"
	"github.com/chalu/neos/internal/metrics"
	"github.com/chalu/neos/internal/models"
)

// LinkStrategy selects how the constructor resolves approach→object links.
type LinkStrategy string

const (
	// LinkGrouped groups approaches by normalized designation first and
	// links in O(n+m). The default, and the only strategy expected to
	// scale to the full feed.
	LinkGrouped LinkStrategy = "grouped"

	// LinkScan is the nested-loop correctness baseline. It produces
	// linkage identical to LinkGrouped and exists so the two can be
	// checked against each other.
	LinkScan LinkStrategy = "scan"
)

// progressInterval is how many linked approaches pass between progress
// callback invocations.
const progressInterval = 10000

type options struct {
	strategy LinkStrategy
	progress func(linked int)
	logger   *slog.Logger
}

// Option configures Database construction.
type Option func(*options)

// WithLinkStrategy overrides the default grouped linking strategy.
func WithLinkStrategy(s LinkStrategy) Option {
	return func(o *options) { o.strategy = s }
}

// WithProgress registers a callback invoked periodically during linking with
// the running count of linked approaches, and once more on completion. It is
// purely observational; correctness never depends on it.
func WithProgress(fn func(linked int)) Option {
	return func(o *options) { o.progress = fn }
}

// WithLogger sets the logger used for construction diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Database is an immutable, linked collection of near-Earth objects and
// close approaches with designation and name indexes.
type Database struct {
	neos       []*models.NearEarthObject
	approaches []*models.CloseApproach

	byDesignation map[string]*models.NearEarthObject
	byName        map[string]*models.NearEarthObject

	linked   int
	unlinked int
}

// New builds a Database from unlinked collections of objects and approaches.
//
// Matching is case-insensitive on designation; records with a blank key
// never match anything. After construction every approach whose designation
// matched a known object points to it, and that object's Approaches holds
// the approach; relative order inside each object's Approaches follows the
// input order of the approaches slice. Approaches with no match keep a nil
// NEO and remain queryable (entity-scoped filters treat them as
// non-matching).
func New(neos []*models.NearEarthObject, approaches []*models.CloseApproach, opts ...Option) *Database {
	o := options{strategy: LinkGrouped, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	db := &Database{
		neos:          neos,
		approaches:    approaches,
		byDesignation: make(map[string]*models.NearEarthObject, len(neos)),
		byName:        make(map[string]*models.NearEarthObject),
	}
	db.buildIndexes()

	switch o.strategy {
	case LinkScan:
		db.linkScan(o)
	default:
		db.linkGrouped(o)
	}

	if o.progress != nil {
		o.progress(db.linked)
	}
	metrics.Add(metrics.ApproachesLinked, int64(db.linked))
	metrics.Add(metrics.ApproachesUnlinked, int64(db.unlinked))
	o.logger.Info("database linked",
		"strategy", string(o.strategy),
		"neos", len(neos),
		"approaches", len(approaches),
		"linked", db.linked,
		"unlinked", db.unlinked,
	)

	return db
}

// NewGrouped builds a Database from a designation-keyed mapping of
// approaches, the form produced by the grouped ingestion path. The flattened
// query order is each object's approaches in object construction order,
// followed by unmatched groups in sorted key order so iteration stays
// deterministic.
func NewGrouped(neos []*models.NearEarthObject, grouped map[string][]*models.CloseApproach, opts ...Option) *Database {
	flat := make([]*models.CloseApproach, 0)
	seen := make(map[string]bool, len(grouped))

	for _, neo := range neos {
		key := models.NormalizeKey(neo.Designation)
		if key == "" || seen[key] {
			continue
		}
		if group, ok := grouped[key]; ok {
			flat = append(flat, group...)
			seen[key] = true
		}
	}

	var leftover []string
	for key := range grouped {
		if !seen[key] {
			leftover = append(leftover, key)
		}
	}
	sort.Strings(leftover)
	for _, key := range leftover {
		flat = append(flat, grouped[key]...)
	}

	return New(neos, flat, opts...)
}

// buildIndexes fills the designation and name indexes. Designations are
// unique by contract; if the feed violates that, the last record wins.
// Names are not unique in the data, so the first object in construction
// order wins and FindByName has a deterministic tie-break.
func (db *Database) buildIndexes() {
	for _, neo := range db.neos {
		key := models.NormalizeKey(neo.Designation)
		if key == "" {
			continue
		}
		db.byDesignation[key] = neo
	}
	for _, neo := range db.neos {
		name := models.NormalizeKey(neo.Name)
		if name == "" {
			continue
		}
		if _, taken := db.byName[name]; !taken {
			db.byName[name] = neo
		}
	}
}

// linkGrouped resolves links through the designation index in one pass over
// the approaches.
func (db *Database) linkGrouped(o options) {
	for _, ca := range db.approaches {
		key := models.NormalizeKey(ca.Designation)
		if key == "" {
			db.unlinked++
			continue
		}
		neo, ok := db.byDesignation[key]
		if !ok {
			db.unlinked++
			continue
		}
		db.attach(neo, ca, o)
	}
}

// linkScan is the quadratic reference path: for every approach, scan the
// object collection for a designation match. Matches use the same
// normalization as linkGrouped, so the resulting linkage is identical; only
// an approach matching a duplicated designation could differ, and duplicate
// designations are undefined behavior. To mirror the index's last-writer
// rule the scan keeps the last matching object.
func (db *Database) linkScan(o options) {
	for _, ca := range db.approaches {
		key := models.NormalizeKey(ca.Designation)
		if key == "" {
			db.unlinked++
			continue
		}
		var match *models.NearEarthObject
		for _, neo := range db.neos {
			if models.NormalizeKey(neo.Designation) == key {
				match = neo
			}
		}
		if match == nil {
			db.unlinked++
			continue
		}
		db.attach(match, ca, o)
	}
}

func (db *Database) attach(neo *models.NearEarthObject, ca *models.CloseApproach, o options) {
	ca.NEO = neo
	neo.Approaches = append(neo.Approaches, ca)
	db.linked++
	if o.progress != nil && db.linked%progressInterval == 0 {
		o.progress(db.linked)
	}
}

// FindByDesignation returns the object with the given primary designation,
// or nil when the key is blank or unknown. Matching is exact but
// case-insensitive; the lookup never mutates the database.
func (db *Database) FindByDesignation(designation string) *models.NearEarthObject {
	key := models.NormalizeKey(designation)
	if key == "" {
		return nil
	}
	return db.byDesignation[key]
}

// FindByName returns the object with the given IAU name, or nil when the
// key is blank or unknown. Objects without a name are never candidates.
func (db *Database) FindByName(name string) *models.NearEarthObject {
	key := models.NormalizeKey(name)
	if key == "" {
		return nil
	}
	return db.byName[key]
}

// Query returns a lazy sequence of the close approaches satisfying every
// filter in fs, in the dataset's stored order. An empty filter set matches
// everything. Evaluation short-circuits on the first failing filter per
// approach, and nothing is materialized: a caller that stops ranging stops
// the work. The sequence is finite and re-iterable only by calling Query
// again.
func (db *Database) Query(fs []filters.Filter) iter.Seq[*models.CloseApproach] {
	metrics.Inc(metrics.QueriesTotal)
	return func(yield func(*models.CloseApproach) bool) {
		for _, ca := range db.approaches {
			matched := true
			for _, f := range fs {
				if !f.Matches(ca) {
					matched = false
					break
				}
			}
			if !matched {
				continue
			}
			if !yield(ca) {
				return
			}
		}
	}
}

// Stats summarizes the linked dataset.
type Stats struct {
	NEOs       int `json:"neos"`
	NamedNEOs  int `json:"named_neos"`
	Hazardous  int `json:"hazardous"`
	Approaches int `json:"approaches"`
	Linked     int `json:"linked"`
	Unlinked   int `json:"unlinked"`
}

// Stats returns summary counts for the dataset.
func (db *Database) Stats() Stats {
	s := Stats{
		NEOs:       len(db.neos),
		Approaches: len(db.approaches),
		Linked:     db.linked,
		Unlinked:   db.unlinked,
	}
	for _, neo := range db.neos {
		if neo.HasName() {
			s.NamedNEOs++
		}
		if neo.Hazardous {
			s.Hazardous++
		}
	}
	return s
}


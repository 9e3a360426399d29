package app

import (
	"sync/atomic"
	"time"

	"github.com/dshills/plcore/internal/rtti"
)

// Metrics counts registry lifecycle events.
type Metrics struct {
	modulesLoaded   atomic.Uint64
	modulesUnloaded atomic.Uint64
	classesLoaded   atomic.Uint64
	classesUnloaded atomic.Uint64

	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// Record counts one registry event.
func (m *Metrics) Record(ev rtti.Event) {
	switch ev.Type {
	case rtti.EventModuleLoaded:
		m.modulesLoaded.Add(1)
	case rtti.EventModuleUnloaded:
		m.modulesUnloaded.Add(1)
	case rtti.EventClassLoaded:
		m.classesLoaded.Add(1)
	case rtti.EventClassUnloaded:
		m.classesUnloaded.Add(1)
	}
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	ModulesLoaded   uint64        `yaml:"modules_loaded"`
	ModulesUnloaded uint64        `yaml:"modules_unloaded"`
	ClassesLoaded   uint64        `yaml:"classes_loaded"`
	ClassesUnloaded uint64        `yaml:"classes_unloaded"`
	Uptime          time.Duration `yaml:"uptime"`
}

// Snapshot returns the current counters.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		ModulesLoaded:   m.modulesLoaded.Load(),
		ModulesUnloaded: m.modulesUnloaded.Load(),
		ClassesLoaded:   m.classesLoaded.Load(),
		ClassesUnloaded: m.classesUnloaded.Load(),
		Uptime:          time.Since(m.startTime),
	}
}

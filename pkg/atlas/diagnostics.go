package atlas

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Severity grades a diagnostic event.
type Severity int8

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarn
	SeverityError
)

// String returns the severity name.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarn:
		return "warn"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is one structured diagnostic entry. Events are the only
// user-visible failure signal of the pipeline; no error in the engine
// aborts a run past configuration validation.
type Event struct {
	Severity  Severity
	Component string
	Message   string
}

// Diagnostics accumulates events for one run and mirrors them to the zap
// logger. Safe for concurrent use by parallel subset builds.
type Diagnostics struct {
	mu     sync.Mutex
	events []Event
	log    *zap.Logger
}

func newDiagnostics(log *zap.Logger) *Diagnostics {
	if log == nil {
		log = zap.NewNop()
	}
	return &Diagnostics{log: log}
}

func (d *Diagnostics) report(sev Severity, component, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	d.mu.Lock()
	d.events = append(d.events, Event{Severity: sev, Component: component, Message: msg})
	d.mu.Unlock()

	entry := d.log.With(zap.String("component", component))
	switch sev {
	case SeverityDebug:
		entry.Debug(msg)
	case SeverityInfo:
		entry.Info(msg)
	case SeverityWarn:
		entry.Warn(msg)
	default:
		entry.Error(msg)
	}
}

func (d *Diagnostics) debugf(component, format string, args ...any) {
	d.report(SeverityDebug, component, format, args...)
}

func (d *Diagnostics) infof(component, format string, args ...any) {
	d.report(SeverityInfo, component, format, args...)
}

func (d *Diagnostics) warnf(component, format string, args ...any) {
	d.report(SeverityWarn, component, format, args...)
}

// Events returns a copy of the accumulated events in emission order.
func (d *Diagnostics) Events() []Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Event, len(d.events))
	copy(out, d.events)
	return out
}

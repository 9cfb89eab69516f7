// Package events provides an event bus for simulation progress notifications.
package events

import "time"

// EventType represents the type of event
type EventType string

const (
	// EventRunStarted is emitted when a scenario run begins
	EventRunStarted EventType = "run_started"
	// EventIterationComplete is emitted when an iteration finishes its horizon
	EventIterationComplete EventType = "iteration_complete"
	// EventIterationFailed is emitted when an iteration is abandoned
	EventIterationFailed EventType = "iteration_failed"
	// EventDisruption is emitted for each disruption drawn in a week
	EventDisruption EventType = "disruption"
	// EventDecision is emitted for each agent decision
	EventDecision EventType = "decision"
	// EventRunComplete is emitted when all iterations of a run have finished
	EventRunComplete EventType = "run_complete"
)

// Event represents a simulation event
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Scenario  string    `json:"scenario"`
	Iteration int       `json:"iteration,omitempty"`
	Week      int       `json:"week,omitempty"`
	Region    string    `json:"region,omitempty"`
	Data      EventData `json:"data,omitempty"`
}

// EventData contains event-specific data
type EventData struct {
	Iterations     int                `json:"iterations,omitempty"`
	Completed      int                `json:"completed,omitempty"`
	DisruptionType string             `json:"disruption_type,omitempty"`
	Severity       float64            `json:"severity,omitempty"`
	Agent          string             `json:"agent,omitempty"`
	Values         map[string]float64 `json:"values,omitempty"`
	Summary        map[string]float64 `json:"summary,omitempty"`
	Error          string             `json:"error,omitempty"`
}

// NewRunStartedEvent creates a run started event
func NewRunStartedEvent(scenario string, iterations int) Event {
	return Event{
		Type:      EventRunStarted,
		Timestamp: time.Now(),
		Scenario:  scenario,
		Data:      EventData{Iterations: iterations},
	}
}

// NewIterationCompleteEvent creates an iteration complete event
func NewIterationCompleteEvent(scenario string, iteration int, summary map[string]float64) Event {
	return Event{
		Type:      EventIterationComplete,
		Timestamp: time.Now(),
		Scenario:  scenario,
		Iteration: iteration,
		Data:      EventData{Summary: summary},
	}
}

// NewIterationFailedEvent creates an iteration failed event
func NewIterationFailedEvent(scenario string, iteration int, err error) Event {
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	return Event{
		Type:      EventIterationFailed,
		Timestamp: time.Now(),
		Scenario:  scenario,
		Iteration: iteration,
		Data:      EventData{Error: errMsg},
	}
}

// NewDisruptionEvent creates a disruption event
func NewDisruptionEvent(scenario string, iteration, week int, region, disruptionType string, severity float64) Event {
	return Event{
		Type:      EventDisruption,
		Timestamp: time.Now(),
		Scenario:  scenario,
		Iteration: iteration,
		Week:      week,
		Region:    region,
		Data: EventData{
			DisruptionType: disruptionType,
			Severity:       severity,
		},
	}
}

// NewDecisionEvent creates an agent decision event
func NewDecisionEvent(scenario string, iteration, week int, agent, region string, values map[string]float64) Event {
	return Event{
		Type:      EventDecision,
		Timestamp: time.Now(),
		Scenario:  scenario,
		Iteration: iteration,
		Week:      week,
		Region:    region,
		Data: EventData{
			Agent:  agent,
			Values: values,
		},
	}
}

// NewRunCompleteEvent creates a run complete event
func NewRunCompleteEvent(scenario string, iterations, completed int) Event {
	return Event{
		Type:      EventRunComplete,
		Timestamp: time.Now(),
		Scenario:  scenario,
		Data: EventData{
			Iterations: iterations,
			Completed:  completed,
		},
	}
}

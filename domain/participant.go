// Package domain contains core concepts of the chat system.
// This file defines Participant entities and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

import "time"

// Participant is a named occupant of the room.
// The name is its identity; LastStatus is refreshed by every heartbeat.
type Participant struct {
	Name       string
	LastStatus time.Time
}

func NewParticipant(name string, at time.Time) Participant {
	return Participant{Name: name, LastStatus: at}
}

// IsInactive reports whether no heartbeat arrived for strictly longer than threshold.
func (p Participant) IsInactive(now time.Time, threshold time.Duration) bool {
	return now.Sub(p.LastStatus) > threshold
}

// SweepReport lists the outcome of one inactivity sweep.
type SweepReport struct {
	Evicted []string // removed, departure recorded
	Failed  []string // eviction attempted but a store call failed
}

// Package notify sends registration confirmations to registrants and alerts
// to organizers. Every send is best effort: callers log and count failures but
// never undo a registration because of them.
package notify

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when no confirmation channel is set up.
var ErrNotConfigured = errors.New("notify: confirmation email not configured")

// Confirmation is the payload handed to the email function.
type Confirmation struct {
	To             string `json:"to"`
	RegistrationID string `json:"registration_id"`
	TournamentName string `json:"tournament_name"`
	Type           string `json:"type"` // adult|minor
	RegistrantName string `json:"registrant_name"`
	GuardianName   string `json:"guardian_name,omitempty"`
	DNI            string `json:"dni"`
	Academy        string `json:"academy"`
	BeltRank       string `json:"belt_rank"`
	Category       string `json:"category"`
}

// Dispatcher delivers a confirmation to the registrant.
type Dispatcher interface {
	SendConfirmation(ctx context.Context, c Confirmation) error
}

// Nop is used when no email channel is configured.
type Nop struct{}

func (Nop) SendConfirmation(context.Context, Confirmation) error {
	return ErrNotConfigured
}

// Alert is a short organizer-facing summary of a new registration.
type Alert struct {
	RegistrationID string
	Type           string
	Name           string
	Academy        string
	Category       string
}

// Alerter tells organizers about new registrations.
type Alerter interface {
	Alert(ctx context.Context, a Alert) error
}

type NopAlerter struct{}

func (NopAlerter) Alert(context.Context, Alert) error { return nil }

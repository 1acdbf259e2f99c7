package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound = errors.New("player not found")
	ErrInvalidPlayer  = errors.New("invalid player identity")

	// Presence errors
	ErrPlayerBusy        = errors.New("player busy")
	ErrIllegalTransition = errors.New("illegal presence transition")

	// Invite errors
	ErrCooldownActive = errors.New("invite cooldown active")
	ErrInviteNotFound = errors.New("no pending invite")
	ErrInviteSelf     = errors.New("cannot invite yourself")

	// Match errors
	ErrMatchNotFound  = errors.New("match not found")
	ErrNotParticipant = errors.New("player is not in this match")

	// Executor errors
	ErrCoordinatorStopped = errors.New("coordinator stopped")
)

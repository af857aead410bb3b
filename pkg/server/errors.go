package server

import (
	"errors"
)

var (
	// ErrUnknownPlayer is returned for player ids that are not registered.
	ErrUnknownPlayer = errors.New("unknown player id")
	// ErrUnknownEvent is returned when waiting after an event id that the
	// party never logged.
	ErrUnknownEvent = errors.New("unknown event id")
	// ErrWrongPhaseForBid is returned for auction actions during card play.
	ErrWrongPhaseForBid = errors.New("cannot bid while cards are being played")
	// ErrWrongPhaseForPlay is returned for card plays during the auction.
	ErrWrongPhaseForPlay = errors.New("cannot play a card during the auction")
	// ErrPartyGone is returned for any action on a cancelled party.
	ErrPartyGone = errors.New("party was cancelled")
	// ErrJoinExpired is returned to join requests dropped by the idle policy.
	ErrJoinExpired = errors.New("join request expired")
)

// BidRejectedError is an auction action refused by the rules.
type BidRejectedError struct {
	Err error
}

func (e *BidRejectedError) Error() string {
	return "bid rejected: " + e.Err.Error()
}

func (e *BidRejectedError) Unwrap() error {
	return e.Err
}

// PlayRejectedError is a card play refused by the rules.
type PlayRejectedError struct {
	Err error
}

func (e *PlayRejectedError) Error() string {
	return "play rejected: " + e.Err.Error()
}

func (e *PlayRejectedError) Unwrap() error {
	return e.Err
}

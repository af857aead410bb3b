package event

import "github.com/vctt94/coinched/pkg/coinche"

// For returns the event as it must be delivered to seat: a NewGame only keeps
// the cards of that seat. Every other variant is returned unchanged.
func (e Event) For(seat coinche.Seat) Event {
	if ng, ok := e.Payload.(NewGame); ok {
		e.Payload = NewGameRelative{First: ng.First, Hand: ng.Hands[seat]}
	}
	return e
}

// IsInternal reports whether the payload must never be sent to a player as is.
func IsInternal(p Payload) bool {
	_, ok := p.(NewGame)
	return ok
}

package server

import (
	"time"
)

// IdlePolicy decides when an inactive player or a pending join request is
// dropped by GameManager.Sweep.
//
// When a party is cancelled, the seats other than the one that caused it
// stay registered until they pull the cancellation. Seats whose clients
// never come back are only dropped by Sweep, so they are kept forever under
// NeverExpire.
type IdlePolicy interface {
	Expired(lastActive, now time.Time) bool
}

// NeverExpire keeps idle players and join requests forever, including the
// seats of cancelled parties that nobody pulls from.
type NeverExpire struct{}

func (NeverExpire) Expired(time.Time, time.Time) bool { return false }

// IdleTimeout expires anything inactive for longer than the duration.
type IdleTimeout time.Duration

func (d IdleTimeout) Expired(lastActive, now time.Time) bool {
	return now.Sub(lastActive) > time.Duration(d)
}

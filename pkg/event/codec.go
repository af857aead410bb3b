package event

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vctt94/coinched/pkg/coinche"
)

// ErrInternalEvent is returned when encoding a payload that exposes every
// seat's cards.
var ErrInternalEvent = errors.New("internal event cannot be encoded")

type eventJSON struct {
	ID    int             `json:"id"`
	Type  Kind            `json:"type"`
	Event json.RawMessage `json:"event,omitempty"`
}

type fromPlayerJSON struct {
	Seat   coinche.Seat    `json:"seat"`
	Action ActionKind      `json:"action"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// MarshalJSON encodes the event as {"id", "type", "event"}.
func (e Event) MarshalJSON() ([]byte, error) {
	if e.Payload == nil {
		return nil, fmt.Errorf("event %d has no payload", e.ID)
	}
	data, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(eventJSON{ID: e.ID, Type: e.Payload.Kind(), Event: data})
}

// UnmarshalJSON decodes an event encoded by MarshalJSON.
func (e *Event) UnmarshalJSON(data []byte) error {
	var raw eventJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var payload Payload
	switch raw.Type {
	case KindYourTurn:
		payload = YourTurn{}
	case KindBidCancelled:
		payload = BidCancelled{}
	case KindPartyCancelled:
		var p PartyCancelled
		if err := json.Unmarshal(raw.Event, &p); err != nil {
			return err
		}
		payload = p
	case KindFromPlayer:
		var p FromPlayer
		if err := json.Unmarshal(raw.Event, &p); err != nil {
			return err
		}
		payload = p
	case KindBidOver:
		var p BidOver
		if err := json.Unmarshal(raw.Event, &p); err != nil {
			return err
		}
		payload = p
	case KindTrickOver:
		var p TrickOver
		if err := json.Unmarshal(raw.Event, &p); err != nil {
			return err
		}
		payload = p
	case KindNewGameRelative:
		var p NewGameRelative
		if err := json.Unmarshal(raw.Event, &p); err != nil {
			return err
		}
		payload = p
	case KindGameOver:
		var p GameOver
		if err := json.Unmarshal(raw.Event, &p); err != nil {
			return err
		}
		payload = p
	default:
		return fmt.Errorf("unknown event type %q", raw.Type)
	}

	e.ID = raw.ID
	e.Payload = payload
	return nil
}

// MarshalJSON refuses to encode a full deal.
func (NewGame) MarshalJSON() ([]byte, error) {
	return nil, ErrInternalEvent
}

// MarshalJSON encodes the seat, the action kind and its data.
func (f FromPlayer) MarshalJSON() ([]byte, error) {
	if f.Action == nil {
		return nil, fmt.Errorf("player event from %s has no action", f.Seat)
	}
	data, err := json.Marshal(f.Action)
	if err != nil {
		return nil, err
	}
	return json.Marshal(fromPlayerJSON{Seat: f.Seat, Action: f.Action.ActionKind(), Data: data})
}

// UnmarshalJSON decodes a player action.
func (f *FromPlayer) UnmarshalJSON(data []byte) error {
	var raw fromPlayerJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var action PlayerEvent
	switch raw.Action {
	case ActionCoinched:
		action = Coinched{}
	case ActionPassed:
		action = Passed{}
	case ActionBid:
		var b Bid
		if err := json.Unmarshal(raw.Data, &b); err != nil {
			return err
		}
		action = b
	case ActionCardPlayed:
		var c CardPlayed
		if err := json.Unmarshal(raw.Data, &c); err != nil {
			return err
		}
		action = c
	default:
		return fmt.Errorf("unknown player action %q", raw.Action)
	}

	f.Seat = raw.Seat
	f.Action = action
	return nil
}

package coinche

import "fmt"

// NumSeats is the number of players sitting at a coinche table.
const NumSeats = 4

// Seat is a position at the table, 0 through 3. Seats 0 and 2 play together
// against seats 1 and 3.
type Seat int

// Next returns the seat playing after s.
func (s Seat) Next() Seat {
	return (s + 1) % NumSeats
}

// Prev returns the seat playing before s.
func (s Seat) Prev() Seat {
	return (s + NumSeats - 1) % NumSeats
}

// Partner returns the seat facing s.
func (s Seat) Partner() Seat {
	return (s + 2) % NumSeats
}

// Team returns the team s belongs to.
func (s Seat) Team() Team {
	return Team(s % 2)
}

// Valid reports whether s is one of the four seats.
func (s Seat) Valid() bool {
	return s >= 0 && s < NumSeats
}

// String returns a readable representation of the seat.
func (s Seat) String() string {
	return fmt.Sprintf("P%d", int(s))
}

// Team is one of the two teams of a party.
type Team int

// Opponent returns the other team.
func (t Team) Opponent() Team {
	return 1 - t
}

// String returns a readable representation of the team.
func (t Team) String() string {
	return fmt.Sprintf("T%d", int(t))
}

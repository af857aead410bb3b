package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/vctt94/coinched/pkg/coinche"
	"github.com/vctt94/coinched/pkg/event"
	"github.com/vctt94/coinched/pkg/utils"
)

// Renderer handles all rendering of UI screens and game elements
type Renderer struct {
	ui *CoincheUI
}

// Render draws the whole screen.
func (r *Renderer) Render() string {
	ui := r.ui
	var s strings.Builder
	s.WriteString(TitleStyle.Render("🂡 Coinche 🂡") + "\n\n")

	if ui.message != "" {
		s.WriteString(InfoStyle.Render(ui.message) + "\n\n")
	}
	if ui.err != nil {
		s.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", ui.err)) + "\n\n")
	}

	s.WriteString(r.RenderScores() + "\n")
	s.WriteString(r.RenderSeats() + "\n")
	s.WriteString(r.RenderTrick() + "\n")
	s.WriteString(r.RenderHand() + "\n")

	switch ui.state {
	case stateBidding:
		s.WriteString(r.RenderAuction() + "\n")
		s.WriteString(HelpStyle.Render("↑↓ choose, ←→ target, tab suit, enter confirm, q quit"))
	case statePlaying:
		s.WriteString(HelpStyle.Render("←→ choose a card, enter play, x leave, q quit"))
	case stateFinished:
		if ui.result != nil {
			s.WriteString(ErrorStyle.Render(fmt.Sprintf("Party ended: %v", ui.result)) + "\n")
		} else {
			s.WriteString(InfoStyle.Render("Party over.") + "\n")
		}
		s.WriteString(HelpStyle.Render("Press q to quit"))
	default:
		s.WriteString(HelpStyle.Render("q quit"))
	}

	s.WriteString("\n" + r.RenderHistory())
	return s.String()
}

// RenderScores renders the running totals and the contract in play.
func (r *Renderer) RenderScores() string {
	v := r.ui.view
	us := v.Seat.Team()
	scores := fmt.Sprintf("Us %d - %d Them", v.Scores[us], v.Scores[us.Opponent()])
	parts := []string{ScoreStyle.Render(scores)}
	if v.Contract != nil {
		parts = append(parts, ActionButtonStyle.Render("Contract: "+v.Contract.String()))
	}
	parts = append(parts, BlurredStyle.Render(fmt.Sprintf("Hands played: %d", v.HandsPlayed)))
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}

// RenderSeats renders the four seats, highlighting the one expected to act.
func (r *Renderer) RenderSeats() string {
	v := r.ui.view
	boxes := make([]string, 0, coinche.NumSeats)
	for seat := coinche.Seat(0); seat < coinche.NumSeats; seat++ {
		label := seat.String()
		if seat == v.Seat {
			label += " (you)"
		} else if seat == v.Seat.Partner() {
			label += " (partner)"
		}
		if seat == v.First {
			label += " *"
		}

		style := SeatBoxStyle
		switch {
		case seat == v.Turn:
			style = CurrentSeatStyle
		case seat == v.Seat:
			style = YourSeatStyle
		}
		boxes = append(boxes, style.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
}

// RenderTrick renders the cards on the table and the previous trick.
func (r *Renderer) RenderTrick() string {
	v := r.ui.view
	var s string
	if len(v.Trick) == 0 {
		s = BlurredStyle.Render("No card on the table")
	} else {
		cards := make([]string, 0, len(v.Trick))
		for _, pc := range v.Trick {
			cards = append(cards, lipgloss.JoinVertical(lipgloss.Center,
				renderCard(pc.Card, false), pc.Seat.String()))
		}
		s = TableStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	if len(v.LastTrick) > 0 {
		last := make([]coinche.Card, 0, len(v.LastTrick))
		for _, pc := range v.LastTrick {
			last = append(last, pc.Card)
		}
		s += "\n" + BlurredStyle.Render("Last trick: "+utils.FormatCards(last))
	}
	return s
}

// RenderHand renders the player's cards, the selected one first in focus.
func (r *Renderer) RenderHand() string {
	ui := r.ui
	cards := ui.view.Hand.Cards()
	if ui.state == statePlaying {
		cards = ui.cards
	}
	if len(cards) == 0 {
		return BlurredStyle.Render("Your hand: None")
	}
	rendered := make([]string, 0, len(cards))
	for i, c := range cards {
		rendered = append(rendered, renderCard(c, ui.state == statePlaying && i == ui.selectedCard))
	}
	return "Your hand:\n" + lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// RenderAuction renders the bidding form.
func (r *Renderer) RenderAuction() string {
	ui := r.ui
	buttons := make([]string, 0, len(bidOptions))
	for i, opt := range bidOptions {
		label := string(opt)
		if opt == optionBid {
			label = fmt.Sprintf("Bid %s %s", ui.bidTarget, coinche.Suits[ui.bidSuit].Symbol())
		}
		if i == ui.selectedItem {
			buttons = append(buttons, SelectedActionStyle.Render(label))
		} else {
			buttons = append(buttons, ActionButtonStyle.Render(label))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, buttons...)
}

// RenderHistory renders the latest events.
func (r *Renderer) RenderHistory() string {
	if len(r.ui.history) == 0 {
		return ""
	}
	return BlurredStyle.Render(strings.Join(r.ui.history, "\n"))
}

func renderCard(c coinche.Card, selected bool) string {
	switch {
	case selected:
		return SelectedCardStyle.Render(c.String())
	case c.Suit == coinche.Hearts || c.Suit == coinche.Diamonds:
		return RedCardStyle.Render(c.String())
	default:
		return CardStyle.Render(c.String())
	}
}

func seatName(seat, me coinche.Seat) string {
	if seat == me {
		return "You"
	}
	return seat.String()
}

// describe turns an event into a history line. Events with nothing to show
// return an empty string.
func describe(ev event.Event, me coinche.Seat) string {
	switch p := ev.Payload.(type) {
	case event.YourTurn:
		return "Your turn"
	case event.PartyCancelled:
		return "Party cancelled: " + p.Message
	case event.FromPlayer:
		who := seatName(p.Seat, me)
		switch a := p.Action.(type) {
		case event.Bid:
			return fmt.Sprintf("%s bid %s %s", who, a.Target, a.Suit.Symbol())
		case event.Coinched:
			return who + " coinched"
		case event.Passed:
			return who + " passed"
		case event.CardPlayed:
			return fmt.Sprintf("%s played %s", who, a.Card)
		}
	case event.BidOver:
		return "Contract: " + p.Contract.String()
	case event.BidCancelled:
		return "Everybody passed, dealing again"
	case event.TrickOver:
		return seatName(p.Winner, me) + " won the trick"
	case event.NewGameRelative:
		return fmt.Sprintf("New hand dealt, first to speak: %s", seatName(p.First, me))
	case event.GameOver:
		return fmt.Sprintf("Hand won by %s (%d - %d), scores %d - %d",
			p.Winner, p.Points[0], p.Points[1], p.Scores[0], p.Scores[1])
	}
	return ""
}

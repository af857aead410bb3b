package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/vctt94/coinched/pkg/client"
	"github.com/vctt94/coinched/pkg/coinche"
)

// InputHandler handles input processing for different UI states
type InputHandler struct {
	ui *CoincheUI
}

// HandleKeyMsg processes keyboard input based on current state
func (ih *InputHandler) HandleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c", "q":
		return tea.Quit
	}
	switch ih.ui.state {
	case stateBidding:
		return ih.handleBiddingInput(msg)
	case statePlaying:
		return ih.handlePlayingInput(msg)
	}
	return nil
}

// handleBiddingInput picks between bidding, passing, coinching and leaving.
func (ih *InputHandler) handleBiddingInput(msg tea.KeyMsg) tea.Cmd {
	ui := ih.ui
	switch msg.String() {
	case "up", "k":
		if ui.selectedItem > 0 {
			ui.selectedItem--
		}
	case "down", "j":
		if ui.selectedItem < len(bidOptions)-1 {
			ui.selectedItem++
		}
	case "left", "h":
		if ui.bidTarget > minTarget(ui.view.Contract) {
			ui.bidTarget--
		}
	case "right", "l":
		if ui.bidTarget < coinche.TargetGenerale {
			ui.bidTarget++
		}
	case "tab", "s":
		ui.bidSuit = (ui.bidSuit + 1) % len(coinche.Suits)
	case "enter", " ":
		var action client.AuctionAction
		switch bidOptions[ui.selectedItem] {
		case optionBid:
			action = client.AuctionAction{
				Kind:   client.AuctionBid,
				Suit:   coinche.Suits[ui.bidSuit],
				Target: ui.bidTarget,
			}
		case optionPass:
			action = client.AuctionAction{Kind: client.AuctionPass}
		case optionCoinche:
			action = client.AuctionAction{Kind: client.AuctionCoinche}
		case optionLeave:
			action = client.AuctionAction{Kind: client.AuctionLeave}
		}
		ui.state = stateWaiting
		ui.bridge.answerBid(action)
	}
	return nil
}

// handlePlayingInput moves along the hand and plays the selected card.
func (ih *InputHandler) handlePlayingInput(msg tea.KeyMsg) tea.Cmd {
	ui := ih.ui
	switch msg.String() {
	case "left", "h":
		if ui.selectedCard > 0 {
			ui.selectedCard--
		}
	case "right", "l":
		if ui.selectedCard < len(ui.cards)-1 {
			ui.selectedCard++
		}
	case "x":
		ui.state = stateWaiting
		ui.bridge.answerCard(client.GameAction{Leave: true})
	case "enter", " ":
		if len(ui.cards) == 0 {
			return nil
		}
		ui.state = stateWaiting
		ui.bridge.answerCard(client.GameAction{Card: ui.cards[ui.selectedCard]})
	}
	return nil
}

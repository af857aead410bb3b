package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/vctt94/coinched/pkg/client"
	"github.com/vctt94/coinched/pkg/event"
)

// Messages sent by the game client to the UI.
type eventMsg struct {
	ev   event.Event
	view client.TableView
}
type errorMsg error
type bidPromptMsg client.TableView
type cardPromptMsg client.TableView
type doneMsg struct{ err error }

// Bridge is the client.Frontend of the terminal UI. Events are forwarded to
// the bubbletea program and decisions are read back from the keyboard
// handlers.
type Bridge struct {
	send  func(tea.Msg)
	bids  chan client.AuctionAction
	cards chan client.GameAction
}

// NewBridge creates a bridge that delivers messages through send, usually
// (*tea.Program).Send.
func NewBridge(send func(tea.Msg)) *Bridge {
	return &Bridge{
		send:  send,
		bids:  make(chan client.AuctionAction, 1),
		cards: make(chan client.GameAction, 1),
	}
}

func (b *Bridge) Show(ev event.Event, view client.TableView) {
	b.send(eventMsg{ev: ev, view: view})
}

func (b *Bridge) ShowError(err error) {
	b.send(errorMsg(err))
}

func (b *Bridge) AskBid(ctx context.Context, view client.TableView) client.AuctionAction {
	b.send(bidPromptMsg(view))
	select {
	case action := <-b.bids:
		return action
	case <-ctx.Done():
		return client.AuctionAction{Kind: client.AuctionLeave}
	}
}

func (b *Bridge) AskCard(ctx context.Context, view client.TableView) client.GameAction {
	b.send(cardPromptMsg(view))
	select {
	case action := <-b.cards:
		return action
	case <-ctx.Done():
		return client.GameAction{Leave: true}
	}
}

// Done tells the UI the party is over.
func (b *Bridge) Done(err error) {
	b.send(doneMsg{err: err})
}

func (b *Bridge) answerBid(action client.AuctionAction) {
	select {
	case b.bids <- action:
	default:
	}
}

func (b *Bridge) answerCard(action client.GameAction) {
	select {
	case b.cards <- action:
	default:
	}
}

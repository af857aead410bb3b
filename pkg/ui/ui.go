package ui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/decred/slog"
	"github.com/vctt94/coinched/pkg/client"
	"github.com/vctt94/coinched/pkg/coinche"
	"github.com/vctt94/coinched/pkg/event"
)

// screenState represents the current screen in the UI
type screenState int

const (
	stateWaiting screenState = iota
	stateBidding
	statePlaying
	stateFinished
)

type bidOption string

const (
	optionBid     bidOption = "Bid"
	optionPass    bidOption = "Pass"
	optionCoinche bidOption = "Coinche"
	optionLeave   bidOption = "Leave"
)

var bidOptions = []bidOption{optionBid, optionPass, optionCoinche, optionLeave}

// maxHistory is how many event lines the UI keeps.
const maxHistory = 12

// CoincheUI is the bubbletea model of a player at a party.
type CoincheUI struct {
	bridge   *Bridge
	renderer *Renderer
	input    *InputHandler

	state   screenState
	view    client.TableView
	history []string
	message string
	err     error
	result  error

	// Auction form
	selectedItem int
	bidSuit      int
	bidTarget    coinche.Target

	// Card selection
	cards        []coinche.Card
	selectedCard int
}

// NewCoincheUI creates a model answering the prompts of bridge.
func NewCoincheUI(bridge *Bridge) *CoincheUI {
	ui := &CoincheUI{
		bridge:  bridge,
		message: "Waiting for three other players...",
	}
	ui.renderer = &Renderer{ui: ui}
	ui.input = &InputHandler{ui: ui}
	return ui
}

func (ui *CoincheUI) Init() tea.Cmd {
	return nil
}

func (ui *CoincheUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return ui, ui.input.HandleKeyMsg(msg)

	case eventMsg:
		ui.view = msg.view
		ui.err = nil
		if _, ok := msg.ev.Payload.(event.NewGameRelative); ok {
			ui.message = ""
		}
		if line := describe(msg.ev, msg.view.Seat); line != "" {
			ui.addHistory(line)
		}

	case errorMsg:
		ui.err = msg

	case bidPromptMsg:
		ui.view = client.TableView(msg)
		ui.state = stateBidding
		ui.selectedItem = 0
		ui.bidTarget = minTarget(ui.view.Contract)

	case cardPromptMsg:
		ui.view = client.TableView(msg)
		ui.state = statePlaying
		ui.cards = ui.view.Hand.Cards()
		if ui.selectedCard >= len(ui.cards) {
			ui.selectedCard = 0
		}

	case doneMsg:
		ui.state = stateFinished
		ui.result = msg.err
	}
	return ui, nil
}

// View renders the current state of the UI
func (ui *CoincheUI) View() string {
	return ui.renderer.Render()
}

func (ui *CoincheUI) addHistory(line string) {
	ui.history = append(ui.history, line)
	if len(ui.history) > maxHistory {
		ui.history = ui.history[len(ui.history)-maxHistory:]
	}
}

// minTarget is the lowest target that outbids contract.
func minTarget(contract *coinche.Contract) coinche.Target {
	if contract == nil || contract.Target >= coinche.TargetGenerale {
		return coinche.Target80
	}
	return contract.Target + 1
}

// Run plays a party through backend in the terminal until it ends or the
// user quits. The player leaves the party on the way out.
func Run(ctx context.Context, backend client.Backend, log slog.Logger, maxHands int) error {
	if log == nil {
		log = slog.Disabled
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var p *tea.Program
	bridge := NewBridge(func(msg tea.Msg) { p.Send(msg) })
	p = tea.NewProgram(NewCoincheUI(bridge), tea.WithAltScreen(), tea.WithContext(ctx))

	c := client.New(client.Config{
		Backend:  backend,
		Frontend: bridge,
		Log:      log,
		MaxHands: maxHands,
	})
	go func() {
		bridge.Done(c.Run(ctx))
	}()

	_, err := p.Run()
	cancel()
	if errors.Is(err, tea.ErrProgramKilled) {
		err = nil
	}

	leaveCtx, leaveCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer leaveCancel()
	if lerr := backend.Leave(leaveCtx); lerr != nil && !errors.Is(lerr, client.ErrNotJoined) {
		log.Debugf("Leave on exit: %v", lerr)
	}
	return err
}

// FILE: internal/transport/cli/handler.go
package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"chessclock/internal/cli"
	"chessclock/internal/core"
	"chessclock/internal/notation"
	"chessclock/internal/service"
	"chessclock/internal/transport"
)

// CLIHandler drives one hot-seat game at a time from terminal commands
type CLIHandler struct {
	games  transport.Games
	view   *cli.CLI
	gameID string
}

func New(games transport.Games, view *cli.CLI) *CLIHandler {
	return &CLIHandler{
		games: games,
		view:  view,
	}
}

// Run is the main loop; it returns when the user quits or input ends
func (h *CLIHandler) Run() {
	for {
		cmd, err := h.view.GetCommand(h.getPrompt())
		if err != nil {
			break
		}
		if !h.ProcessCommand(cmd) {
			break
		}
	}
	h.endGame()
}

// getPrompt shows both clocks and the side to move while a game runs
func (h *CLIHandler) getPrompt() string {
	if h.gameID == "" {
		return "> "
	}
	snap, err := h.games.GetGame(h.gameID)
	if err != nil {
		return "> "
	}
	prompt := cli.Prompt(snap.State)
	if pos, ok := snap.State.Selection(); ok {
		prompt = fmt.Sprintf("%s[%s] ", prompt, pos)
	}
	return prompt
}

// ProcessCommand handles one command and returns false to exit
func (h *CLIHandler) ProcessCommand(cmd *cli.Command) bool {
	// The clock may have run out while the user was typing
	if h.announceIfOver() && (cmd.Type == cli.CmdMove || cmd.Type == cli.CmdSquare) {
		return true
	}

	switch cmd.Type {
	case cli.CmdQuit:
		return false

	case cli.CmdNone:

	case cli.CmdNew:
		clock := 0
		if len(cmd.Args) > 0 {
			n, err := strconv.Atoi(cmd.Args[0])
			if err != nil || n <= 0 {
				h.view.ShowMessage("Usage: new [seconds]")
				return true
			}
			clock = n
		}
		h.startGame(service.CreateOptions{ClockSeconds: clock})

	case cli.CmdResume:
		if len(cmd.Args) < 1 {
			h.view.ShowMessage("Usage: resume <FEN string>")
			return true
		}
		h.startGame(service.CreateOptions{FEN: strings.Join(cmd.Args, " ")})

	case cli.CmdMove:
		if !h.requireGame() {
			return true
		}
		from, to, err := notation.ParseMove(cmd.Args[0])
		if err != nil {
			h.view.ShowError(err)
			return true
		}
		h.submit(from, to)

	case cli.CmdSquare:
		if !h.requireGame() {
			return true
		}
		h.handleSquare(cmd.Args[0])

	case cli.CmdCancel:
		if h.requireGame() {
			h.games.Deselect(h.gameID)
		}

	case cli.CmdTargets:
		if !h.requireGame() {
			return true
		}
		if len(cmd.Args) < 1 {
			h.view.ShowMessage("Usage: moves <square>")
			return true
		}
		h.showTargets(cmd.Args[0])

	case cli.CmdBoard:
		if h.requireGame() {
			h.showBoard()
		}

	case cli.CmdClock:
		if h.requireGame() {
			if snap, err := h.games.GetGame(h.gameID); err == nil {
				h.view.ShowClocks(snap.State)
			}
		}

	case cli.CmdColor:
		if len(cmd.Args) < 1 {
			h.view.ShowMessage("Usage: color <off|brown|green|gray>")
			return true
		}
		theme := cli.ColorTheme(cmd.Args[0])
		if err := h.view.SetTheme(theme); err != nil {
			h.view.ShowError(err)
			return true
		}
		h.view.ShowMessage(fmt.Sprintf("Color theme set to: %s", theme))
		if h.gameID != "" {
			h.showBoard()
		}

	case cli.CmdHistory:
		if h.requireGame() {
			if snap, err := h.games.GetGame(h.gameID); err == nil {
				h.view.ShowGameHistory(snap.State)
			}
		}

	case cli.CmdHelp:
		h.view.ShowHelp()
	}

	return true
}

func (h *CLIHandler) requireGame() bool {
	if h.gameID == "" {
		h.view.ShowMessage("No active game. Use 'new' or 'resume <FEN>'.")
		return false
	}
	return true
}

func (h *CLIHandler) startGame(opts service.CreateOptions) {
	h.endGame()

	created, err := h.games.CreateGame(opts)
	if err != nil {
		h.view.ShowError(fmt.Errorf("could not start the game: %w", err))
		return
	}
	h.gameID = created.GameID

	h.view.ShowMessage("Game started.")
	h.view.DisplayBoard(created.State.Board())
	h.view.ShowClocks(created.State)
	h.view.ShowCheck(created.State)
	if created.State.IsOver() {
		h.view.ShowGameOver(created.State)
		h.endGame()
	}
}

// handleSquare selects a piece, or completes the pending selection
func (h *CLIHandler) handleSquare(square string) {
	pos, err := notation.ParseSquare(square)
	if err != nil {
		h.view.ShowError(err)
		return
	}
	snap, err := h.games.GetGame(h.gameID)
	if err != nil {
		h.view.ShowError(err)
		return
	}

	st := snap.State
	from, selected := st.Selection()
	target := st.Board().Get(pos)
	if selected && (target.IsEmpty() || target.Color != st.Turn()) {
		// A rejected click-move drops the selection
		if !h.submit(from, pos) && h.gameID != "" {
			h.games.Deselect(h.gameID)
		}
		return
	}

	if _, err := h.games.Select(h.gameID, pos); err != nil {
		h.view.ShowError(err)
		return
	}
	h.view.DisplayBoard(st.Board(), st.Targets(pos)...)
}

// submit plays one move and reports whether it was accepted
func (h *CLIHandler) submit(from, to core.Position) bool {
	snap, outcome, err := h.games.SubmitMove(h.gameID, 0, from, to)
	if err != nil {
		if errors.Is(err, core.ErrGameFinished) {
			h.announceIfOver()
			return false
		}
		h.view.ShowError(err)
		return false
	}

	h.view.ShowMove(outcome.Move)
	h.view.DisplayBoard(snap.State.Board())
	h.view.ShowCheck(snap.State)
	if snap.State.IsOver() {
		h.view.ShowGameOver(snap.State)
		h.endGame()
	}
	return true
}

func (h *CLIHandler) showTargets(square string) {
	pos, err := notation.ParseSquare(square)
	if err != nil {
		h.view.ShowError(err)
		return
	}
	snap, err := h.games.GetGame(h.gameID)
	if err != nil {
		h.view.ShowError(err)
		return
	}

	targets := snap.State.Targets(pos)
	if len(targets) == 0 {
		h.view.ShowMessage(fmt.Sprintf("No legal moves from %s.", pos))
		return
	}
	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = t.String()
	}
	h.view.DisplayBoard(snap.State.Board(), targets...)
	h.view.ShowMessage(fmt.Sprintf("%s: %s", pos, strings.Join(names, " ")))
}

func (h *CLIHandler) showBoard() {
	snap, err := h.games.GetGame(h.gameID)
	if err != nil {
		h.view.ShowError(err)
		return
	}
	h.view.DisplayBoard(snap.State.Board())
}

// announceIfOver reports a game that ended on the clock and drops it
func (h *CLIHandler) announceIfOver() bool {
	if h.gameID == "" {
		return false
	}
	snap, err := h.games.GetGame(h.gameID)
	if err != nil || !snap.State.IsOver() {
		return false
	}
	h.view.ShowGameOver(snap.State)
	h.endGame()
	return true
}

// endGame releases the current game and stops its clock
func (h *CLIHandler) endGame() {
	if h.gameID == "" {
		return
	}
	h.games.DeleteGame(h.gameID)
	h.gameID = ""
}

// FILE: internal/cli/cli.go
package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"chessclock/internal/board"
	"chessclock/internal/core"
	"chessclock/internal/game"
	"chessclock/internal/notation"
)

type CommandType int

const (
	CmdNone CommandType = iota
	CmdNew
	CmdResume
	CmdMove   // e2e4
	CmdSquare // e2: select, or complete a pending selection
	CmdTargets
	CmdCancel
	CmdBoard
	CmdClock
	CmdColor
	CmdHistory
	CmdHelp
	CmdQuit
)

type Command struct {
	Type CommandType
	Args []string
	Raw  string
}

// LineReader is the input side of the terminal; readline satisfies it
type LineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
}

type ColorTheme string

const (
	ThemeOff   ColorTheme = "off"
	ThemeBrown ColorTheme = "brown"
	ThemeGreen ColorTheme = "green"
	ThemeGray  ColorTheme = "gray"
)

type themeColors struct {
	lightBg string
	darkBg  string
	markBg  string
	white   string
	black   string
	reset   string
}

var themes = map[ColorTheme]themeColors{
	ThemeOff: {},
	ThemeBrown: {
		lightBg: "\033[48;5;230m", // Beige
		darkBg:  "\033[48;5;94m",  // Brown
		markBg:  "\033[48;5;179m",
		white:   "\033[97m",
		black:   "\033[30m",
		reset:   "\033[0m",
	},
	ThemeGreen: {
		lightBg: "\033[48;5;157m", // Light green
		darkBg:  "\033[48;5;22m",  // Dark green
		markBg:  "\033[48;5;186m",
		white:   "\033[97m",
		black:   "\033[30m",
		reset:   "\033[0m",
	},
	ThemeGray: {
		lightBg: "\033[48;5;251m", // Light gray
		darkBg:  "\033[48;5;240m", // Dark gray
		markBg:  "\033[48;5;110m",
		white:   "\033[97m",
		black:   "\033[30m",
		reset:   "\033[0m",
	},
}

type CLI struct {
	input  LineReader
	output io.Writer
	theme  ColorTheme
}

func New(input LineReader, output io.Writer) *CLI {
	return &CLI{
		input:  input,
		output: output,
		theme:  ThemeOff,
	}
}

// GetCommand shows prompt and reads one command. EOF reads as quit.
func (c *CLI) GetCommand(prompt string) (*Command, error) {
	c.input.SetPrompt(prompt)
	line, err := c.input.Readline()
	if err == io.EOF {
		return &Command{Type: CmdQuit}, nil
	}
	if err != nil {
		return nil, err
	}

	input := strings.TrimSpace(line)
	if input == "" {
		return &Command{Type: CmdNone}, nil
	}

	return ParseCommand(input), nil
}

// ParseCommand maps one input line onto a command
func ParseCommand(input string) *Command {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return &Command{Type: CmdNone}
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "new":
		return &Command{Type: CmdNew, Args: args}
	case "resume":
		return &Command{Type: CmdResume, Args: args, Raw: input}
	case "moves", "targets":
		return &Command{Type: CmdTargets, Args: args}
	case "cancel":
		return &Command{Type: CmdCancel}
	case "board":
		return &Command{Type: CmdBoard}
	case "clock":
		return &Command{Type: CmdClock}
	case "color":
		return &Command{Type: CmdColor, Args: args}
	case "history":
		return &Command{Type: CmdHistory}
	case "help", "?":
		return &Command{Type: CmdHelp}
	case "quit", "exit":
		return &Command{Type: CmdQuit}
	}

	if _, err := notation.ParseSquare(cmd); err == nil {
		return &Command{Type: CmdSquare, Args: []string{cmd}}
	}
	// Anything else is tried as a move
	return &Command{Type: CmdMove, Args: []string{cmd}}
}

func (c *CLI) SetTheme(theme ColorTheme) error {
	if _, ok := themes[theme]; !ok {
		return fmt.Errorf("invalid theme: %s (use: off, brown, green, gray)", theme)
	}
	c.theme = theme
	return nil
}

func (c *CLI) Theme() ColorTheme {
	return c.theme
}

func (c *CLI) ShowMessage(msg string) {
	fmt.Fprintln(c.output, msg)
}

func (c *CLI) ShowError(err error) {
	c.ShowMessage(fmt.Sprintf("Error: %v", err))
}

// DisplayBoard renders the board; marks are highlighted, or shown as '*'
// on empty squares without colours
func (c *CLI) DisplayBoard(b board.Board, marks ...core.Position) {
	theme := themes[c.theme]
	marked := make(map[core.Position]bool, len(marks))
	for _, m := range marks {
		marked[m] = true
	}

	var sb strings.Builder
	sb.WriteString("\n  a b c d e f g h\n")

	for r := 0; r < core.BoardSize; r++ {
		sb.WriteString(fmt.Sprintf("%d ", 8-r))
		for f := 0; f < core.BoardSize; f++ {
			pos := core.Pos(r, f)
			piece := b.Get(pos)

			if c.theme == ThemeOff {
				switch {
				case !piece.IsEmpty():
					sb.WriteString(fmt.Sprintf("%c ", piece.FEN()))
				case marked[pos]:
					sb.WriteString("* ")
				default:
					sb.WriteString(". ")
				}
				continue
			}

			bg := theme.darkBg
			if (r+f)%2 == 0 {
				bg = theme.lightBg
			}
			if marked[pos] {
				bg = theme.markBg
			}

			if piece.IsEmpty() {
				sb.WriteString(fmt.Sprintf("%s  %s", bg, theme.reset))
			} else {
				color := theme.black
				if piece.Color == core.ColorWhite {
					color = theme.white
				}
				sb.WriteString(fmt.Sprintf("%s%s%c %s", bg, color, piece.FEN(), theme.reset))
			}
		}
		sb.WriteString(fmt.Sprintf(" %d\n", 8-r))
	}
	sb.WriteString("  a b c d e f g h\n")

	c.ShowMessage(sb.String())
}

// FormatClock renders seconds as m:ss, or h:mm:ss from one hour
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h, m, s := seconds/3600, seconds/60%60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// Prompt shows both clocks and the side to move, e.g. "[W 9:58 | B 10:00] w> "
func Prompt(st game.State) string {
	clocks := st.Clocks()
	return fmt.Sprintf("[W %s | B %s] %s> ",
		FormatClock(clocks.White), FormatClock(clocks.Black), st.Turn())
}

func (c *CLI) ShowClocks(st game.State) {
	clocks := st.Clocks()
	c.ShowMessage(fmt.Sprintf("White %s   Black %s   (%s to move)",
		FormatClock(clocks.White), FormatClock(clocks.Black), st.Turn().Name()))
}

func (c *CLI) ShowMove(m game.Move) {
	c.ShowMessage(fmt.Sprintf("%s played %s (%s)", m.Piece.Color.Name(), m.Notation, m.Coordinate()))
}

func (c *CLI) ShowCheck(st game.State) {
	if st.Status() == core.StatusCheck {
		c.ShowMessage(fmt.Sprintf("%s is in check.", st.Turn().Name()))
	}
}

func (c *CLI) ShowHelp() {
	help := `Commands:
  new [seconds]    - Start a new game, optional clock per side
  resume <FEN>     - Start from a specific board position
  <move>           - Make a move (e.g., e2e4, g1f3)
  <square>         - Select a piece (e.g., e2), then its destination (e4)
  cancel           - Drop the current selection
  moves <square>   - Show where a piece can go
  board            - Show the board
  clock            - Show both clocks
  color <theme>    - Set board color theme (off|brown|green|gray)
  history          - Show game move history
  quit/exit        - Exit the program
  help/?           - Show this help message`

	c.ShowMessage(help)
}

func (c *CLI) ShowWelcome() {
	c.ShowMessage("Welcome to Chess!")
	c.ShowMessage("Commands: new [seconds], resume <FEN>, <move>, moves <sq>, history, clock, quit/exit, help/?")
	c.ShowMessage("Example: 'resume 4k3/8/8/8/8/8/8/4K2R w - - 0 1' to start from a puzzle.")
	c.ShowMessage("")
}

func (c *CLI) ShowGameHistory(st game.State) {
	c.ShowMessage(fmt.Sprintf("Starting FEN: %s", st.InitialFEN()))
	for _, line := range notation.Pairs(st.Notation(), st.StartingTurn()) {
		c.ShowMessage(line)
	}
	c.ShowMessage(fmt.Sprintf("Current FEN: %s", st.FEN()))
	c.ShowMessage(fmt.Sprintf("Game state: %s", st.Status()))
}

func (c *CLI) ShowGameOver(st game.State) {
	reason := "checkmate"
	if st.FlagFall() {
		reason = fmt.Sprintf("%s ran out of time", st.Turn().Name())
	}
	c.ShowMessage(fmt.Sprintf("\nGame Over: %s. %s wins.", reason, st.Winner().Name()))
	c.ShowMessage("Start a new game with 'new' or 'resume'.")
}

// scannerReader adapts a plain io.Reader for non-interactive input
type scannerReader struct {
	scanner *bufio.Scanner
	output  io.Writer
	prompt  string
}

// NewScannerReader reads lines from r and echoes prompts to w
func NewScannerReader(r io.Reader, w io.Writer) LineReader {
	return &scannerReader{scanner: bufio.NewScanner(r), output: w}
}

func (s *scannerReader) SetPrompt(prompt string) {
	s.prompt = prompt
}

func (s *scannerReader) Readline() (string, error) {
	if s.output != nil {
		fmt.Fprint(s.output, s.prompt)
	}
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return s.scanner.Text(), nil
}

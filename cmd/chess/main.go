// FILE: cmd/chess/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/chzyer/readline"
	"golang.org/x/term"

	"chessclock/internal/cli"
	"chessclock/internal/obslog"
	"chessclock/internal/service"
	clitransport "chessclock/internal/transport/cli"
)

func main() {
	var (
		clock    = flag.Int("clock", 600, "Seconds on each side's clock")
		tick     = flag.Duration("tick", time.Second, "Wall time per clock second, 0 for a frozen clock")
		logLevel = flag.String("log-level", "warn", "Log level written to stderr")
		logFile  = flag.String("log-file", "", "Optional log file")
	)
	flag.Parse()

	if err := obslog.Init(obslog.Options{
		Level:   *logLevel,
		Format:  "console",
		File:    *logFile,
		Console: *logFile == "",
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer obslog.Sync()

	svc, err := service.New(nil, service.Options{
		ClockSeconds: *clock,
		TickInterval: *tick,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		os.Exit(1)
	}
	defer svc.Shutdown(time.Second)

	input, closeInput, err := newLineReader()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open terminal: %v\n", err)
		os.Exit(1)
	}
	defer closeInput()

	view := cli.New(input, os.Stdout)
	if term.IsTerminal(int(os.Stdout.Fd())) {
		view.SetTheme(cli.ThemeBrown)
	}

	view.ShowWelcome()
	clitransport.New(svc, view).Run()
}

// newLineReader uses readline on a terminal and plain line scanning for
// piped input
func newLineReader() (cli.LineReader, func(), error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return cli.NewScannerReader(os.Stdin, os.Stdout), func() {}, nil
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		HistoryFile:     ".chess_history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, nil, err
	}
	return rl, func() { rl.Close() }, nil
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/rxlang/rxc/internal/phase"
	"github.com/rxlang/rxc/internal/pipeline"
	"github.com/rxlang/rxc/internal/pir"
)

const historyFile = ".rxc_history"

// runRepl is a small interactive loop for exploring phase combinations
// and checking one-off P-IR fixture snippets.
func runRepl(manifestPath string) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetMultiLineMode(true)

	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			_, _ = line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Println(color.CyanString("rxc repl — :phase <expected|_> <actual>, :check <fixture.json>, :quit"))
	for {
		input, err := line.Prompt("rxc> ")
		if err == io.EOF {
			fmt.Println(color.GreenString("goodbye"))
			return nil
		}
		if err != nil {
			return err
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		switch {
		case input == ":quit" || input == ":q":
			return nil
		case strings.HasPrefix(input, ":phase "):
			replPhase(os.Stdout, strings.Fields(input)[1:])
		case strings.HasPrefix(input, ":check "):
			replCheck(os.Stdout, manifestPath, strings.Fields(input)[1:])
		default:
			fmt.Println(color.YellowString("unrecognized command; try :phase, :check, or :quit"))
		}
	}
}

// replPhase and replCheck take an explicit io.Writer so their output
// can be captured in tests instead of going straight to stdout.
func replPhase(w io.Writer, args []string) {
	if len(args) != 2 {
		fmt.Fprintln(w, color.YellowString("usage: :phase <expected|_> <actual>"))
		return
	}
	var expected *phase.Expression
	if args[0] != "_" {
		p, err := phase.ParseExpression(args[0])
		if err != nil {
			fmt.Fprintln(w, color.RedString("error: %s", err))
			return
		}
		expected = &p
	}
	actual, err := phase.ParseExpression(args[1])
	if err != nil {
		fmt.Fprintln(w, color.RedString("error: %s", err))
		return
	}
	result, ok := phase.AdjustResult(expected, actual)
	if !ok {
		fmt.Fprintln(w, color.RedString("fail: this combination is not permitted"))
		return
	}
	fmt.Fprintln(w, result)
}

func replCheck(w io.Writer, manifestPath string, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(w, color.YellowString("usage: :check <fixture.json>"))
		return
	}
	cfg, err := loadPipelineConfig(manifestPath, true)
	if err != nil {
		fmt.Fprintln(w, color.RedString("error: %s", err))
		return
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintln(w, color.RedString("error: %s", err))
		return
	}
	f, err := pir.DecodeFile(data)
	if err != nil {
		fmt.Fprintln(w, color.RedString("error: %s", err))
		return
	}
	if _, err := pipeline.Run(context.Background(), cfg, []pipeline.Source{{Path: args[0], File: f}}); err != nil {
		fmt.Fprintln(w, color.RedString("error: %s", err))
		return
	}
	fmt.Fprintln(w, color.GreenString("ok"))
}

// prettyJSON is a small convenience used by future repl commands that
// want to echo a decoded fixture back for inspection.
func prettyJSON(v interface{}) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

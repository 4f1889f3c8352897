package repl

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"

	"tally/internal/evaluator"
	"tally/internal/lexer"
	"tally/internal/object"
	"tally/internal/parser"
	"tally/internal/util"
)

const (
	colorValue = "\033[36m"
	colorError = "\033[31m"
	colorReset = "\033[0m"
)

// Start runs the session loop: read a line, evaluate, print, repeat.
// SIGINT while reading asks whether to exit; the `.prio` directive
// adjusts operator precedences between expressions.
func Start(interp *evaluator.Interpreter, in io.Reader, out io.Writer, cfg util.Configuration) {
	color := cfg.Repl.Color && isTerminal(out)

	lines := make(chan string)
	scanner := bufio.NewScanner(in)
	go func() {
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	defer signal.Stop(sigs)

	for {
		// A SIGINT delivered while parsing, evaluating or printing only
		// interrupts back to reading; swallow anything queued during the
		// previous line so it cannot masquerade as a reading-state
		// interrupt and trigger the exit prompt below.
		drain(sigs)

		fmt.Fprint(out, cfg.Repl.Prompt)
		select {
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(out)
				return
			}
			line = strings.TrimSpace(line)
			switch {
			case line == "":
			case strings.HasPrefix(line, ".prio"):
				if err := handlePrio(interp.Parser(), line); err != nil {
					printError(out, color, err)
				}
			default:
				value, err := interp.RunLine(line)
				if err != nil {
					printError(out, color, err)
					continue
				}
				printValue(out, color, value)
			}

		case <-sigs:
			fmt.Fprint(out, "\nExit [y/n]? ")
			answer, ok := <-lines
			if !ok || strings.HasPrefix(strings.ToLower(strings.TrimSpace(answer)), "y") {
				fmt.Fprintln(out)
				return
			}
		}
	}
}

func drain(sigs chan os.Signal) {
	for {
		select {
		case <-sigs:
		default:
			return
		}
	}
}

// handlePrio implements `.prio <op> <strength> <left|right>`.
func handlePrio(p *parser.Parser, line string) error {
	fields := strings.Fields(line)
	if len(fields) != 4 {
		return fmt.Errorf("usage: .prio <op> <strength> <left|right>")
	}
	strength, err := strconv.Atoi(fields[2])
	if err != nil {
		return fmt.Errorf("bad strength %q", fields[2])
	}
	var assoc parser.Assoc
	switch fields[3] {
	case "left":
		assoc = parser.Left
	case "right":
		assoc = parser.Right
	default:
		return fmt.Errorf("bad associativity %q (want left or right)", fields[3])
	}
	p.SetPriority(fields[1], parser.Priority{Strength: strength, Assoc: assoc})
	return nil
}

func printValue(out io.Writer, color bool, value object.Object) {
	text := value.Inspect()
	if color {
		text = colorValue + text + colorReset
	}
	fmt.Fprintln(out, text)
}

func printError(out io.Writer, color bool, err error) {
	text := RenderError(err)
	if color {
		text = colorError + text + colorReset
	}
	fmt.Fprintln(out, text)
}

// RenderError formats the three error layers for the user.
func RenderError(err error) string {
	switch err := err.(type) {
	case *lexer.Error:
		return "lex error: " + err.Error()
	case *parser.Error:
		return "parse error: " + err.Error()
	case *object.RuntimeError:
		return "runtime error: " + err.Error()
	}
	return "error: " + err.Error()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

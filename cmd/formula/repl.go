package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zephyrtronium/formula"
)

const replHelp = `Type numbers, operators, and variable names separated by spaces. "=" submits.
Commands:
  :show              show the formula being built
  :undo              remove the last token
  :rm N              remove token N
  :rename N NAME     rename variable N
  :details N         describe token N
  :suggest TEXT      list suggestions for TEXT
  :list              list submitted formulas
  :drop N            remove submitted formula N
  :help              show this help
  :quit              exit`

func newReplCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Build formulas interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(opts)
			if err != nil {
				return err
			}
			defer s.close()
			return s.repl(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// repl reads lines from in until EOF or :quit.
func (s *session) repl(ctx context.Context, in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)
	fmt.Fprintln(out, `formula `+Version+`; :help for help`)
	for {
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			fmt.Fprintln(out)
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, ":") {
			if quit := s.command(ctx, line, out); quit {
				return nil
			}
			continue
		}
		for _, word := range strings.Fields(line) {
			switch s.commit(ctx, word) {
			case formula.EffectDropped:
				fmt.Fprintf(out, "dropped operator %q\n", word)
			case formula.EffectSubmitted:
				fmt.Fprintln(out, formatSubmitted(s.state.Formulas.Len()-1, s.last()))
			}
		}
		if s.state.Builder.Len() > 0 {
			fmt.Fprintln(out, s.state.Builder.Sequence())
		}
	}
}

// command runs a : command. It reports whether the REPL should exit.
func (s *session) command(ctx context.Context, line string, out io.Writer) bool {
	f := strings.Fields(line)
	b := s.state.Builder
	switch f[0] {
	case ":quit", ":q":
		return true
	case ":help":
		fmt.Fprintln(out, replHelp)
	case ":show":
		fmt.Fprintln(out, b.Sequence())
	case ":undo":
		b.RemoveLast()
		fmt.Fprintln(out, b.Sequence())
	case ":rm":
		i, ok := index(f, b.Len(), out)
		if !ok {
			break
		}
		b.RemoveAt(i)
		fmt.Fprintln(out, b.Sequence())
	case ":rename":
		i, ok := index(f, b.Len(), out)
		if !ok {
			break
		}
		if len(f) < 3 || !b.RenameVariable(i, strings.Join(f[2:], " ")) {
			fmt.Fprintf(out, "token %d is not a variable or the name is empty\n", i)
			break
		}
		fmt.Fprintln(out, b.Sequence())
	case ":details":
		i, ok := index(f, b.Len(), out)
		if !ok {
			break
		}
		fmt.Fprintln(out, b.Sequence()[i].Details())
	case ":suggest":
		if s.ac == nil {
			fmt.Fprintln(out, "no suggestion source configured")
			break
		}
		select {
		case <-s.ac.Input(ctx, strings.Join(f[1:], " ")):
		case <-ctx.Done():
		}
		for _, v := range s.ac.Suggestions() {
			fmt.Fprintf(out, "%s (%s)\n", v.Name, v.Value)
		}
		s.ac.Clear()
	case ":list":
		for i, v := range s.state.Formulas.List() {
			fmt.Fprintln(out, formatSubmitted(i, v))
		}
	case ":drop":
		i, ok := index(f, s.state.Formulas.Len(), out)
		if !ok {
			break
		}
		s.state.Formulas.RemoveAt(i)
	default:
		fmt.Fprintf(out, "unknown command %s; :help for help\n", f[0])
	}
	return false
}

// index parses the index argument of a command, checking that it is below n.
func index(f []string, n int, out io.Writer) (int, bool) {
	if len(f) < 2 {
		fmt.Fprintf(out, "%s needs an index\n", f[0])
		return 0, false
	}
	i, err := strconv.Atoi(f[1])
	if err != nil || i < 0 || i >= n {
		fmt.Fprintf(out, "no item at index %s\n", f[1])
		return 0, false
	}
	return i, true
}

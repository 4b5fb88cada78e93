package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zephyrtronium/formula"
	"github.com/zephyrtronium/formula/internal/config"
	"github.com/zephyrtronium/formula/internal/logger"
	"github.com/zephyrtronium/formula/suggest"
)

// Version is the command version.
const Version = "0.1.0"

// options are the persistent flags.
type options struct {
	cfgFile string
	debug   bool
}

func newRootCmd() *cobra.Command {
	var opts options
	root := &cobra.Command{
		Use:           "formula",
		Short:         "Build and evaluate arithmetic formulas",
		Long:          "formula builds arithmetic formulas out of numbers, operators, and named variables looked up from a suggestion source, and evaluates them.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "configuration file")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")
	root.CompletionOptions.DisableDefaultCmd = true
	root.AddCommand(newEvalCmd(&opts), newReplCmd(&opts), newServeCmd(&opts))
	return root
}

// session is a formula State with the autocomplete that resolves its words.
type session struct {
	cfg   *config.Config
	log   *zap.Logger
	state *formula.State
	ac    *suggest.Autocomplete
}

// newSession loads the configuration and wires up a session.
func newSession(opts *options) (*session, error) {
	cfg, err := config.Load(opts.cfgFile)
	if err != nil {
		return nil, err
	}
	if opts.debug {
		cfg.Logging.Level = "debug"
	}
	log := logger.New(cfg.Logging)
	src, err := source(cfg.Suggestions)
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, log: log}
	stateOpts := []formula.Option{
		formula.WithLogger(log),
		formula.WithEvaluator(formula.NewEvaluator(
			formula.Prec(cfg.Evaluator.Precision),
			formula.Digits(cfg.Evaluator.Digits),
		)),
	}
	if src != nil {
		s.ac = suggest.NewAutocomplete(src, log.Named("suggest"))
		stateOpts = append(stateOpts, formula.WithResolver(s.ac))
	}
	s.state = formula.NewState(stateOpts...)
	return s, nil
}

// source creates the configured suggestion source, or nil if there is none.
func source(cfg config.SuggestionsConfig) (suggest.Source, error) {
	switch {
	case cfg.File != "":
		return suggest.LoadStatic(cfg.File)
	case cfg.URL != "":
		return &suggest.HTTPSource{URL: cfg.URL, Timeout: cfg.Timeout}, nil
	default:
		return nil, nil
	}
}

// commit types one word into the formula. Words that may name a variable are
// looked up first, waiting no longer than the configured wait.
func (s *session) commit(ctx context.Context, word string) formula.Effect {
	if s.ac != nil && !formula.IsOperatorText(word) && !formula.IsSubmitText(word) && !formula.IsNumberText(word) {
		t := time.NewTimer(s.cfg.Suggestions.Wait)
		select {
		case <-s.ac.Input(ctx, word):
		case <-t.C:
			s.log.Debug("lookup still pending, committing as typed", zap.String("word", word))
		case <-ctx.Done():
		}
		t.Stop()
	}
	eff := s.state.Builder.Append(word)
	if s.ac != nil {
		s.ac.Clear()
	}
	return eff
}

// last returns the most recently submitted formula.
func (s *session) last() *formula.Submitted {
	n := s.state.Formulas.Len()
	if n == 0 {
		return nil
	}
	return s.state.Formulas.Get(n - 1)
}

func (s *session) close() {
	_ = s.log.Sync()
}

// formatSubmitted writes a submitted formula as shown in listings.
func formatSubmitted(i int, f *formula.Submitted) string {
	return fmt.Sprintf("[%d] %s %s", i, f.Tokens(), f.Result())
}

package formula

import "go.uber.org/zap"

// State is the complete formula state of one application: the formula being
// built and the formulas submitted so far. The builder submits into the
// collection. A State is not safe for concurrent use; callers handling
// concurrent events must serialize them.
type State struct {
	Builder  *Builder
	Formulas *Collection
}

// Option is an option used when creating a State.
type Option interface {
	stateOption()
}

type (
	resolveropt struct{ r Resolver }
	loggeropt   struct{ log *zap.Logger }
	evalopt     struct{ e *Evaluator }
)

func (resolveropt) stateOption() {}
func (loggeropt) stateOption()   {}
func (evalopt) stateOption()     {}

// WithResolver sets the resolver used to turn typed words into variables.
func WithResolver(r Resolver) Option {
	return resolveropt{r}
}

// WithLogger sets the logger of the builder and the collection.
func WithLogger(log *zap.Logger) Option {
	return loggeropt{log}
}

// WithEvaluator sets the evaluator of submitted formulas.
func WithEvaluator(e *Evaluator) Option {
	return evalopt{e}
}

// NewState creates an empty state.
func NewState(opts ...Option) *State {
	var (
		r   Resolver
		log = zap.NewNop()
		e   *Evaluator
	)
	for _, opt := range opts {
		switch opt := opt.(type) {
		case resolveropt:
			r = opt.r
		case loggeropt:
			if opt.log != nil {
				log = opt.log
			}
		case evalopt:
			e = opt.e
		case nil: // do nothing
		default:
			panic("formula: unknown option type")
		}
	}
	c := NewCollection(e, log.Named("formulas"))
	return &State{
		Builder:  NewBuilder(r, c, log.Named("builder")),
		Formulas: c,
	}
}

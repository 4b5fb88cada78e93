// Package server exposes a formula State over HTTP.
package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/zephyrtronium/formula"
	"github.com/zephyrtronium/formula/suggest"
)

// Config holds server settings.
type Config struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server serves one formula State. Requests that touch the state are handled
// one at a time.
type Server struct {
	app *fiber.App
	log *zap.Logger

	mu    sync.Mutex
	state *formula.State
	ac    *suggest.Autocomplete
}

// New creates a server for state. If ac is non-nil, it is used for the
// suggestions endpoint and should be the resolver of state.
func New(state *formula.State, ac *suggest.Autocomplete, cfg Config, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	app := fiber.New(fiber.Config{
		AppName:               "formula",
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		ErrorHandler:          errorHandler,
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		DisableStartupMessage: true,
	})
	s := &Server{app: app, log: log, state: state, ac: ac}
	app.Use(fiberrecover.New())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(HealthResponse{Status: "healthy"})
	})
	api := s.app.Group("/api/v1")
	api.Get("/formula", s.getFormula)
	api.Post("/formula", s.appendToken)
	api.Post("/formula/pick", s.pickSuggestion)
	api.Delete("/formula/last", s.removeLast)
	api.Delete("/formula/:index", s.removeToken)
	api.Patch("/formula/:index", s.renameVariable)
	api.Get("/formulas", s.listFormulas)
	api.Delete("/formulas/:index", s.removeFormula)
	api.Get("/suggestions", s.suggestions)
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	s.log.Info("listening", zap.String("address", addr))
	return s.app.Listen(addr)
}

// Shutdown stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) getFormula(c *fiber.Ctx) error {
	s.mu.Lock()
	seq := s.state.Builder.Sequence()
	s.mu.Unlock()
	return c.JSON(formulaResponse(seq))
}

func (s *Server) appendToken(c *fiber.Ctx) error {
	var req TokenRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	s.mu.Lock()
	n := s.state.Formulas.Len()
	eff := s.state.Builder.Append(req.Text)
	r := AppendResponse{Effect: eff.String(), Formula: formulaResponse(s.state.Builder.Sequence())}
	if eff == formula.EffectSubmitted && s.state.Formulas.Len() > n {
		r.Submitted = submittedResponse(s.state.Formulas.Get(s.state.Formulas.Len() - 1))
	}
	s.mu.Unlock()
	if eff != formula.EffectIgnored && s.ac != nil {
		s.ac.Clear()
	}
	return c.JSON(r)
}

func (s *Server) pickSuggestion(c *fiber.Ctx) error {
	var req formula.Suggestion
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if req.ID == "" || req.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "suggestion needs an id and a name")
	}
	s.mu.Lock()
	eff := s.state.Builder.Pick(req)
	r := AppendResponse{Effect: eff.String(), Formula: formulaResponse(s.state.Builder.Sequence())}
	s.mu.Unlock()
	if s.ac != nil {
		s.ac.Clear()
	}
	return c.JSON(r)
}

func (s *Server) removeLast(c *fiber.Ctx) error {
	s.mu.Lock()
	s.state.Builder.RemoveLast()
	seq := s.state.Builder.Sequence()
	s.mu.Unlock()
	return c.JSON(formulaResponse(seq))
}

func (s *Server) removeToken(c *fiber.Ctx) error {
	i, err := c.ParamsInt("index")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "index must be an integer")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= s.state.Builder.Len() {
		return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("no token at index %d", i))
	}
	s.state.Builder.RemoveAt(i)
	return c.JSON(formulaResponse(s.state.Builder.Sequence()))
}

func (s *Server) renameVariable(c *fiber.Ctx) error {
	i, err := c.ParamsInt("index")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "index must be an integer")
	}
	var req RenameRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.Builder.RenameVariable(i, req.Name) {
		return fiber.NewError(fiber.StatusUnprocessableEntity, fmt.Sprintf("cannot rename token %d to %q", i, req.Name))
	}
	return c.JSON(formulaResponse(s.state.Builder.Sequence()))
}

func (s *Server) listFormulas(c *fiber.Ctx) error {
	s.mu.Lock()
	list := s.state.Formulas.List()
	s.mu.Unlock()
	r := make([]*SubmittedResponse, len(list))
	for i, f := range list {
		r[i] = submittedResponse(f)
	}
	return c.JSON(r)
}

func (s *Server) removeFormula(c *fiber.Ctx) error {
	i, err := c.ParamsInt("index")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "index must be an integer")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= s.state.Formulas.Len() {
		return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("no formula at index %d", i))
	}
	s.state.Formulas.RemoveAt(i)
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) suggestions(c *fiber.Ctx) error {
	q := c.Query("search")
	if s.ac == nil {
		return c.JSON(SuggestionsResponse{Query: q, Suggestions: []formula.Suggestion{}})
	}
	select {
	case <-s.ac.Input(c.UserContext(), q):
	case <-c.UserContext().Done():
		return fiber.NewError(fiber.StatusServiceUnavailable, "lookup canceled")
	}
	r := s.ac.Suggestions()
	if r == nil {
		r = []formula.Suggestion{}
	}
	return c.JSON(SuggestionsResponse{Query: q, Suggestions: r})
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}
	return c.Status(code).JSON(ErrorResponse{
		Error:   fmt.Sprintf("error_%d", code),
		Message: message,
	})
}

package server

import "github.com/zephyrtronium/formula"

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse is the body of the health check.
type HealthResponse struct {
	Status string `json:"status"`
}

// TokenRequest is the body of a request to type a token.
type TokenRequest struct {
	Text string `json:"text"`
}

// RenameRequest is the body of a request to rename a variable.
type RenameRequest struct {
	Name string `json:"name"`
}

// FormulaResponse is the formula being built.
type FormulaResponse struct {
	Tokens  []TokenResponse `json:"tokens"`
	Display string          `json:"display"`
}

// TokenResponse is one token of a formula.
type TokenResponse struct {
	formula.Token
	Key      string `json:"key"`
	Variable bool   `json:"variable"`
	Display  string `json:"display"`
}

// AppendResponse reports the effect of typing a token.
type AppendResponse struct {
	Effect    string             `json:"effect"`
	Formula   FormulaResponse    `json:"formula"`
	Submitted *SubmittedResponse `json:"submitted,omitempty"`
}

// SubmittedResponse is one submitted formula.
type SubmittedResponse struct {
	ID      string          `json:"id"`
	Serial  uint64          `json:"serial"`
	Tokens  []TokenResponse `json:"tokens"`
	Display string          `json:"display"`
	Result  string          `json:"result"`
	OK      bool            `json:"ok"`
	Error   string          `json:"error,omitempty"`
}

// SuggestionsResponse lists the suggestions for a query.
type SuggestionsResponse struct {
	Query       string               `json:"query"`
	Suggestions []formula.Suggestion `json:"suggestions"`
}

func tokensResponse(seq formula.Sequence) []TokenResponse {
	r := make([]TokenResponse, len(seq))
	for i, t := range seq {
		r[i] = TokenResponse{
			Token:    t,
			Key:      t.Key(i),
			Variable: t.IsVariable(),
			Display:  t.Display(),
		}
	}
	return r
}

func formulaResponse(seq formula.Sequence) FormulaResponse {
	return FormulaResponse{Tokens: tokensResponse(seq), Display: seq.String()}
}

func submittedResponse(f *formula.Submitted) *SubmittedResponse {
	seq := f.Tokens()
	r := &SubmittedResponse{
		ID:      f.ID().String(),
		Serial:  f.Serial(),
		Tokens:  tokensResponse(seq),
		Display: seq.String(),
		Result:  f.Result(),
		OK:      f.OK(),
	}
	if err := f.Err(); err != nil {
		r.Error = err.Error()
	}
	return r
}

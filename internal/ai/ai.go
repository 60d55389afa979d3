// Package ai scores bench candidates against open jobs with a language model.
package ai

import "context"

// Generator is a text-in, text-out model backend.
type Generator interface {
	GenerateContent(ctx context.Context, systemInstruction, prompt string) (string, error)
	Model() string
}

// Assessment is the model verdict for one candidate and job pair.
type Assessment struct {
	Fit     bool
	Score   float64
	Reason  string
	Message string
	Raw     string
}

package ai

import (
	"context"
	"errors"
	"strings"
)

// completer sends one system+user exchange to a model and returns the raw text answer
type completer interface {
	complete(ctx context.Context, system, user, model string) (string, error)
}

// chatAnalyzer turns any completer into an Analyzer
type chatAnalyzer struct {
	name        string
	c           completer
	honorsModel bool
}

func (a *chatAnalyzer) Name() string { return a.name }

func (a *chatAnalyzer) Analyze(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, errors.New("text is required")
	}
	model := ""
	if a.honorsModel {
		model = req.Model
	}
	raw, err := a.c.complete(ctx, SystemPrompt(req.Format), UserMessage(req.Text), model)
	if err != nil {
		return nil, err
	}
	return ParseResult(raw)
}

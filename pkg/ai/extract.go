package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrNoJSON = errors.New("model response contains no JSON object")

	fencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
)

// ExtractJSON finds the JSON object in a model response: a fenced ```json block first,
// otherwise the span from the first '{' to the last '}'.
func ExtractJSON(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return "", ErrNoJSON
	}
	return text[start : end+1], nil
}

// ParseResult decodes a model response into a Result
func ParseResult(raw string) (*Result, error) {
	obj, err := ExtractJSON(raw)
	if err != nil {
		return nil, err
	}
	var res Result
	if err := json.Unmarshal([]byte(obj), &res); err != nil {
		return nil, fmt.Errorf("parse analysis JSON: %w", err)
	}
	res.normalize()
	return &res, nil
}

func (r *Result) normalize() {
	if r.KeyPoints == nil {
		r.KeyPoints = []string{}
	}
	if r.Decisions == nil {
		r.Decisions = []string{}
	}
	if r.Tasks == nil {
		r.Tasks = []Task{}
	}
	switch s := strings.ToLower(strings.TrimSpace(r.Sentiment)); s {
	case "positivo", "neutral", "negativo":
		r.Sentiment = s
	default:
		r.Sentiment = ""
	}
}

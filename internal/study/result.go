package study

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	MinTopics = 3
	MaxTopics = 6
)

// ErrMalformedOutput marks model output that does not match the expected schema.
var ErrMalformedOutput = errors.New("study: malformed model output")

type Topic struct {
	Topic       string   `json:"topic"`
	Explanation string   `json:"explanation"`
	Readings    []string `json:"readings"`
	Wikipedia   []string `json:"wikipedia"`
	Strategies  []string `json:"strategies"`
}

type Result struct {
	Analysis string  `json:"analysis"`
	Topics   []Topic `json:"topics"`
}

// ParseResult decodes and validates model output. It never repairs malformed JSON.
func ParseResult(raw string) (Result, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Result{}, fmt.Errorf("%w: empty response", ErrMalformedOutput)
	}
	var res Result
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	if strings.TrimSpace(res.Analysis) == "" {
		return Result{}, fmt.Errorf("%w: missing analysis", ErrMalformedOutput)
	}
	if len(res.Topics) < MinTopics || len(res.Topics) > MaxTopics {
		return Result{}, fmt.Errorf("%w: expected %d to %d topics, got %d", ErrMalformedOutput, MinTopics, MaxTopics, len(res.Topics))
	}
	for i := range res.Topics {
		t := &res.Topics[i]
		if strings.TrimSpace(t.Topic) == "" {
			return Result{}, fmt.Errorf("%w: topic %d has no name", ErrMalformedOutput, i+1)
		}
		t.Readings = nonNil(t.Readings)
		t.Wikipedia = nonNil(t.Wikipedia)
		t.Strategies = nonNil(t.Strategies)
	}
	return res, nil
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

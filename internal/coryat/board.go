// Package coryat generates and plays full mock Jeopardy! boards scored by the Coryat method.
package coryat

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	RoundJeopardy       = "jeopardy"
	RoundDoubleJeopardy = "double_jeopardy"
	RoundFinalJeopardy  = "final_jeopardy"

	Columns = 6
	Rows    = 5
)

var (
	JeopardyValues       = [Rows]int{200, 400, 600, 800, 1000}
	DoubleJeopardyValues = [Rows]int{400, 800, 1200, 1600, 2000}
)

var (
	ErrAlreadyAnswered  = errors.New("coryat: cell already answered")
	ErrCellUnavailable  = errors.New("coryat: cell has no clue")
	ErrCellNotFound     = errors.New("coryat: no cell at that position")
	ErrInvalidResponse  = errors.New("coryat: response must be correct, incorrect or pass")
	ErrInvalidRound     = errors.New("coryat: unknown round")
	ErrInvalidBoard     = errors.New("coryat: stored board is malformed")
	ErrFinalUnavailable = errors.New("coryat: no final jeopardy clue")
)

type Response string

const (
	Correct   Response = "correct"
	Incorrect Response = "incorrect"
	Pass      Response = "pass"
)

func (r Response) Valid() bool {
	switch r {
	case Correct, Incorrect, Pass:
		return true
	}
	return false
}

// Cell is one square of a scored round. Answered is nil until the cell reaches a terminal state.
type Cell struct {
	Col         int       `json:"col"`
	Row         int       `json:"row"`
	QuestionID  *int64    `json:"question_id"`
	Value       int       `json:"value"`
	Answered    *Response `json:"answered"`
	DailyDouble bool      `json:"daily_double"`
}

func (c Cell) Available() bool {
	return c.QuestionID != nil
}

func (c Cell) Terminal() bool {
	return c.Answered != nil
}

// Points is the signed Coryat contribution of the cell.
func (c Cell) Points() int {
	if !c.Available() || c.Answered == nil {
		return 0
	}
	switch *c.Answered {
	case Correct:
		return c.Value
	case Incorrect:
		return -c.Value
	}
	return 0
}

// Apply is the only cell transition: unanswered to a terminal response.
func (c Cell) Apply(resp Response) (Cell, error) {
	if !resp.Valid() {
		return c, ErrInvalidResponse
	}
	if c.Terminal() {
		return c, ErrAlreadyAnswered
	}
	if !c.Available() {
		return c, ErrCellUnavailable
	}
	next := c
	next.Answered = &resp
	return next, nil
}

type Round struct {
	Categories []string `json:"categories"`
	Questions  []Cell   `json:"questions"`
}

func (r *Round) cellIndex(col, row int) int {
	for i, cell := range r.Questions {
		if cell.Col == col && cell.Row == row {
			return i
		}
	}
	return -1
}

func (r Round) Score() int {
	total := 0
	for _, cell := range r.Questions {
		total += cell.Points()
	}
	return total
}

// Remaining counts available cells still unanswered.
func (r Round) Remaining() int {
	count := 0
	for _, cell := range r.Questions {
		if cell.Available() && !cell.Terminal() {
			count++
		}
	}
	return count
}

func (r Round) Available() int {
	count := 0
	for _, cell := range r.Questions {
		if cell.Available() {
			count++
		}
	}
	return count
}

func (r Round) Complete() bool {
	return r.Remaining() == 0
}

type FinalCell struct {
	Category   string    `json:"category"`
	QuestionID *int64    `json:"question_id"`
	Answered   *Response `json:"answered"`
}

type Rounds struct {
	Jeopardy       Round     `json:"jeopardy"`
	DoubleJeopardy Round     `json:"double_jeopardy"`
	FinalJeopardy  FinalCell `json:"final_jeopardy"`
}

type Board struct {
	Rounds Rounds `json:"rounds"`
}

// Outcome describes the effect of one accepted answer.
type Outcome struct {
	Round       string
	ScoreChange int
	Value       int
}

func (b *Board) round(name string) (*Round, error) {
	switch name {
	case RoundJeopardy:
		return &b.Rounds.Jeopardy, nil
	case RoundDoubleJeopardy:
		return &b.Rounds.DoubleJeopardy, nil
	}
	return nil, ErrInvalidRound
}

// Answer records a response. Final Jeopardy ignores col/row and never scores.
func (b *Board) Answer(roundName string, col, row int, resp Response) (Outcome, error) {
	if !resp.Valid() {
		return Outcome{}, ErrInvalidResponse
	}
	if roundName == RoundFinalJeopardy {
		final := &b.Rounds.FinalJeopardy
		if final.Answered != nil {
			return Outcome{}, ErrAlreadyAnswered
		}
		if final.QuestionID == nil {
			return Outcome{}, ErrFinalUnavailable
		}
		final.Answered = &resp
		return Outcome{Round: roundName}, nil
	}
	rnd, err := b.round(roundName)
	if err != nil {
		return Outcome{}, err
	}
	idx := rnd.cellIndex(col, row)
	if idx < 0 {
		return Outcome{}, ErrCellNotFound
	}
	next, err := rnd.Questions[idx].Apply(resp)
	if err != nil {
		return Outcome{}, err
	}
	rnd.Questions[idx] = next
	return Outcome{Round: roundName, ScoreChange: next.Points(), Value: next.Value}, nil
}

func (b Board) JeopardyScore() int {
	return b.Rounds.Jeopardy.Score()
}

func (b Board) DoubleJeopardyScore() int {
	return b.Rounds.DoubleJeopardy.Score()
}

// Remaining counts unanswered available cells in one scored round.
func (b Board) Remaining(roundName string) int {
	switch roundName {
	case RoundJeopardy:
		return b.Rounds.Jeopardy.Remaining()
	case RoundDoubleJeopardy:
		return b.Rounds.DoubleJeopardy.Remaining()
	case RoundFinalJeopardy:
		if b.Rounds.FinalJeopardy.QuestionID != nil && b.Rounds.FinalJeopardy.Answered == nil {
			return 1
		}
	}
	return 0
}

func (b Board) TotalRemaining() int {
	return b.Rounds.Jeopardy.Remaining() + b.Rounds.DoubleJeopardy.Remaining()
}

// AnsweredCount counts terminal cells, including Final Jeopardy.
func (b Board) AnsweredCount() int {
	count := 0
	for _, rnd := range []Round{b.Rounds.Jeopardy, b.Rounds.DoubleJeopardy} {
		for _, cell := range rnd.Questions {
			if cell.Terminal() {
				count++
			}
		}
	}
	if b.Rounds.FinalJeopardy.Answered != nil {
		count++
	}
	return count
}

// CurrentRound is 1 while the first round has open cells, 2 for the second, then 3.
func (b Board) CurrentRound() int {
	if !b.Rounds.Jeopardy.Complete() {
		return 1
	}
	if !b.Rounds.DoubleJeopardy.Complete() {
		return 2
	}
	return 3
}

// Tally summarizes the scored rounds.
type Tally struct {
	Correct        int `json:"correct"`
	Incorrect      int `json:"incorrect"`
	Passed         int `json:"passed"`
	CorrectValue   int `json:"correct_value"`
	IncorrectValue int `json:"incorrect_value"`
}

func (b Board) Tally() Tally {
	var t Tally
	for _, rnd := range []Round{b.Rounds.Jeopardy, b.Rounds.DoubleJeopardy} {
		for _, cell := range rnd.Questions {
			if !cell.Available() || cell.Answered == nil {
				continue
			}
			switch *cell.Answered {
			case Correct:
				t.Correct++
				t.CorrectValue += cell.Value
			case Incorrect:
				t.Incorrect++
				t.IncorrectValue += cell.Value
			case Pass:
				t.Passed++
			}
		}
	}
	return t
}

// QuestionIDs lists every clue referenced by the board, final included.
func (b Board) QuestionIDs() []int64 {
	ids := []int64{}
	for _, rnd := range []Round{b.Rounds.Jeopardy, b.Rounds.DoubleJeopardy} {
		for _, cell := range rnd.Questions {
			if cell.QuestionID != nil {
				ids = append(ids, *cell.QuestionID)
			}
		}
	}
	if b.Rounds.FinalJeopardy.QuestionID != nil {
		ids = append(ids, *b.Rounds.FinalJeopardy.QuestionID)
	}
	return ids
}

func (b Board) Marshal() (json.RawMessage, error) {
	return json.Marshal(b)
}

// ParseBoard decodes a stored board and checks its shape.
func ParseBoard(raw []byte) (Board, error) {
	var b Board
	if err := json.Unmarshal(raw, &b); err != nil {
		return Board{}, fmt.Errorf("%w: %v", ErrInvalidBoard, err)
	}
	if err := b.Validate(); err != nil {
		return Board{}, err
	}
	return b, nil
}

func (b Board) Validate() error {
	if err := validateRound(RoundJeopardy, b.Rounds.Jeopardy, JeopardyValues); err != nil {
		return err
	}
	if err := validateRound(RoundDoubleJeopardy, b.Rounds.DoubleJeopardy, DoubleJeopardyValues); err != nil {
		return err
	}
	if ans := b.Rounds.FinalJeopardy.Answered; ans != nil && !ans.Valid() {
		return fmt.Errorf("%w: final jeopardy response %q", ErrInvalidBoard, *ans)
	}
	return nil
}

func validateRound(name string, rnd Round, values [Rows]int) error {
	if len(rnd.Categories) != Columns {
		return fmt.Errorf("%w: %s has %d categories", ErrInvalidBoard, name, len(rnd.Categories))
	}
	if len(rnd.Questions) != Columns*Rows {
		return fmt.Errorf("%w: %s has %d cells", ErrInvalidBoard, name, len(rnd.Questions))
	}
	seen := map[[2]int]bool{}
	for _, cell := range rnd.Questions {
		if cell.Col < 0 || cell.Col >= Columns || cell.Row < 0 || cell.Row >= Rows {
			return fmt.Errorf("%w: %s cell (%d,%d) out of range", ErrInvalidBoard, name, cell.Col, cell.Row)
		}
		key := [2]int{cell.Col, cell.Row}
		if seen[key] {
			return fmt.Errorf("%w: %s cell (%d,%d) repeated", ErrInvalidBoard, name, cell.Col, cell.Row)
		}
		seen[key] = true
		if cell.Value != values[cell.Row] {
			return fmt.Errorf("%w: %s cell (%d,%d) value %d", ErrInvalidBoard, name, cell.Col, cell.Row, cell.Value)
		}
		if cell.Answered != nil && !cell.Answered.Valid() {
			return fmt.Errorf("%w: %s cell (%d,%d) response %q", ErrInvalidBoard, name, cell.Col, cell.Row, *cell.Answered)
		}
		if cell.Answered != nil && cell.QuestionID == nil {
			return fmt.Errorf("%w: %s cell (%d,%d) answered without clue", ErrInvalidBoard, name, cell.Col, cell.Row)
		}
	}
	return nil
}

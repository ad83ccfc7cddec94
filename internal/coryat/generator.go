package coryat

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"jeopardy-trainer-go/internal/models"
)

// DoubleValueDate is the first air date with the current dollar values.
var DoubleValueDate = time.Date(2001, time.November, 26, 0, 0, 0, 0, time.UTC)

// NormalizeClueValue maps a clue value from before the 2001 doubling onto the current scale.
func NormalizeClueValue(value int, airDate time.Time) int {
	if airDate.Before(DoubleValueDate) && value < 1000 {
		return value * 2
	}
	return value
}

const (
	categoryPool     = 100
	finalCandidates  = 25
	valuedCandidates = 50
)

// ClueSource answers the lookups the generator needs. Every lookup excludes
// archived clues and ids already placed on the board.
type ClueSource interface {
	// TopCategories returns show categories ranked by playable clue count.
	TopCategories(ctx context.Context, limit int, exclude []string) ([]string, error)
	// ExactValueClue finds the most recent clue with the value in the round (or with no round).
	ExactValueClue(ctx context.Context, category string, value, round int, exclude []int64) (int64, bool, error)
	// NullValueClue finds the most recent unvalued clue of the round.
	NullValueClue(ctx context.Context, category string, round int, exclude []int64) (int64, bool, error)
	// ValuedClues lists dated, valued clues of the category, newest first.
	ValuedClues(ctx context.Context, category string, limit int, exclude []int64) ([]models.ValuedClue, error)
	// FinalRoundClues lists recent round three clues; RecentClues is the fallback.
	FinalRoundClues(ctx context.Context, limit int) ([]models.ClueRef, error)
	RecentClues(ctx context.Context, limit int) ([]models.ClueRef, error)
}

type Generator struct {
	source ClueSource
	rng    *rand.Rand
}

func NewGenerator(source ClueSource, rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{source: source, rng: rng}
}

// Generate builds a complete board. It fails only when categories run short or a lookup errors;
// missing clues become unavailable cells.
func (g *Generator) Generate(ctx context.Context) (Board, error) {
	used := []int64{}

	first, err := g.pickCategories(ctx, nil)
	if err != nil {
		return Board{}, err
	}
	jeopardy, used, err := g.fillRound(ctx, first, JeopardyValues, 1, used)
	if err != nil {
		return Board{}, err
	}
	g.placeDailyDoubles(&jeopardy, 1)

	second, err := g.pickCategories(ctx, first)
	if err != nil {
		return Board{}, err
	}
	double, used, err := g.fillRound(ctx, second, DoubleJeopardyValues, 2, used)
	if err != nil {
		return Board{}, err
	}
	g.placeDailyDoubles(&double, 2)

	final, err := g.pickFinal(ctx, used)
	if err != nil {
		return Board{}, err
	}
	return Board{Rounds: Rounds{Jeopardy: jeopardy, DoubleJeopardy: double, FinalJeopardy: final}}, nil
}

func (g *Generator) pickCategories(ctx context.Context, exclude []string) ([]string, error) {
	pool, err := g.source.TopCategories(ctx, categoryPool, exclude)
	if err != nil {
		return nil, fmt.Errorf("top categories: %w", err)
	}
	if len(pool) < Columns {
		return nil, fmt.Errorf("not enough categories available: need %d, found %d", Columns, len(pool))
	}
	shuffled := append([]string(nil), pool...)
	g.rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	return shuffled[:Columns], nil
}

func (g *Generator) fillRound(ctx context.Context, categories []string, values [Rows]int, round int, used []int64) (Round, []int64, error) {
	rnd := Round{Categories: categories, Questions: make([]Cell, 0, Columns*Rows)}
	for col, category := range categories {
		for row, value := range values {
			id, ok, err := g.findClue(ctx, category, value, round, used)
			if err != nil {
				return Round{}, nil, fmt.Errorf("fill %s $%d: %w", category, value, err)
			}
			cell := Cell{Col: col, Row: row, Value: value}
			if ok {
				qid := id
				cell.QuestionID = &qid
				used = append(used, id)
			}
			rnd.Questions = append(rnd.Questions, cell)
		}
	}
	return rnd, used, nil
}

func (g *Generator) findClue(ctx context.Context, category string, value, round int, used []int64) (int64, bool, error) {
	if id, ok, err := g.source.ExactValueClue(ctx, category, value, round, used); err != nil || ok {
		return id, ok, err
	}
	if id, ok, err := g.source.NullValueClue(ctx, category, round, used); err != nil || ok {
		return id, ok, err
	}
	candidates, err := g.source.ValuedClues(ctx, category, valuedCandidates, used)
	if err != nil {
		return 0, false, err
	}
	for _, clue := range candidates {
		if NormalizeClueValue(clue.ClueValue, clue.AirDate) == value {
			return clue.ID, true, nil
		}
	}
	return 0, false, nil
}

// placeDailyDoubles flags count random cells among those with a clue.
func (g *Generator) placeDailyDoubles(rnd *Round, count int) {
	available := []int{}
	for i, cell := range rnd.Questions {
		if cell.Available() {
			available = append(available, i)
		}
	}
	g.rng.Shuffle(len(available), func(i, j int) { available[i], available[j] = available[j], available[i] })
	if count > len(available) {
		count = len(available)
	}
	for _, idx := range available[:count] {
		rnd.Questions[idx].DailyDouble = true
	}
}

func (g *Generator) pickFinal(ctx context.Context, used []int64) (FinalCell, error) {
	candidates, err := g.source.FinalRoundClues(ctx, finalCandidates)
	if err != nil {
		return FinalCell{}, fmt.Errorf("final round clues: %w", err)
	}
	candidates = withoutUsed(candidates, used)
	if len(candidates) == 0 {
		candidates, err = g.source.RecentClues(ctx, finalCandidates)
		if err != nil {
			return FinalCell{}, fmt.Errorf("recent clues: %w", err)
		}
		candidates = withoutUsed(candidates, used)
	}
	if len(candidates) == 0 {
		return FinalCell{Category: "FINAL JEOPARDY"}, nil
	}
	pick := candidates[g.rng.Intn(len(candidates))]
	category := "FINAL JEOPARDY"
	if pick.Category != nil && *pick.Category != "" {
		category = *pick.Category
	}
	id := pick.ID
	return FinalCell{Category: category, QuestionID: &id}, nil
}

func withoutUsed(clues []models.ClueRef, used []int64) []models.ClueRef {
	taken := make(map[int64]bool, len(used))
	for _, id := range used {
		taken[id] = true
	}
	out := clues[:0:0]
	for _, clue := range clues {
		if !taken[clue.ID] {
			out = append(out, clue)
		}
	}
	return out
}

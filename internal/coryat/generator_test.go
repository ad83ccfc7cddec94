package coryat

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"jeopardy-trainer-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClueSource struct {
	categories []string
	exact      map[string]int64
	null       map[string]int64
	valued     map[string][]models.ValuedClue
	finals     []models.ClueRef
	recent     []models.ClueRef
	excluded   [][]string
}

func (f *fakeClueSource) TopCategories(_ context.Context, limit int, exclude []string) ([]string, error) {
	f.excluded = append(f.excluded, exclude)
	skip := map[string]bool{}
	for _, c := range exclude {
		skip[c] = true
	}
	out := []string{}
	for _, c := range f.categories {
		if !skip[c] && len(out) < limit {
			out = append(out, c)
		}
	}
	return out, nil
}

func contains(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func (f *fakeClueSource) ExactValueClue(_ context.Context, category string, value, round int, exclude []int64) (int64, bool, error) {
	id, ok := f.exact[fmt.Sprintf("%s/%d/%d", category, round, value)]
	if !ok || contains(exclude, id) {
		return 0, false, nil
	}
	return id, true, nil
}

func (f *fakeClueSource) NullValueClue(_ context.Context, category string, round int, exclude []int64) (int64, bool, error) {
	id, ok := f.null[fmt.Sprintf("%s/%d", category, round)]
	if !ok || contains(exclude, id) {
		return 0, false, nil
	}
	return id, true, nil
}

func (f *fakeClueSource) ValuedClues(_ context.Context, category string, limit int, exclude []int64) ([]models.ValuedClue, error) {
	out := []models.ValuedClue{}
	for _, clue := range f.valued[category] {
		if !contains(exclude, clue.ID) && len(out) < limit {
			out = append(out, clue)
		}
	}
	return out, nil
}

func (f *fakeClueSource) FinalRoundClues(context.Context, int) ([]models.ClueRef, error) {
	return f.finals, nil
}

func (f *fakeClueSource) RecentClues(context.Context, int) ([]models.ClueRef, error) {
	return f.recent, nil
}

// denseSource has an exact clue for every category, round and value.
func denseSource(categories int) *fakeClueSource {
	src := &fakeClueSource{exact: map[string]int64{}, null: map[string]int64{}, valued: map[string][]models.ValuedClue{}}
	next := int64(1)
	for i := 0; i < categories; i++ {
		name := fmt.Sprintf("CATEGORY %02d", i)
		src.categories = append(src.categories, name)
		for round, values := range map[int][Rows]int{1: JeopardyValues, 2: DoubleJeopardyValues} {
			for _, v := range values {
				src.exact[fmt.Sprintf("%s/%d/%d", name, round, v)] = next
				next++
			}
		}
	}
	cat := "POTPOURRI"
	src.finals = []models.ClueRef{{ID: 90001, Category: &cat}}
	return src
}

func TestNormalizeClueValue(t *testing.T) {
	old := time.Date(1998, 5, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 400, NormalizeClueValue(200, old))
	assert.Equal(t, 1000, NormalizeClueValue(1000, old))
	assert.Equal(t, 200, NormalizeClueValue(200, DoubleValueDate))
	assert.Equal(t, 800, NormalizeClueValue(800, DoubleValueDate.AddDate(1, 0, 0)))
}

func TestGenerateFullBoard(t *testing.T) {
	src := denseSource(20)
	gen := NewGenerator(src, rand.New(rand.NewSource(7)))

	board, err := gen.Generate(context.Background())
	require.NoError(t, err)
	require.NoError(t, board.Validate())

	assert.Equal(t, 30, board.Rounds.Jeopardy.Available())
	assert.Equal(t, 30, board.Rounds.DoubleJeopardy.Available())

	first := map[string]bool{}
	for _, c := range board.Rounds.Jeopardy.Categories {
		first[c] = true
	}
	for _, c := range board.Rounds.DoubleJeopardy.Categories {
		assert.False(t, first[c], "round two reuses %s", c)
	}
	require.Len(t, src.excluded, 2)
	assert.ElementsMatch(t, board.Rounds.Jeopardy.Categories, src.excluded[1])

	assert.Equal(t, 1, countDailyDoubles(board.Rounds.Jeopardy))
	assert.Equal(t, 2, countDailyDoubles(board.Rounds.DoubleJeopardy))

	require.NotNil(t, board.Rounds.FinalJeopardy.QuestionID)
	assert.Equal(t, int64(90001), *board.Rounds.FinalJeopardy.QuestionID)
	assert.Equal(t, "POTPOURRI", board.Rounds.FinalJeopardy.Category)

	seen := map[int64]bool{}
	for _, id := range board.QuestionIDs() {
		assert.False(t, seen[id], "clue %d placed twice", id)
		seen[id] = true
	}
}

func TestGenerateFallbacksAndUnavailableCells(t *testing.T) {
	src := denseSource(6)
	for i := 7; i <= 12; i++ {
		name := fmt.Sprintf("SPARSE %d", i)
		src.categories = append(src.categories, name)
		src.null[name+"/1"] = int64(7000 + i)
		src.null[name+"/2"] = int64(8000 + i)
		src.valued[name] = []models.ValuedClue{
			{ID: int64(9000 + i), ClueValue: 300, AirDate: time.Date(1995, 1, 1, 0, 0, 0, 0, time.UTC)},
		}
	}
	gen := NewGenerator(src, rand.New(rand.NewSource(3)))
	board, err := gen.Generate(context.Background())
	require.NoError(t, err)

	for _, rnd := range []Round{board.Rounds.Jeopardy, board.Rounds.DoubleJeopardy} {
		for col, name := range rnd.Categories {
			if name[:6] != "SPARSE" {
				continue
			}
			var ids []int64
			for _, cell := range rnd.Questions {
				if cell.Col == col && cell.QuestionID != nil {
					ids = append(ids, *cell.QuestionID)
				}
			}
			// one unvalued clue, plus the 1995 $300 clue when the round has a $600 row
			if rnd.Questions[0].Value == 200 {
				assert.Len(t, ids, 2, name)
			} else {
				assert.Len(t, ids, 1, name)
			}
		}
		for _, cell := range rnd.Questions {
			if cell.DailyDouble {
				assert.True(t, cell.Available(), "daily double on an empty cell")
			}
		}
	}
	seen := map[int64]bool{}
	for _, id := range board.QuestionIDs() {
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestGenerateNormalizedFallbackPicksMatchingValue(t *testing.T) {
	src := &fakeClueSource{exact: map[string]int64{}, null: map[string]int64{}, valued: map[string][]models.ValuedClue{}}
	old := time.Date(1999, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		name := fmt.Sprintf("OLD %d", i)
		src.categories = append(src.categories, name)
		src.valued[name] = []models.ValuedClue{
			{ID: int64(i*100 + 1), ClueValue: 500, AirDate: old},
			{ID: int64(i*100 + 2), ClueValue: 100, AirDate: old},
		}
	}
	gen := NewGenerator(src, rand.New(rand.NewSource(1)))
	board, err := gen.Generate(context.Background())
	require.NoError(t, err)

	for _, cell := range board.Rounds.Jeopardy.Questions {
		switch cell.Value {
		case 200:
			require.NotNil(t, cell.QuestionID)
			assert.Equal(t, int64(2), *cell.QuestionID%100)
		case 1000:
			require.NotNil(t, cell.QuestionID)
			assert.Equal(t, int64(1), *cell.QuestionID%100)
		default:
			assert.Nil(t, cell.QuestionID)
		}
	}
	assert.Equal(t, "FINAL JEOPARDY", board.Rounds.FinalJeopardy.Category)
	assert.Nil(t, board.Rounds.FinalJeopardy.QuestionID)
}

func TestGenerateNeedsTwelveCategories(t *testing.T) {
	gen := NewGenerator(denseSource(8), rand.New(rand.NewSource(1)))
	_, err := gen.Generate(context.Background())
	assert.ErrorContains(t, err, "not enough categories")
}

func TestDailyDoublesCappedByAvailableCells(t *testing.T) {
	gen := NewGenerator(nil, rand.New(rand.NewSource(5)))
	board := fullBoard(nil)
	rnd := board.Rounds.DoubleJeopardy
	for i := range rnd.Questions {
		if i != 4 {
			rnd.Questions[i].QuestionID = nil
		}
	}
	gen.placeDailyDoubles(&rnd, 2)
	assert.Equal(t, 1, countDailyDoubles(rnd))
	assert.True(t, rnd.Questions[4].DailyDouble)
}

func countDailyDoubles(rnd Round) int {
	n := 0
	for _, cell := range rnd.Questions {
		if cell.DailyDouble {
			n++
		}
	}
	return n
}

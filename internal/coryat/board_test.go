package coryat

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fullBoard builds a board where every cell has a clue except those listed in missing.
func fullBoard(missing map[[2]int]bool) Board {
	build := func(values [Rows]int, base int64) Round {
		rnd := Round{Categories: []string{"A", "B", "C", "D", "E", "F"}}
		for col := 0; col < Columns; col++ {
			for row := 0; row < Rows; row++ {
				cell := Cell{Col: col, Row: row, Value: values[row]}
				if !missing[[2]int{col, row}] {
					id := base + int64(col*Rows+row)
					cell.QuestionID = &id
				}
				rnd.Questions = append(rnd.Questions, cell)
			}
		}
		return rnd
	}
	final := int64(999)
	return Board{Rounds: Rounds{
		Jeopardy:       build(JeopardyValues, 100),
		DoubleJeopardy: build(DoubleJeopardyValues, 200),
		FinalJeopardy:  FinalCell{Category: "WORLD CAPITALS", QuestionID: &final},
	}}
}

func TestCellTransitions(t *testing.T) {
	id := int64(7)
	cell := Cell{Col: 0, Row: 0, QuestionID: &id, Value: 200}

	next, err := cell.Apply(Correct)
	require.NoError(t, err)
	assert.Equal(t, 200, next.Points())

	_, err = next.Apply(Incorrect)
	assert.ErrorIs(t, err, ErrAlreadyAnswered)

	_, err = cell.Apply(Response("skip"))
	assert.ErrorIs(t, err, ErrInvalidResponse)

	empty := Cell{Col: 1, Row: 0, Value: 200}
	_, err = empty.Apply(Pass)
	assert.ErrorIs(t, err, ErrCellUnavailable)
}

func TestScoreMatchesSignedSumOfCells(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	responses := []Response{Correct, Incorrect, Pass}
	for trial := 0; trial < 50; trial++ {
		missing := map[[2]int]bool{{rng.Intn(Columns), rng.Intn(Rows)}: true}
		board := fullBoard(missing)
		running := 0
		for _, name := range []string{RoundJeopardy, RoundDoubleJeopardy} {
			for col := 0; col < Columns; col++ {
				for row := 0; row < Rows; row++ {
					if rng.Intn(3) == 0 {
						continue
					}
					out, err := board.Answer(name, col, row, responses[rng.Intn(len(responses))])
					if missing[[2]int{col, row}] {
						assert.ErrorIs(t, err, ErrCellUnavailable)
						continue
					}
					require.NoError(t, err)
					running += out.ScoreChange
				}
			}
		}
		_, err := board.Answer(RoundFinalJeopardy, 0, 0, Correct)
		require.NoError(t, err)

		expected := 0
		for _, rnd := range []Round{board.Rounds.Jeopardy, board.Rounds.DoubleJeopardy} {
			for _, cell := range rnd.Questions {
				if cell.QuestionID == nil || cell.Answered == nil {
					continue
				}
				switch *cell.Answered {
				case Correct:
					expected += cell.Value
				case Incorrect:
					expected -= cell.Value
				}
			}
		}
		assert.Equal(t, expected, board.JeopardyScore()+board.DoubleJeopardyScore())
		assert.Equal(t, expected, running)
	}
}

func TestRemainingReachesZeroOnlyWhenRoundDone(t *testing.T) {
	missing := map[[2]int]bool{{2, 3}: true, {5, 0}: true}
	board := fullBoard(missing)
	assert.Equal(t, 28, board.Remaining(RoundJeopardy))

	answered := 0
	for col := 0; col < Columns; col++ {
		for row := 0; row < Rows; row++ {
			if missing[[2]int{col, row}] {
				continue
			}
			assert.NotZero(t, board.Remaining(RoundJeopardy))
			resp := Correct
			if (col+row)%2 == 0 {
				resp = Incorrect
			}
			_, err := board.Answer(RoundJeopardy, col, row, resp)
			require.NoError(t, err)
			answered++
		}
	}
	assert.Equal(t, 28, answered)
	assert.Zero(t, board.Remaining(RoundJeopardy))
	assert.Nil(t, board.Rounds.FinalJeopardy.Answered)
	// fullBoard leaves the same cells empty in both rounds.
	assert.Equal(t, 28, board.Remaining(RoundDoubleJeopardy))
	assert.Equal(t, 28, board.TotalRemaining())
	assert.Equal(t, 2, board.CurrentRound())
}

func TestFinalJeopardyAnsweredOnceAndNeverScores(t *testing.T) {
	board := fullBoard(nil)
	out, err := board.Answer(RoundFinalJeopardy, 0, 0, Incorrect)
	require.NoError(t, err)
	assert.Zero(t, out.ScoreChange)
	assert.Zero(t, board.JeopardyScore()+board.DoubleJeopardyScore())
	assert.Equal(t, 30, board.Remaining(RoundJeopardy))
	assert.Equal(t, 1, board.AnsweredCount())

	_, err = board.Answer(RoundFinalJeopardy, 0, 0, Correct)
	assert.ErrorIs(t, err, ErrAlreadyAnswered)
}

func TestAnswerUnknownCellAndRound(t *testing.T) {
	board := fullBoard(nil)
	_, err := board.Answer(RoundJeopardy, 6, 0, Correct)
	assert.ErrorIs(t, err, ErrCellNotFound)
	_, err = board.Answer("triple_jeopardy", 0, 0, Correct)
	assert.ErrorIs(t, err, ErrInvalidRound)
}

func TestParseBoardRoundTrip(t *testing.T) {
	board := fullBoard(map[[2]int]bool{{0, 0}: true})
	_, err := board.Answer(RoundDoubleJeopardy, 1, 1, Pass)
	require.NoError(t, err)
	raw, err := board.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"double_jeopardy"`)
	assert.Contains(t, string(raw), `"question_id":null`)

	parsed, err := ParseBoard(raw)
	require.NoError(t, err)
	assert.Equal(t, board, parsed)
}

func TestParseBoardRejectsMalformed(t *testing.T) {
	_, err := ParseBoard([]byte(`{"rounds":`))
	assert.True(t, errors.Is(err, ErrInvalidBoard))

	board := fullBoard(nil)
	board.Rounds.Jeopardy.Questions[3].Value = 5
	raw, _ := board.Marshal()
	_, err = ParseBoard(raw)
	assert.ErrorIs(t, err, ErrInvalidBoard)

	board = fullBoard(nil)
	bogus := Response("maybe")
	board.Rounds.DoubleJeopardy.Questions[0].Answered = &bogus
	raw, _ = board.Marshal()
	_, err = ParseBoard(raw)
	assert.ErrorIs(t, err, ErrInvalidBoard)
}

func TestTally(t *testing.T) {
	board := fullBoard(nil)
	_, _ = board.Answer(RoundJeopardy, 0, 4, Correct)
	_, _ = board.Answer(RoundJeopardy, 1, 0, Incorrect)
	_, _ = board.Answer(RoundDoubleJeopardy, 0, 0, Pass)
	_, _ = board.Answer(RoundDoubleJeopardy, 2, 4, Correct)
	assert.Equal(t, Tally{Correct: 2, Incorrect: 1, Passed: 1, CorrectValue: 3000, IncorrectValue: 200}, board.Tally())
	assert.Equal(t, 800, board.JeopardyScore())
	assert.Equal(t, 2000, board.DoubleJeopardyScore())
}

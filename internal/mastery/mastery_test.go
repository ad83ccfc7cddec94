package mastery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func play(answers []bool) (State, []time.Time) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	state := State{}
	stamps := make([]time.Time, 0, len(answers))
	for i, correct := range answers {
		now := base.Add(time.Duration(i) * time.Minute)
		stamps = append(stamps, now)
		state = Apply(state, correct, now)
	}
	return state, stamps
}

func TestThreeCorrectMasters(t *testing.T) {
	for n := Threshold; n <= 8; n++ {
		answers := make([]bool, n)
		for i := range answers {
			answers[i] = true
		}
		state, stamps := play(answers)
		assert.Equal(t, n, state.ConsecutiveCorrect)
		assert.True(t, state.Mastered)
		require.NotNil(t, state.MasteredAt)
		assert.Equal(t, stamps[Threshold-1], *state.MasteredAt, "mastered_at is set once per streak")
	}
}

func TestBelowThresholdIsNotMastered(t *testing.T) {
	state, _ := play([]bool{true, true})
	assert.Equal(t, 2, state.ConsecutiveCorrect)
	assert.False(t, state.Mastered)
	assert.Nil(t, state.MasteredAt)
}

func TestIncorrectAlwaysResets(t *testing.T) {
	sequences := [][]bool{
		{false},
		{true, false},
		{true, true, true, false},
		{true, true, true, true, true, true, false},
	}
	for _, seq := range sequences {
		state, stamps := play(seq)
		assert.Zero(t, state.ConsecutiveCorrect)
		assert.False(t, state.Mastered)
		assert.Nil(t, state.MasteredAt)
		assert.Equal(t, stamps[len(stamps)-1], state.LastAttemptAt)
	}
}

func TestRemasteringStampsNewTime(t *testing.T) {
	state, stamps := play([]bool{true, true, true, false, true, true, true})
	require.NotNil(t, state.MasteredAt)
	assert.Equal(t, stamps[6], *state.MasteredAt)
}

func TestMasteredIffThreshold(t *testing.T) {
	seq := []bool{true, false, true, true, false, true, true, true, true, false, true}
	state := State{}
	now := time.Now()
	for _, correct := range seq {
		state = Apply(state, correct, now)
		assert.Equal(t, state.ConsecutiveCorrect >= Threshold, state.Mastered)
		assert.Equal(t, state.Mastered, state.MasteredAt != nil)
	}
}

func TestReset(t *testing.T) {
	now := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	state := Reset(now)
	assert.Zero(t, state.ConsecutiveCorrect)
	assert.False(t, state.Mastered)
	assert.Nil(t, state.MasteredAt)
	assert.Equal(t, now, state.LastAttemptAt)
	assert.Equal(t, Progress{ConsecutiveCorrect: 2, Required: 3}, ProgressOf(2))
}

package quiz

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"jeopardy-trainer-go/internal/models"
	"jeopardy-trainer-go/internal/store"
)

type masteryKey struct {
	user     string
	question int64
}

// memStore is an in-memory stand-in for the sqlx store.
type memStore struct {
	mu        sync.Mutex
	questions map[int64]*models.Question
	sessions  map[string]*models.QuizSession
	attempts  []models.QuestionAttempt
	mastery   map[masteryKey]models.QuestionMastery
	counts    int
}

func newMemStore() *memStore {
	return &memStore{
		questions: map[int64]*models.Question{},
		sessions:  map[string]*models.QuizSession{},
		mastery:   map[masteryKey]models.QuestionMastery{},
	}
}

func strp(s string) *string { return &s }

func (m *memStore) addQuestion(id int64, classifier, gameType string, aired time.Time) {
	q := &models.Question{
		ID:                 id,
		Clue:               strp("clue"),
		Response:           strp("response"),
		Category:           strp("SHOW CATEGORY"),
		ClassifierCategory: strp(classifier),
		AirDate:            &aired,
	}
	if gameType != "" {
		q.GameType = strp(gameType)
	}
	m.questions[id] = q
}

func (m *memStore) selectable(category string, gameTypes []string) []models.Question {
	out := []models.Question{}
	for _, q := range m.questions {
		if q.Archived || q.Clue == nil || q.Response == nil || q.ClassifierCategory == nil || q.AirDate == nil {
			continue
		}
		if category != "" && *q.ClassifierCategory != category {
			continue
		}
		if len(gameTypes) > 0 {
			ok := false
			for _, tag := range gameTypes {
				if q.GameType != nil && *q.GameType == tag {
					ok = true
				}
			}
			if !ok {
				continue
			}
		}
		out = append(out, *q)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AirDate.Equal(*out[j].AirDate) {
			return out[i].AirDate.After(*out[j].AirDate)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (m *memStore) CountSelectable(_ context.Context, category string, gameTypes []string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts++
	return len(m.selectable(category, gameTypes)), nil
}

func (m *memStore) SelectableAt(_ context.Context, category string, gameTypes []string, offset int) (models.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.selectable(category, gameTypes)
	if offset >= len(rows) {
		return models.Question{}, store.ErrNotFound
	}
	return rows[offset], nil
}

func (m *memStore) Question(_ context.Context, id int64) (models.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.questions[id]
	if !ok {
		return models.Question{}, store.ErrNotFound
	}
	return *q, nil
}

func (m *memStore) QuizSession(_ context.Context, userID, sessionID string) (models.QuizSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok || s.UserID != userID {
		return models.QuizSession{}, store.ErrNotFound
	}
	return *s, nil
}

func (m *memStore) CreateQuizSession(_ context.Context, session models.QuizSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = &session
	return nil
}

func (m *memStore) RecordAttempt(_ context.Context, attempt models.QuestionAttempt, next func(prev *models.QuestionMastery) models.QuestionMastery) (models.QuestionAttempt, models.QuestionMastery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	attempt.ID = int64(len(m.attempts) + 1)
	m.attempts = append(m.attempts, attempt)
	key := masteryKey{attempt.UserID, attempt.QuestionID}
	var prev *models.QuestionMastery
	if row, ok := m.mastery[key]; ok {
		prev = &row
	}
	row := next(prev)
	m.mastery[key] = row
	return attempt, row, nil
}

func (m *memStore) CompleteQuizSession(_ context.Context, userID, sessionID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.sessions[sessionID]
	if s.CompletedAt != nil {
		return store.ErrStale
	}
	s.CompletedAt = &at
	return nil
}

func (m *memStore) SessionTotals(_ context.Context, sessionID string) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total, correct := 0, 0
	for _, a := range m.attempts {
		if a.SessionID != nil && *a.SessionID == sessionID {
			total++
			if a.Correct {
				correct++
			}
		}
	}
	return total, correct, nil
}

func (m *memStore) ResetMastery(_ context.Context, userID string, questionID int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := masteryKey{userID, questionID}
	if _, ok := m.mastery[key]; !ok {
		return store.ErrNotFound
	}
	m.mastery[key] = models.QuestionMastery{UserID: userID, QuestionID: questionID, LastAttemptAt: at}
	return nil
}

func (m *memStore) ReviewQuestions(_ context.Context, userID, category string) ([]models.ReviewQuestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	missed := map[int64]bool{}
	for _, a := range m.attempts {
		if a.UserID == userID && !a.Correct {
			missed[a.QuestionID] = true
		}
	}
	out := []models.ReviewQuestion{}
	for id := range missed {
		q := m.questions[id]
		row := m.mastery[masteryKey{userID, id}]
		if q.Archived || row.Mastered {
			continue
		}
		if category != "" && (q.ClassifierCategory == nil || *q.ClassifierCategory != category) {
			continue
		}
		out = append(out, models.ReviewQuestion{Question: *q, ConsecutiveCorrect: row.ConsecutiveCorrect})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ConsecutiveCorrect != out[j].ConsecutiveCorrect {
			return out[i].ConsecutiveCorrect > out[j].ConsecutiveCorrect
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *memStore) mastered(userID, category string) []models.MasteredQuestion {
	out := []models.MasteredQuestion{}
	for key, row := range m.mastery {
		q := m.questions[key.question]
		if key.user != userID || !row.Mastered || q.Archived {
			continue
		}
		if category != "" && *q.ClassifierCategory != category {
			continue
		}
		out = append(out, models.MasteredQuestion{Question: *q, MasteredAt: row.MasteredAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memStore) CountMastered(_ context.Context, userID, category string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.mastered(userID, category)), nil
}

func (m *memStore) MasteredAt(_ context.Context, userID, category string, offset int) (models.MasteredQuestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.mastered(userID, category)
	if offset >= len(rows) {
		return models.MasteredQuestion{}, store.ErrNotFound
	}
	return rows[offset], nil
}

func (m *memStore) ClassifierCategories(context.Context) ([]models.CategoryCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[string]int{}
	for _, q := range m.questions {
		if q.ClassifierCategory != nil {
			counts[*q.ClassifierCategory]++
		}
	}
	out := []models.CategoryCount{}
	for name, n := range counts {
		out = append(out, models.CategoryCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) SetArchived(_ context.Context, id int64, archived bool, reason *string, at *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.questions[id]
	if !ok {
		return store.ErrNotFound
	}
	q.Archived, q.ArchivedReason, q.ArchivedAt = archived, reason, at
	return nil
}

func (m *memStore) ArchivedQuestions(context.Context) ([]models.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Question{}
	for _, q := range m.questions {
		if q.Archived {
			out = append(out, *q)
		}
	}
	return out, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

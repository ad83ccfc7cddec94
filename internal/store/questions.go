package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"jeopardy-trainer-go/internal/models"
)

const questionColumns = `id, clue, response, category, classifier_category, clue_value, round,
       air_date, game_type, archived, archived_reason, archived_at`

// qualified prefixes every question column with alias.
func qualified(alias string) string {
	cols := strings.Split(questionColumns, ",")
	for i, c := range cols {
		cols[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}

func selectable(category string, gameTypes []string) *where {
	w := &where{}
	w.add("archived = FALSE")
	w.add("clue IS NOT NULL")
	w.add("response IS NOT NULL")
	w.add("classifier_category IS NOT NULL")
	w.add("air_date IS NOT NULL")
	if category != "" {
		w.add("classifier_category = ?", category)
	}
	if len(gameTypes) > 0 {
		w.add("game_type = ANY(?)", gameTypes)
	}
	return w
}

func (s *Store) CountSelectable(ctx context.Context, category string, gameTypes []string) (int, error) {
	w := selectable(category, gameTypes)
	var n int
	err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM questions WHERE `+w.String(), w.args...)
	return n, err
}

func (s *Store) SelectableAt(ctx context.Context, category string, gameTypes []string, offset int) (models.Question, error) {
	w := selectable(category, gameTypes)
	query := `
SELECT ` + questionColumns + `
FROM questions
WHERE ` + w.String() + `
ORDER BY air_date DESC, id
OFFSET ` + w.next() + ` LIMIT 1`
	var q models.Question
	err := s.db.GetContext(ctx, &q, query, append(w.args, offset)...)
	return q, notFound(err)
}

func (s *Store) Question(ctx context.Context, id int64) (models.Question, error) {
	var q models.Question
	err := s.db.GetContext(ctx, &q, `SELECT `+questionColumns+` FROM questions WHERE id = $1`, id)
	return q, notFound(err)
}

func (s *Store) ClassifierCategories(ctx context.Context) ([]models.CategoryCount, error) {
	rows := []models.CategoryCount{}
	err := s.db.SelectContext(ctx, &rows, `
SELECT classifier_category AS name, COUNT(*) AS count
FROM questions
WHERE archived = FALSE AND classifier_category IS NOT NULL
GROUP BY classifier_category
ORDER BY classifier_category
`)
	return rows, err
}

func (s *Store) SetArchived(ctx context.Context, id int64, archived bool, reason *string, at *time.Time) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE questions SET archived = $1, archived_reason = $2, archived_at = $3 WHERE id = $4
`, archived, reason, at, id)
	return affected(res, err, ErrNotFound)
}

func (s *Store) ArchivedQuestions(ctx context.Context) ([]models.Question, error) {
	rows := []models.Question{}
	err := s.db.SelectContext(ctx, &rows, `
SELECT `+questionColumns+`
FROM questions
WHERE archived = TRUE
ORDER BY archived_at DESC NULLS LAST, id DESC
`)
	return rows, err
}

// Board generation lookups.

func (s *Store) TopCategories(ctx context.Context, limit int, exclude []string) ([]string, error) {
	if exclude == nil {
		exclude = []string{}
	}
	names := []string{}
	err := s.db.SelectContext(ctx, &names, `
SELECT category
FROM questions
WHERE category IS NOT NULL
  AND NOT (category = ANY($1))
  AND archived = FALSE
  AND air_date IS NOT NULL
  AND classifier_category IS NOT NULL
GROUP BY category
ORDER BY COUNT(*) DESC, category
LIMIT $2
`, exclude, limit)
	return names, err
}

func (s *Store) ExactValueClue(ctx context.Context, category string, value, round int, exclude []int64) (int64, bool, error) {
	return s.firstClue(ctx, `
SELECT id FROM questions
WHERE category = $1 AND archived = FALSE AND clue_value = $2
  AND (round = $3 OR round IS NULL)
  AND NOT (id = ANY($4))
ORDER BY air_date DESC NULLS LAST, id
LIMIT 1
`, category, value, round, ids(exclude))
}

func (s *Store) NullValueClue(ctx context.Context, category string, round int, exclude []int64) (int64, bool, error) {
	return s.firstClue(ctx, `
SELECT id FROM questions
WHERE category = $1 AND archived = FALSE AND clue_value IS NULL AND round = $2
  AND NOT (id = ANY($3))
ORDER BY air_date DESC NULLS LAST, id
LIMIT 1
`, category, round, ids(exclude))
}

func (s *Store) firstClue(ctx context.Context, query string, args ...any) (int64, bool, error) {
	var id int64
	err := notFound(s.db.GetContext(ctx, &id, query, args...))
	switch {
	case errors.Is(err, ErrNotFound):
		return 0, false, nil
	case err != nil:
		return 0, false, err
	}
	return id, true, nil
}

func (s *Store) ValuedClues(ctx context.Context, category string, limit int, exclude []int64) ([]models.ValuedClue, error) {
	rows := []models.ValuedClue{}
	err := s.db.SelectContext(ctx, &rows, `
SELECT id, clue_value, air_date
FROM questions
WHERE category = $1 AND archived = FALSE
  AND clue_value IS NOT NULL AND air_date IS NOT NULL
  AND NOT (id = ANY($2))
ORDER BY air_date DESC, id
LIMIT $3
`, category, ids(exclude), limit)
	return rows, err
}

func (s *Store) FinalRoundClues(ctx context.Context, limit int) ([]models.ClueRef, error) {
	rows := []models.ClueRef{}
	err := s.db.SelectContext(ctx, &rows, `
SELECT id, category
FROM questions
WHERE archived = FALSE AND round = 3
ORDER BY air_date DESC NULLS LAST, id
LIMIT $1
`, limit)
	return rows, err
}

func (s *Store) RecentClues(ctx context.Context, limit int) ([]models.ClueRef, error) {
	rows := []models.ClueRef{}
	err := s.db.SelectContext(ctx, &rows, `
SELECT id, category
FROM questions
WHERE archived = FALSE AND clue IS NOT NULL AND response IS NOT NULL
ORDER BY air_date DESC NULLS LAST, id
LIMIT $1
`, limit)
	return rows, err
}

func ids(values []int64) []int64 {
	if values == nil {
		return []int64{}
	}
	return values
}

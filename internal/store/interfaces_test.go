package store_test

import (
	"jeopardy-trainer-go/internal/coryat"
	"jeopardy-trainer-go/internal/quiz"
	"jeopardy-trainer-go/internal/services"
	"jeopardy-trainer-go/internal/stats"
	"jeopardy-trainer-go/internal/store"
	"jeopardy-trainer-go/internal/study"
)

var (
	_ quiz.QuestionSource   = (*store.Store)(nil)
	_ quiz.ProgressStore    = (*store.Store)(nil)
	_ quiz.CatalogStore     = (*store.Store)(nil)
	_ coryat.ClueSource     = (*store.Store)(nil)
	_ coryat.GameStore      = (*store.Store)(nil)
	_ study.Store           = (*store.Store)(nil)
	_ stats.Store           = (*store.Store)(nil)
	_ services.AccountStore = (*store.Store)(nil)
	_ services.MetricStore  = (*store.Store)(nil)
)

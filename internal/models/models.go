package models

import (
	"encoding/json"
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID              string          `db:"id"`
	Username        string          `db:"username"`
	Email           string          `db:"email"`
	PasswordHash    string          `db:"password_hash"`
	Role            string          `db:"role"`
	Approved        bool            `db:"approved"`
	ApprovedAt      *time.Time      `db:"approved_at"`
	GameTypeFilters json.RawMessage `db:"game_type_filters"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
	LastLoginAt     *time.Time      `db:"last_login_at"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// GameTypes decodes the saved audience filter; malformed values read as no filter.
func (u User) GameTypes() []string {
	tags := []string{}
	if len(u.GameTypeFilters) == 0 {
		return tags
	}
	if err := json.Unmarshal(u.GameTypeFilters, &tags); err != nil {
		return []string{}
	}
	return tags
}

type AuthSession struct {
	SessionToken string    `db:"session_token"`
	UserID       string    `db:"user_id"`
	ExpiresAt    time.Time `db:"expires_at"`
	CreatedAt    time.Time `db:"created_at"`
}

type Question struct {
	ID                 int64      `db:"id"`
	Clue               *string    `db:"clue"`
	Response           *string    `db:"response"`
	Category           *string    `db:"category"`
	ClassifierCategory *string    `db:"classifier_category"`
	ClueValue          *int       `db:"clue_value"`
	Round              *int       `db:"round"`
	AirDate            *time.Time `db:"air_date"`
	GameType           *string    `db:"game_type"`
	Archived           bool       `db:"archived"`
	ArchivedReason     *string    `db:"archived_reason"`
	ArchivedAt         *time.Time `db:"archived_at"`
}

type QuestionAttempt struct {
	ID         int64     `db:"id"`
	UserID     string    `db:"user_id"`
	QuestionID int64     `db:"question_id"`
	SessionID  *string   `db:"session_id"`
	Correct    bool      `db:"correct"`
	AnsweredAt time.Time `db:"answered_at"`
}

type QuestionMastery struct {
	UserID             string     `db:"user_id"`
	QuestionID         int64      `db:"question_id"`
	ConsecutiveCorrect int        `db:"consecutive_correct"`
	Mastered           bool       `db:"mastered"`
	MasteredAt         *time.Time `db:"mastered_at"`
	LastAttemptAt      time.Time  `db:"last_attempt_at"`
}

type QuizSession struct {
	ID              string     `db:"id"`
	UserID          string     `db:"user_id"`
	IsReviewSession bool       `db:"is_review_session"`
	StartedAt       time.Time  `db:"started_at"`
	CompletedAt     *time.Time `db:"completed_at"`
}

type CoryatGame struct {
	ID                string          `db:"id"`
	UserID            string          `db:"user_id"`
	GameBoard         json.RawMessage `db:"game_board"`
	Version           int             `db:"version"`
	CurrentRound      int             `db:"current_round"`
	QuestionsAnswered int             `db:"questions_answered"`
	JeopardyScore     int             `db:"jeopardy_score"`
	DoubleJScore      int             `db:"double_j_score"`
	FinalScore        *int            `db:"final_score"`
	StartedAt         time.Time       `db:"started_at"`
	CompletedAt       *time.Time      `db:"completed_at"`
}

type StudyRecommendation struct {
	ID              string          `db:"id"`
	UserID          string          `db:"user_id"`
	DaysAnalyzed    int             `db:"days_analyzed"`
	Analysis        string          `db:"analysis"`
	Topics          json.RawMessage `db:"topics"`
	RawResponse     string          `db:"raw_response"`
	Model           string          `db:"model"`
	QuestionCount   int             `db:"question_count"`
	TimePeriodStart time.Time       `db:"time_period_start"`
	TimePeriodEnd   time.Time       `db:"time_period_end"`
	GeneratedAt     time.Time       `db:"generated_at"`
}

type ServerMetricSample struct {
	ID                string    `db:"id" json:"id"`
	CapturedAt        time.Time `db:"captured_at" json:"capturedAt"`
	ProcessRSSBytes   int64     `db:"process_rss_bytes" json:"processRssBytes"`
	GoHeapBytes       int64     `db:"go_heap_bytes" json:"goHeapBytes"`
	Goroutines        int       `db:"goroutines" json:"goroutines"`
	SystemMemoryTotal int64     `db:"system_memory_total_bytes" json:"systemMemoryTotalBytes"`
	SystemMemoryUsed  int64     `db:"system_memory_used_bytes" json:"systemMemoryUsedBytes"`
	DiskTotalBytes    int64     `db:"disk_total_bytes" json:"diskTotalBytes"`
	DiskUsedBytes     int64     `db:"disk_used_bytes" json:"diskUsedBytes"`
	ProcessCpuLoad    float64   `db:"process_cpu_load" json:"processCpuLoad"`
	SystemCpuLoad     float64   `db:"system_cpu_load" json:"systemCpuLoad"`
}

// ValuedClue is a dated clue with a dollar value, used for value normalization.
type ValuedClue struct {
	ID        int64     `db:"id"`
	ClueValue int       `db:"clue_value"`
	AirDate   time.Time `db:"air_date"`
}

// ClueRef points at a clue together with its show category.
type ClueRef struct {
	ID       int64   `db:"id"`
	Category *string `db:"category"`
}

// ReviewQuestion is a missed, not yet mastered question with its current streak.
type ReviewQuestion struct {
	Question
	ConsecutiveCorrect int `db:"consecutive_correct"`
}

type MasteredQuestion struct {
	Question
	MasteredAt *time.Time `db:"mastered_at"`
}

type CategoryCount struct {
	Name  string `db:"name" json:"name"`
	Count int    `db:"count" json:"count"`
}

// MissedClue is an incorrect attempt joined with its clue.
type MissedClue struct {
	Clue               *string   `db:"clue"`
	Response           *string   `db:"response"`
	Category           *string   `db:"category"`
	ClassifierCategory *string   `db:"classifier_category"`
	AnsweredAt         time.Time `db:"answered_at"`
}

// AttemptTally counts attempts grouped by some key.
type AttemptTally struct {
	Total   int `db:"total"`
	Correct int `db:"correct"`
}

type CategoryTally struct {
	Category *string `db:"category"`
	AttemptTally
}

type SessionTally struct {
	ID              string     `db:"id"`
	IsReviewSession bool       `db:"is_review_session"`
	StartedAt       time.Time  `db:"started_at"`
	CompletedAt     *time.Time `db:"completed_at"`
	AttemptTally
}

type DailyTally struct {
	Day time.Time `db:"day"`
	AttemptTally
}

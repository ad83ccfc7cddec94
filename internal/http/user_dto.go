package httpapi

import (
	"time"

	"jeopardy-trainer-go/internal/models"
)

type UserDTO struct {
	ID              string     `json:"id"`
	Username        string     `json:"username"`
	Email           string     `json:"email"`
	Role            string     `json:"role"`
	Approved        bool       `json:"approved"`
	ApprovedAt      *time.Time `json:"approvedAt,omitempty"`
	GameTypeFilters []string   `json:"gameTypeFilters"`
	CreatedAt       time.Time  `json:"createdAt"`
	LastLoginAt     *time.Time `json:"lastLoginAt,omitempty"`
}

func toUserDTO(u models.User) UserDTO {
	return UserDTO{
		ID:              u.ID,
		Username:        u.Username,
		Email:           u.Email,
		Role:            u.Role,
		Approved:        u.Approved,
		ApprovedAt:      u.ApprovedAt,
		GameTypeFilters: u.GameTypes(),
		CreatedAt:       u.CreatedAt,
		LastLoginAt:     u.LastLoginAt,
	}
}

type QuestionDTO struct {
	ID                 int64      `json:"id"`
	Clue               *string    `json:"clue"`
	Response           *string    `json:"response"`
	Category           *string    `json:"category"`
	ClassifierCategory *string    `json:"classifier_category"`
	ClueValue          *int       `json:"clue_value"`
	Round              *int       `json:"round"`
	AirDate            *string    `json:"air_date"`
	GameType           *string    `json:"game_type"`
	Archived           bool       `json:"archived"`
	ArchivedReason     *string    `json:"archived_reason,omitempty"`
	ArchivedAt         *time.Time `json:"archived_at,omitempty"`
}

func toQuestionDTO(q models.Question) QuestionDTO {
	var aired *string
	if q.AirDate != nil {
		formatted := q.AirDate.Format(time.DateOnly)
		aired = &formatted
	}
	return QuestionDTO{
		ID:                 q.ID,
		Clue:               q.Clue,
		Response:           q.Response,
		Category:           q.Category,
		ClassifierCategory: q.ClassifierCategory,
		ClueValue:          q.ClueValue,
		Round:              q.Round,
		AirDate:            aired,
		GameType:           q.GameType,
		Archived:           q.Archived,
		ArchivedReason:     q.ArchivedReason,
		ArchivedAt:         q.ArchivedAt,
	}
}

func toQuestionDTOs(rows []models.Question) []QuestionDTO {
	out := make([]QuestionDTO, 0, len(rows))
	for _, q := range rows {
		out = append(out, toQuestionDTO(q))
	}
	return out
}

package hermes

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/compass/internal/model"
)

const (
	// SubjectInsightsUpdated fires after a user's cumulative insights change.
	SubjectInsightsUpdated = "compass.insights.updated"
	// SubjectAssessmentSaved fires after an assessment is stored and rescored.
	SubjectAssessmentSaved = "compass.assessment.saved"
	// SubjectSessionStarted fires when a new chat session is created.
	SubjectSessionStarted = "compass.session.started"
	// SubjectExtractRequest carries text from other services to run through
	// extraction and merge into a user's insights.
	SubjectExtractRequest = "compass.insights.extract"
)

type InsightsUpdated struct {
	UserID    uuid.UUID          `json:"user_id"`
	Module    model.Module       `json:"module"`
	Added     map[model.Kind]int `json:"added"`
	Insights  model.Insights     `json:"insights"`
	Source    string             `json:"source"`
	Timestamp time.Time          `json:"timestamp"`
}

type AssessmentSaved struct {
	UserID         uuid.UUID `json:"user_id"`
	AlignmentScore int       `json:"alignment_score"`
	CurrentStage   string    `json:"current_stage"`
	Complete       bool      `json:"complete"`
	Timestamp      time.Time `json:"timestamp"`
}

type SessionStarted struct {
	SessionID uuid.UUID    `json:"session_id"`
	UserID    uuid.UUID    `json:"user_id"`
	Module    model.Module `json:"module"`
	Timestamp time.Time    `json:"timestamp"`
}

// ExtractRequest asks compass to extract insights from Text as if it were
// a coach reply in Module.
type ExtractRequest struct {
	UserID uuid.UUID    `json:"user_id"`
	Module model.Module `json:"module"`
	Text   string       `json:"text"`
}

var ErrInvalidRequest = errors.New("invalid extract request")

// ParseExtractRequest decodes and validates an extract request. An unknown
// or missing module is treated as general.
func ParseExtractRequest(data []byte) (ExtractRequest, error) {
	var req ExtractRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("decode extract request: %w", err)
	}
	if req.UserID == uuid.Nil {
		return req, fmt.Errorf("%w: missing user_id", ErrInvalidRequest)
	}
	if strings.TrimSpace(req.Text) == "" {
		return req, fmt.Errorf("%w: empty text", ErrInvalidRequest)
	}
	req.Module = model.ParseModule(string(req.Module))
	return req, nil
}

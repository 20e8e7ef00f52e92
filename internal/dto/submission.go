package dto

import (
	"time"
)

type CreateSubmissionRequest struct {
	PillarID    string             `json:"pillarId" validate:"required"`
	OutputID    string             `json:"outputId"`
	IndicatorID string             `json:"indicatorId" validate:"required"`
	QuarterID   string             `json:"quarterId" validate:"required"`
	Month       string             `json:"month" validate:"required"`
	Value       *float64           `json:"value" validate:"required"`
	TargetValue *float64           `json:"targetValue,omitempty"`
	SubValues   map[string]float64 `json:"subValues,omitempty" validate:"omitempty,dive,keys,required,endkeys"`
	Comments    string             `json:"comments,omitempty" validate:"max=2000"`
}

// UpdateSubmissionRequest is a partial update; nil fields are left unchanged.
type UpdateSubmissionRequest struct {
	QuarterID   *string            `json:"quarterId,omitempty" validate:"omitempty,min=1"`
	Month       *string            `json:"month,omitempty" validate:"omitempty,min=1"`
	Value       *float64           `json:"value,omitempty"`
	TargetValue *float64           `json:"targetValue,omitempty"`
	SubValues   map[string]float64 `json:"subValues,omitempty" validate:"omitempty,dive,keys,required,endkeys"`
	Comments    *string            `json:"comments,omitempty" validate:"omitempty,max=2000"`
}

// SubmissionQuery filters submission listings. Empty fields match everything.
type SubmissionQuery struct {
	PillarID    string
	QuarterID   string
	IndicatorID string
	Month       string
	Limit       int
}

type ByQuarterResponse struct {
	Quarters []QuarterGroup  `json:"quarters"`
	Summary  ByQuarterSummary `json:"summary"`
}

type ByQuarterSummary struct {
	TotalSubmissions int `json:"totalSubmissions"`
	TotalIndicators  int `json:"totalIndicators"`
	QuartersWithData int `json:"quartersWithData"`
}

type QuarterGroup struct {
	QuarterID   string           `json:"quarterId"`
	QuarterName string           `json:"quarterName"`
	Indicators  []IndicatorGroup `json:"indicators"`
}

type IndicatorGroup struct {
	IndicatorID   string              `json:"indicatorId"`
	IndicatorName string              `json:"indicatorName"`
	PillarID      string              `json:"pillarId"`
	PillarName    string              `json:"pillarName"`
	TotalValue    float64             `json:"totalValue"`
	Count         int                 `json:"count"`
	Submissions   []GroupedSubmission `json:"submissions"`
}

type GroupedSubmission struct {
	ID          string             `json:"id"`
	Month       string             `json:"month"`
	Value       float64            `json:"value"`
	SubValues   map[string]float64 `json:"subValues,omitempty"`
	Comments    string             `json:"comments,omitempty"`
	SubmittedBy string             `json:"submittedBy"`
	Timestamp   time.Time          `json:"timestamp"`
}

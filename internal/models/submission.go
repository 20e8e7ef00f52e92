package models

import (
	"time"

	"github.com/GregMSThompson/imihigo-backend/internal/progress"
)

// Submission is one monthly achievement value reported against an indicator.
// Pillar and indicator names are copied from the catalog at write time.
type Submission struct {
	ID            string             `firestore:"id" json:"id"`
	PillarID      string             `firestore:"pillarId" json:"pillarId"`
	PillarName    string             `firestore:"pillarName" json:"pillarName"`
	OutputID      string             `firestore:"outputId" json:"outputId"`
	IndicatorID   string             `firestore:"indicatorId" json:"indicatorId"`
	IndicatorName string             `firestore:"indicatorName" json:"indicatorName"`
	QuarterID     string             `firestore:"quarterId" json:"quarterId"`
	Month         string             `firestore:"month" json:"month"`
	Value         float64            `firestore:"value" json:"value"`
	TargetValue   *float64           `firestore:"targetValue,omitempty" json:"targetValue,omitempty"`
	SubValues     map[string]float64 `firestore:"subValues,omitempty" json:"subValues,omitempty"`
	Comments      string             `firestore:"comments,omitempty" json:"comments,omitempty"`
	SubmittedBy   string             `firestore:"submittedBy" json:"submittedBy"`
	Timestamp     time.Time          `firestore:"timestamp" json:"timestamp"`
	UpdatedAt     time.Time          `firestore:"updatedAt" json:"updatedAt"`
}

// Entry converts the submission into the input of the progress calculators.
func (s *Submission) Entry() progress.Entry {
	return progress.Entry{
		Month:       s.Month,
		Value:       s.Value,
		TargetValue: s.TargetValue,
		SubValues:   s.SubValues,
		Timestamp:   s.Timestamp,
	}
}

package dto

import (
	"github.com/GregMSThompson/imihigo-backend/internal/progress"
)

// XLSXContentType is the media type of exported quarter reports.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type QuarterProgressResponse struct {
	IndicatorID   string        `json:"indicatorId"`
	IndicatorName string        `json:"indicatorName"`
	PillarID      string        `json:"pillarId"`
	QuarterName   string        `json:"quarterName"`
	IsDual        bool          `json:"isDual"`
	Band          progress.Band `json:"band"`
	progress.QuarterStats
}

type AnnualProgressResponse struct {
	IndicatorID   string        `json:"indicatorId"`
	IndicatorName string        `json:"indicatorName"`
	AnnualTarget  float64       `json:"annualTarget"`
	TotalActual   float64       `json:"totalActual"`
	Completion    float64       `json:"completion"`
	Band          progress.Band `json:"band"`
	Submissions   int           `json:"submissions"`
}

type PillarOverviewResponse struct {
	PillarID           string                  `json:"pillarId"`
	PillarName         string                  `json:"pillarName"`
	QuarterID          string                  `json:"quarterId"`
	AveragePerformance float64                 `json:"averagePerformance"`
	Bands              map[progress.Band]int   `json:"bands"`
	Indicators         []IndicatorOverviewItem `json:"indicators"`
}

type IndicatorOverviewItem struct {
	IndicatorID        string        `json:"indicatorId"`
	IndicatorName      string        `json:"indicatorName"`
	OutputID           string        `json:"outputId"`
	QuarterPerformance float64       `json:"quarterPerformance"`
	TargetDefaulted    bool          `json:"targetDefaulted"`
	Band               progress.Band `json:"band"`
	AnnualCompletion   float64       `json:"annualCompletion"`
	Submissions        int           `json:"submissions"`
}

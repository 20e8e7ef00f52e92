package dto

const DefaultSlideTitle = "Executive Summary"

type CreateSlideRequest struct {
	Title       string `json:"title" validate:"max=200"`
	Comments    string `json:"comments" validate:"max=5000"`
	PillarID    string `json:"pillarId"`
	IndicatorID string `json:"indicatorId"`
	ShowGraph   bool   `json:"showGraph"`
}

type UpdateSlideRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,max=200"`
	Comments    *string `json:"comments,omitempty" validate:"omitempty,max=5000"`
	PillarID    *string `json:"pillarId,omitempty"`
	IndicatorID *string `json:"indicatorId,omitempty"`
	ShowGraph   *bool   `json:"showGraph,omitempty"`
}

type ReorderSlideItem struct {
	SlideID  string `json:"slideId" validate:"required"`
	Position int    `json:"position" validate:"min=0"`
}

type ReorderSlidesRequest struct {
	SlideOrder []ReorderSlideItem `json:"slideOrder" validate:"required,min=1,dive"`
}

type SlidePreview struct {
	SlideID       string      `json:"slideId"`
	Title         string      `json:"title"`
	Comments      string      `json:"comments"`
	PillarName    string      `json:"pillarName,omitempty"`
	IndicatorName string      `json:"indicatorName,omitempty"`
	ShowGraph     bool        `json:"showGraph"`
	Bars          []TargetBar `json:"bars,omitempty"`
}

// TargetBar is one quarter of the target chart drawn on a slide.
type TargetBar struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Kind  string  `json:"kind"`
}

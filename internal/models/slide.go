package models

import "time"

// Slide is one page of a user's quarterly presentation draft.
type Slide struct {
	SlideID     string    `firestore:"slideId" json:"slideId"`
	Title       string    `firestore:"title" json:"title"`
	Comments    string    `firestore:"comments" json:"comments"`
	PillarID    string    `firestore:"pillarId" json:"pillarId"`
	IndicatorID string    `firestore:"indicatorId" json:"indicatorId"`
	ShowGraph   bool      `firestore:"showGraph" json:"showGraph"`
	Position    int       `firestore:"position" json:"position"`
	CreatedAt   time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `firestore:"updatedAt" json:"updatedAt"`
}

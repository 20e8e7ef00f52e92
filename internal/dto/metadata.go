package dto

import (
	"github.com/GregMSThompson/imihigo-backend/internal/catalog"
	"github.com/GregMSThompson/imihigo-backend/internal/progress"
)

type MetadataResponse struct {
	Pillars  []catalog.Pillar   `json:"pillars"`
	Quarters []progress.Quarter `json:"quarters"`
	Summary  catalog.Summary    `json:"summary"`
}

type ClearDataResponse struct {
	DeletedSubmissions int `json:"deletedSubmissions"`
}

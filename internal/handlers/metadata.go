package handlers

import (
	"net/http"

	"github.com/GregMSThompson/imihigo-backend/internal/catalog"
	"github.com/GregMSThompson/imihigo-backend/internal/dto"
	"github.com/GregMSThompson/imihigo-backend/internal/response"
)

type metadataHandlers struct {
	ResponseHandler response.ResponseHandler
	Catalog         *catalog.Catalog
}

func NewMetadataHandlers(deps *Deps) *metadataHandlers {
	return &metadataHandlers{
		ResponseHandler: deps.ResponseHandler,
		Catalog:         deps.Catalog,
	}
}

func (h *metadataHandlers) Metadata(w http.ResponseWriter, r *http.Request) {
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, dto.MetadataResponse{
		Pillars:  h.Catalog.Pillars(),
		Quarters: h.Catalog.Quarters(),
		Summary:  h.Catalog.Summary(),
	})
}

func (h *metadataHandlers) Quarters(w http.ResponseWriter, r *http.Request) {
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, h.Catalog.Quarters())
}

// Targets lists the target registry, optionally narrowed by pillarId,
// outputId and indicatorId query parameters.
func (h *metadataHandlers) Targets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rows := h.Catalog.Targets(catalog.TargetFilter{
		PillarID:    q.Get("pillarId"),
		OutputID:    q.Get("outputId"),
		IndicatorID: q.Get("indicatorId"),
	})
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, rows)
}

package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/GregMSThompson/imihigo-backend/internal/catalog"
	"github.com/GregMSThompson/imihigo-backend/internal/errs"
	"github.com/GregMSThompson/imihigo-backend/internal/response"
)

type requestValidator interface {
	Struct(s any) error
}

type Deps struct {
	Log             *slog.Logger
	ResponseHandler response.ResponseHandler
	Validator       requestValidator
	Catalog         *catalog.Catalog
	UserSvc         userService
	SubmissionSvc   submissionService
	AnalyticsSvc    analyticsService
	ReportSvc       reportService
	SlideSvc        slideService
	MaintenanceSvc  maintenanceService
}

const maxBodyBytes = 1 << 20

// decode reads a JSON body into dst and validates it.
func decode(r *http.Request, v requestValidator, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errs.NewValidationError("request body is empty")
		}
		return errs.NewValidationError("invalid JSON body: " + err.Error())
	}
	if v == nil {
		return nil
	}
	return v.Struct(dst)
}

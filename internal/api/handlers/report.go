package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/zezinho10632/DouglasApi/internal/contracts"
	"github.com/zezinho10632/DouglasApi/internal/report"
	"github.com/zezinho10632/DouglasApi/pkg/logger"
)

// Cache kinds of the report endpoints
const (
	reportPanel      = "panel"
	reportRange      = "range"
	reportCumulative = "cumulative"
)

// ReportHandler handles the read-only report endpoints.
// Bodies are served from the report cache when present.
type ReportHandler struct {
	engine *report.Engine
	cache  *report.Cache
	logger *logger.Logger
}

// NewReportHandler creates a new report handler. cache may be nil.
func NewReportHandler(engine *report.Engine, cache *report.Cache, log *logger.Logger) *ReportHandler {
	return &ReportHandler{engine: engine, cache: cache, logger: log}
}

// Panel returns the consolidated report of one period
// GET /api/v1/reports/panel?periodId=&sectorId=&startDate=&endDate=
func (h *ReportHandler) Panel(w http.ResponseWriter, r *http.Request) {
	if err := authorize(r, "read reports", adminOnly...); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	periodID, err := requiredID(r, "periodId")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	sectorID, err := requiredID(r, "sectorId")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	rng, err := queryRange(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	body, err := h.cache.Fetch(r.Context(), sectorID, reportPanel, r.URL.Query().Encode(), func() (interface{}, error) {
		return h.engine.Panel(r.Context(), periodID, sectorID, rng)
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondOK(w, body)
}

// Range returns one panel per period between two dates
// GET /api/v1/reports/panel/range?sectorId=&startDate=&endDate=
func (h *ReportHandler) Range(w http.ResponseWriter, r *http.Request) {
	if err := authorize(r, "read reports", adminOnly...); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	sectorID, err := requiredID(r, "sectorId")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	rng, err := queryRange(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	body, err := h.cache.Fetch(r.Context(), sectorID, reportRange, r.URL.Query().Encode(), func() (interface{}, error) {
		return h.engine.Range(r.Context(), sectorID, rng.From, rng.To)
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondOK(w, body)
}

// Cumulative merges the panels of a periodicity window into one report
// GET /api/v1/reports/panel/cumulative?sectorId=&periodicity=&year=&period=&startDate=&endDate=
func (h *ReportHandler) Cumulative(w http.ResponseWriter, r *http.Request) {
	if err := authorize(r, "read reports", adminOnly...); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	q, err := cumulativeQuery(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	body, err := h.cache.Fetch(r.Context(), q.SectorID, reportCumulative, r.URL.Query().Encode(), func() (interface{}, error) {
		return h.engine.Cumulative(r.Context(), q)
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondOK(w, body)
}

func cumulativeQuery(r *http.Request) (contracts.CumulativeQuery, error) {
	var (
		q   contracts.CumulativeQuery
		err error
	)
	if q.SectorID, err = requiredID(r, "sectorId"); err != nil {
		return q, err
	}
	if q.Periodicity, err = contracts.ParsePeriodicity(r.URL.Query().Get("periodicity")); err != nil {
		return q, err
	}
	if q.Year, err = queryInt(r, "year"); err != nil {
		return q, err
	}
	if q.Period, err = queryInt(r, "period"); err != nil {
		return q, err
	}
	if q.Range, err = queryRange(r); err != nil {
		return q, err
	}
	return q, nil
}

// Export renders the panel of one period as an XLSX attachment
// GET /api/v1/reports/panel/export?periodId=&sectorId=
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	if err := authorize(r, "export reports", adminOnly...); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	periodID, err := requiredID(r, "periodId")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	sectorID, err := requiredID(r, "sectorId")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	panel, err := h.engine.Panel(r.Context(), periodID, sectorID, contracts.DateRange{})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	data, err := report.ExportXLSX(r.Context(), panel)
	if err != nil {
		respondError(w, r, h.logger, fmt.Errorf("export panel: %w", err))
		return
	}

	w.Header().Set("Content-Type", report.XLSXContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="panel-%s.xlsx"`, periodID))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

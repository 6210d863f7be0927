package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"oil-tonnage/internal/domain"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) calculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "Invalid request body",
			Details: []string{"Request body must be a JSON object"},
		})
		return
	}

	in, err := validateCalculateRequest(req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "Validation failed",
			Details: validationDetails(err),
		})
		return
	}

	rec, err := s.service.Calculate(r.Context(), in.Volume, in.Density, in.Temperature)
	if err != nil {
		s.requestLogger(r).Error("Failed to calculate tonnage",
			zap.Float64("volume", in.Volume),
			zap.Float64("density", in.Density),
			zap.Float64("temperature", in.Temperature),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Calculation failed", errorMessage(err))
		return
	}

	writeJSON(w, http.StatusOK, dataResponse{Success: true, Data: newCalculationResponse(rec)})
}

func (s *Server) listCalculations(w http.ResponseWriter, r *http.Request) {
	q, result, err := s.service.List(r.Context(), parseListQuery(r))
	if err != nil {
		s.requestLogger(r).Error("Failed to list calculations", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch calculations", errorMessage(err))
		return
	}

	rows := make([]calculationResponse, 0, len(result.Rows))
	for _, rec := range result.Rows {
		rows = append(rows, newCalculationResponse(rec))
	}
	writeJSON(w, http.StatusOK, listResponse{
		Success: true,
		Data:    rows,
		Pagination: pagination{
			Page:  q.Page,
			Limit: q.Limit,
			Total: result.Total,
			Pages: result.Pages(q.Limit),
		},
	})
}

func (s *Server) deleteCalculation(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid calculation id"})
		return
	}

	err = s.service.Delete(r.Context(), id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Calculation not found"})
	case err != nil:
		s.requestLogger(r).Error("Failed to delete calculation", zap.Int64("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to delete calculation", errorMessage(err))
	default:
		writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Calculation deleted successfully"})
	}
}

func (s *Server) clearCalculations(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Clear(r.Context()); err != nil {
		s.requestLogger(r).Error("Failed to clear calculations", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to clear calculations", errorMessage(err))
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "All calculations cleared successfully"})
}

func (s *Server) exportCalculations(w http.ResponseWriter, r *http.Request) {
	// Buffered so a failed export can still be answered with a JSON error.
	var buf bytes.Buffer
	if err := s.service.Export(r.Context(), &buf, parseListQuery(r)); err != nil {
		s.requestLogger(r).Error("Failed to export calculations", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to export calculations", errorMessage(err))
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFilename(time.Now())+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Health(r.Context()); err != nil {
		s.requestLogger(r).Warn("Health check failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, healthResponse{Status: "error", Database: "disconnected"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Database: "connected"})
}

// parseListQuery reads page, limit, search, sort and order. Malformed numbers
// fall back to defaults during normalization.
func parseListQuery(r *http.Request) domain.ListQuery {
	values := r.URL.Query()
	page, _ := strconv.Atoi(values.Get("page"))
	limit, _ := strconv.Atoi(values.Get("limit"))
	return domain.ListQuery{
		Page:       page,
		Limit:      limit,
		Search:     values.Get("search"),
		SortColumn: values.Get("sort"),
		SortOrder:  values.Get("order"),
	}
}

// validationDetails lists the broken rules carried by err.
func validationDetails(err error) []string {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Details
	}
	return []string{err.Error()}
}

// errorMessage is the client-facing text for a failed operation.
func errorMessage(err error) string {
	var notFound *domain.NotFoundError
	if errors.As(err, &notFound) {
		return notFound.Message
	}
	if errors.Is(err, domain.ErrStoreUnavailable) {
		return "Database is unavailable"
	}
	if errors.Is(err, domain.ErrOutOfRange) {
		return "Tonnage is out of range"
	}
	return "Internal server error"
}

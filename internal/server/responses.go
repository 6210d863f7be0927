package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"oil-tonnage/internal/domain"
)

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// calculationResponse is the wire shape of a record, shared by the calculate
// result and history rows.
type calculationResponse struct {
	ID          int64   `json:"id"`
	Volume      float64 `json:"volume"`
	Density     float64 `json:"density"`
	Temperature float64 `json:"temperature"`
	VCF         float64 `json:"vcf"`
	UsedDensity float64 `json:"usedDensity"`
	UsedTemp    float64 `json:"usedTemp"`
	Tonnage     float64 `json:"tonnage"`
	Timestamp   string  `json:"timestamp"`
}

type pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

type listResponse struct {
	Success    bool                  `json:"success"`
	Data       []calculationResponse `json:"data"`
	Pagination pagination            `json:"pagination"`
}

type dataResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message,omitempty"`
	Details []string `json:"details,omitempty"`
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func newCalculationResponse(rec domain.CalculationRecord) calculationResponse {
	return calculationResponse{
		ID:          rec.ID,
		Volume:      rec.Volume,
		Density:     rec.Density,
		Temperature: rec.Temperature,
		VCF:         rec.VCF,
		UsedDensity: rec.UsedDensity,
		UsedTemp:    rec.UsedTemperature,
		Tonnage:     rec.Tonnage,
		Timestamp:   rec.CreatedAt.UTC().Format(timestampLayout),
	}
}

// writeJSON encodes body before committing status, so a value that cannot be
// encoded turns into a 500 instead of an empty success.
func writeJSON(w http.ResponseWriter, status int, body any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		buf.Reset()
		status = http.StatusInternalServerError
		_ = json.NewEncoder(&buf).Encode(errorResponse{
			Error:   "Internal server error",
			Message: "Failed to encode response",
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func writeError(w http.ResponseWriter, status int, title, message string) {
	writeJSON(w, status, errorResponse{Error: title, Message: message})
}

func exportFilename(now time.Time) string {
	return "calculations-" + now.UTC().Format("20060102-150405") + ".xlsx"
}

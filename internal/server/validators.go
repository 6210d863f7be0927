package server

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"oil-tonnage/internal/domain"
)

const (
	minDensity     = 700.0
	maxDensity     = 1000.0
	minTemperature = -20.0
	maxTemperature = 60.0
)

type calculateRequest struct {
	Volume      json.RawMessage `json:"volume"`
	Density     json.RawMessage `json:"density"`
	Temperature json.RawMessage `json:"temperature"`
}

type calculateInput struct {
	Volume      float64
	Density     float64
	Temperature float64
}

// validateCalculateRequest collects every broken rule instead of stopping at
// the first one.
func validateCalculateRequest(req calculateRequest) (calculateInput, error) {
	var (
		in      calculateInput
		details []string
		ok      bool
	)

	if in.Volume, ok = parseNumber(req.Volume); !ok {
		details = append(details, "Volume must be a positive number")
	} else if in.Volume <= 0 {
		details = append(details, "Volume must be a positive number")
	}

	if in.Density, ok = parseNumber(req.Density); !ok {
		details = append(details, "Density must be a number")
	} else if in.Density < minDensity || in.Density > maxDensity {
		details = append(details, "Density must be between 700 and 1000")
	}

	if in.Temperature, ok = parseNumber(req.Temperature); !ok {
		details = append(details, "Temperature must be a number")
	} else if in.Temperature < minTemperature || in.Temperature > maxTemperature {
		details = append(details, "Temperature must be between -20 and 60")
	}

	if len(details) > 0 {
		return calculateInput{}, &domain.ValidationError{Details: details}
	}
	return in, nil
}

// parseNumber accepts a JSON number or a numeric string. Missing, null and
// non-finite values are rejected.
func parseNumber(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

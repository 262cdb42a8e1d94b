package server

import (
	"github.com/iwvelando/outright-forecast/internal/cases"
	"github.com/iwvelando/outright-forecast/internal/metrics"
	"github.com/iwvelando/outright-forecast/internal/scenario"
)

// Wire types shared with internal/client.

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// ComputeResponse carries the raw monthly series for one scenario.
type ComputeResponse struct {
	Success bool             `json:"success"`
	Data    []metrics.RawRow `json:"data"`
}

// CaseRequest creates (name and inputs) or updates (inputs only) a case.
type CaseRequest struct {
	Name   string         `json:"name,omitempty"`
	Inputs scenario.Input `json:"inputs"`
}

// CaseResponse carries one full case.
type CaseResponse struct {
	Success bool        `json:"success"`
	ID      string      `json:"id,omitempty"`
	Case    *cases.Case `json:"case,omitempty"`
}

// ListResponse carries the case listing in creation order.
type ListResponse struct {
	Success bool            `json:"success"`
	Cases   []cases.Summary `json:"cases"`
}

// VersionResponse reports the running build.
type VersionResponse struct {
	Version string `json:"version"`
	Year    int    `json:"year"`
}

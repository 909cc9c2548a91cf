package server

import (
	goFlow "github.com/MrEthical07/goFlow"
)

type errorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

type healthResponse struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
}

// flowResponse is the state of one flow page after a request.
type flowResponse struct {
	Flow        *goFlow.Document   `json:"flow,omitempty"`
	GlobalError string             `json:"global_error,omitempty"`
	FieldErrors goFlow.FieldErrors `json:"field_errors,omitempty"`
	CSRFToken   string             `json:"csrf_token,omitempty"`
	Outcome     string             `json:"outcome,omitempty"`
	CodeState   string             `json:"code_state,omitempty"`
	Directives  []Directive        `json:"directives,omitempty"`
}

type logoutResponse struct {
	Directives []Directive `json:"directives,omitempty"`
	Error      string      `json:"error,omitempty"`
}

type viewerResponse struct {
	Authenticated bool           `json:"authenticated"`
	Viewer        *goFlow.Viewer `json:"viewer,omitempty"`
	Initials      string         `json:"initials,omitempty"`
}

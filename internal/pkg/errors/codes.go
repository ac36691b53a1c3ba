package errors

import (
	"fmt"
	"net/http"
)

// Code binds a business error code to its HTTP status and message
type Code struct {
	Code    int
	Status  int
	Message string
}

const (
	Success = 0

	// Common errors (1000-1999)
	ErrInternalServer  = 1000
	ErrInvalidParams   = 1001
	ErrNotFound        = 1002
	ErrTooManyRequests = 1006
	ErrBadRequest      = 1007
	ErrServiceUnavail  = 1008

	// Configuration errors (2000-2999)
	ErrConfigMissing = 2000
	ErrConfigInvalid = 2001

	// Upstream service errors (3000-3999)
	ErrUpstreamService   = 3000 // the remote service answered with an explicit failure
	ErrUpstreamTransport = 3001 // network failure or non-success HTTP status
	ErrUpstreamResponse  = 3002 // response body did not match the expected shape

	// Pipeline stage errors (4000-4999)
	ErrKnowledgeExtraction = 4000
	ErrScriptGeneration    = 4001
	ErrAudioGeneration     = 4002
	ErrAudioStorage        = 4003
)

var codeMap = map[int]Code{
	Success: {Success, http.StatusOK, "Success"},

	ErrInternalServer:  {ErrInternalServer, http.StatusInternalServerError, "Internal server error"},
	ErrInvalidParams:   {ErrInvalidParams, http.StatusBadRequest, "Invalid parameters"},
	ErrNotFound:        {ErrNotFound, http.StatusNotFound, "Resource not found"},
	ErrTooManyRequests: {ErrTooManyRequests, http.StatusTooManyRequests, "Too many requests"},
	ErrBadRequest:      {ErrBadRequest, http.StatusBadRequest, "Bad request"},
	ErrServiceUnavail:  {ErrServiceUnavail, http.StatusServiceUnavailable, "Service unavailable"},

	ErrConfigMissing: {ErrConfigMissing, http.StatusInternalServerError, "Required configuration missing"},
	ErrConfigInvalid: {ErrConfigInvalid, http.StatusInternalServerError, "Invalid configuration"},

	ErrUpstreamService:   {ErrUpstreamService, http.StatusBadGateway, "Upstream service error"},
	ErrUpstreamTransport: {ErrUpstreamTransport, http.StatusBadGateway, "Upstream transport error"},
	ErrUpstreamResponse:  {ErrUpstreamResponse, http.StatusBadGateway, "Unexpected upstream response"},

	ErrKnowledgeExtraction: {ErrKnowledgeExtraction, http.StatusInternalServerError, "Knowledge extraction failed"},
	ErrScriptGeneration:    {ErrScriptGeneration, http.StatusInternalServerError, "Script generation failed"},
	ErrAudioGeneration:     {ErrAudioGeneration, http.StatusInternalServerError, "Audio generation failed"},
	ErrAudioStorage:        {ErrAudioStorage, http.StatusInternalServerError, "Audio storage failed"},
}

// GetCode returns the Code for a given error code
func GetCode(code int) Code {
	if c, ok := codeMap[code]; ok {
		return c
	}
	return codeMap[ErrInternalServer]
}

// GetHTTPStatus returns HTTP status for a given error code
func GetHTTPStatus(code int) int {
	return GetCode(code).Status
}

// GetMessage returns the message for a given error code
func GetMessage(code int) string {
	return GetCode(code).Message
}

// IsClientError checks if the code maps to a 4xx status
func IsClientError(code int) bool {
	status := GetHTTPStatus(code)
	return status >= 400 && status < 500
}

// FormatError formats "<message>: <details>", or just the message
func FormatError(code int, details ...string) string {
	msg := GetMessage(code)
	if len(details) > 0 && details[0] != "" {
		return fmt.Sprintf("%s: %s", msg, details[0])
	}
	return msg
}

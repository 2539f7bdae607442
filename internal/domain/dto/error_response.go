package dto

import "time"

// ErrorResponse is the standardized JSON error body returned by the API.
//
// Example:
//
//	{
//	  "message": "missing required columns",
//	  "error": "missing required columns: dbIssueTime, dbPermitFee",
//	  "timestamp": "2024-01-10T09:00:00Z"
//	}
type ErrorResponse struct {
	Message      string    `json:"message" example:"invalid date range"`
	ErrorDetails string    `json:"error,omitempty" example:"start_date is after end_date"`
	Timestamp    time.Time `json:"timestamp"`
}

// Error implements the error interface so an ErrorResponse can travel through c.Error.
func (e ErrorResponse) Error() string {
	if e.ErrorDetails == "" {
		return e.Message
	}
	return e.Message + ": " + e.ErrorDetails
}

// NewErrorResponse builds an ErrorResponse, copying err's text into the details when present.
func NewErrorResponse(message string, err error) ErrorResponse {
	resp := ErrorResponse{
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
	if err != nil {
		resp.ErrorDetails = err.Error()
	}
	return resp
}

package handlers

// ReportResponse is the wire shape of one report
type ReportResponse struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	RequestedAt string `json:"requestedAt"`
}

// ReportDetailResponse is the wire shape of one per-location statistic row.
// The field is phoneNumberCount here; the contact side of the system names
// the same statistic phoneCount. The two contracts are intentionally
// decoupled and must not be merged.
type ReportDetailResponse struct {
	Location         string `json:"location"`
	PersonCount      int    `json:"personCount"`
	PhoneNumberCount int    `json:"phoneNumberCount"`
}

// AddDetailRequest is one row submitted by the worker at finalization
type AddDetailRequest struct {
	Location         string `json:"location"`
	PersonCount      int    `json:"personCount"`
	PhoneNumberCount int    `json:"phoneNumberCount"`
}

// ErrorResponse is the error envelope on every failure response
type ErrorResponse struct {
	Error      string `json:"error"`
	StatusCode int    `json:"statusCode"`
}

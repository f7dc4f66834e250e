package handlers

// CreatePersonRequest is the payload for creating a person
type CreatePersonRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Company   string `json:"company"`
}

// AddContactInfoRequest is the payload for adding a typed contact entry
type AddContactInfoRequest struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// ContactInfoResponse is the wire shape of one contact entry
type ContactInfoResponse struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

// PersonResponse is the wire shape of one person
type PersonResponse struct {
	ID           string                `json:"id"`
	FirstName    string                `json:"firstName"`
	LastName     string                `json:"lastName"`
	Company      string                `json:"company"`
	ContactInfos []ContactInfoResponse `json:"contactInfos,omitempty"`
}

// LocationReportResponse is one aggregation row. This contract names the
// phone statistic phoneCount; the report service names it phoneNumberCount.
// The two are intentionally separate.
type LocationReportResponse struct {
	Location    string `json:"location"`
	PersonCount int    `json:"personCount"`
	PhoneCount  int    `json:"phoneCount"`
}

// ErrorResponse is the error envelope on every failure response
type ErrorResponse struct {
	Error      string `json:"error"`
	StatusCode int    `json:"statusCode"`
}

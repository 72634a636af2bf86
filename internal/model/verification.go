package model

import (
	"strings"
	"time"
)

// FieldReport is the analyzer's readability verdict for a set of document images
type FieldReport struct {
	IsTargetDocument bool `json:"isTargetDocument"`
	Name             bool `json:"name"`
	DOB              bool `json:"dob"`
	Address          bool `json:"address"`
	PersonImage      bool `json:"person_image"`
	IssueDate        bool `json:"issue_date"`
	ExpiryDate       bool `json:"expiry_date"`
}

const (
	MessageNotTargetDocument = "The document is not a valid document."
	MessageAllFieldsReadable = "All required fields are present and readable."
	missingFieldsPrefix      = "The following fields are missing or unreadable: "
)

// MissingFields lists the unreadable fields in fixed order
func (r FieldReport) MissingFields() []string {
	fields := []struct {
		ok    bool
		label string
	}{
		{r.Name, "name"},
		{r.DOB, "date of birth"},
		{r.Address, "address"},
		{r.PersonImage, "person image"},
		{r.IssueDate, "issue date"},
		{r.ExpiryDate, "expiry date"},
	}
	var missing []string
	for _, f := range fields {
		if !f.ok {
			missing = append(missing, f.label)
		}
	}
	return missing
}

// Accepted reports whether the document is the declared type and every field is readable
func (r FieldReport) Accepted() bool {
	return r.IsTargetDocument && len(r.MissingFields()) == 0
}

// Message explains the verdict
func (r FieldReport) Message() string {
	if !r.IsTargetDocument {
		return MessageNotTargetDocument
	}
	if missing := r.MissingFields(); len(missing) > 0 {
		return missingFieldsPrefix + strings.Join(missing, ", ") + "."
	}
	return MessageAllFieldsReadable
}

// Verdict is the AI gate outcome returned to callers
type Verdict struct {
	Accepted bool   `json:"status"`
	Message  string `json:"message"`
}

// Stamp selects the certificate seal
type Stamp string

const (
	StampApproved Stamp = "approved"
	StampRejected Stamp = "rejected"
)

// CertificateData is everything the renderer needs to fill the template
type CertificateData struct {
	CaseID  string    `json:"caseId"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Address string    `json:"address"`
	Date    time.Time `json:"date"`
	Message string    `json:"message"`
	Stamp   Stamp     `json:"stamp"`
}

// Certificate points at a rendered PDF
type Certificate struct {
	CaseID string `json:"caseId"`
	PDFURL string `json:"pdfUrl"`
}

package model

import "time"

// ValidityWindow is how long a completed verification stays valid
const ValidityWindow = 20 * 24 * time.Hour

// Status represents case status
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
	StatusRejected   Status = "Rejected"
)

// Statuses lists every case status in lifecycle order
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted, StatusRejected}

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Open reports whether the case can still transition
func (s Status) Open() bool {
	return s == StatusPending || s == StatusInProgress
}

// AIStatus is the verdict recorded by the AI gate
type AIStatus string

const (
	AIStatusRejected  AIStatus = "Rejected"
	AIStatusCompleted AIStatus = "Completed"
)

// DocumentType represents the kind of identity document
type DocumentType string

const (
	DocumentTypePassport        DocumentType = "passport"
	DocumentTypeDrivingLicense  DocumentType = "driving_license"
	DocumentTypeNationalID      DocumentType = "national_id"
	DocumentTypeResidencePermit DocumentType = "residence_permit"
)

var documentTypeLabels = map[DocumentType]string{
	DocumentTypePassport:        "passport",
	DocumentTypeDrivingLicense:  "driving license",
	DocumentTypeNationalID:      "national identity card",
	DocumentTypeResidencePermit: "residence permit",
}

// Valid reports whether t is part of the supported enumeration
func (t DocumentType) Valid() bool {
	_, ok := documentTypeLabels[t]
	return ok
}

// Label is the human-readable document name used in prompts and messages
func (t DocumentType) Label() string {
	if label, ok := documentTypeLabels[t]; ok {
		return label
	}
	return string(t)
}

// Permission is a capability token granted through a role
type Permission string

const (
	PermissionSubmitKYC Permission = "submit_kyc_request"
	PermissionVerifyKYC Permission = "verify_kyc"
	PermissionAssignKYC Permission = "assign_kyc"
	PermissionViewKYC   Permission = "view_kyc"
)

// Case represents a KYC verification request
type Case struct {
	ID          string     `json:"id"`
	ApplicantID string     `json:"applicantId"`
	Status      Status     `json:"status"`
	DocumentIDs []string   `json:"documentIds"`
	AssignerID  *string    `json:"assignerId,omitempty"`
	WorkerID    *string    `json:"workerId,omitempty"`
	ValidUntil  *time.Time `json:"validUntil"`
	AIStatus    *AIStatus  `json:"aiStatus,omitempty"`
	Message     *string    `json:"message,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Assigned reports whether a worker has been bound to the case
func (c Case) Assigned() bool {
	return c.WorkerID != nil
}

// StillValid reports whether a completed case blocks re-verification at now
func (c Case) StillValid(now time.Time) bool {
	return c.Status == StatusCompleted && c.ValidUntil != nil && c.ValidUntil.After(now)
}

// CaseSummary is the condensed view returned with applicant counts
type CaseSummary struct {
	ID         string     `json:"id"`
	Status     Status     `json:"status"`
	ValidUntil *time.Time `json:"validUntil"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Summary condenses a case for listing
func (c Case) Summary() CaseSummary {
	return CaseSummary{ID: c.ID, Status: c.Status, ValidUntil: c.ValidUntil, CreatedAt: c.CreatedAt}
}

// Document is an uploaded identity document reference
type Document struct {
	ID        string       `json:"id"`
	Type      DocumentType `json:"type"`
	Location  string       `json:"location"`
	CreatedAt time.Time    `json:"createdAt"`
}

// Actor is a user record carrying its resolved capability set
type Actor struct {
	ID            string                  `json:"id"`
	Role          string                  `json:"role"`
	Permissions   map[Permission]struct{} `json:"-"`
	FirstName     string                  `json:"firstName,omitempty"`
	LastName      string                  `json:"lastName,omitempty"`
	Email         string                  `json:"email,omitempty"`
	Address       string                  `json:"address,omitempty"`
	AssignedCases []string                `json:"assignedCases,omitempty"`
}

// Can reports whether the actor holds permission p
func (a Actor) Can(p Permission) bool {
	_, ok := a.Permissions[p]
	return ok
}

// FullName joins first and last name
func (a Actor) FullName() string {
	switch {
	case a.FirstName == "":
		return a.LastName
	case a.LastName == "":
		return a.FirstName
	}
	return a.FirstName + " " + a.LastName
}

// NewPermissionSet builds a permission set from raw tokens
func NewPermissionSet(tokens []string) map[Permission]struct{} {
	set := make(map[Permission]struct{}, len(tokens))
	for _, t := range tokens {
		set[Permission(t)] = struct{}{}
	}
	return set
}

// StatusCounts holds per-status totals
type StatusCounts struct {
	Pending    int64 `json:"Pending"`
	InProgress int64 `json:"InProgress"`
	Completed  int64 `json:"Completed"`
	Rejected   int64 `json:"Rejected"`
	Total      int64 `json:"total"`
}

// Add increments the bucket for status s
func (c *StatusCounts) Add(s Status, n int64) {
	switch s {
	case StatusPending:
		c.Pending += n
	case StatusInProgress:
		c.InProgress += n
	case StatusCompleted:
		c.Completed += n
	case StatusRejected:
		c.Rejected += n
	default:
		return
	}
	c.Total += n
}

// PageInfo describes a page of results
type PageInfo struct {
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	CurrentPage int   `json:"currentPage"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

// NewPageInfo computes page metadata for total items at page/limit
func NewPageInfo(page, limit int, total int64) PageInfo {
	totalPages := int(total) / limit
	if int(total)%limit > 0 {
		totalPages++
	}
	return PageInfo{
		Total:       total,
		TotalPages:  totalPages,
		CurrentPage: page,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}

// NewCase carries everything needed to open a case and bind its documents
type NewCase struct {
	ID          string
	ApplicantID string
	Documents   []Document
	Now         time.Time
}

// Role is a named permission bundle
type Role struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

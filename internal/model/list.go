package model

import "strings"

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// SortKey is a whitelisted case ordering column
type SortKey string

const (
	SortByCreatedAt  SortKey = "created_at"
	SortByUpdatedAt  SortKey = "updated_at"
	SortByStatus     SortKey = "status"
	SortByValidUntil SortKey = "valid_until"
)

// SortDir is the ordering direction
type SortDir string

const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

// ListParams selects a page of cases, optionally scoped to one applicant
type ListParams struct {
	ApplicantID *string
	Page        int
	Limit       int
	SortKey     SortKey
	SortDir     SortDir
}

// Normalize clamps paging and falls back to created_at asc for unknown sorts
func (p ListParams) Normalize() ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	switch SortKey(strings.ToLower(string(p.SortKey))) {
	case SortByCreatedAt, SortByUpdatedAt, SortByStatus, SortByValidUntil:
		p.SortKey = SortKey(strings.ToLower(string(p.SortKey)))
	default:
		p.SortKey = SortByCreatedAt
	}
	if SortDir(strings.ToLower(string(p.SortDir))) == SortDesc {
		p.SortDir = SortDesc
	} else {
		p.SortDir = SortAsc
	}
	return p
}

// Offset is the number of rows skipped before the page
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

package leave

import (
	"time"
)

type Category string

const (
	CategoryCasual    Category = "CL"
	CategorySick      Category = "SL"
	CategoryEarned    Category = "EL"
	CategoryMaternity Category = "ML"
)

// Categories lists every leave category in display order.
func Categories() []Category {
	return []Category{CategoryCasual, CategorySick, CategoryEarned, CategoryMaternity}
}

func (c Category) IsValid() bool {
	switch c {
	case CategoryCasual, CategorySick, CategoryEarned, CategoryMaternity:
		return true
	}
	return false
}

// sickLeaveDocumentThreshold is the longest SL request accepted without a document.
const sickLeaveDocumentThreshold = 2

// RequiresDocument reports whether a request of the given category and length
// must carry a supporting document: always for ML, and for SL beyond two
// working days.
func RequiresDocument(category Category, workingDays int) bool {
	switch category {
	case CategoryMaternity:
		return true
	case CategorySick:
		return workingDays > sickLeaveDocumentThreshold
	}
	return false
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) IsValid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// LeaveRequest entity. Requests are never deleted; the only mutation after
// creation is the single pending -> approved|rejected decision.
type LeaveRequest struct {
	ID           string
	UserID       string
	Category     Category
	StartDate    time.Time
	EndDate      time.Time
	WorkingDays  int
	Reason       *string
	DocumentRef  *string
	Status       Status
	AdminComment *string
	DecidedBy    *string
	DecidedAt    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Join
	CandidateName  *string
	CandidateEmail *string
}

func (r *LeaveRequest) IsPending() bool {
	return r.Status == StatusPending
}

// CanTransitionTo reports whether the decision target is reachable from the
// current status.
func (r *LeaveRequest) CanTransitionTo(target Status) bool {
	return r.IsPending() && (target == StatusApproved || target == StatusRejected)
}

func (r *LeaveRequest) HasDocument() bool {
	return r.DocumentRef != nil && *r.DocumentRef != ""
}

// Year is the calendar year a request is charged against.
func (r *LeaveRequest) Year() int {
	return r.StartDate.Year()
}

// Quotas holds one whole-day figure per category.
type Quotas struct {
	CL int `json:"CL"`
	SL int `json:"SL"`
	EL int `json:"EL"`
	ML int `json:"ML"`
}

// Of returns the figure for category c.
func (q Quotas) Of(c Category) int {
	switch c {
	case CategoryCasual:
		return q.CL
	case CategorySick:
		return q.SL
	case CategoryEarned:
		return q.EL
	case CategoryMaternity:
		return q.ML
	}
	return 0
}

func (q *Quotas) Set(c Category, days int) {
	switch c {
	case CategoryCasual:
		q.CL = days
	case CategorySick:
		q.SL = days
	case CategoryEarned:
		q.EL = days
	case CategoryMaternity:
		q.ML = days
	}
}

// DefaultQuotas are applied when an entitlement row is created lazily.
var DefaultQuotas = Quotas{CL: 6, SL: 6, EL: 12, ML: 180}

// Entitlement is a user's yearly quota per category. At most one exists per
// (user, year).
type Entitlement struct {
	ID        string
	UserID    string
	Year      int
	Quotas    Quotas
	CreatedAt time.Time
	UpdatedAt time.Time
}

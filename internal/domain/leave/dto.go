package leave

import (
	"io"
	"strings"
	"time"

	"github.com/cmlabs-hris/leave-backend-go/internal/pkg/validator"
)

// DocumentUpload is a supporting document streamed in with a leave request.
type DocumentUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

type CreateLeaveRequestRequest struct {
	Category  string          `json:"category"`
	StartDate string          `json:"startDate"`
	EndDate   string          `json:"endDate"`
	Reason    string          `json:"reason,omitempty"`
	Document  *DocumentUpload `json:"-"`
}

// Validate checks presence and date format only. Category membership, range
// ordering and the document rule belong to the request validator so they are
// reported in a fixed order.
func (r *CreateLeaveRequestRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Category) {
		errs = append(errs, validator.ValidationError{
			Field:   "category",
			Message: "category is required",
		})
	}

	if validator.IsEmpty(r.StartDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "startDate",
			Message: "startDate is required",
		})
	} else if d, ok := validator.IsValidDate(r.StartDate); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "startDate",
			Message: "startDate must be in YYYY-MM-DD format",
		})
	} else if !validator.IsValidYear(d.Year()) {
		errs = append(errs, validator.ValidationError{
			Field:   "startDate",
			Message: "startDate year must be between 2000 and 2100",
		})
	}

	if validator.IsEmpty(r.EndDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "endDate",
			Message: "endDate is required",
		})
	} else if d, ok := validator.IsValidDate(r.EndDate); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "endDate",
			Message: "endDate must be in YYYY-MM-DD format",
		})
	} else if !validator.IsValidYear(d.Year()) {
		errs = append(errs, validator.ValidationError{
			Field:   "endDate",
			Message: "endDate year must be between 2000 and 2100",
		})
	}

	if len(r.Reason) > 2000 {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason must not exceed 2000 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// DecisionRequest carries the admin comment for approve/reject.
type DecisionRequest struct {
	Comment string `json:"comment"`
}

// ListRequestsQuery is the admin filter over all leave requests.
type ListRequestsQuery struct {
	Status      string
	From        string
	To          string
	CandidateID string
}

func (q *ListRequestsQuery) Validate() error {
	var errs validator.ValidationErrors

	if q.Status != "" && !Status(q.Status).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of pending, approved, rejected",
		})
	}
	if q.From != "" {
		if _, ok := validator.IsValidDate(q.From); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "from",
				Message: "from must be in YYYY-MM-DD format",
			})
		}
	}
	if q.To != "" {
		if _, ok := validator.IsValidDate(q.To); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "to",
				Message: "to must be in YYYY-MM-DD format",
			})
		}
	}
	if q.CandidateID != "" && !validator.IsValidUUID(q.CandidateID) {
		errs = append(errs, validator.ValidationError{
			Field:   "candidateId",
			Message: "candidateId must be a valid UUID",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Filter converts a validated query into the repository filter.
func (q *ListRequestsQuery) Filter() RequestFilter {
	var f RequestFilter
	if q.Status != "" {
		s := Status(q.Status)
		f.Status = &s
	}
	if t, ok := validator.IsValidDate(q.From); ok {
		f.From = &t
	}
	if t, ok := validator.IsValidDate(q.To); ok {
		f.To = &t
	}
	if q.CandidateID != "" {
		id := q.CandidateID
		f.UserID = &id
	}
	return f
}

// RequestFilter narrows a leave request listing. From bounds start_date from
// below and To bounds end_date from above.
type RequestFilter struct {
	Status *Status
	From   *time.Time
	To     *time.Time
	UserID *string
}

// SetQuotasRequest overwrites the provided categories and keeps the rest.
type SetQuotasRequest struct {
	Year int  `json:"year"`
	CL   *int `json:"cl,omitempty"`
	SL   *int `json:"sl,omitempty"`
	EL   *int `json:"el,omitempty"`
	ML   *int `json:"ml,omitempty"`
}

func (r *SetQuotasRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Year == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: "year is required",
		})
	} else if !validator.IsValidYear(r.Year) {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: "year must be between 2000 and 2100",
		})
	}

	for field, v := range map[string]*int{"cl": r.CL, "sl": r.SL, "el": r.EL, "ml": r.ML} {
		if v != nil && *v < 0 {
			errs = append(errs, validator.ValidationError{
				Field:   field,
				Message: field + " must not be negative",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Apply merges the provided fields onto q.
func (r *SetQuotasRequest) Apply(q Quotas) Quotas {
	if r.CL != nil {
		q.CL = *r.CL
	}
	if r.SL != nil {
		q.SL = *r.SL
	}
	if r.EL != nil {
		q.EL = *r.EL
	}
	if r.ML != nil {
		q.ML = *r.ML
	}
	return q
}

type LeaveRequestResponse struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	CandidateName  *string    `json:"candidate_name,omitempty"`
	CandidateEmail *string    `json:"candidate_email,omitempty"`
	Category       Category   `json:"category"`
	StartDate      string     `json:"start_date"`
	EndDate        string     `json:"end_date"`
	WorkingDays    int        `json:"working_days"`
	Reason         *string    `json:"reason,omitempty"`
	HasDocument    bool       `json:"has_document"`
	Status         Status     `json:"status"`
	AdminComment   *string    `json:"admin_comment,omitempty"`
	DecidedBy      *string    `json:"decided_by,omitempty"`
	DecidedAt      *time.Time `json:"decided_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func NewLeaveRequestResponse(r LeaveRequest) LeaveRequestResponse {
	return LeaveRequestResponse{
		ID:             r.ID,
		UserID:         r.UserID,
		CandidateName:  r.CandidateName,
		CandidateEmail: r.CandidateEmail,
		Category:       r.Category,
		StartDate:      r.StartDate.Format(validator.DateLayout),
		EndDate:        r.EndDate.Format(validator.DateLayout),
		WorkingDays:    r.WorkingDays,
		Reason:         r.Reason,
		HasDocument:    r.HasDocument(),
		Status:         r.Status,
		AdminComment:   r.AdminComment,
		DecidedBy:      r.DecidedBy,
		DecidedAt:      r.DecidedAt,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func NewLeaveRequestResponses(rs []LeaveRequest) []LeaveRequestResponse {
	out := make([]LeaveRequestResponse, 0, len(rs))
	for _, r := range rs {
		out = append(out, NewLeaveRequestResponse(r))
	}
	return out
}

type EntitlementResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Year      int       `json:"year"`
	CL        int       `json:"cl"`
	SL        int       `json:"sl"`
	EL        int       `json:"el"`
	ML        int       `json:"ml"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewEntitlementResponse(e Entitlement) EntitlementResponse {
	return EntitlementResponse{
		ID:        e.ID,
		UserID:    e.UserID,
		Year:      e.Year,
		CL:        e.Quotas.CL,
		SL:        e.Quotas.SL,
		EL:        e.Quotas.EL,
		ML:        e.Quotas.ML,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

// BalanceResponse reports entitlement, approved usage and the floored
// remaining balance for one year.
type BalanceResponse struct {
	Year        int                 `json:"year"`
	Entitlement EntitlementResponse `json:"entitlement"`
	Used        Quotas              `json:"used"`
	Remaining   Quotas              `json:"remaining"`
}

// DocumentFile is an opened leave document ready to stream to a client.
type DocumentFile struct {
	Name        string
	ContentType string
	Content     io.ReadCloser
}

// ParseCategory trims a submitted category. Membership is checked separately.
func ParseCategory(raw string) Category {
	return Category(strings.TrimSpace(raw))
}

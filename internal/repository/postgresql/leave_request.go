package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/leave-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/leave-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

const leaveRequestColumns = `
	lr.id, lr.user_id, lr.category, lr.start_date, lr.end_date, lr.working_days,
	lr.reason, lr.document_ref, lr.status, lr.admin_comment, lr.decided_by, lr.decided_at,
	lr.created_at, lr.updated_at`

func leaveRequestDest(lr *leave.LeaveRequest) []any {
	return []any{
		&lr.ID, &lr.UserID, &lr.Category, &lr.StartDate, &lr.EndDate, &lr.WorkingDays,
		&lr.Reason, &lr.DocumentRef, &lr.Status, &lr.AdminComment, &lr.DecidedBy, &lr.DecidedAt,
		&lr.CreatedAt, &lr.UpdatedAt,
	}
}

// Create implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_requests AS lr (
			user_id, category, start_date, end_date, working_days,
			reason, document_ref, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + leaveRequestColumns

	var created leave.LeaveRequest
	err := q.QueryRow(ctx, query,
		request.UserID, request.Category, request.StartDate, request.EndDate, request.WorkingDays,
		request.Reason, request.DocumentRef, request.Status,
	).Scan(leaveRequestDest(&created)...)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to create leave request: %w", err)
	}

	return created, nil
}

// GetByID implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leaveRequestColumns + `, u.name, u.email
		FROM leave_requests lr
		JOIN users u ON u.id = lr.user_id
		WHERE lr.id = $1`

	var lr leave.LeaveRequest
	err := q.QueryRow(ctx, query, id).Scan(append(leaveRequestDest(&lr), &lr.CandidateName, &lr.CandidateEmail)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, fmt.Errorf("failed to get leave request: %w", err)
	}

	return lr, nil
}

// ListByUser implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) ListByUser(ctx context.Context, userID string) ([]leave.LeaveRequest, error) {
	return r.List(ctx, leave.RequestFilter{UserID: &userID})
}

// List implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) List(ctx context.Context, filter leave.RequestFilter) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	var (
		clauses []string
		args    []any
	)
	add := func(clause string, arg any) {
		args = append(args, arg)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if filter.Status != nil {
		add("lr.status = $%d", *filter.Status)
	}
	if filter.From != nil {
		add("lr.start_date >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("lr.end_date <= $%d", *filter.To)
	}
	if filter.UserID != nil {
		add("lr.user_id = $%d", *filter.UserID)
	}

	where := ""
	if len(clauses) > 0 {
		where = "WHERE " + strings.Join(clauses, " AND ")
	}

	query := `SELECT ` + leaveRequestColumns + `, u.name, u.email
		FROM leave_requests lr
		JOIN users u ON u.id = lr.user_id
		` + where + `
		ORDER BY lr.created_at DESC`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave requests: %w", err)
	}
	defer rows.Close()

	requests := []leave.LeaveRequest{}
	for rows.Next() {
		var lr leave.LeaveRequest
		if err := rows.Scan(append(leaveRequestDest(&lr), &lr.CandidateName, &lr.CandidateEmail)...); err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}
		requests = append(requests, lr)
	}

	return requests, rows.Err()
}

// SumApprovedDays implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) SumApprovedDays(ctx context.Context, userID string, year int) (leave.Quotas, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT category, COALESCE(SUM(working_days), 0)
		FROM leave_requests
		WHERE user_id = $1
		  AND status = 'approved'
		  AND start_date >= make_date($2, 1, 1)
		  AND start_date < make_date($2 + 1, 1, 1)
		GROUP BY category
	`

	rows, err := q.Query(ctx, query, userID, year)
	if err != nil {
		return leave.Quotas{}, fmt.Errorf("failed to sum approved days: %w", err)
	}
	defer rows.Close()

	var used leave.Quotas
	for rows.Next() {
		var (
			category leave.Category
			days     int
		)
		if err := rows.Scan(&category, &days); err != nil {
			return leave.Quotas{}, fmt.Errorf("failed to scan approved days: %w", err)
		}
		used.Set(category, days)
	}

	return used, rows.Err()
}

// Decide implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Decide(ctx context.Context, id string, target leave.Status, decidedBy string, comment string) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests AS lr
		SET status = $1, admin_comment = $2, decided_by = $3, decided_at = NOW(), updated_at = NOW()
		WHERE lr.id = $4 AND lr.status = 'pending'
		RETURNING ` + leaveRequestColumns

	var lr leave.LeaveRequest
	err := q.QueryRow(ctx, query, target, comment, decidedBy, id).Scan(leaveRequestDest(&lr)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRequest{}, leave.ErrInvalidState
		}
		return leave.LeaveRequest{}, fmt.Errorf("failed to decide leave request: %w", err)
	}

	return lr, nil
}

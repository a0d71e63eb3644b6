package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/cmlabs-hris/leave-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/leave-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/leave-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

// multipartOverhead is the allowance for form fields on top of the document.
const multipartOverhead = 1 << 20

type LeaveHandler interface {
	// Candidate
	MyBalances(w http.ResponseWriter, r *http.Request)
	MyRequests(w http.ResponseWriter, r *http.Request)
	CreateRequest(w http.ResponseWriter, r *http.Request)
	GetMyRequest(w http.ResponseWriter, r *http.Request)
	GetMyDocument(w http.ResponseWriter, r *http.Request)

	// Admin
	ListRequests(w http.ResponseWriter, r *http.Request)
	GetRequestDocument(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	GetEntitlement(w http.ResponseWriter, r *http.Request)
	SetEntitlement(w http.ResponseWriter, r *http.Request)
}

type LeaveHandlerImpl struct {
	requestService     leave.RequestService
	balanceService     leave.BalanceService
	entitlementService leave.EntitlementService
	maxUploadBytes     int64
}

func NewLeaveHandler(requestService leave.RequestService, balanceService leave.BalanceService, entitlementService leave.EntitlementService, maxUploadBytes int64) LeaveHandler {
	return &LeaveHandlerImpl{
		requestService:     requestService,
		balanceService:     balanceService,
		entitlementService: entitlementService,
		maxUploadBytes:     maxUploadBytes,
	}
}

// MyBalances handles GET /me/balances?year=
func (l *LeaveHandlerImpl) MyBalances(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	year, err := parseYear(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	balance, err := l.balanceService.Balances(r.Context(), actor.ID, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, balance)
}

func (l *LeaveHandlerImpl) MyRequests(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	requests, err := l.requestService.ListMine(r.Context(), actor)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, requests, &response.Meta{TotalItems: int64(len(requests))})
}

// CreateRequest handles POST /me/requests. It accepts multipart/form-data with
// an optional "document" file, or a plain JSON body without a document.
func (l *LeaveHandlerImpl) CreateRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req leave.CreateLeaveRequestRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		r.Body = http.MaxBytesReader(w, r.Body, l.maxUploadBytes+multipartOverhead)
		if err := r.ParseMultipartForm(l.maxUploadBytes + multipartOverhead); err != nil {
			slog.Error("Failed to parse multipart form", "error", err)
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				response.HandleError(w, leave.ErrDocumentTooLarge)
				return
			}
			response.BadRequest(w, "Failed to parse form data", nil)
			return
		}
		defer r.MultipartForm.RemoveAll()

		req.Category = r.FormValue("category")
		req.StartDate = r.FormValue("startDate")
		req.EndDate = r.FormValue("endDate")
		req.Reason = r.FormValue("reason")

		file, fileHeader, err := r.FormFile("document")
		if err != nil && !errors.Is(err, http.ErrMissingFile) {
			slog.Error("Failed to get file from form", "error", err)
			response.BadRequest(w, "Invalid file upload", nil)
			return
		}
		if file != nil {
			defer file.Close()
			req.Document = &leave.DocumentUpload{
				Filename:    fileHeader.Filename,
				ContentType: fileHeader.Header.Get("Content-Type"),
				Size:        fileHeader.Size,
				Content:     file,
			}
		}
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateRequest decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	created, err := l.requestService.Create(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave request created successfully", created)
}

func (l *LeaveHandlerImpl) GetMyRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	request, err := l.requestService.GetMine(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, request)
}

func (l *LeaveHandlerImpl) GetMyDocument(w http.ResponseWriter, r *http.Request) {
	l.serveDocument(w, r)
}

func (l *LeaveHandlerImpl) GetRequestDocument(w http.ResponseWriter, r *http.Request) {
	l.serveDocument(w, r)
}

// serveDocument streams a request's document. Ownership is enforced by the
// service: candidates see only their own, admins see all.
func (l *LeaveHandlerImpl) serveDocument(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	doc, err := l.requestService.OpenDocument(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	defer doc.Content.Close()

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": doc.Name}))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, doc.Content); err != nil {
		slog.Error("Failed to stream document", "error", err)
	}
}

// ListRequests handles GET /admin/requests?status=&from=&to=&candidateId=
func (l *LeaveHandlerImpl) ListRequests(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	query := leave.ListRequestsQuery{
		Status:      strings.TrimSpace(q.Get("status")),
		From:        strings.TrimSpace(q.Get("from")),
		To:          strings.TrimSpace(q.Get("to")),
		CandidateID: strings.TrimSpace(q.Get("candidateId")),
	}

	requests, err := l.requestService.List(r.Context(), actor, query)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, requests, &response.Meta{TotalItems: int64(len(requests))})
}

func (l *LeaveHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	l.decide(w, r, l.requestService.Approve, "approved")
}

func (l *LeaveHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	l.decide(w, r, l.requestService.Reject, "rejected")
}

type decideFn func(ctx context.Context, actor user.Actor, id string, comment string) (leave.LeaveRequestResponse, error)

func (l *LeaveHandlerImpl) decide(w http.ResponseWriter, r *http.Request, fn decideFn, verb string) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req leave.DecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		slog.Error("Decision decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	decided, err := fn(r.Context(), actor, chi.URLParam(r, "id"), req.Comment)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, fmt.Sprintf("Leave request %s", verb), decided)
}

// GetEntitlement handles GET /admin/entitlements/{userId}?year=
func (l *LeaveHandlerImpl) GetEntitlement(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	year, err := parseYear(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	ent, err := l.entitlementService.Get(r.Context(), actor, chi.URLParam(r, "userId"), year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, ent)
}

// SetEntitlement handles PUT /admin/entitlements/{userId}
func (l *LeaveHandlerImpl) SetEntitlement(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req leave.SetQuotasRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("SetEntitlement decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	ent, err := l.entitlementService.SetQuotas(r.Context(), actor, chi.URLParam(r, "userId"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Entitlement updated", ent)
}

package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/leave-backend-go/internal/domain/invitation"
	"github.com/cmlabs-hris/leave-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type InvitationHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Resend(w http.ResponseWriter, r *http.Request)
	Revoke(w http.ResponseWriter, r *http.Request)
}

type invitationHandlerImpl struct {
	invitationService invitation.InvitationService
}

func NewInvitationHandler(invitationService invitation.InvitationService) InvitationHandler {
	return &invitationHandlerImpl{
		invitationService: invitationService,
	}
}

func (h *invitationHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	results, err := h.invitationService.List(r.Context(), actor)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, results, &response.Meta{TotalItems: int64(len(results))})
}

func (h *invitationHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req invitation.CreateInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateInvite decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.invitationService.Create(r.Context(), actor, req)
	if err != nil {
		slog.Error("CreateInvite service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Invite sent", result)
}

func (h *invitationHandlerImpl) Resend(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	if err := h.invitationService.Resend(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Invite resent", map[string]bool{"ok": true})
}

func (h *invitationHandlerImpl) Revoke(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	if err := h.invitationService.Revoke(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Invite revoked", map[string]bool{"ok": true})
}

package handler

import (
	"net/http"

	"github.com/bhanu553/mindful-gen-z-chat-sub001/internal/api/middleware"
	"github.com/bhanu553/mindful-gen-z-chat-sub001/internal/api/response"
	"github.com/bhanu553/mindful-gen-z-chat-sub001/internal/service"
)

// UsageHandler handles quota, renewal and credit endpoints
type UsageHandler struct {
	quotaService   *service.QuotaService
	renewalService *service.RenewalService
}

// NewUsageHandler creates a new usage handler
func NewUsageHandler(quotaService *service.QuotaService, renewalService *service.RenewalService) *UsageHandler {
	return &UsageHandler{
		quotaService:   quotaService,
		renewalService: renewalService,
	}
}

// DailyUsage returns the user's consumption for the current UTC day
func (h *UsageHandler) DailyUsage(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	usage, err := h.quotaService.GetDailyUsage(r.Context(), userID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, usage)
}

// RenewalStatus reports whether the user may start a new session
func (h *UsageHandler) RenewalStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	status, err := h.renewalService.GetStatus(r.Context(), userID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, status)
}

// Renew starts a new session, redeeming a credit for free-tier users
func (h *UsageHandler) Renew(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	result, err := h.renewalService.Renew(r.Context(), userID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, result)
}

// GrantCredit issues one session credit to the user
func (h *UsageHandler) GrantCredit(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	credit, err := h.renewalService.GrantCredit(r.Context(), userID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, credit)
}

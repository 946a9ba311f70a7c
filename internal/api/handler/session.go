package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/bhanu553/mindful-gen-z-chat-sub001/internal/api/middleware"
	"github.com/bhanu553/mindful-gen-z-chat-sub001/internal/api/response"
	"github.com/bhanu553/mindful-gen-z-chat-sub001/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// SessionHandler handles session lifecycle endpoints
type SessionHandler struct {
	chatService *service.ChatService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(chatService *service.ChatService) *SessionHandler {
	return &SessionHandler{chatService: chatService}
}

// List returns the user's sessions
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	limit := 20
	offset := 0

	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 {
			limit = v
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if v, err := strconv.Atoi(o); err == nil && v >= 0 {
			offset = v
		}
	}

	sessions, err := h.chatService.ListSessions(r.Context(), userID, limit, offset)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, sessions)
}

// Create creates a new session
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var input struct {
		Title string `json:"title" validate:"max=200"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			response.BadRequest(w, "invalid request body")
			return
		}
	}
	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	session, err := h.chatService.CreateSession(r.Context(), userID, input.Title)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, session)
}

// Get returns a single session
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := sessionScope(w, r)
	if !ok {
		return
	}

	session, err := h.chatService.GetSession(r.Context(), userID, sessionID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, session)
}

// History returns a session's messages in chronological order
func (h *SessionHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := sessionScope(w, r)
	if !ok {
		return
	}

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 {
			limit = v
		}
	}

	messages, err := h.chatService.GetHistory(r.Context(), userID, sessionID, limit)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, messages)
}

// Transitions returns a session's mode transitions, oldest first
func (h *SessionHandler) Transitions(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := sessionScope(w, r)
	if !ok {
		return
	}

	transitions, err := h.chatService.GetTransitions(r.Context(), userID, sessionID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, transitions)
}

// Complete marks a session finished
func (h *SessionHandler) Complete(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := sessionScope(w, r)
	if !ok {
		return
	}

	session, err := h.chatService.CompleteSession(r.Context(), userID, sessionID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, session)
}

// Delete removes a session
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := sessionScope(w, r)
	if !ok {
		return
	}

	if err := h.chatService.DeleteSession(r.Context(), userID, sessionID); err != nil {
		response.FromError(w, err)
		return
	}

	response.NoContent(w)
}

// sessionScope pulls the authenticated user and the sessionID URL parameter,
// writing the error response itself when either is missing.
func sessionScope(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return uuid.Nil, uuid.Nil, false
	}

	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		response.BadRequest(w, "invalid session ID")
		return uuid.Nil, uuid.Nil, false
	}

	return userID, sessionID, true
}

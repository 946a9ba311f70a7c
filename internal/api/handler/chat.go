package handler

import (
	"encoding/json"
	"net/http"

	"github.com/bhanu553/mindful-gen-z-chat-sub001/internal/api/response"
	"github.com/bhanu553/mindful-gen-z-chat-sub001/internal/domain"
	"github.com/bhanu553/mindful-gen-z-chat-sub001/internal/service"
)

// ChatHandler handles the message turn endpoint
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// SendMessage processes one user message in a session
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := sessionScope(w, r)
	if !ok {
		return
	}

	var input domain.TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	result, err := h.chatService.SendTurn(r.Context(), userID, sessionID, input)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, result)
}

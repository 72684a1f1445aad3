package coach

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/luoxingyu/mockview/internal/model/chat"
	"github.com/luoxingyu/mockview/internal/model/interview"
	"github.com/luoxingyu/mockview/pkg/utils"
)

// Handler 教练服务的HTTP处理器
type Handler struct {
	responder Responder
	profiles  interview.Store
}

// NewHandler 创建教练处理器
func NewHandler(responder Responder, profiles interview.Store) *Handler {
	return &Handler{
		responder: responder,
		profiles:  profiles,
	}
}

// RegisterRoutes 注册教练相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Get("/interviewers", h.handleListInterviewers)
}

// handleChat 处理一轮对话
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Message             string         `json:"message"`
		ConversationHistory []chat.Message `json:"conversationHistory"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if payload.Message == "" {
		utils.RespondError(w, http.StatusBadRequest, "message is required")
		return
	}

	reply, err := h.responder.Respond(r.Context(), payload.Message, payload.ConversationHistory)
	if err != nil {
		utils.RespondError(w, http.StatusBadGateway, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": reply})
}

// handleListInterviewers 列出可用的面试官档案
func (h *Handler) handleListInterviewers(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.profiles.List())
}

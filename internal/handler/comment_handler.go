package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"fieldsync-server/internal/domain"
	"fieldsync-server/internal/middleware"
	"fieldsync-server/internal/service"
	"fieldsync-server/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type CommentHandler struct {
	service  *service.CommentService
	validate *validator.Validate
}

func NewCommentHandler(service *service.CommentService) *CommentHandler {
	return &CommentHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	userID := middleware.GetUserID(r)

	comment, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFound(w, "Post not found")
			return
		}
		response.InternalError(w, "Failed to create comment")
		return
	}

	response.JSON(w, http.StatusCreated, comment)
}

func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	comments, err := h.service.List(r.Context())
	if err != nil {
		response.InternalError(w, "Failed to list comments")
		return
	}

	response.JSON(w, http.StatusOK, comments)
}

func (h *CommentHandler) Mine(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	comments, err := h.service.ListByUser(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to list comments")
		return
	}

	response.JSON(w, http.StatusOK, comments)
}

func (h *CommentHandler) Get(w http.ResponseWriter, r *http.Request) {
	commentID := mux.Vars(r)["id"]
	if commentID == "" {
		response.BadRequest(w, "Comment ID is required")
		return
	}

	comment, err := h.service.Get(r.Context(), commentID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFound(w, "Comment not found")
			return
		}
		response.InternalError(w, "Failed to get comment")
		return
	}

	response.JSON(w, http.StatusOK, comment)
}

func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	commentID := mux.Vars(r)["id"]
	if commentID == "" {
		response.BadRequest(w, "Comment ID is required")
		return
	}

	var req domain.UpdateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	userID := middleware.GetUserID(r)

	comment, err := h.service.Update(r.Context(), userID, commentID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			response.NotFound(w, "Comment not found")
		case errors.Is(err, service.ErrNotOwner):
			response.Forbidden(w, "Comment does not belong to user")
		default:
			response.InternalError(w, "Failed to update comment")
		}
		return
	}

	response.JSON(w, http.StatusOK, comment)
}

func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	commentID := mux.Vars(r)["id"]
	if commentID == "" {
		response.BadRequest(w, "Comment ID is required")
		return
	}

	userID := middleware.GetUserID(r)

	if err := h.service.Delete(r.Context(), userID, commentID); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			response.NotFound(w, "Comment not found")
		case errors.Is(err, service.ErrNotOwner):
			response.Forbidden(w, "Comment does not belong to user")
		default:
			response.InternalError(w, "Failed to delete comment")
		}
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Comment deleted successfully"})
}

package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"fieldsync-server/internal/domain"
	"fieldsync-server/internal/middleware"
	"fieldsync-server/internal/service"
	"fieldsync-server/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type PostHandler struct {
	service  *service.PostService
	validate *validator.Validate
}

func NewPostHandler(service *service.PostService) *PostHandler {
	return &PostHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	userID := middleware.GetUserID(r)

	post, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		response.InternalError(w, "Failed to create post")
		return
	}

	response.JSON(w, http.StatusCreated, post)
}

func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	q := &domain.PostQuery{
		Search:    r.URL.Query().Get("search"),
		SortBy:    r.URL.Query().Get("sortBy"),
		SortOrder: r.URL.Query().Get("sortOrder"),
	}
	if page, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		q.Page = page
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		q.Limit = limit
	}

	posts, err := h.service.List(r.Context(), q)
	if err != nil {
		response.InternalError(w, "Failed to list posts")
		return
	}

	response.JSON(w, http.StatusOK, posts)
}

func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	postID := mux.Vars(r)["id"]
	if postID == "" {
		response.BadRequest(w, "Post ID is required")
		return
	}

	post, err := h.service.Get(r.Context(), postID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFound(w, "Post not found")
			return
		}
		response.InternalError(w, "Failed to get post")
		return
	}

	response.JSON(w, http.StatusOK, post)
}

func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	postID := mux.Vars(r)["id"]
	if postID == "" {
		response.BadRequest(w, "Post ID is required")
		return
	}

	var req domain.UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	userID := middleware.GetUserID(r)

	post, err := h.service.Update(r.Context(), userID, postID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			response.NotFound(w, "Post not found")
		case errors.Is(err, service.ErrNotOwner):
			response.Forbidden(w, "Post does not belong to user")
		default:
			response.InternalError(w, "Failed to update post")
		}
		return
	}

	response.JSON(w, http.StatusOK, post)
}

func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	postID := mux.Vars(r)["id"]
	if postID == "" {
		response.BadRequest(w, "Post ID is required")
		return
	}

	userID := middleware.GetUserID(r)

	if err := h.service.Delete(r.Context(), userID, postID); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			response.NotFound(w, "Post not found")
		case errors.Is(err, service.ErrNotOwner):
			response.Forbidden(w, "Post does not belong to user")
		default:
			response.InternalError(w, "Failed to delete post")
		}
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Post deleted successfully"})
}

func (h *PostHandler) Comments(w http.ResponseWriter, r *http.Request) {
	postID := mux.Vars(r)["id"]
	if postID == "" {
		response.BadRequest(w, "Post ID is required")
		return
	}

	comments, err := h.service.Comments(r.Context(), postID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFound(w, "Post not found")
			return
		}
		response.InternalError(w, "Failed to list comments")
		return
	}

	response.JSON(w, http.StatusOK, comments)
}

func (h *PostHandler) Pinned(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.Pinned(r.Context())
	if err != nil {
		response.InternalError(w, "Failed to list pinned posts")
		return
	}

	response.JSON(w, http.StatusOK, posts)
}

func (h *PostHandler) Search(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	if term == "" {
		response.BadRequest(w, "Search term is required")
		return
	}

	posts, err := h.service.Search(r.Context(), term)
	if err != nil {
		response.InternalError(w, "Failed to search posts")
		return
	}

	response.JSON(w, http.StatusOK, posts)
}

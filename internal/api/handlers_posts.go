// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/launchpad/internal/apperr"
	"github.com/tomtom215/launchpad/internal/authz"
	"github.com/tomtom215/launchpad/internal/logging"
	"github.com/tomtom215/launchpad/internal/models"
	ws "github.com/tomtom215/launchpad/internal/websocket"
)

// ListPosts godoc
// @Summary      List posts, newest first
// @Description  Drafts are listed for admins only; other callers see published posts.
// @Tags         posts
// @Produce      json
// @Param        status  query     string  false  "draft or published"
// @Param        limit   query     int     false  "Page size"
// @Param        offset  query     int     false  "Page offset"
// @Success      200     {object}  APIResponse{data=[]models.Post}
// @Router       /posts [get]
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	status := r.URL.Query().Get("status")
	if status != "" && status != models.PostDraft && status != models.PostPublished {
		rw.AppError(apperr.Validation("status must be draft or published"))
		return
	}
	limit, err := queryInt(r, "limit", defaultPageSize, maxPageSize)
	if err != nil {
		rw.AppError(err)
		return
	}
	offset, err := queryInt(r, "offset", 0, 0)
	if err != nil {
		rw.AppError(err)
		return
	}
	if !canSeeDrafts(r) {
		if status == models.PostDraft {
			rw.SuccessWithPagination([]*models.Post{}, &PaginationMeta{Offset: offset, Limit: limit})
			return
		}
		status = models.PostPublished
	}

	posts, err := h.store.Posts().List(r.Context(), models.PostListOptions{Status: status, Limit: limit, Offset: offset})
	if err != nil {
		rw.AppError(err)
		return
	}
	rw.SuccessWithPagination(posts, &PaginationMeta{
		Count:   len(posts),
		Offset:  offset,
		Limit:   limit,
		HasMore: limit > 0 && len(posts) == limit,
	})
}

// GetPost godoc
// @Summary      Get a post
// @Tags         posts
// @Produce      json
// @Param        id   path      string  true  "Post ID"
// @Success      200  {object}  APIResponse{data=models.Post}
// @Failure      404  {object}  APIResponse
// @Router       /posts/{id} [get]
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	post, err := h.store.Posts().FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		rw.AppError(err)
		return
	}
	if post.Status != models.PostPublished && !canSeeDrafts(r) {
		rw.AppError(apperr.ErrNotFound)
		return
	}
	rw.Success(post)
}

// canSeeDrafts reports whether the caller holds the admin role.
func canSeeDrafts(r *http.Request) bool {
	return authz.RoleFromRequest(r) == authz.RoleAdmin
}

// CreatePost godoc
// @Summary      Create a post
// @Description  An inline base64 image is stored through the upload helper;
// @Description  a bad image falls back to the placeholder, never an error.
// @Tags         posts
// @Accept       json
// @Produce      json
// @Param        body  body      CreatePostRequest  true  "Post"
// @Success      201   {object}  APIResponse{data=models.Post}
// @Failure      400   {object}  APIResponse
// @Router       /posts [post]
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	var req CreatePostRequest
	if err := decodeAndValidate(r, &req); err != nil {
		rw.AppError(err)
		return
	}

	post := &models.Post{
		Title:         strings.TrimSpace(req.Title),
		Content:       req.Content,
		Excerpt:       req.Excerpt,
		FeaturedImage: req.FeaturedImage,
		Status:        req.Status,
	}
	if post.Status == "" {
		post.Status = models.PostDraft
	}
	if req.Image != "" {
		post.FeaturedImage = h.saveImage(r.Context(), req.Image, post.Title)
	}

	if err := h.store.Posts().Create(r.Context(), post); err != nil {
		rw.AppError(err)
		return
	}

	logging.Ctx(r.Context()).Info().Str("post_id", post.ID).Str("status", post.Status).Msg("Post created")
	h.broadcast(func(hub *ws.Hub) { hub.BroadcastPostCreated(post) })
	rw.Created(post)
}

// UpdatePost godoc
// @Summary      Partially update a post
// @Tags         posts
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "Post ID"
// @Param        body  body      UpdatePostRequest  true  "Fields to change"
// @Success      200   {object}  APIResponse{data=models.Post}
// @Failure      400   {object}  APIResponse
// @Failure      404   {object}  APIResponse
// @Router       /posts/{id} [patch]
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	var req UpdatePostRequest
	if err := decodeAndValidate(r, &req); err != nil {
		rw.AppError(err)
		return
	}

	upd := models.PostUpdate{
		Title:         req.Title,
		Content:       req.Content,
		Excerpt:       req.Excerpt,
		FeaturedImage: req.FeaturedImage,
		Status:        req.Status,
	}
	if req.Title != nil {
		t := strings.TrimSpace(*req.Title)
		upd.Title = &t
	}
	if req.Image != nil && *req.Image != "" {
		name := chi.URLParam(r, "id")
		if req.Title != nil {
			name = *upd.Title
		}
		path := h.saveImage(r.Context(), *req.Image, name)
		upd.FeaturedImage = &path
	}

	post, err := h.store.Posts().Update(r.Context(), chi.URLParam(r, "id"), upd)
	if err != nil {
		rw.AppError(err)
		return
	}
	rw.Success(post)
}

// saveImage stores data under a name derived from the title and the current
// time, so re-uploads for the same title do not overwrite each other.
func (h *Handler) saveImage(ctx context.Context, data, title string) string {
	name := title
	if len(name) > 80 {
		name = name[:80]
	}
	return h.uploader.SaveBase64(ctx, data, name+"-"+strconv.FormatInt(h.now().Unix(), 10))
}

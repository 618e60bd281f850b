package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/BorisDmv/posts-api/internal/models"
	"github.com/BorisDmv/posts-api/internal/posts"
)

const (
	messageInvalidBody   = "invalid body"
	messageInternalError = "internal error"
	messagePostRemoved   = "post removed successfully"

	maxBodyBytes = 1 << 20
)

// PostService is the set of post operations the HTTP layer drives.
type PostService interface {
	ListPosts(ctx context.Context) ([]models.Post, error)
	SearchPosts(ctx context.Context, rawQuery string) ([]models.Post, error)
	GetPost(ctx context.Context, id string) (*models.Post, error)
	CreatePost(ctx context.Context, req posts.PostRequest) (*models.Post, error)
	UpdatePost(ctx context.Context, id string, req posts.PostRequest) (*models.Post, error)
	DeletePost(ctx context.Context, id string) (*models.Post, error)
}

type PostsHandler struct {
	service PostService
}

type DeleteResponse struct {
	Message string       `json:"message"`
	Post    *models.Post `json:"post"`
}

type errorResponse struct {
	Message string `json:"message"`
}

func NewPostsHandler(service PostService) *PostsHandler {
	return &PostsHandler{service: service}
}

// statusByKind is the default outcome to status mapping.
var statusByKind = map[posts.Kind]int{
	posts.KindMissingFields:    http.StatusBadRequest,
	posts.KindMissingQuery:     http.StatusBadRequest,
	posts.KindInvalidID:        http.StatusBadRequest,
	posts.KindValidationFailed: http.StatusBadRequest,
	posts.KindNotFound:         http.StatusNotFound,
	posts.KindStoreError:       http.StatusInternalServerError,
	posts.KindStoreUnavailable: http.StatusInternalServerError,
	posts.KindInternal:         http.StatusInternalServerError,
}

// Update and delete report a failed write as a bad request.
var writeFailureStatus = map[posts.Kind]int{
	posts.KindStoreError: http.StatusBadRequest,
}

func (h *PostsHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListPosts(r.Context())
	if err != nil {
		respondOutcomeError(w, err, nil)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (h *PostsHandler) Search(w http.ResponseWriter, r *http.Request) {
	found, err := h.service.SearchPosts(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		respondOutcomeError(w, err, nil)
		return
	}
	respondJSON(w, http.StatusOK, found)
}

func (h *PostsHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	post, err := h.service.GetPost(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondOutcomeError(w, err, nil)
		return
	}
	respondJSON(w, http.StatusOK, post)
}

func (h *PostsHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := decodePostRequest(w, r)
	if !ok {
		return
	}
	created, err := h.service.CreatePost(r.Context(), req)
	if err != nil {
		respondOutcomeError(w, err, nil)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (h *PostsHandler) Update(w http.ResponseWriter, r *http.Request) {
	req, ok := decodePostRequest(w, r)
	if !ok {
		return
	}
	updated, err := h.service.UpdatePost(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respondOutcomeError(w, err, writeFailureStatus)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *PostsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.service.DeletePost(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondOutcomeError(w, err, writeFailureStatus)
		return
	}
	respondJSON(w, http.StatusOK, DeleteResponse{Message: messagePostRemoved, Post: deleted})
}

// decodePostRequest parses the body. A missing body decodes as an empty
// request so the validator reports which fields are absent.
func decodePostRequest(w http.ResponseWriter, r *http.Request) (posts.PostRequest, bool) {
	var req posts.PostRequest
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req)
	if err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, messageInvalidBody)
		return posts.PostRequest{}, false
	}
	return req, true
}

func respondOutcomeError(w http.ResponseWriter, err error, overrides map[posts.Kind]int) {
	var outcome *posts.Error
	if !errors.As(err, &outcome) || outcome.Kind == posts.KindInternal {
		respondError(w, http.StatusInternalServerError, messageInternalError)
		return
	}

	status, ok := overrides[outcome.Kind]
	if !ok {
		status = statusByKind[outcome.Kind]
	}
	respondError(w, status, outcome.Message)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Message: message})
}

package handler

import (
	"net/http"

	"github.com/codey22/notespace/internal/logging"
	"github.com/codey22/notespace/internal/metrics"
	"github.com/codey22/notespace/internal/note"
)

type NoteHandler struct {
	Svc     *note.Service
	Metrics *metrics.Metrics
	Log     logging.Logger
}

type noteReq struct {
	Title     *string `json:"title"`
	Content   *string `json:"content"`
	LogoText  *string `json:"logoText"`
	Slug      *string `json:"slug"`
	CustomURL *string `json:"customUrl"`
	Pinned    *bool   `json:"pinned"`
}

// slug accepts the legacy customUrl name as well.
func (req noteReq) slug() *string {
	if req.Slug != nil {
		return req.Slug
	}
	return req.CustomURL
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	notes, err := h.Svc.List(r.Context(), ownerID(r), note.ListOptions{
		Tag: r.URL.Query().Get("tag"),
	})
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeData(w, http.StatusOK, notes)
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req noteReq
	if err := decode(r, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	in := note.CreateInput{
		LogoText: req.LogoText,
		Slug:     req.slug(),
	}
	if req.Title != nil {
		in.Title = *req.Title
	}
	if req.Content != nil {
		in.Content = *req.Content
	}
	if req.Pinned != nil {
		in.Pinned = *req.Pinned
	}

	n, err := h.Svc.Create(r.Context(), ownerID(r), in)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	if h.Metrics != nil {
		h.Metrics.NoteCreated()
	}
	writeData(w, http.StatusCreated, n)
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	n, err := h.Svc.GetBySlug(r.Context(), ownerID(r), SlugParam(r))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeData(w, http.StatusOK, n)
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req noteReq
	if err := decode(r, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	n, err := h.Svc.Update(r.Context(), ownerID(r), SlugParam(r), note.UpdateInput{
		Title:    req.Title,
		Content:  req.Content,
		LogoText: req.LogoText,
		Slug:     req.slug(),
		Pinned:   req.Pinned,
	})
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeData(w, http.StatusOK, n)
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Delete(r.Context(), ownerID(r), SlugParam(r)); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeData(w, http.StatusOK, struct{}{})
}

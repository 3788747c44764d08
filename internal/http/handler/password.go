package handler

import (
	"net/http"
)

type passwordReq struct {
	Password string `json:"password"`
}

type protectionDTO struct {
	Protected bool `json:"protected"`
}

func (h *NoteHandler) SetPassword(w http.ResponseWriter, r *http.Request) {
	var req passwordReq
	if err := decode(r, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	n, err := h.Svc.SetPassword(r.Context(), ownerID(r), SlugParam(r), req.Password)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeData(w, http.StatusOK, protectionDTO{Protected: n.Protected})
}

func (h *NoteHandler) ClearPassword(w http.ResponseWriter, r *http.Request) {
	n, err := h.Svc.ClearPassword(r.Context(), ownerID(r), SlugParam(r))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeData(w, http.StatusOK, protectionDTO{Protected: n.Protected})
}

func (h *NoteHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req passwordReq
	if err := decode(r, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	if err := h.Svc.Verify(r.Context(), ownerID(r), SlugParam(r), req.Password); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true})
}

package handler

import (
	"net/http"

	"github.com/codey22/notespace/internal/logging"
	"github.com/codey22/notespace/internal/prefs"
)

type PrefsHandler struct {
	Svc *prefs.Service
	Log logging.Logger
}

type prefsReq struct {
	Theme    *string `json:"theme"`
	FontSize *string `json:"fontSize"`
}

func (h *PrefsHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.Svc.Get(r.Context(), ownerID(r))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeData(w, http.StatusOK, p)
}

func (h *PrefsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req prefsReq
	if err := decode(r, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	p, err := h.Svc.Update(r.Context(), ownerID(r), prefs.UpdateInput{
		Theme:    req.Theme,
		FontSize: req.FontSize,
	})
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeData(w, http.StatusOK, p)
}

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pysugar/codex-accounts/internal/app"
	"github.com/pysugar/codex-accounts/internal/version"
)

type handlers struct {
	svc *app.Service
}

type storagePathResponse struct {
	Path string `json:"path"`
}

type callbackRequest struct {
	CallbackURL string `json:"callbackUrl"`
}

type ideRequest struct {
	IDE *string `json:"ide"`
}

type saveProxyRequest struct {
	ID    *string `json:"id"`
	Value string  `json:"value"`
}

type importRequest struct {
	Path string `json:"path"`
}

type activeProxyRequest struct {
	ID *string `json:"id"`
}

// GET /api/state
func (h *handlers) state(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.State()
	respond(w, r, data, err)
}

// GET /api/storage-path
func (h *handlers) storagePath(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, storagePathResponse{Path: h.svc.StoragePath()})
}

// GET /api/version
func (h *handlers) version(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version":    version.Version,
		"commit":     version.Commit,
		"build_time": version.BuildTime,
	})
}

func (h *handlers) startFlow(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.StartFlow()
	respond(w, r, resp, err)
}

func (h *handlers) flowStatus(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.FlowStatus(chi.URLParam(r, "id"))
	respond(w, r, resp, err)
}

func (h *handlers) completeWithCallback(w http.ResponseWriter, r *http.Request) {
	var req callbackRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	resp, err := h.svc.CompleteWithCallback(chi.URLParam(r, "id"), req.CallbackURL)
	respond(w, r, resp, err)
}

func (h *handlers) removeAccount(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.RemoveAccount(chi.URLParam(r, "id"))
	respond(w, r, data, err)
}

func (h *handlers) activateAccount(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.SetActiveAccount(chi.URLParam(r, "id"))
	respond(w, r, data, err)
}

func (h *handlers) switchAccount(w http.ResponseWriter, r *http.Request) {
	var req ideRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	resp, err := h.svc.SwitchAccountForIDE(chi.URLParam(r, "id"), req.IDE)
	respond(w, r, resp, err)
}

func (h *handlers) refreshAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.svc.RefreshAccountQuota(chi.URLParam(r, "id"))
	respond(w, r, account, err)
}

func (h *handlers) refreshAll(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.RefreshAllQuotas()
	respond(w, r, data, err)
}

func (h *handlers) setPreferredIDE(w http.ResponseWriter, r *http.Request) {
	var req ideRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	data, err := h.svc.SetPreferredIDE(req.IDE)
	respond(w, r, data, err)
}

func (h *handlers) saveProxy(w http.ResponseWriter, r *http.Request) {
	var req saveProxyRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	data, err := h.svc.SaveProxy(req.ID, req.Value)
	respond(w, r, data, err)
}

func (h *handlers) setActiveProxy(w http.ResponseWriter, r *http.Request) {
	var req activeProxyRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	data, err := h.svc.SetActiveProxy(req.ID)
	respond(w, r, data, err)
}

func (h *handlers) deleteProxy(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.DeleteProxy(chi.URLParam(r, "id"))
	respond(w, r, data, err)
}

func (h *handlers) testProxy(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.TestProxy(chi.URLParam(r, "id"))
	respond(w, r, result, err)
}

func (h *handlers) importAccounts(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.svc.ImportAuthFile(req.Path)
	respond(w, r, result, err)
}

// GET /api/discovery/scan
func (h *handlers) discoveryScan(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.DiscoverCredentials())
}

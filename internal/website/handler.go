package website

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/website-management/internal/auth"
	"github.com/frahmantamala/website-management/internal/transport"
	"github.com/frahmantamala/website-management/internal/user"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	ListWebsites(actor *user.User) []*Website
	GetWebsite(actor *user.User, id string) (*Website, error)
	CreateWebsite(ctx context.Context, actor *user.User, dto CreateWebsiteDTO) (*Website, error)
	ApproveWebsite(ctx context.Context, actor *user.User, id string) error
	RejectWebsite(ctx context.Context, actor *user.User, id, reason string) error
	DeleteWebsite(ctx context.Context, actor *user.User, id string) error
	AddRecord(actor *user.User, websiteID string, dto RecordDTO) (*ManagementRecord, error)
	UpdateRecord(actor *user.User, websiteID, recordID string, dto RecordDTO) (*ManagementRecord, error)
	DeleteRecord(actor *user.User, websiteID, recordID string) error
	ClearRecords(actor *user.User, websiteID string) error
	Stale() bool
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(logger *slog.Logger, svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger),
		Service:     svc,
	}
}

type listResponse struct {
	Websites []*Website `json:"websites"`
	Stale    bool       `json:"stale"`
}

// ListWebsites returns the caller's submissions, or all submissions
// for an admin. The stale flag warns that the last refresh failed and
// the data may lag the database.
func (h *Handler) ListWebsites(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	items := h.Service.ListWebsites(actor)
	h.WriteJSON(w, http.StatusOK, listResponse{Websites: items, Stale: h.Service.Stale()})
}

func (h *Handler) GetWebsite(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id := chi.URLParam(r, "websiteID")
	item, err := h.Service.GetWebsite(actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) CreateWebsite(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var dto CreateWebsiteDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("cannot decode website payload", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	item, err := h.Service.CreateWebsite(r.Context(), actor, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, item)
}

func (h *Handler) ApproveWebsite(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id := chi.URLParam(r, "websiteID")
	if err := h.Service.ApproveWebsite(r.Context(), actor, id); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": StatusApproved})
}

func (h *Handler) RejectWebsite(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var dto RejectWebsiteDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("cannot decode reject payload", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	id := chi.URLParam(r, "websiteID")
	if err := h.Service.RejectWebsite(r.Context(), actor, id, dto.Reason); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": StatusRejected})
}

func (h *Handler) DeleteWebsite(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id := chi.URLParam(r, "websiteID")
	if err := h.Service.DeleteWebsite(r.Context(), actor, id); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AddRecord(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var dto RecordDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("cannot decode record payload", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	websiteID := chi.URLParam(r, "websiteID")
	record, err := h.Service.AddRecord(actor, websiteID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, record)
}

func (h *Handler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var dto RecordDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("cannot decode record payload", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	websiteID := chi.URLParam(r, "websiteID")
	recordID := chi.URLParam(r, "recordID")
	record, err := h.Service.UpdateRecord(actor, websiteID, recordID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	websiteID := chi.URLParam(r, "websiteID")
	recordID := chi.URLParam(r, "recordID")
	if err := h.Service.DeleteRecord(actor, websiteID, recordID); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ClearRecords(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	websiteID := chi.URLParam(r, "websiteID")
	if err := h.Service.ClearRecords(actor, websiteID); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ExportRecords streams the website's management records as an xlsx
// workbook.
func (h *Handler) ExportRecords(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id := chi.URLParam(r, "websiteID")
	item, err := h.Service.GetWebsite(actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	book, err := BuildRecordWorkbook(item)
	if err != nil {
		h.Logger.Error("cannot build export workbook", "error", err, "website_id", id)
		h.WriteError(w, http.StatusInternalServerError, "export failed")
		return
	}
	defer book.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+ExportFilename(item)+`"`)
	if err := book.Write(w); err != nil {
		h.Logger.Error("cannot stream export workbook", "error", err, "website_id", id)
	}
}

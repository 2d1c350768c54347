package handlers

import (
	"net/http"
	"strings"

	"applygate/internal/app"
	"applygate/internal/common"
	"applygate/internal/domain/application"
	"applygate/internal/http/response"
)

type AdminHandler struct {
	applications *app.ApplicationService
	refunds      *app.RefundService
}

func NewAdminHandler(applications *app.ApplicationService, refunds *app.RefundService) *AdminHandler {
	return &AdminHandler{applications: applications, refunds: refunds}
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *AdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	applicationID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	if req.Status == "" {
		response.Error(w, common.NewError(common.CodeValidation, "status is required", nil))
		return
	}
	updated, err := h.applications.AdminSetStatus(r.Context(), applicationID, application.Status(req.Status))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

type refundRequest struct {
	ApplicationID string `json:"application_id"`
	Reason        string `json:"reason"`
}

func (h *AdminHandler) Refund(w http.ResponseWriter, r *http.Request) {
	var req refundRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	applicationID, err := common.ParseUUID(req.ApplicationID)
	if err != nil {
		response.Error(w, common.NewValidationError("invalid request", map[string]string{"application_id": "invalid uuid"}))
		return
	}
	refunded, err := h.refunds.Refund(r.Context(), applicationID, strings.TrimSpace(req.Reason))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, refunded)
}

type transferRequest struct {
	Amount        float64 `json:"amount"`
	Phone         string  `json:"phone"`
	Reason        string  `json:"reason"`
	ApplicationID string  `json:"application_id,omitempty"`
}

func (h *AdminHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	transfer := app.TransferRequest{
		Amount: req.Amount,
		Phone:  req.Phone,
		Reason: strings.TrimSpace(req.Reason),
	}
	if strings.TrimSpace(req.ApplicationID) != "" {
		applicationID, err := common.ParseUUID(req.ApplicationID)
		if err != nil {
			response.Error(w, common.NewValidationError("invalid request", map[string]string{"application_id": "invalid uuid"}))
			return
		}
		transfer.ApplicationID = &applicationID
	}
	result, err := h.refunds.Transfer(r.Context(), transfer)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, result)
}

package handlers

import (
	"net/http"
	"strings"
	"time"

	"applygate/internal/app"
	"applygate/internal/common"
	"applygate/internal/http/middleware"
	"applygate/internal/http/response"
)

type PaymentHandler struct {
	payments *app.PaymentService
	limiter  middleware.Limiter
}

func NewPaymentHandler(payments *app.PaymentService, limiter middleware.Limiter) *PaymentHandler {
	return &PaymentHandler{payments: payments, limiter: limiter}
}

type verifyResponse struct {
	Verified    bool   `json:"verified"`
	Status      string `json:"status"`
	Application any    `json:"application,omitempty"`
}

// Verify is the synchronous pull channel, hit when the payer's browser comes
// back from the gateway. "Not paid yet" answers 200 with verified=false.
func (h *PaymentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	reference := strings.TrimSpace(r.URL.Query().Get("reference"))
	if reference == "" {
		response.Error(w, common.NewValidationError("reference is required", map[string]string{"reference": "reference is required"}))
		return
	}
	if h.limiter != nil {
		if !h.limiter.Allow("verify:"+reference, 10, time.Minute) {
			response.Error(w, common.NewError(common.CodeRateLimited, "verify rate limit exceeded", nil))
			return
		}
	}
	appRecord, verified, err := h.payments.VerifyAndConfirm(r.Context(), reference)
	if err != nil {
		response.Error(w, err)
		return
	}
	body := verifyResponse{Verified: verified, Application: appRecord}
	if verified {
		body.Status = "paid"
	} else {
		body.Status = "pending"
	}
	response.JSON(w, http.StatusOK, body)
}

type chargeMobileRequest struct {
	ApplicationID string `json:"application_id"`
	Phone         string `json:"phone"`
}

func (h *PaymentHandler) ChargeMobileMoney(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	var req chargeMobileRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	applicationID, err := common.ParseUUID(req.ApplicationID)
	if err != nil {
		response.Error(w, common.NewValidationError("invalid request", map[string]string{"application_id": "invalid uuid"}))
		return
	}
	result, err := h.payments.ChargeMobileMoney(r.Context(), userID, applicationID, req.Phone)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusAccepted, result)
}

type chargeSavedRequest struct {
	ApplicationID string `json:"application_id"`
}

func (h *PaymentHandler) ChargeSavedAuthorization(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	var req chargeSavedRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	applicationID, err := common.ParseUUID(req.ApplicationID)
	if err != nil {
		response.Error(w, common.NewValidationError("invalid request", map[string]string{"application_id": "invalid uuid"}))
		return
	}
	appRecord, err := h.payments.ChargeSavedAuthorization(r.Context(), userID, applicationID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, appRecord)
}

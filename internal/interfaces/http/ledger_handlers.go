package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/voucher-flow/internal/application/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// GetLedger handles GET /api/ledger/:pin
func (h *Handlers) GetLedger(c *gin.Context) {
	pin, ok := h.ledgerPIN(c)
	if !ok {
		return
	}

	entries, err := h.services.Ledger.Ledger(c.Request.Context(), pin)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var balance float64
	if len(entries) > 0 {
		balance = entries[len(entries)-1].Balance
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: LedgerResponse{PIN: pin, Balance: balance, Entries: entries}})
}

// ExportLedger handles GET /api/ledger/:pin/export
func (h *Handlers) ExportLedger(c *gin.Context) {
	pin, ok := h.ledgerPIN(c)
	if !ok {
		return
	}

	data, err := h.services.Ledger.ExportStatement(c.Request.Context(), pin)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="ledger-%s.xlsx"`, pin))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// RecordPayment handles POST /api/ledger/:pin/payments
func (h *Handlers) RecordPayment(c *gin.Context) {
	var req PaymentRequest
	if !h.bind(c, &req) {
		return
	}

	entry, err := h.services.Ledger.RecordAdHocPayment(c.Request.Context(), c.Param("pin"), req.Amount, req.Branch, req.Description)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: entry})
}

// ListCodes handles GET /api/notifications/codes
func (h *Handlers) ListCodes(c *gin.Context) {
	user, err := service.CurrentUser(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	codes, err := h.services.Notifications.List(c.Request.Context(), user.PIN)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: codes})
}

// ledgerPIN returns the :pin parameter if the current user may read it
func (h *Handlers) ledgerPIN(c *gin.Context) (string, bool) {
	user, err := service.CurrentUser(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return "", false
	}

	pin := c.Param("pin")
	if !mayViewPIN(user, pin) {
		h.respondError(c, fmt.Errorf("%w: ledger of %s", service.ErrForbidden, pin))
		return "", false
	}
	return pin, true
}

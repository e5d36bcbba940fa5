package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/voucher-flow/internal/domain/form"
)

// ListVoucherTypes handles GET /api/voucher-types
func (h *Handlers) ListVoucherTypes(c *gin.Context) {
	c.JSON(http.StatusOK, Response{Success: true, Data: h.services.Forms.VoucherTypes()})
}

// GetVoucherType handles GET /api/voucher-types/:id
func (h *Handlers) GetVoucherType(c *gin.Context) {
	def, err := h.services.Forms.VoucherType(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := VoucherTypeResponse{Definition: def}
	if !def.IsMulti() {
		resp.Defaults = form.Defaults(def.FormFields, nil)
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: resp})
}

// DescribeForm handles POST /api/voucher-types/:id/form
func (h *Handlers) DescribeForm(c *gin.Context) {
	var req FormRequest
	if !h.bind(c, &req) {
		return
	}

	view, err := h.services.Forms.Describe(c.Param("id"), req.Values)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: view})
}

// ValidateForm handles POST /api/voucher-types/:id/validate. A form with
// errors is still a successful request; the errors are the payload.
func (h *Handlers) ValidateForm(c *gin.Context) {
	var req FormRequest
	if !h.bind(c, &req) {
		return
	}

	errs, err := h.services.Forms.Validate(c.Param("id"), req.Values)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    gin.H{"valid": len(errs) == 0, "errors": errs.ByField()},
	})
}

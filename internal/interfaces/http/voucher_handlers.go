package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/voucher-flow/internal/application/port"
	"github.com/garyjia/voucher-flow/internal/application/service"
	"github.com/garyjia/voucher-flow/internal/application/workflow"
	"github.com/garyjia/voucher-flow/internal/domain/entity"
	"github.com/garyjia/voucher-flow/internal/domain/form"
)

// statusRoles lists which role may move a voucher into each status
var statusRoles = map[entity.Status][]entity.Role{
	entity.StatusApproved: {entity.RoleMentor},
	entity.StatusSentBack: {entity.RoleMentor, entity.RolePayment},
	entity.StatusRejected: {entity.RoleMentor, entity.RolePayment},
	entity.StatusPaid:     {entity.RolePayment},
}

// ListVouchers handles GET /api/vouchers. Users only ever see their own
// vouchers; the other roles may filter by submitter.
func (h *Handlers) ListVouchers(c *gin.Context) {
	user, err := service.CurrentUser(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	filter := port.VoucherFilter{
		SubmitterPIN:  c.Query("submitter"),
		Status:        entity.Status(c.Query("status")),
		VoucherTypeID: c.Query("type"),
	}
	if active := c.Query("active"); active != "" {
		if filter.ExcludeCorrected, err = strconv.ParseBool(active); err != nil {
			c.JSON(http.StatusBadRequest, Response{Success: false, Error: "active must be a boolean"})
			return
		}
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: fmt.Sprintf("unknown status %q", filter.Status)})
		return
	}
	if user.Role == entity.RoleUser {
		filter.SubmitterPIN = user.PIN
	}

	vouchers, err := h.services.Vouchers.List(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: vouchers})
}

// GetVoucher handles GET /api/vouchers/:id
func (h *Handlers) GetVoucher(c *gin.Context) {
	ctx := c.Request.Context()
	user, err := service.CurrentUser(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}

	v, err := h.services.Vouchers.Get(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !mayViewPIN(user, v.Submitter.PIN) {
		h.respondError(c, service.ErrForbidden)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: h.voucherResponse(v)})
}

// SetVoucherStatus handles POST /api/vouchers/:id/status
func (h *Handlers) SetVoucherStatus(c *gin.Context) {
	var req StatusRequest
	if !h.bind(c, &req) {
		return
	}

	user, err := service.CurrentUser(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !roleIn(user.Role, statusRoles[req.Status]) {
		h.respondError(c, fmt.Errorf("%w: %s may not set %s", service.ErrForbidden, user.Role, req.Status))
		return
	}

	v, err := h.services.Vouchers.SetStatus(c.Request.Context(), c.Param("id"), req.Status, req.Comment)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: h.voucherResponse(v)})
}

// ApprovePettyCash handles POST /api/vouchers/:id/petty-cash/approve
func (h *Handlers) ApprovePettyCash(c *gin.Context) {
	var req ApprovePettyCashRequest
	if !h.bind(c, &req) {
		return
	}

	date, err := form.ParseDate(req.AdjustmentDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	v, err := h.services.Vouchers.ApprovePettyCash(c.Request.Context(), c.Param("id"), req.Amount, date)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: h.voucherResponse(v)})
}

// GeneratePettyCashCode handles POST /api/vouchers/:id/petty-cash/code
func (h *Handlers) GeneratePettyCashCode(c *gin.Context) {
	code, err := h.services.Vouchers.GeneratePettyCashCode(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: CodeResponse{Code: code}})
}

// PayPettyCash handles POST /api/vouchers/:id/pay
func (h *Handlers) PayPettyCash(c *gin.Context) {
	var req PayRequest
	if !h.bind(c, &req) {
		return
	}

	v, err := h.services.Vouchers.PayPettyCash(c.Request.Context(), c.Param("id"), req.Code)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: h.voucherResponse(v)})
}

// AuditVoucher handles POST /api/vouchers/:id/audit
func (h *Handlers) AuditVoucher(c *gin.Context) {
	v, err := h.services.Vouchers.MarkAudited(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: h.voucherResponse(v)})
}

// ResubmitVoucher handles POST /api/vouchers/:id/resubmit. The corrected
// voucher lands in the cart and is submitted with the rest of it.
func (h *Handlers) ResubmitVoucher(c *gin.Context) {
	var req FormRequest
	if !h.bind(c, &req) {
		return
	}

	item, err := h.services.Vouchers.Resubmit(c.Request.Context(), c.Param("id"), req.Values)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: item})
}

// MarkCorrected handles POST /api/vouchers/:id/corrected
func (h *Handlers) MarkCorrected(c *gin.Context) {
	if err := h.services.Vouchers.MarkCorrected(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

func (h *Handlers) voucherResponse(v *entity.Voucher) VoucherResponse {
	return VoucherResponse{Voucher: v, AllowedTransitions: workflow.AllowedTargets(v)}
}

func roleIn(role entity.Role, roles []entity.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListCart handles GET /api/cart
func (h *Handlers) ListCart(c *gin.Context) {
	items, err := h.services.Cart.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: items})
}

// AddToCart handles POST /api/cart
func (h *Handlers) AddToCart(c *gin.Context) {
	var req AddToCartRequest
	if !h.bind(c, &req) {
		return
	}

	item, reset, err := h.services.Forms.SubmitToCart(c.Request.Context(), req.VoucherTypeID, req.Values)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: AddToCartResponse{Item: item, Reset: reset}})
}

// EditCartItem handles PATCH /api/cart/:id
func (h *Handlers) EditCartItem(c *gin.Context) {
	var req FormRequest
	if !h.bind(c, &req) {
		return
	}

	item, err := h.services.Forms.EditCartItem(c.Request.Context(), c.Param("id"), req.Values)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: item})
}

// RemoveCartItem handles DELETE /api/cart/:id
func (h *Handlers) RemoveCartItem(c *gin.Context) {
	if err := h.services.Cart.Remove(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// ClearCart handles DELETE /api/cart
func (h *Handlers) ClearCart(c *gin.Context) {
	if err := h.services.Cart.Clear(c.Request.Context()); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// SubmitCart handles POST /api/cart/submit. An empty id list submits the
// whole cart.
func (h *Handlers) SubmitCart(c *gin.Context) {
	var req SubmitCartRequest
	if c.Request.ContentLength != 0 && !h.bind(c, &req) {
		return
	}

	vouchers, err := h.services.Vouchers.SubmitCart(c.Request.Context(), req.IDs)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: vouchers})
}

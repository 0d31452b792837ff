package handler

import (
	"net/http"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 購入前の見積り系（配送オプション・クーポン・合計）のHTTP。
type CheckoutHandler struct {
	shippingUC *usecase.ShippingUsecase
	couponUC   *usecase.CouponUsecase
	orderUC    *usecase.OrderUsecase
}

func NewCheckoutHandler(shippingUC *usecase.ShippingUsecase, couponUC *usecase.CouponUsecase, orderUC *usecase.OrderUsecase) *CheckoutHandler {
	return &CheckoutHandler{shippingUC: shippingUC, couponUC: couponUC, orderUC: orderUC}
}

type ApplyCouponRequest struct {
	Code string `json:"code"`
}

// カートと同じく匿名でも使える
func (h *CheckoutHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, cookieSecure bool) {
	g := e.Group("/cart")
	g.Use(middleware.OptionalAuthJWT(cfg))
	g.Use(middleware.CartSession(cookieSecure))

	g.GET("/shipping-options", h.getShippingOptions)
	g.POST("/coupon", h.applyCoupon)
	g.DELETE("/coupon", h.removeCoupon)
	g.GET("/summary", h.getSummary)
}

func (h *CheckoutHandler) getShippingOptions(c echo.Context) error {
	quote, err := h.shippingUC.GetShippingOptions(c.Request().Context(), customerFromContext(c), c.QueryParam("zone"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, quote)
}

func (h *CheckoutHandler) applyCoupon(c echo.Context) error {
	var req ApplyCouponRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.couponUC.ApplyCoupon(c.Request().Context(), customerFromContext(c), usecase.ApplyCouponInput{Code: req.Code})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CheckoutHandler) removeCoupon(c echo.Context) error {
	if err := h.couponUC.RemoveCoupon(c.Request().Context(), customerFromContext(c)); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "coupon removed"})
}

func (h *CheckoutHandler) getSummary(c echo.Context) error {
	out, err := h.orderUC.GetOrderSummary(
		c.Request().Context(),
		customerFromContext(c),
		c.QueryParam("zone"),
		c.QueryParam("shipping_type"),
	)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

package server

import (
	"net/http"

	"app/internal/config"
	"app/internal/handler"
	"app/internal/middleware"
	"app/internal/repository"

	"github.com/labstack/echo/v4"
)

// Handlers はルート登録に必要なハンドラ一式。
type Handlers struct {
	Auth          *handler.AuthHandler
	Product       *handler.ProductHandler
	Cart          *handler.CartHandler
	Checkout      *handler.CheckoutHandler
	Order         *handler.OrderHandler
	Address       *handler.AddressHandler
	Contact       *handler.ContactHandler
	Page          *handler.PageHandler
	AdminProduct  *handler.AdminProductHandler
	AdminOrder    *handler.AdminOrderHandler
	AdminCoupon   *handler.AdminCouponHandler
	AdminUser     *handler.AdminUserHandler
	EmailTemplate *handler.AdminEmailTemplateHandler
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository, h Handlers, cookieSecure bool) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	h.Auth.RegisterRoutes(e, cfg, userRepo)
	h.Product.RegisterRoutes(e)
	h.Cart.RegisterRoutes(e, cfg, cookieSecure)
	h.Checkout.RegisterRoutes(e, cfg, cookieSecure)
	h.Order.RegisterRoutes(e, cfg, userRepo)
	h.Contact.RegisterRoutes(e, cfg, userRepo)
	h.Page.RegisterRoutes(e, cfg, userRepo)

	// 住所はログイン必須
	me := e.Group("/me", middleware.AuthJWT(cfg), middleware.TokenVersionGuard(userRepo))
	h.Address.RegisterRoutes(me)

	h.AdminProduct.RegisterRoutes(e, cfg, userRepo)
	h.AdminOrder.RegisterRoutes(e, cfg, userRepo)
	h.AdminCoupon.RegisterRoutes(e, cfg, userRepo)
	h.AdminUser.RegisterRoutes(e)
	h.EmailTemplate.RegisterRoutes(e, cfg, userRepo)
}

package main

import (
	"time"

	"app/internal/config"
	"app/internal/domain/checkout"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/server"
	"app/internal/usecase"
	"app/internal/validator"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	// .envは無くてもよい（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("config load failed")
	}
	if cfg.GoEnv == "dev" {
		log.SetLevel(logrus.DebugLevel)
	}

	gormDB, err := db.Connect()
	if err != nil {
		log.WithError(err).Fatal("db connect failed")
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Address{},
		&model.Product{},
		&model.ProductVariant{},
		&model.Cart{},
		&model.CartItem{},
		&model.Coupon{},
		&model.CouponUsage{},
		&model.Order{},
		&model.OrderItem{},
		&model.InventoryAdjustment{},
		&model.ContactMessage{},
		&model.Page{},
		&model.EmailTemplate{},
		&model.AuditLog{},
	); err != nil {
		log.WithError(err).Fatal("migration failed")
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	rtRepo := infraRepo.NewRefreshTokenRepository(gormDB)
	addressRepo := infraRepo.NewAddressGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	variantRepo := infraRepo.NewVariantGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	cartItemRepo := infraRepo.NewCartItemGormRepository(gormDB)
	couponRepo := infraRepo.NewCouponGormRepository(gormDB)
	inventoryRepo := infraRepo.NewInventoryGormRepository(gormDB)
	contactRepo := infraRepo.NewContactGormRepository(gormDB)
	pageRepo := infraRepo.NewPageGormRepository(gormDB)
	templateRepo := infraRepo.NewEmailTemplateGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//ドメインエンジン
	resolver := checkout.NewStockResolver()
	calc := checkout.NewShippingCalculator(cfg.ShippingTariff())
	couponValidator := checkout.NewCouponValidator(nil)
	pricing := checkout.NewPricingEngine(couponValidator)

	//Usecase生成
	authValidator := validator.NewAuthValidator(userRepo)
	authUC := usecase.NewAuthUsecase(cfg, userRepo, rtRepo, authValidator)
	productUC := usecase.NewProductUsecase(productRepo, variantRepo, inventoryRepo, auditRepo)
	cartUC := usecase.NewCartUsecase(cartRepo, cartItemRepo, productRepo, variantRepo, resolver)
	shippingUC := usecase.NewShippingUsecase(cartRepo, cartItemRepo, productRepo, calc)
	couponUC := usecase.NewCouponUsecase(cartRepo, cartItemRepo, productRepo, couponRepo, couponValidator)
	orderUC := usecase.NewOrderUsecase(txManager, addressRepo, cartRepo, cartItemRepo, productRepo, couponRepo, calc, couponValidator, pricing)
	addressUC := usecase.NewAddressUsecase(addressRepo)
	adminOrderUC := usecase.NewAdminOrderUsecase(txManager, auditRepo)
	adminCouponUC := usecase.NewAdminCouponUsecase(couponRepo, auditRepo)
	adminUserUC := usecase.NewAdminUserUsecase(userRepo, rtRepo)
	contactUC := usecase.NewContactUsecase(contactRepo, auditRepo)
	pageUC := usecase.NewPageUsecase(pageRepo)
	templateUC := usecase.NewEmailTemplateUsecase(templateRepo)

	//refresh TTL
	refreshTTL := 30 * 24 * time.Hour
	cookieSecure := cfg.GoEnv != "dev"

	//Handler生成
	handlers := server.Handlers{
		Auth:          handler.NewAuthHandler(authUC, refreshTTL),
		Product:       handler.NewProductHandler(productUC),
		Cart:          handler.NewCartHandler(cartUC),
		Checkout:      handler.NewCheckoutHandler(shippingUC, couponUC, orderUC),
		Order:         handler.NewOrderHandler(orderUC),
		Address:       handler.NewAddressHandler(addressUC),
		Contact:       handler.NewContactHandler(contactUC),
		Page:          handler.NewPageHandler(pageUC),
		AdminProduct:  handler.NewAdminProductHandler(productUC),
		AdminOrder:    handler.NewAdminOrderHandler(adminOrderUC),
		AdminCoupon:   handler.NewAdminCouponHandler(adminCouponUC),
		AdminUser:     handler.NewAdminUserHandler(cfg, userRepo, authUC, adminUserUC),
		EmailTemplate: handler.NewAdminEmailTemplateHandler(templateUC),
	}

	e := server.New(cfg, log)
	server.RegisterRoutes(e, cfg, userRepo, handlers, cookieSecure)

	log.WithField("port", cfg.Port).Info("server starting")
	if err := server.Start(e, cfg.Port); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

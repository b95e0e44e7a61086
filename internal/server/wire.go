package server

import (
	"shophub/internal/config"
	"shophub/internal/domain/model"
	"shophub/internal/handler"
	infraRepo "shophub/internal/infra/repository"
	"shophub/internal/middleware"
	"shophub/internal/usecase"
	auth "shophub/internal/usecase/auth_usecase"
	"shophub/internal/validator"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// bcryptのコスト
const passwordHashCost = 12

// 外から渡すもの（DB接続・ロック・ロガー）
type Deps struct {
	DB             *gorm.DB
	Lock           usecase.CheckoutLocker
	Log            logrus.FieldLogger
	Clock          usecase.Clock
	PasswordHasher auth.PasswordHasher
}

// repository -> usecase -> handler を組み立ててルートまで登録したEchoを返す
func Wire(cfg config.Config, d Deps) *echo.Echo {
	if d.Clock == nil {
		d.Clock = usecase.SystemClock{}
	}
	if d.PasswordHasher == nil {
		d.PasswordHasher = auth.NewBcryptPasswordHasher(passwordHashCost)
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(d.DB)
	rtRepo := infraRepo.NewRefreshTokenRepository(d.DB)
	auditRepo := infraRepo.NewAuditLogGormRepository(d.DB)
	productRepo := infraRepo.NewProductGormRepository(d.DB)
	cartRepo := infraRepo.NewCartGormRepository(d.DB)
	cartItemRepo := infraRepo.NewCartItemGormRepository(d.DB)
	orderRepo := infraRepo.NewOrderGormRepository(d.DB)
	orderItemRepo := infraRepo.NewOrderItemGormRepository(d.DB)
	txm := infraRepo.NewTxManagerGorm(d.DB)

	//usecaseに渡す部品
	idGen := auth.UUIDGenerator{}
	issuer := auth.NewHS256Issuer(cfg.JWTSecret, auth.AccessTokenTTL)
	authValidator := validator.NewAuthValidator()
	orderValidator := validator.NewOrderValidator()
	verifier := auth.NewBcryptPasswordVerifier()

	//Usecase生成
	registerUC := auth.NewRegisterUserUsecase(userRepo, authValidator, d.PasswordHasher, d.Clock)
	loginUC := auth.NewLoginUsecase(userRepo, rtRepo, authValidator, verifier, issuer, idGen, d.Clock, auth.RefreshTokenTTL)
	sessionUC := auth.NewSessionUsecase(userRepo, rtRepo, auditRepo, authValidator, issuer, idGen, d.Clock, auth.RefreshTokenTTL)
	productUC := usecase.NewProductUsecase(txm, productRepo, d.Clock)
	cartUC := usecase.NewCartUsecase(cartRepo, cartItemRepo, productRepo)
	checkoutUC := usecase.NewCheckoutUsecase(txm, orderRepo, orderItemRepo, d.Lock, orderValidator, d.Clock, d.Log)
	orderUC := usecase.NewOrderUsecase(txm, orderRepo, orderItemRepo, orderValidator, d.Clock, d.Log)
	adminOrderUC := usecase.NewAdminOrderUsecase(txm, orderRepo, orderItemRepo, d.Clock, d.Log)
	auditUC := usecase.NewAuditLogUsecase(auditRepo)

	//Handler生成
	handlers := Handlers{
		Auth: handler.NewAuthHandler(registerUC, loginUC, sessionUC, handler.CookieConfig{
			Secure: cfg.CookieSecure,
			Domain: cfg.APIDomain,
		}),
		AdminUser:    handler.NewAdminUserHandler(sessionUC),
		Product:      handler.NewProductHandler(productUC),
		AdminProduct: handler.NewAdminProductHandler(productUC),
		Cart:         handler.NewCartHandler(cartUC),
		Order:        handler.NewOrderHandler(checkoutUC, orderUC),
		AdminOrder:   handler.NewAdminOrderHandler(adminOrderUC),
		AuditLog:     handler.NewAuditLogHandler(auditUC),
	}

	// JWT必須 + token_version一致
	guards := handler.Guards{
		Auth: []echo.MiddlewareFunc{
			middleware.AuthJWT(cfg.JWTSecret),
			middleware.TokenVersionGuard(userRepo),
		},
		Admin:    middleware.AdminRoleGuard(),
		Staff:    middleware.RoleGuard(model.RoleAdmin, model.RoleEditor),
		Checkout: middleware.NewRateLimiter(cfg.CheckoutRatePerMin).Middleware(),
	}

	e := New(cfg, d.Log)
	RegisterRoutes(e, handlers, guards)
	return e
}

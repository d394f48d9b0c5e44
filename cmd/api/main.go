package main

import (
	"context"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	"app/internal/infra/queue"
	infraRepo "app/internal/infra/repository"
	"app/internal/infra/sessioncart"
	"app/internal/payhere"
	"app/internal/server"
	"app/internal/usecase"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ゲストカートの生存期間
const sessionCartTTL = 7 * 24 * time.Hour

// usecase.MailEnqueuerをRabbitMQパブリッシャにつなぐ
type mailEnqueuer struct {
	pub *queue.MailPublisher
}

func (m *mailEnqueuer) Enqueue(ctx context.Context, to string, subject string, body string) error {
	return m.pub.Enqueue(ctx, queue.MailMessage{
		ID:        uuid.NewString(),
		To:        to,
		Subject:   subject,
		Body:      body,
		CreatedAt: time.Now(),
	})
}

func main() {
	//.envは無くてもよい（本番は環境変数のみ）
	_ = godotenv.Load("../.env")

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config load failed", zap.Error(err))
	}

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		logger.Fatal("db connect failed", zap.Error(err))
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.City{},
		&model.DeliveryType{},
		&model.Address{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
	); err != nil {
		logger.Fatal("migrate failed", zap.Error(err))
	}
	if err := db.SeedMaster(gormDB, cfg.HubCity); err != nil {
		logger.Fatal("seed failed", zap.Error(err))
	}

	//Redis（ゲストカート）
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Fatal("redis connect failed", zap.Error(err))
	}

	//RabbitMQ（確認メール・注文メール）
	amqpConn, amqpCh, err := queue.SetupConn(cfg.AMQPURL)
	if err != nil {
		logger.Fatal("rabbitmq connect failed", zap.Error(err))
	}
	defer amqpConn.Close()
	defer amqpCh.Close()

	mail := &mailEnqueuer{pub: queue.NewMailPublisher(amqpCh)}

	//Repository（GORM実装）生成
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	cartItemRepo := infraRepo.NewCartItemGormRepository(gormDB)
	cityRepo := infraRepo.NewCityGormRepository(gormDB)
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)
	sessionCartRepo := sessioncart.NewRedisSessionCartRepository(redisClient, sessionCartTTL)

	payCfg := payhere.Config{
		MerchantID: cfg.PayhereMerchantID,
		Secret:     cfg.PayhereSecret,
		Currency:   "LKR",
		NotifyURL:  cfg.PayhereNotifyURL,
		ReturnURL:  cfg.PayhereReturnURL,
		CancelURL:  cfg.PayhereCancelURL,
		Sandbox:    cfg.PayhereSandbox,
	}

	//Usecase生成
	productUC := usecase.NewProductUsecase(productRepo)
	cartUC := usecase.NewCartUsecase(cartItemRepo, sessionCartRepo, productRepo)
	reconcileUC := usecase.NewReconcileUsecase(txManager, sessionCartRepo, logger)
	checkoutUC := usecase.NewCheckoutUsecase(txManager, userRepo, cityRepo, mail, payCfg, cfg.HubCity, logger)
	orderUC := usecase.NewOrderUsecase(txManager)
	authUC := usecase.NewAuthUsecase(cfg, userRepo, mail, reconcileUC, logger)

	//Handler生成
	h := server.Handlers{
		Auth:     handler.NewAuthHandler(authUC),
		Product:  handler.NewProductHandler(productUC),
		Cart:     handler.NewCartHandler(cartUC),
		Checkout: handler.NewCheckoutHandler(checkoutUC),
		Order:    handler.NewOrderHandler(orderUC),
	}

	//Server起動
	if err := server.Start(cfg, h, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

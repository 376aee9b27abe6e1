package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"marketplace-app/subscription-service/internal/config"
	"marketplace-app/subscription-service/internal/handler"
	"marketplace-app/subscription-service/internal/repository"
	"marketplace-app/subscription-service/internal/services"
	"marketplace-app/subscription-service/internal/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	baseCtx := context.Background()
	ctx, shutdownManager := utils.NewShutdownManager(baseCtx)
	shutdownManager.StartListening()

	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// Подключение к MongoDB
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Mongo connection failed:", err)
	}
	shutdownManager.Register(func(ctx context.Context) error {
		log.Println("[SHUTDOWN] Closing MongoDB connection...")
		return mongoClient.Disconnect(ctx)
	})

	db := mongoClient.Database("marketplace")

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	shutdownManager.Register(func(ctx context.Context) error {
		log.Println("[SHUTDOWN] Closing Redis connection...")
		return rdb.Close()
	})

	// Инициализация слоев
	planRepo := repository.NewPlanRepository(db)
	instanceRepo := repository.NewSubscriptionRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	userClient := utils.NewUserClient(cfg.UserServiceURL)
	catalogClient := utils.NewCatalogClient(cfg.CatalogServiceURL)
	mailer := services.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)

	// Создание сервисов
	materializer := services.NewMaterializer(planRepo, instanceRepo)
	orderGenerator := services.NewOrderGenerator(instanceRepo, planRepo, orderRepo, userClient, cfg.OrderLeadDays)
	notifier := services.NewNotifier(instanceRepo, planRepo, userClient, mailer, cfg.NotifyLeadDays)
	resolver := services.NewConflictResolver(planRepo, catalogClient)
	planService := services.NewPlanService(planRepo, rdb, materializer, resolver)

	planHandler := handler.NewPlanHandler(planService)

	// Запуск фоновых задач
	cron := services.NewCronJobService(materializer, orderGenerator, notifier)
	cron.Start(ctx)

	// Инициализация маршрутизатора
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	authMiddleware := utils.AuthMiddleware(cfg.AuthServiceURL)

	api := router.Group("/api/product-subscription-plans", authMiddleware)
	{
		api.POST("/", utils.RoleMiddleware("buyer"), planHandler.Create)
		api.GET("/my", utils.RoleMiddleware("buyer"), planHandler.GetMy)
		api.GET("/:id", planHandler.GetByID)
		api.POST("/:id/confirm", utils.RoleMiddleware("seller"), planHandler.Confirm)
		api.POST("/:id/cancel", utils.RoleMiddleware("seller"), planHandler.Cancel)
		api.POST("/:id/unsubscribe", utils.RoleMiddleware("buyer"), planHandler.Unsubscribe)
		api.PUT("/:id/override-date", utils.RoleMiddleware("buyer"), planHandler.OverrideDate)
		api.POST("/:id/auto-reschedule", utils.RoleMiddleware("buyer"), planHandler.AutoReschedule)
	}

	server := &http.Server{
		Addr:    cfg.ServerPort,
		Handler: router,
	}

	// Запуск сервера в горутине
	go func() {
		log.Println("Subscription service running on", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	shutdownManager.Register(func(ctx context.Context) error {
		log.Println("[SHUTDOWN] Shutting down HTTP server...")
		return server.Shutdown(ctx)
	})

	// Ожидание сигналов завершения
	select {}
}

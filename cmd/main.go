package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/Suryathangaraj2003/consulting/internal/api/handler"
	"github.com/Suryathangaraj2003/consulting/internal/chathub"
	"github.com/Suryathangaraj2003/consulting/internal/config"
	"github.com/Suryathangaraj2003/consulting/internal/models"
	"github.com/Suryathangaraj2003/consulting/internal/notify"
	"github.com/Suryathangaraj2003/consulting/internal/rating"
	"github.com/Suryathangaraj2003/consulting/internal/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies(cfg config.Config) (*gorm.DB, *redis.Client) {
	db, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Appointment{},
		&models.AppointmentNotification{},
		&models.Message{},
		&models.Attachment{},
		&models.Payment{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func main() {
	log.Println("Starting consulting backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}
	cfg := config.Load()

	db, rdb := setupDependencies(cfg)
	s := storage.NewService(db, rdb)

	hub := chathub.NewManagerService(s)
	hub.Delivery = chathub.NewDeliveryService(s)
	hub.StartPubSubListener()
	go hub.Run()

	var notifier notify.Notifier = notify.Noop{}
	if cfg.TelegramToken != "" && cfg.TelegramChat != "" {
		tg, err := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChat)
		if err != nil {
			log.Printf("WARNING: Telegram notifier disabled: %v", err)
		} else {
			notifier = tg
		}
	}

	h := handler.NewHandler(s, hub, rating.NewService(s), notifier, []byte(cfg.JWTSecret))

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:3001", cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/counselors", h.ListCounselors)

		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Register)
			auth.POST("/login", h.Login)
			auth.GET("/me", h.AuthRequired(), h.Me)
			auth.GET("/counselors", h.ListCounselors)
		}

		appts := api.Group("/appointments", h.AuthRequired())
		{
			appts.GET("", h.ListAppointments)
			appts.POST("", h.CreateAppointment)
			appts.GET("/:id", h.GetAppointment)
			appts.PATCH("/:id/status", h.UpdateStatus)
			appts.PATCH("/:id/notes", h.UpdateNotes)
			appts.PATCH("/:id/feedback", h.SubmitFeedback)
			appts.POST("/:id/send-meeting-link", h.SendMeetingLink)
			appts.GET("/:id/meeting-link", h.GetMeetingLink)
			appts.POST("/:id/notify-client", h.NotifyClient)
			appts.POST("/:id/start-session", h.StartSession)
			appts.POST("/:id/end-session", h.EndSession)
		}

		payments := api.Group("/payments", h.AuthRequired())
		{
			payments.POST("", h.ProcessPayment)
			payments.GET("", h.ListPayments)
		}

		messages := api.Group("/messages", h.AuthRequired())
		{
			messages.GET("/appointment/:appointmentId", h.GetMessages)
			messages.POST("", h.SendMessage)
			messages.PATCH("/read", h.MarkRead)
			messages.GET("/unread-count", h.UnreadCount)
		}
	}

	r.GET("/ws", h.ServeWebSocket)

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Printf("Server running on port %s", cfg.Port)
	log.Fatal(server.ListenAndServe())
}

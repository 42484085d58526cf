package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"quest-quiz-service/internal/db"
	"quest-quiz-service/internal/event"
	"quest-quiz-service/internal/handlers"
	"quest-quiz-service/internal/repository"
	"quest-quiz-service/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system env")
	}
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		log.Fatal("MONGO_URI is required")
	}
	db.InitMongo(mongoURI)

	// Optional session snapshot cache
	var cache *redis.Client
	if redisURI := os.Getenv("REDIS_URI"); redisURI != "" {
		cache = db.InitRedis(redisURI)
	} else {
		log.Println("REDIS_URI not set, session cache disabled")
	}

	// RabbitMQ event publisher
	rabbitURL := os.Getenv("RABBITMQ_URI")
	eventExchange := os.Getenv("RABBITMQ_EXCHANGE")
	var publisher *event.EventPublisher
	if rabbitURL != "" && eventExchange != "" {
		var err error
		publisher, err = event.NewEventPublisher(rabbitURL, eventExchange)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer publisher.Close()
	} else {
		log.Println("RabbitMQ not configured, completion events will not be published")
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token", "Authorization", "accept", "origin", "Cache-Control", "X-Requested-With", "X-User-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	database := db.Client.Database("quest_quiz")

	// Question pool
	questionRepo := repository.NewQuestionRepository(database)
	questionService := service.NewQuestionService(questionRepo)
	questionHandler := handlers.NewQuestionHandler(questionService)

	// Sessions
	sessionRepo := repository.NewSessionRepository(database, cache)
	resultRepo := repository.NewResultRepository(database)
	var reporter service.Reporter
	if publisher != nil {
		reporter = publisher
	}
	sessionService := service.NewSessionService(
		sessionRepo,
		questionRepo,
		resultRepo,
		nil, // deterministic local verifier
		nil, // system clock
		reporter,
	)
	sessionHandler := handlers.NewSessionHandler(sessionService)

	// Results
	resultService := service.NewResultService(resultRepo)
	resultHandler := handlers.NewResultHandler(resultService)

	r.GET("/health", sessionHandler.HealthCheck)

	// Public routes - questions are readable without auth
	publicQuestion := r.Group("/public/quest/question")
	{
		publicQuestion.GET("/", questionHandler.ListQuestions)
		publicQuestion.GET("/:id", questionHandler.GetQuestion)
	}

	publicUser := r.Group("/public/quest/user")
	{
		publicUser.GET("/:id/results", resultHandler.GetResultsByUser)
		publicUser.GET("/:id/sessions", sessionHandler.GetUserSessions)
	}

	// Protected routes - pool administration
	protectedQuestion := r.Group("/protected/quest/question")
	protectedQuestion.Use(requireUserID())
	{
		protectedQuestion.POST("/", questionHandler.CreateQuestion)
		protectedQuestion.PUT("/:id", questionHandler.UpdateQuestion)
		protectedQuestion.DELETE("/:id", questionHandler.DeleteQuestion)
	}

	setupSessionRoutes(r, sessionHandler, resultHandler, publisher)

	port := os.Getenv("PORT")
	if port == "" {
		port = "6677"
	}
	r.Run(":" + port)
}

func requireUserID() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("X-User-ID") == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
				"code":  "MISSING_USER_ID",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

func setupSessionRoutes(r *gin.Engine, sessionHandler *handlers.SessionHandler, resultHandler *handlers.ResultHandler, publisher *event.EventPublisher) {
	protectedSession := r.Group("/protected/quest/session")
	protectedSession.Use(requireUserID())

	// Request logging for session routes
	protectedSession.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("[SESSION] %v | %3d | %13v | %15s | %-7s %#v\n%s",
			param.TimeStamp.Format("2006/01/02 - 15:04:05"),
			param.StatusCode,
			param.Latency,
			param.ClientIP,
			param.Method,
			param.Path,
			param.ErrorMessage,
		)
	}))

	{
		// === SESSION LIFECYCLE ===

		protectedSession.POST("/", func(c *gin.Context) {
			sessionHandler.CreateSession(c)
			if publisher != nil && c.Writer.Status() == http.StatusCreated {
				publisher.Publish(event.SessionStarted, gin.H{
					"user_id":   c.GetHeader("X-User-ID"),
					"timestamp": time.Now(),
				})
			}
		})

		protectedSession.POST("/:id/start", func(c *gin.Context) {
			sessionHandler.StartAttempt(c)
			if publisher != nil && c.Writer.Status() == http.StatusOK {
				publisher.Publish(event.SessionStarted, gin.H{
					"session_id": c.Param("id"),
					"user_id":    c.GetHeader("X-User-ID"),
					"timestamp":  time.Now(),
				})
			}
		})

		protectedSession.POST("/:id/reset", func(c *gin.Context) {
			sessionHandler.ResetSession(c)
			if publisher != nil && c.Writer.Status() == http.StatusOK {
				publisher.Publish(event.SessionReset, gin.H{
					"session_id": c.Param("id"),
					"user_id":    c.GetHeader("X-User-ID"),
					"timestamp":  time.Now(),
				})
			}
		})

		// === QUIZ INTERACTION ===

		protectedSession.POST("/:id/answer", sessionHandler.SubmitAnswer)
		protectedSession.POST("/:id/hint", sessionHandler.RequestHint)
		protectedSession.POST("/:id/next", sessionHandler.NextQuestion)
		protectedSession.POST("/:id/previous", sessionHandler.PreviousQuestion)

		// The completion event itself is published by the session service,
		// whether the finish was explicit or timer-driven.
		protectedSession.POST("/:id/finish", sessionHandler.FinishSession)

		protectedSession.DELETE("/:id", sessionHandler.DeleteSession)

		// === STATUS AND RESULTS ===

		protectedSession.GET("/:id/status", sessionHandler.GetSessionStatus)
		protectedSession.GET("/:id/validate", sessionHandler.ValidateSessionAccess)
		protectedSession.GET("/:id/result", resultHandler.GetResultBySession)
		protectedSession.GET("/pool/info", sessionHandler.GetPoolInfo)
	}

	// === PUBLIC SESSION ROUTES ===
	publicSession := r.Group("/public/quest/session")
	{
		publicSession.GET("/:id", sessionHandler.GetSession)
		publicSession.GET("/:id/status", sessionHandler.GetSessionStatus)
	}
}

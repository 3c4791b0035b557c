package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"drift-board/internal/db"
	"drift-board/internal/handlers"
	"drift-board/internal/middleware"
	"drift-board/internal/observability"
	"drift-board/internal/rabbitmq"
	"drift-board/internal/repositories"
	"drift-board/internal/sonar"
	"drift-board/internal/telemetry"
	"drift-board/internal/ws"
)

const serviceName = "drift-board"

func main() {
	database, err := db.Connect()
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	ctx := context.Background()
	shutdownTracing := observability.SetupTracing(ctx, serviceName, os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"))
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	publisher := rabbitmq.NewPublisher(os.Getenv("AMQP_URL"), getEnv("AMQP_EXCHANGE", "driftboard.events"))
	defer publisher.Close()
	observability.SetPublisher(publisher)
	log.Printf("event publisher mode=%s", rabbitmq.PublisherMode(publisher))

	environment := getEnv("ENVIRONMENT", "development")
	audit := telemetry.NewAuditEmitter(publisher, "driftboard.audit", serviceName, environment)

	jwtSecret := []byte(os.Getenv("JWT_SECRET"))
	if len(jwtSecret) == 0 {
		log.Fatal("JWT_SECRET is required")
	}

	sonarClient := sonar.NewHTTPClient(os.Getenv("SONAR_BASE_URL"), os.Getenv("PERPLEXITY_API_KEY"))

	queryRepo := repositories.NewQueryRepo(database)
	tripRepo := repositories.NewTripRepo(database)
	memberRepo := repositories.NewMemberRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	itineraryRepo := repositories.NewItineraryRepo(database)
	bookmarkRepo := repositories.NewBookmarkRepo(database)
	activityRepo := repositories.NewActivityRepo(database)

	hub := ws.NewHub()

	queryHandler := handlers.NewQueryHandler(queryRepo, sonarClient, audit)
	tripHandler := handlers.NewTripHandler(tripRepo, memberRepo, audit)
	memberHandler := handlers.NewMemberHandler(tripRepo, memberRepo, activityRepo, hub, audit)
	chatHandler := handlers.NewChatHandler(memberRepo, messageRepo, itineraryRepo, activityRepo, sonarClient, hub, audit)
	itineraryHandler := handlers.NewItineraryHandler(memberRepo, itineraryRepo, activityRepo, sonarClient, hub, audit)
	bookmarkHandler := handlers.NewBookmarkHandler(memberRepo, bookmarkRepo, activityRepo, hub, audit)
	activityHandler := handlers.NewActivityHandler(memberRepo, activityRepo)

	tripWS := ws.NewTripWebSocketHandler(hub, memberRepo, jwtSecret)

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handlers.RegisterDebugRoutes(router, audit, environment != "production")

	authMiddleware := middleware.AuthMiddleware(jwtSecret)

	router.POST("/queries", authMiddleware, queryHandler.CreateQuery)
	router.GET("/queries", authMiddleware, queryHandler.ListQueries)
	router.GET("/queries/:query_id", authMiddleware, queryHandler.GetQuery)
	router.POST("/captures", authMiddleware, queryHandler.CreateCapture)

	router.POST("/trips", authMiddleware, tripHandler.CreateTrip)
	router.GET("/trips", authMiddleware, tripHandler.ListTrips)
	router.GET("/trips/:trip_id", authMiddleware, tripHandler.GetTrip)

	router.GET("/trips/:trip_id/members", authMiddleware, memberHandler.ListMembers)
	router.POST("/trips/:trip_id/members", authMiddleware, memberHandler.InviteMember)
	router.POST("/trips/:trip_id/members/accept", authMiddleware, memberHandler.AcceptInvite)
	router.DELETE("/trips/:trip_id/members/:user_id", authMiddleware, memberHandler.RemoveMember)

	router.GET("/trips/:trip_id/chat", authMiddleware, chatHandler.ListMessages)
	router.POST("/trips/:trip_id/chat", authMiddleware, chatHandler.PostMessage)
	router.POST("/trips/:trip_id/chat/select", authMiddleware, chatHandler.SelectSuggestion)

	router.POST("/trips/:trip_id/finalize", authMiddleware, itineraryHandler.Finalize)
	router.GET("/trips/:trip_id/itinerary", authMiddleware, itineraryHandler.GetItinerary)

	router.GET("/trips/:trip_id/bookmarks", authMiddleware, bookmarkHandler.ListBookmarks)
	router.POST("/trips/:trip_id/bookmarks", authMiddleware, bookmarkHandler.CreateBookmark)
	router.DELETE("/trips/:trip_id/bookmarks/:bookmark_id", authMiddleware, bookmarkHandler.DeleteBookmark)

	router.GET("/trips/:trip_id/activities", authMiddleware, activityHandler.ListActivities)

	router.GET("/ws/trips/:trip_id", tripWS.Handle)

	port := getEnv("PORT", "8080")
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

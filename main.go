package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/0xZumii/bleepblorp/internal/config"
	"github.com/0xZumii/bleepblorp/internal/db"
	"github.com/0xZumii/bleepblorp/internal/handlers"
	"github.com/0xZumii/bleepblorp/internal/middleware"
	"github.com/0xZumii/bleepblorp/internal/observability"
	"github.com/0xZumii/bleepblorp/internal/rabbitmq"
	"github.com/0xZumii/bleepblorp/internal/repositories"
	"github.com/0xZumii/bleepblorp/internal/session"
	"github.com/0xZumii/bleepblorp/internal/telemetry"
	"github.com/0xZumii/bleepblorp/internal/ws"
)

const serviceName = "bleepblorp"

func main() {
	cfg := config.Load()
	ctx := context.Background()

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.OTLPEndpoint, serviceName, cfg.Environment)
	if err != nil {
		log.Printf("tracing disabled: %v", err)
	} else {
		defer func() {
			if err := shutdownTracing(ctx); err != nil {
				log.Printf("tracing shutdown failed: %v", err)
			}
		}()
	}

	database, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer database.Close()

	auditPublisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer auditPublisher.Close()
	log.Printf("audit publisher mode=%s", rabbitmq.PublisherMode(auditPublisher))
	audit := telemetry.NewAuditEmitter(auditPublisher, cfg.AuditRoutingKey, serviceName, cfg.Environment)

	if eventPublisher, err := observability.NewEventPublisher(cfg.AMQPURL, cfg.AMQPExchange); err != nil {
		log.Printf("event publishing disabled: %v", err)
	} else {
		observability.SetPublisher(eventPublisher)
		defer eventPublisher.Close()
	}

	tokens := session.NewTokenStore(cfg.RedisAddr)
	log.Printf("session store mode=%s ttl=%s", session.StoreMode(tokens), cfg.SessionTTL)

	users := repositories.NewUserRepo(database)
	messages := repositories.NewMessageRepo(database)
	friends := repositories.NewFriendRepo(database)
	convos := repositories.NewConversationRepo(database)

	hub := ws.NewHub()
	sessions := session.NewManager(users, messages, tokens, hub, cfg.SessionTTL)

	sweeper := session.NewSweeper(sessions, cfg.SweepInterval)
	sweeper.Start()
	defer sweeper.Stop()

	sessionHandler := handlers.NewSessionHandler(sessions, audit)
	roomHandler := handlers.NewRoomHandler(messages, hub, audit)
	rosterHandler := handlers.NewRosterHandler(users)
	buddyHandler := handlers.NewBuddyHandler(users, friends, hub, audit)
	convoHandler := handlers.NewConversationHandler(users, friends, convos, hub, audit)

	roomFeed := ws.NewRoomFeedHandler(hub, sessions)
	rosterFeed := ws.NewRosterFeedHandler(hub, sessions, users)
	buddyFeed := ws.NewBuddyFeedHandler(hub, sessions, friends)
	convoFeed := ws.NewConversationFeedHandler(hub, sessions, convos)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.POST("/session", sessionHandler.SignOn)

	authed := router.Group("/", middleware.SessionAuth(sessions))
	authed.DELETE("/session", sessionHandler.SignOff)
	authed.GET("/room/messages", roomHandler.ListMessages)
	authed.POST("/room/messages", roomHandler.SendMessage)
	authed.GET("/roster", rosterHandler.ListOnline)
	authed.GET("/buddies", buddyHandler.Snapshot)
	authed.POST("/buddies/requests", buddyHandler.SendRequest)
	authed.POST("/buddies/requests/accept", buddyHandler.AcceptRequest)
	authed.POST("/buddies/requests/decline", buddyHandler.DeclineRequest)
	authed.DELETE("/buddies/:screen_name", buddyHandler.RemoveFriend)
	authed.POST("/conversations/open", convoHandler.Open)
	authed.POST("/conversations/:key/messages", convoHandler.SendMessage)

	router.GET("/ws/room", roomFeed.Handle)
	router.GET("/ws/roster", rosterFeed.Handle)
	router.GET("/ws/buddies", buddyFeed.Handle)
	router.GET("/ws/conversations/:key", convoFeed.Handle)

	if cfg.Debug {
		handlers.RegisterDebugRoutes(router, audit)
	}

	log.Printf("listening on :%s env=%s", cfg.Port, cfg.Environment)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

// Package httpapi — REST API дашборда back office поверх gin.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/backoffice/internal/domain"
	"github.com/vladislavdragonenkov/backoffice/internal/notify"
	"github.com/vladislavdragonenkov/backoffice/internal/service/reconcile"
	"github.com/vladislavdragonenkov/backoffice/internal/version"
)

const headerRequestID = "X-Request-ID"

// OrderService — операции над заказами, доступные дашборду (реализуется reconcile.Reconciler).
type OrderService interface {
	Refresh(ctx context.Context) (int, error)
	List() []domain.Order
	Get(id domain.OrderID) (domain.Order, error)
	Timeline(id domain.OrderID) ([]domain.TimelineEvent, error)
	Accept(id domain.OrderID) (reconcile.Outcome, error)
	MarkReady(id domain.OrderID) (reconcile.Outcome, error)
	Complete(id domain.OrderID) (reconcile.Outcome, error)
	Transition(id domain.OrderID, requested domain.OrderStatus) (reconcile.Outcome, error)
	RejectOrder(id domain.OrderID, reason string) (reconcile.Outcome, error)
	RejectItem(id domain.OrderID, index int, reason string) (reconcile.Outcome, error)
	DeleteHistorical(ctx context.Context, id domain.OrderID) error
}

// NotificationFeed отдаёт последние уведомления.
type NotificationFeed interface {
	Recent() []notify.Entry
}

// Options настраивает роутер.
type Options struct {
	// AllowedOrigins — origins для CORS; пусто — CORS выключен.
	AllowedOrigins []string
	// DeleteTimeout ограничивает ожидание ответа хранилища при удалении.
	DeleteTimeout time.Duration
	Logger        *log.Entry
}

// Handler обслуживает /api/*.
type Handler struct {
	orders        OrderService
	notifications NotificationFeed
	deleteTimeout time.Duration
	logger        *log.Entry
}

// NewRouter собирает gin.Engine с маршрутами дашборда.
func NewRouter(orders OrderService, notifications NotificationFeed, opts Options) *gin.Engine {
	h := &Handler{
		orders:        orders,
		notifications: notifications,
		deleteTimeout: opts.DeleteTimeout,
		logger:        opts.Logger,
	}
	if h.logger == nil {
		h.logger = log.WithField("component", "http-api")
	}
	if h.deleteTimeout <= 0 {
		h.deleteTimeout = 15 * time.Second
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestID(), requestLogger(h.logger))
	if len(opts.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:  opts.AllowedOrigins,
			AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", headerRequestID},
			ExposeHeaders: []string{headerRequestID},
			MaxAge:        12 * time.Hour,
		}))
	}

	api := router.Group("/api")
	{
		api.GET("/version", h.getVersion)
		api.GET("/stats", h.getStats)
		api.GET("/notifications", h.listNotifications)

		orders := api.Group("/orders")
		orders.GET("", h.listOrders)
		orders.POST("/refresh", h.refresh)
		orders.GET("/:id", h.getOrder)
		orders.GET("/:id/timeline", h.getTimeline)
		orders.POST("/:id/accept", h.accept)
		orders.POST("/:id/ready", h.markReady)
		orders.POST("/:id/complete", h.complete)
		orders.POST("/:id/transition", h.transition)
		orders.POST("/:id/reject", h.rejectOrder)
		orders.POST("/:id/items/:index/reject", h.rejectItem)
		orders.DELETE("/:id", h.deleteOrder)
	}

	return router
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(headerRequestID, id)
		c.Header(headerRequestID, id)
		c.Next()
	}
}

func requestLogger(logger *log.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logger.WithFields(log.Fields{
			"method":      c.Request.Method,
			"path":        c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"request_id":  c.GetString(headerRequestID),
		})
		if len(c.Errors) > 0 {
			entry = entry.WithError(c.Errors.Last().Err)
		}
		switch {
		case c.Writer.Status() >= 500:
			entry.Error("request failed")
		case c.Writer.Status() >= 400:
			entry.Info("request rejected")
		default:
			entry.Debug("request served")
		}
	}
}

func (h *Handler) getVersion(c *gin.Context) {
	respondOK(c, http.StatusOK, version.Current())
}

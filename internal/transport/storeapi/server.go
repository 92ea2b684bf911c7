// Package storeapi — пассивное хранилище заказов витрины с REST-интерфейсом
// (GET/POST /orders, GET/PATCH/DELETE /orders/:id) для локальной разработки.
// Хранилище не валидирует содержимое записей.
package storeapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/backoffice/internal/domain"
)

// ChangeNotifier получает изменения, сделанные через хранилище (витриной).
type ChangeNotifier interface {
	OrderCreated(order domain.Order) error
	OrderDeleted(id domain.OrderID) error
}

// Server обслуживает /orders поверх domain.OrderRecordStore.
type Server struct {
	store   domain.OrderRecordStore
	changes ChangeNotifier
	logger  *log.Entry
}

// Option настраивает Server.
type Option func(*Server)

// WithChangeNotifier включает публикацию изменений.
func WithChangeNotifier(changes ChangeNotifier) Option {
	return func(s *Server) {
		s.changes = changes
	}
}

// WithLogger задаёт logger.
func WithLogger(logger *log.Entry) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New создаёт сервер хранилища.
func New(store domain.OrderRecordStore, opts ...Option) *Server {
	s := &Server{
		store:  store,
		logger: log.WithField("component", "order-store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router возвращает gin.Engine с маршрутами хранилища.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.accessLog())

	router.HEAD("/orders", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/orders", s.list)
	router.POST("/orders", s.create)
	router.GET("/orders/:id", s.get)
	router.PATCH("/orders/:id", s.patch)
	router.DELETE("/orders/:id", s.delete)
	return router
}

func (s *Server) list(c *gin.Context) {
	orders, err := s.store.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	c.JSON(http.StatusOK, orders)
}

func (s *Server) get(c *gin.Context) {
	order, err := s.store.Get(c.Request.Context(), domain.OrderID(c.Param("id")))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) create(c *gin.Context) {
	var order domain.Order
	if err := c.ShouldBindJSON(&order); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	created, err := s.store.Create(c.Request.Context(), order)
	if err != nil {
		s.fail(c, err)
		return
	}
	if s.changes != nil {
		if err := s.changes.OrderCreated(created); err != nil {
			s.logger.WithError(err).WithField("order_id", created.ID).Warn("failed to publish order created")
		}
	}
	c.JSON(http.StatusCreated, created)
}

// patch сливает только переданные поля.
func (s *Server) patch(c *gin.Context) {
	var patch domain.OrderPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	updated, err := s.store.Patch(c.Request.Context(), domain.OrderID(c.Param("id")), patch)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) delete(c *gin.Context) {
	id := domain.OrderID(c.Param("id"))
	if err := s.store.Delete(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	if s.changes != nil {
		if err := s.changes.OrderDeleted(id); err != nil {
			s.logger.WithError(err).WithField("order_id", id).Warn("failed to publish order deleted")
		}
	}
	c.JSON(http.StatusOK, gin.H{})
}

func (s *Server) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrOrderExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		s.logger.WithError(err).Error("order store request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.WithFields(log.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"request_id":  c.GetHeader("X-Request-ID"),
			"duration_ms": time.Since(start).Milliseconds(),
		}).Debug("order store request")
	}
}

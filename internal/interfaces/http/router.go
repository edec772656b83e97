package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	appmfg "github.com/mrp/backend/internal/application/manufacturing"
	"github.com/mrp/backend/internal/domain/manufacturing"
	"github.com/mrp/backend/internal/interfaces/http/handler"
)

// NewRouter builds the gin engine with middleware and all routes registered
func NewRouter(orderService *appmfg.ManufacturingOrderService, logger *zap.Logger) *gin.Engine {
	registerValidations()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	handler.NewManufacturingOrderHandler(orderService).RegisterRoutes(api)

	return router
}

// registerValidations adds domain-specific binding validations
func registerValidations() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("mo_priority", func(fl validator.FieldLevel) bool {
		return manufacturing.Priority(fl.Field().String()).IsValid()
	})
}

// requestLogger logs one structured line per request
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

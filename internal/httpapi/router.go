// Package httpapi is the HTTP gateway used by the browser review UI.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/invoice-tracker/internal/app"
	"github.com/joseph-ayodele/invoice-tracker/internal/common"
)

// Handler serves the HTTP routes over the app services.
type Handler struct {
	app            *app.App
	logger         *slog.Logger
	uploadMaxBytes int64
	pingTimeout    time.Duration
}

func NewHandler(a *app.App, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		app:            a,
		logger:         logger,
		uploadMaxBytes: a.Config.Server.UploadMaxBytes,
		pingTimeout:    a.Config.Database.PingTimeout,
	}
	if h.uploadMaxBytes <= 0 {
		h.uploadMaxBytes = 10 << 20
	}
	if h.pingTimeout <= 0 {
		h.pingTimeout = 3 * time.Second
	}
	return h
}

// NewRouter returns a gin engine with every route registered.
func NewRouter(a *app.App, logger *slog.Logger) *gin.Engine {
	h := NewHandler(a, logger)

	r := gin.New()
	r.Use(gin.Recovery(), h.requestContext(), cors())
	r.MaxMultipartMemory = h.uploadMaxBytes

	r.GET("/api/health", h.health)

	nlp := r.Group("/nlp")
	nlp.POST("/extract", h.extract)
	nlp.POST("/feedback", h.submitFeedback)

	api := r.Group("/api")
	api.GET("/company", h.getCompany)
	api.POST("/company", h.updateCompany)
	api.POST("/invoices", h.saveInvoice)
	api.GET("/invoices", h.listInvoices)
	api.GET("/invoices/:id", h.getInvoice)
	api.GET("/feedbacks", h.listFeedbacks)
	api.POST("/feedbacks", h.recordFeedback)
	api.POST("/ocr", h.ocr)
	api.GET("/export", h.export)
	return r
}

// requestContext attaches a request id and logger, then logs the request.
func (h *Handler) requestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		ctx := c.Request.Context()
		if id := c.GetHeader("X-Request-ID"); id != "" {
			ctx = common.WithRequestID(ctx, id)
		}
		ctx, requestID := common.EnsureRequestID(ctx)
		log := h.logger.With("request_id", requestID)
		c.Request = c.Request.WithContext(common.WithLogger(ctx, log))
		c.Header("X-Request-ID", requestID)

		c.Next()

		log.Info("http.request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	}
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := common.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		common.LoggerFromContext(c.Request.Context(), h.logger).Error("http.request.failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{"error": common.MessageOf(err)})
}

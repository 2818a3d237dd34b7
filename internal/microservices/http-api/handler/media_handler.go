package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"immersionhub/internal/microservices/http-api/dto"
	"immersionhub/internal/microservices/http-api/service"
)

type MediaHandler struct {
	media   service.MediaService
	timeout time.Duration
	logger  *slog.Logger
}

func NewMediaHandler(media service.MediaService, opts Options) *MediaHandler {
	return &MediaHandler{
		media:   media,
		timeout: orDefaultTimeout(opts.Timeout),
		logger:  orDefaultLogger(opts.Logger),
	}
}

func (h *MediaHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/media/:id", h.Get)
}

// GET /api/media/:id
func (h *MediaHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	media, err := h.media.GetByID(ctx, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromMediaModel(*media))
}

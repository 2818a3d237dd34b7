package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"immersionhub/internal/importer"
	"immersionhub/internal/microservices/http-api/dto"
	"immersionhub/internal/microservices/http-api/service"
)

const (
	defaultImportMaxBytes = 5 << 20
	maxListLimit          = 1000
	dateOnlyLayoutLen     = len("2006-01-02")
)

type LogHandler struct {
	logs           service.LogService
	location       *time.Location
	timeout        time.Duration
	logger         *slog.Logger
	importMaxRows  int
	importMaxBytes int64
}

func NewLogHandler(logs service.LogService, opts Options) *LogHandler {
	maxBytes := opts.ImportMaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultImportMaxBytes
	}
	return &LogHandler{
		logs:           logs,
		location:       opts.Location,
		timeout:        orDefaultTimeout(opts.Timeout),
		logger:         orDefaultLogger(opts.Logger),
		importMaxRows:  opts.ImportMaxRows,
		importMaxBytes: maxBytes,
	}
}

// RegisterRoutes registers immersion log routes
func (h *LogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	logs := rg.Group("/logs")
	{
		logs.GET("", h.List)
		logs.POST("", h.Create)
		logs.POST("/import", h.Import)
		logs.GET("/:id", h.Get)
		logs.PUT("/:id", h.Update)
		logs.DELETE("/:id", h.Delete)
		logs.PUT("/:id/media", h.AssignMedia)
	}
}

// List returns the user's logs, newest first.
// GET /api/logs?from=2026-10-01&to=2026-10-18&type=anime&limit=50
// A bare date in "to" includes that whole day.
func (h *LogHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	loc, ok := requestLocation(c, h.location)
	if !ok {
		return
	}

	filter := service.LogListFilter{Type: c.Query("type")}

	if s := c.Query("from"); s != "" {
		from, err := importer.ParseDate(s, loc)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from: " + err.Error()})
			return
		}
		filter.From = &from
	}
	if s := c.Query("to"); s != "" {
		to, err := importer.ParseDate(s, loc)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to: " + err.Error()})
			return
		}
		if len(s) == dateOnlyLayoutLen {
			to = to.AddDate(0, 0, 1)
		}
		filter.To = &to
	}
	if s := c.Query("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit < 1 || limit > maxListLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 1000"})
			return
		}
		filter.Limit = limit
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	logs, err := h.logs.List(ctx, userID, filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromLogModels(logs))
}

// GET /api/logs/:id
func (h *LogHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	log, err := h.logs.Get(ctx, userID, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromLogModel(*log))
}

// POST /api/logs
func (h *LogHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.LogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	log, err := h.logs.Create(ctx, userID, toLogInput(req))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromLogModel(*log))
}

// Update replaces every editable field of the log.
// PUT /api/logs/:id
func (h *LogHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.LogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	log, err := h.logs.Update(ctx, userID, id, toLogInput(req))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromLogModel(*log))
}

// DELETE /api/logs/:id
func (h *LogHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	if err := h.logs.Delete(ctx, userID, id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// PUT /api/logs/:id/media
func (h *LogHandler) AssignMedia(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.AssignMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// AniList can be slow; give the lookup the full request budget.
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*h.timeout)
	defer cancel()

	log, err := h.logs.AssignMedia(ctx, userID, id, service.MediaInput{
		ContentID:       req.ContentID,
		Type:            req.Type,
		TitleRomaji:     req.TitleRomaji,
		TitleEnglish:    req.TitleEnglish,
		TitleNative:     req.TitleNative,
		Description:     req.Description,
		CoverImage:      req.CoverImage,
		EpisodeDuration: req.EpisodeDuration,
		Episodes:        req.Episodes,
		Chapters:        req.Chapters,
		Volumes:         req.Volumes,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromLogModel(*log))
}

// Import bulk-creates logs from an uploaded CSV or XLSX file in the "file"
// form field. Dates without a zone are read in ?tz=.
// POST /api/logs/import
func (h *LogHandler) Import(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	loc, ok := requestLocation(c, h.location)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.importMaxBytes+1<<20)
	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if fileHeader.Size > h.importMaxBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}

	format, err := importer.DetectFormat(fileHeader.Filename)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	defer file.Close()

	parsed, err := importer.Parse(file, format, importer.Options{
		MaxRows:  h.importMaxRows,
		Location: loc,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*h.timeout)
	defer cancel()

	result, err := h.logs.Import(ctx, userID, parsed.Records, parsed.Errors)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func toLogInput(req dto.LogRequest) service.LogInput {
	return service.LogInput{
		Type:        req.Type,
		Date:        req.Date,
		Description: req.Description,
		Time:        req.Time,
		Episodes:    req.Episodes,
		Pages:       req.Pages,
		Chars:       req.Chars,
		MediaID:     req.MediaID,
	}
}

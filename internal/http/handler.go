package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"lpr-service/internal/http/middleware"
	"lpr-service/internal/model"
	"lpr-service/internal/recognizer"
	"lpr-service/internal/service"
)

type Handler struct {
	plates *service.PlateService
	chat   *ChatProxy
	log    zerolog.Logger
}

func NewHandler(plates *service.PlateService, chat *ChatProxy, log zerolog.Logger) *Handler {
	return &Handler{plates: plates, chat: chat, log: log}
}

func (h *Handler) Register(r *gin.Engine, authMiddleware gin.HandlerFunc) {
	api := r.Group("/api/v1")

	api.GET("/history", h.getHistory)
	api.GET("/plates", h.listPlates)
	api.POST("/plates", h.createPlate)
	api.GET("/plates/:id", h.getPlate)
	api.POST("/recognize", h.recognizeImage)
	api.POST("/recognize-url", h.recognizeImageURL)
	api.Any("/chat/*path", h.forwardChat)

	protected := api.Group("")
	protected.Use(authMiddleware)
	protected.DELETE("/plates", h.deletePlate)
	protected.PATCH("/plates/:id/verify", h.verifyPlate)
	protected.PATCH("/plates/:id/violation", h.setViolation)
}

func (h *Handler) getHistory(c *gin.Context) {
	query := parseHistoryQuery(c)

	page, err := h.plates.HistoryPage(c.Request.Context(), query.Filter, query.Sort, query.Start, query.Size)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *Handler) listPlates(c *gin.Context) {
	limit := intQuery(c, "limit", 0)
	offset := intQuery(c, "offset", 0)

	records, err := h.plates.ListRecords(c.Request.Context(), limit, offset)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(records))
}

func (h *Handler) createPlate(c *gin.Context) {
	var rec model.PlateRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid request body"))
		return
	}

	created, err := h.plates.CreateRecord(c.Request.Context(), &rec)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(created))
}

func (h *Handler) getPlate(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, errorResponse("missing record id"))
		return
	}

	rec, err := h.plates.GetRecord(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(rec))
}

func (h *Handler) deletePlate(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	id := strings.TrimSpace(c.Query("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, errorResponse("missing record id"))
		return
	}

	if err := h.plates.DeleteRecord(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"id": id}))
}

type recognitionPayload struct {
	Result *recognizer.Response `json:"result"`
	Record *model.PlateRecord   `json:"record,omitempty"`
}

func (h *Handler) recognizeImage(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("missing image file"))
		return
	}
	defer file.Close()

	result, err := h.plates.RecognizeImage(c.Request.Context(), header.Filename, file)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(recognitionPayload{Result: result.Response, Record: result.Record}))
}

func (h *Handler) recognizeImageURL(c *gin.Context) {
	var body struct {
		URL string `json:"url"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid request body"))
		return
	}

	result, err := h.plates.RecognizeImageURL(c.Request.Context(), body.URL)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(recognitionPayload{Result: result.Response, Record: result.Record}))
}

func (h *Handler) verifyPlate(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	if err := h.plates.VerifyRecord(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"id": id, "verified": true}))
}

func (h *Handler) setViolation(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	var body struct {
		ViolationTypes []string `json:"violationTypes"`
		Description    string   `json:"description"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid request body"))
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	if err := h.plates.SetViolation(c.Request.Context(), principal, id, body.ViolationTypes, body.Description); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"id": id}))
}

func (h *Handler) forwardChat(c *gin.Context) {
	if h.chat == nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse("chat assistant is not configured"))
		return
	}
	h.chat.Forward(c)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, errorResponse(err.Error()))
	case errors.Is(err, recognizer.ErrTimeout):
		c.JSON(http.StatusGatewayTimeout, errorResponse("recognition request timed out"))
	case errors.Is(err, recognizer.ErrUnavailable):
		c.JSON(http.StatusBadGateway, errorResponse("cannot connect to recognition service"))
	case errors.Is(err, recognizer.ErrBackend):
		c.JSON(http.StatusBadGateway, errorResponse("recognition service returned an error"))
	default:
		h.log.Error().Err(err).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

func successResponse(data interface{}) gin.H {
	return gin.H{"data": data}
}

func errorResponse(message string) gin.H {
	return gin.H{"error": message}
}

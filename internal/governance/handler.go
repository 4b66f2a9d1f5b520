package governance

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	categories := rg.Group("/categories")
	{
		categories.GET("/:id", h.GetCategory)
		categories.PATCH("/:id/status", h.UpdateCategoryStatus)
		categories.PATCH("/:id/stage", h.UpdateCategoryStage)
		categories.GET("/:id/assets/:assetID", h.GetAsset)
		categories.PATCH("/:id/assets/:assetID/status", h.UpdateAssetStatus)
		categories.PATCH("/:id/assets/:assetID/stage", h.UpdateAssetStage)
		categories.PATCH("/:id/assets/:assetID/substage", h.UpdateAssetSubStage)
	}
}

type categoryStatusBody struct {
	Action Action         `json:"action" binding:"required"`
	Status CategoryStatus `json:"status" binding:"required"`
	Stage  *CategoryStage `json:"stage,omitempty"`
}

type categoryStageBody struct {
	Stage CategoryStage `json:"stage" binding:"required"`
}

type assetStatusBody struct {
	Action Action      `json:"action" binding:"required"`
	Status AssetStatus `json:"status" binding:"required"`
}

type assetStageBody struct {
	Action   Action         `json:"action" binding:"required"`
	Stage    AssetStage     `json:"stage" binding:"required"`
	SubStage *AssetSubStage `json:"sub_stage,omitempty"`
}

type assetSubStageBody struct {
	Action   Action         `json:"action" binding:"required"`
	SubStage AssetSubStage  `json:"sub_stage" binding:"required"`
	Stage    *AssetStage    `json:"stage,omitempty"`
	Note     map[string]any `json:"note,omitempty"`
}

func (h *Handler) respondError(c *gin.Context, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("governance operation failed", zap.Error(err))
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// principal returns the acting principal set by the auth middleware.
func principal(c *gin.Context) uuid.UUID {
	raw, ok := c.Get("principal_id")
	if !ok {
		return uuid.Nil
	}
	id, _ := raw.(uuid.UUID)
	return id
}

func (h *Handler) GetCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	cat, states, err := h.service.GetCategory(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": cat, "transitions": states})
}

func (h *Handler) UpdateCategoryStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body categoryStatusBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cat, err := h.service.UpdateCategoryStatus(c.Request.Context(), UpdateCategoryStatusRequest{
		CategoryID: id,
		Action:     body.Action,
		Principal:  principal(c),
		Status:     body.Status,
		Stage:      body.Stage,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *Handler) UpdateCategoryStage(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body categoryStageBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cat, err := h.service.UpdateCategoryStage(c.Request.Context(), UpdateCategoryStageRequest{
		CategoryID: id,
		Stage:      body.Stage,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *Handler) GetAsset(c *gin.Context) {
	categoryID, ok := pathID(c, "id")
	if !ok {
		return
	}
	assetID, ok := pathID(c, "assetID")
	if !ok {
		return
	}
	asset, states, err := h.service.GetAsset(c.Request.Context(), categoryID, assetID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"asset": asset, "transitions": states})
}

func (h *Handler) UpdateAssetStatus(c *gin.Context) {
	categoryID, ok := pathID(c, "id")
	if !ok {
		return
	}
	assetID, ok := pathID(c, "assetID")
	if !ok {
		return
	}
	var body assetStatusBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	asset, err := h.service.UpdateAssetStatus(c.Request.Context(), UpdateAssetStatusRequest{
		CategoryID: categoryID,
		AssetID:    assetID,
		Action:     body.Action,
		Principal:  principal(c),
		Status:     body.Status,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, asset)
}

func (h *Handler) UpdateAssetStage(c *gin.Context) {
	categoryID, ok := pathID(c, "id")
	if !ok {
		return
	}
	assetID, ok := pathID(c, "assetID")
	if !ok {
		return
	}
	var body assetStageBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	asset, err := h.service.UpdateAssetStage(c.Request.Context(), UpdateAssetStageRequest{
		CategoryID: categoryID,
		AssetID:    assetID,
		Action:     body.Action,
		Principal:  principal(c),
		Stage:      body.Stage,
		SubStage:   body.SubStage,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, asset)
}

func (h *Handler) UpdateAssetSubStage(c *gin.Context) {
	categoryID, ok := pathID(c, "id")
	if !ok {
		return
	}
	assetID, ok := pathID(c, "assetID")
	if !ok {
		return
	}
	var body assetSubStageBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	asset, err := h.service.UpdateAssetSubStage(c.Request.Context(), UpdateAssetSubStageRequest{
		CategoryID: categoryID,
		AssetID:    assetID,
		Action:     body.Action,
		Principal:  principal(c),
		SubStage:   body.SubStage,
		Stage:      body.Stage,
		Note:       body.Note,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, asset)
}

package handler

import (
	"context"
	"net/http"

	"marketplace-app/subscription-service/internal/models"
	"marketplace-app/subscription-service/internal/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type PlanService interface {
	Create(ctx context.Context, plan *models.SubscriptionPlan) error
	Confirm(ctx context.Context, id primitive.ObjectID) (services.MaterializeReport, error)
	Cancel(ctx context.Context, id primitive.ObjectID) error
	Unsubscribe(ctx context.Context, id primitive.ObjectID) error
	OverrideDate(ctx context.Context, id primitive.ObjectID, original, replacement string) error
	AutoReschedule(ctx context.Context, id primitive.ObjectID) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.SubscriptionPlan, error)
	GetByBuyer(ctx context.Context, buyerID string) ([]models.SubscriptionPlan, error)
}

type PlanHandler struct {
	service PlanService
}

func NewPlanHandler(svc PlanService) *PlanHandler {
	return &PlanHandler{service: svc}
}

func (h *PlanHandler) Create(c *gin.Context) {
	var in struct {
		SellerID      string                 `json:"seller_id" binding:"required"`
		ShopID        string                 `json:"shop_id" binding:"required"`
		ProductID     string                 `json:"product_id" binding:"required"`
		Quantity      int                    `json:"quantity" binding:"required,gt=0"`
		Instruction   string                 `json:"instruction"`
		PaymentMethod models.PaymentMethod   `json:"payment_method" binding:"required"`
		Product       models.ProductSnapshot `json:"product" binding:"required"`
		Shop          models.ShopSnapshot    `json:"shop"`
		Plan          struct {
			RepeatType string   `json:"repeat_type" binding:"required"`
			RepeatUnit int      `json:"repeat_unit"`
			StartDates []string `json:"start_dates" binding:"required"`
		} `json:"plan" binding:"required"`
	}

	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(in.Plan.StartDates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_dates cannot be empty"})
		return
	}
	if in.Plan.RepeatUnit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "repeat_unit cannot be negative"})
		return
	}

	plan := &models.SubscriptionPlan{
		BuyerID:       c.GetString("userId"),
		SellerID:      in.SellerID,
		ShopID:        in.ShopID,
		ProductID:     in.ProductID,
		Quantity:      in.Quantity,
		Instruction:   in.Instruction,
		PaymentMethod: in.PaymentMethod,
		Product:       in.Product,
		Shop:          in.Shop,
		Plan: models.RecurrenceRule{
			RepeatType: in.Plan.RepeatType,
			RepeatUnit: in.Plan.RepeatUnit,
			StartDates: in.Plan.StartDates,
		},
	}

	if err := h.service.Create(c.Request.Context(), plan); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create plan"})
		return
	}
	c.JSON(http.StatusCreated, plan)
}

func (h *PlanHandler) GetByID(c *gin.Context) {
	id, ok := h.planID(c)
	if !ok {
		return
	}
	plan, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "plan not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch plan"})
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *PlanHandler) GetMy(c *gin.Context) {
	plans, err := h.service.GetByBuyer(c.Request.Context(), c.GetString("userId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch plans"})
		return
	}
	c.JSON(http.StatusOK, plans)
}

// Confirm — продавец включает план; материализация запускается сразу же.
func (h *PlanHandler) Confirm(c *gin.Context) {
	id, ok := h.planID(c)
	if !ok {
		return
	}
	report, err := h.service.Confirm(c.Request.Context(), id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "plan not found"})
			return
		}
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"created_instances": len(report.CreatedIDs)})
}

func (h *PlanHandler) Cancel(c *gin.Context) {
	h.transition(c, h.service.Cancel)
}

func (h *PlanHandler) Unsubscribe(c *gin.Context) {
	h.transition(c, h.service.Unsubscribe)
}

func (h *PlanHandler) OverrideDate(c *gin.Context) {
	id, ok := h.planID(c)
	if !ok {
		return
	}

	var in struct {
		Original    string `json:"original" binding:"required"`
		Replacement string `json:"replacement" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.OverrideDate(c.Request.Context(), id, in.Original, in.Replacement); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "plan not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *PlanHandler) AutoReschedule(c *gin.Context) {
	id, ok := h.planID(c)
	if !ok {
		return
	}
	if err := h.service.AutoReschedule(c.Request.Context(), id); err != nil {
		switch err {
		case mongo.ErrNoDocuments, services.ErrPlanNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "plan not found"})
		case services.ErrShopNotFound, services.ErrProductNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reschedule"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *PlanHandler) transition(c *gin.Context, fn func(context.Context, primitive.ObjectID) error) {
	id, ok := h.planID(c)
	if !ok {
		return
	}
	if err := fn(c.Request.Context(), id); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "plan not found"})
			return
		}
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *PlanHandler) planID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid plan ID"})
		return primitive.NilObjectID, false
	}
	return id, true
}

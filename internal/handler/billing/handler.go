package billing

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/praxisdesk/practice-api/internal/handler"
	"github.com/praxisdesk/practice-api/internal/middleware"
	"github.com/praxisdesk/practice-api/internal/model"
	"github.com/praxisdesk/practice-api/internal/service/billing"
)

type Handler struct {
	service *billing.Service
}

func NewHandler(service *billing.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	b := r.Group("/billing")
	{
		b.GET("/plans", h.ListPlans)
		b.POST("/checkout", h.CreateCheckout)
	}
}

func (h *Handler) ListPlans(c *gin.Context) {
	c.JSON(http.StatusOK, handler.NewSuccessResponse(h.service.Plans()))
}

func (h *Handler) CreateCheckout(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("authentication required"))
		return
	}

	var req model.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	sess, err := h.service.CreateCheckout(c.Request.Context(), userID, &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(sess))
}

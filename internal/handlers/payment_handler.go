package handlers

import (
	"crypto/subtle"
	"net/http"

	"handcraft_market/internal/models"
	"handcraft_market/internal/services"

	"github.com/gin-gonic/gin"
)

// PaymentHandler receives capture callbacks from the payment provider and
// drives the waiting_for_payment → paid transition as the system actor. It
// only validates and relays; talking to the gateway itself is out of scope.
type PaymentHandler struct {
	orderService  services.OrderService
	webhookSecret string
}

func NewPaymentHandler(orderService services.OrderService, webhookSecret string) *PaymentHandler {
	return &PaymentHandler{
		orderService:  orderService,
		webhookSecret: webhookSecret,
	}
}

func (h *PaymentHandler) HandleWebhook(c *gin.Context) {
	secret := c.GetHeader("X-Webhook-Secret")
	if subtle.ConstantTimeCompare([]byte(secret), []byte(h.webhookSecret)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook secret"})
		return
	}

	var req struct {
		OrderCode string `json:"order_code" binding:"required"`
		Amount    int64  `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	order, err := h.orderService.GetOrderByCode(req.OrderCode)
	if err != nil {
		respondError(c, err)
		return
	}
	if req.Amount != order.TotalAmount {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "amount does not match order total"})
		return
	}

	order, err = h.orderService.RequestTransition(order.ID, models.StatusPaid, models.ActorSystem, 0)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

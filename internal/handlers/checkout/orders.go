package checkout

import (
	"errors"
	"log"
	"net/http"

	"docbadman_back_end/internal/orders"

	"github.com/gin-gonic/gin"
)

// OrderHandler — création de commande côté boutique
type OrderHandler struct {
	Store *orders.ScyllaStore
}

func NewOrderHandler(store *orders.ScyllaStore) *OrderHandler {
	return &OrderHandler{Store: store}
}

// Create enregistre la commande (instantané client + lignes + totaux),
// réserve le stock et retourne le numéro de commande
func (h *OrderHandler) Create(c *gin.Context) {
	var req struct {
		CustomerName    string `json:"customer_name" binding:"required,max=255"`
		CustomerEmail   string `json:"customer_email" binding:"required,email"`
		CustomerPhone   string `json:"customer_phone" binding:"required,max=20"`
		ShippingAddress string `json:"shipping_address" binding:"required"`
		Items           []struct {
			PaintingID    string `json:"painting_id" binding:"required"`
			PaintingTitle string `json:"painting_title" binding:"required"`
			Price         int64  `json:"price" binding:"required"`
			Quantity      int    `json:"quantity" binding:"required,min=1"`
		} `json:"items" binding:"required,min=1"`
		Subtotal     int64 `json:"subtotal" binding:"required"`
		ShippingCost int64 `json:"shipping_cost"`
		Total        int64 `json:"total" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": err.Error()})
		return
	}

	input := orders.CreateOrderInput{
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		ShippingAddress: req.ShippingAddress,
		Subtotal:        req.Subtotal,
		ShippingCost:    req.ShippingCost,
		Total:           req.Total,
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, orders.CreateOrderItem{
			PaintingID:    item.PaintingID,
			PaintingTitle: item.PaintingTitle,
			Price:         item.Price,
			Quantity:      item.Quantity,
		})
	}

	order, err := h.Store.CreateOrder(c.Request.Context(), input)
	if err != nil {
		var vErr *orders.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": gin.H{vErr.Field: vErr.Message}})
			return
		}
		log.Printf("❌ Erreur création commande: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la création de la commande"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":      "Commande enregistrée avec succès",
		"order_number": order.OrderNumber,
		"order_id":     order.ID.String(),
	})
}

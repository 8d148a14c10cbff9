package admin

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"docbadman_back_end/internal/models"
	"docbadman_back_end/internal/orders"
	"docbadman_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

// OrderHandler — gestion des commandes côté admin
type OrderHandler struct {
	Store     *orders.ScyllaStore
	Inventory *orders.Inventory
	Notifier  *utils.EmailNotifier
}

func NewOrderHandler(store *orders.ScyllaStore, inventory *orders.Inventory, notifier *utils.EmailNotifier) *OrderHandler {
	return &OrderHandler{Store: store, Inventory: inventory, Notifier: notifier}
}

// List — commandes filtrées par statut et recherche (numéro, nom, email)
func (h *OrderHandler) List(c *gin.Context) {
	status := models.OrderStatus(c.Query("status"))
	search := c.Query("search")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	if status != "" && !status.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Statut inconnu: " + string(status)})
		return
	}

	result, err := h.Store.List(c.Request.Context(), status, search, limit)
	if err != nil {
		log.Printf("❌ Erreur liste commandes: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result, "total": len(result)})
}

// Show — détail d'une commande avec ses lignes
func (h *OrderHandler) Show(c *gin.Context) {
	orderID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID commande invalide"})
		return
	}

	order, err := h.Store.FindByID(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, orders.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	c.JSON(http.StatusOK, order)
}

// UpdateStatus applique une transition manuelle du cycle de vie.
// L'annulation restitue le stock réservé ; le client est notifié par
// email du nouveau statut.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID commande invalide"})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Statut requis"})
		return
	}
	newStatus := models.OrderStatus(req.Status)

	ctx := c.Request.Context()
	order, err := h.Store.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, orders.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	previous := order.Status
	if err := h.Store.ApplyStatus(ctx, order, newStatus); err != nil {
		var vErr *orders.ValidationError
		switch {
		case errors.As(err, &vErr):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": vErr.Message})
		case errors.Is(err, orders.ErrInvalidTransition):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "Transition non autorisée: " + string(previous) + " → " + string(newStatus),
			})
		default:
			log.Printf("❌ Erreur changement statut %s: %v", order.OrderNumber, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la mise à jour"})
		}
		return
	}

	// Le stock a été réservé à la création : l'annulation le restitue
	if order.Status == models.StatusCancelled && previous != models.StatusCancelled {
		for _, item := range order.Items {
			if err := h.Inventory.Restore(ctx, item.PaintingID, item.Quantity, &order.ID); err != nil {
				log.Printf("⚠️ Échec restitution stock pour %s: %v", item.PaintingTitle, err)
			}
		}
	}

	if order.Status != previous {
		if order.Status == models.StatusPaid {
			h.Notifier.NotifyPaymentConfirmed(order)
		} else {
			h.Notifier.NotifyStatusChanged(order, order.Status)
		}
	}

	log.Printf("📦 Commande %s: %s → %s", order.OrderNumber, previous, order.Status)
	c.JSON(http.StatusOK, order)
}

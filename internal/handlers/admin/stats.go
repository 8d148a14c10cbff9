package admin

import (
	"net/http"

	"docbadman_back_end/internal/database"
	"docbadman_back_end/internal/models"
	"docbadman_back_end/internal/orders"

	"github.com/gin-gonic/gin"
)

// StatsHandler — tableau de bord du panneau d'admin
type StatsHandler struct {
	Store *orders.ScyllaStore
}

func NewStatsHandler(store *orders.ScyllaStore) *StatsHandler {
	return &StatsHandler{Store: store}
}

// Dashboard — compteurs par statut, chiffre d'affaires (commandes ayant
// un paid_at), état du catalogue et les 5 dernières commandes
func (h *StatsHandler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	all, err := h.Store.List(ctx, "", "", 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	byStatus := map[string]int{}
	var revenue int64
	for _, o := range all {
		byStatus[string(o.Status)]++
		// Le chiffre d'affaires suit paid_at : une commande expédiée ou
		// livrée reste comptée, une commande annulée après paiement aussi
		if o.PaidAt != nil {
			revenue += o.Total
		}
	}

	recent := all
	if len(recent) > 5 {
		recent = recent[:5]
	}

	totalPaintings, soldOut := paintingCounts(c)

	c.JSON(http.StatusOK, gin.H{
		"orders": gin.H{
			"total":     len(all),
			"by_status": byStatus,
			"recent":    recent,
		},
		"revenue": revenue, // Centimes (KES)
		"catalog": gin.H{
			"total_paintings": totalPaintings,
			"sold_out":        soldOut,
		},
	})
}

func paintingCounts(c *gin.Context) (total, soldOut int) {
	session, err := database.GetGallerySession()
	if err != nil {
		return 0, 0
	}

	iter := session.Query("SELECT quantity, is_available FROM paintings").
		WithContext(c.Request.Context()).Iter()

	var p models.Painting
	for iter.Scan(&p.Quantity, &p.IsAvailable) {
		total++
		if p.Quantity == 0 {
			soldOut++
		}
	}
	iter.Close()
	return total, soldOut
}

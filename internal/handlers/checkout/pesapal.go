package checkout

import (
	"errors"
	"log"
	"net/http"

	"docbadman_back_end/internal/orders"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

// PaymentHandler — adaptateurs HTTP minces autour du réconciliateur.
// L'IPN PesaPal et le polling navigateur convergent sur la même
// opération Reconcile : la logique de course n'existe qu'à un endroit.
type PaymentHandler struct {
	Reconciler *orders.Reconciler
}

func NewPaymentHandler(reconciler *orders.Reconciler) *PaymentHandler {
	return &PaymentHandler{Reconciler: reconciler}
}

// Initiate — appelé par le frontend pour lancer le paiement ; retourne
// l'URL de la page de paiement hébergée PesaPal
func (h *PaymentHandler) Initiate(c *gin.Context) {
	var req struct {
		OrderID string `json:"order_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	orderID, err := gocql.ParseUUID(req.OrderID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID commande invalide"})
		return
	}

	paymentURL, err := h.Reconciler.InitiatePayment(c.Request.Context(), orderID)
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		case errors.Is(err, orders.ErrOrderNotPayable):
			c.JSON(http.StatusConflict, gin.H{"error": "La commande n'est plus en attente de paiement"})
		default:
			log.Printf("❌ Erreur initiation paiement: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Échec de l'initiation du paiement. Veuillez réessayer."})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"payment_url": paymentURL})
}

// IPN — PesaPal nous notifie après paiement (GET). Les deux conventions
// de casse des paramètres sont acceptées. On répond 200 dès que la
// notification a été traitée ; 404 seulement quand la résolution échoue
// vraiment, pour provoquer un retry côté prestataire.
func (h *PaymentHandler) IPN(c *gin.Context) {
	trackingID := c.Query("OrderTrackingId")
	if trackingID == "" {
		trackingID = c.Query("orderTrackingId")
	}
	merchantRef := c.Query("OrderMerchantReference")
	if merchantRef == "" {
		merchantRef = c.Query("orderMerchantReference")
	}

	if trackingID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Identifiant de suivi manquant"})
		return
	}

	result, err := h.Reconciler.Reconcile(c.Request.Context(), trackingID, merchantRef)
	if err != nil {
		if errors.Is(err, orders.ErrOrderNotFound) {
			log.Printf("❌ IPN PesaPal: commande introuvable (ref=%q)", merchantRef)
			c.JSON(http.StatusNotFound, gin.H{"message": "Commande introuvable"})
			return
		}
		log.Printf("❌ Erreur IPN PesaPal: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Échec du traitement IPN"})
		return
	}

	log.Printf("📥 IPN PesaPal traité pour %s (statut: %s)", result.Order.OrderNumber, result.ProviderStatus)
	c.JSON(http.StatusOK, gin.H{"message": "IPN traité"})
}

// Verify — polling du navigateur après retour de la page PesaPal.
// Même opération Reconcile ; le statut prestataire est renvoyé tel quel
// à l'interface, sans mutation d'état quand il n'est pas "Completed".
func (h *PaymentHandler) Verify(c *gin.Context) {
	trackingID := c.Query("OrderTrackingId")
	orderNumber := c.Query("order")

	if trackingID == "" || orderNumber == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": "invalid"})
		return
	}

	result, err := h.Reconciler.Reconcile(c.Request.Context(), trackingID, orderNumber)
	if err != nil {
		if errors.Is(err, orders.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "Commande introuvable"})
			return
		}
		log.Printf("❌ Erreur vérification PesaPal: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       result.ProviderStatus,
		"order_number": orderNumber,
	})
}

package orders

import (
	"context"
	"log"
	"time"

	"docbadman_back_end/internal/database"
	"docbadman_back_end/internal/models"

	"github.com/gocql/gocql"
)

// Inventory ajuste le stock des œuvres et journalise chaque mouvement.
// La réservation est optimiste : le stock est décrémenté à la création
// de la commande, pas à la confirmation du paiement.
type Inventory struct{}

// clampStock borne le stock à zéro : new = max(0, n)
func clampStock(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// Decrement décrémente le stock d'une œuvre (plancher à zéro)
func (inv *Inventory) Decrement(ctx context.Context, paintingID gocql.UUID, quantity int, orderID *gocql.UUID) error {
	return inv.adjust(ctx, paintingID, -quantity, "sale", "commande client", orderID)
}

// Restore restitue le stock d'une œuvre (annulation de commande)
func (inv *Inventory) Restore(ctx context.Context, paintingID gocql.UUID, quantity int, orderID *gocql.UUID) error {
	return inv.adjust(ctx, paintingID, quantity, "return", "commande annulée", orderID)
}

func (inv *Inventory) adjust(ctx context.Context, paintingID gocql.UUID, delta int, movementType, reason string, orderID *gocql.UUID) error {
	session, err := database.GetGallerySession()
	if err != nil {
		return err
	}

	var currentStock int
	var title string
	err = session.Query("SELECT quantity, title FROM paintings WHERE painting_id = ?", paintingID).
		WithContext(ctx).Scan(&currentStock, &title)
	if err != nil {
		log.Printf("❌ Œuvre introuvable pour ajustement stock: %v", err)
		return err
	}

	newStock := clampStock(currentStock + delta)

	err = session.Query("UPDATE paintings SET quantity = ?, updated_at = ? WHERE painting_id = ?",
		newStock, time.Now(), paintingID).WithContext(ctx).Exec()
	if err != nil {
		log.Printf("❌ Erreur mise à jour stock: %v", err)
		return err
	}

	// Journaliser le mouvement de stock
	movement := models.StockMovement{
		ID:         gocql.TimeUUID(),
		PaintingID: paintingID,
		Type:       movementType,
		Quantity:   delta,
		PrevStock:  currentStock,
		NewStock:   newStock,
		Reason:     reason,
		OrderID:    orderID,
		CreatedAt:  time.Now(),
	}

	err = session.Query(`
		INSERT INTO stock_movements (id, painting_id, type, quantity, prev_stock, new_stock, reason, order_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		movement.ID, movement.PaintingID, movement.Type, movement.Quantity,
		movement.PrevStock, movement.NewStock, movement.Reason, movement.OrderID,
		movement.CreatedAt,
	).WithContext(ctx).Exec()
	if err != nil {
		log.Printf("⚠️ Erreur enregistrement mouvement stock: %v", err)
	}

	log.Printf("✅ Stock mis à jour pour « %s »: %d → %d", title, currentStock, newStock)
	return nil
}

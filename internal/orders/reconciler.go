package orders

import (
	"context"
	"errors"
	"log"
	"time"

	"docbadman_back_end/internal/models"
	"docbadman_back_end/internal/pesapal"

	"github.com/gocql/gocql"
)

// Gateway — les opérations PesaPal dont le réconciliateur dépend
type Gateway interface {
	SubmitOrder(ctx context.Context, in pesapal.SubmitOrderInput) (*pesapal.SubmitOrderResult, error)
	GetTransactionStatus(ctx context.Context, trackingID string) (*pesapal.TransactionStatus, error)
}

// Notifier — envoi d'emails de statut, best-effort et non bloquant.
// Un échec d'envoi ne doit jamais faire échouer une transition de
// paiement : les implémentations journalisent et avalent leurs erreurs.
type Notifier interface {
	NotifyPaymentConfirmed(order *models.Order)
	NotifyStatusChanged(order *models.Order, newStatus models.OrderStatus)
}

// Reconciler orchestre la création du paiement et la réconciliation
// idempotente des signaux de confirmation. L'IPN PesaPal et le polling
// navigateur appellent tous deux Reconcile : la transition paid et son
// email de confirmation se produisent exactement une fois, quel que
// soit le nombre ou l'entrelacement des appels.
type Reconciler struct {
	store    Store
	gateway  Gateway
	notifier Notifier
}

func NewReconciler(store Store, gateway Gateway, notifier Notifier) *Reconciler {
	return &Reconciler{store: store, gateway: gateway, notifier: notifier}
}

// InitiatePayment soumet la commande à PesaPal et retourne l'URL de la
// page de paiement hébergée. Le statut reste pending ; seuls les champs
// de corrélation sont attachés. En cas d'échec prestataire, la commande
// n'est pas touchée et reste payable (l'opération est réessayable).
func (r *Reconciler) InitiatePayment(ctx context.Context, orderID gocql.UUID) (string, error) {
	order, err := r.store.FindByID(ctx, orderID)
	if err != nil {
		return "", err
	}

	if order.Status != models.StatusPending {
		return "", ErrOrderNotPayable
	}

	result, err := r.gateway.SubmitOrder(ctx, pesapal.SubmitOrderInput{
		OrderNumber:   order.OrderNumber,
		Amount:        order.Total,
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		CustomerPhone: order.CustomerPhone,
	})
	if err != nil {
		// Surface l'erreur telle quelle : la commande reste intacte
		return "", err
	}

	if err := r.store.AttachGateway(ctx, order, result.TrackingID, result.MerchantRef); err != nil {
		return "", err
	}

	log.Printf("💳 Paiement initié pour %s (tracking: %s)", order.OrderNumber, result.TrackingID)
	return result.RedirectURL, nil
}

// ReconcileResult — issue d'un appel à Reconcile
type ReconcileResult struct {
	Order          *models.Order
	ProviderStatus string
	// Transitioned est vrai uniquement pour l'appel qui a réellement
	// fait passer la commande à paid (et déclenché l'email)
	Transitioned bool
}

// Reconcile — LA transition idempotente du cœur, appelée par l'IPN et
// par le polling navigateur, dans n'importe quel ordre et autant de
// fois que nécessaire.
func (r *Reconciler) Reconcile(ctx context.Context, trackingID, merchantRef string) (*ReconcileResult, error) {
	// 1. Résoudre la commande : référence marchand d'abord, identifiant
	// de suivi en secours (l'appelant n'a pas toujours les deux)
	order, err := r.resolve(ctx, trackingID, merchantRef)
	if err != nil {
		return nil, err
	}

	// 2. Interroger PesaPal avec l'identifiant de suivi résolu
	queryID := trackingID
	if queryID == "" {
		queryID = order.TrackingID
	}
	if queryID == "" {
		return nil, &ReconciliationError{Err: errors.New("aucun identifiant de suivi disponible pour " + order.OrderNumber)}
	}

	status, err := r.gateway.GetTransactionStatus(ctx, queryID)
	if err != nil {
		return nil, &ReconciliationError{Err: err}
	}

	result := &ReconcileResult{Order: order, ProviderStatus: status.PaymentStatusDescription}

	// 3. Statut non final : aucun changement d'état, l'appelant
	// rappellera (c'est attendu et peu coûteux)
	if !status.IsCompleted() {
		log.Printf("ℹ️ Paiement non finalisé pour %s: %q", order.OrderNumber, status.PaymentStatusDescription)
		return result, nil
	}

	// 4. Déjà payée : no-op strict. Ni paid_at réécrit, ni second email.
	if order.Status == models.StatusPaid {
		log.Printf("🔁 Commande %s déjà payée, réconciliation ignorée", order.OrderNumber)
		return result, nil
	}

	// 5. Check-and-set atomique : un seul déclencheur concurrent
	// obtient applied=true
	now := time.Now()
	applied, current, err := r.store.MarkPaid(ctx, order.ID, now)
	if err != nil {
		return nil, &ReconciliationError{Err: err}
	}

	if !applied {
		if current == models.StatusPaid {
			// Un déclencheur concurrent a gagné la course : idempotence
			log.Printf("🔁 Commande %s payée par un appel concurrent", order.OrderNumber)
			order.Status = models.StatusPaid
		} else {
			// La commande a quitté pending entre-temps (ex: annulée par
			// l'admin) : on ne force jamais paid par-dessus
			log.Printf("⚠️ Transition paid refusée pour %s (statut actuel: %s)", order.OrderNumber, current)
			order.Status = current
		}
		return result, nil
	}

	order.Status = models.StatusPaid
	order.PaidAt = &now
	order.UpdatedAt = now
	result.Transitioned = true

	log.Printf("✅ Paiement confirmé pour %s (paid_at: %s)", order.OrderNumber, now.Format(time.RFC3339))

	// L'email est best-effort : le paiement fait foi même si l'envoi échoue
	r.notifier.NotifyPaymentConfirmed(order)

	return result, nil
}

func (r *Reconciler) resolve(ctx context.Context, trackingID, merchantRef string) (*models.Order, error) {
	if merchantRef != "" {
		order, err := r.store.FindByOrderNumber(ctx, merchantRef)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, ErrOrderNotFound) {
			return nil, &ReconciliationError{Err: err}
		}
	}

	if trackingID != "" {
		order, err := r.store.FindByTrackingID(ctx, trackingID)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, ErrOrderNotFound) {
			return nil, &ReconciliationError{Err: err}
		}
	}

	log.Printf("❌ Réconciliation: aucune commande pour ref=%q tracking=%q", merchantRef, trackingID)
	return nil, ErrOrderNotFound
}

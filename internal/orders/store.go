package orders

import (
	"context"
	"log"
	"regexp"
	"sort"
	"strings"
	"time"

	"docbadman_back_end/internal/database"
	"docbadman_back_end/internal/models"

	"github.com/gocql/gocql"
)

// Store — le contrat du magasin de commandes vu par le réconciliateur.
// L'implémentation ScyllaDB est ScyllaStore ; les tests substituent
// un magasin en mémoire.
type Store interface {
	FindByID(ctx context.Context, orderID gocql.UUID) (*models.Order, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	FindByTrackingID(ctx context.Context, trackingID string) (*models.Order, error)
	AttachGateway(ctx context.Context, order *models.Order, trackingID, merchantRef string) error

	// MarkPaid tente la transition pending→paid en un seul check-and-set
	// atomique (LWT). applied=false + current="paid" = appel idempotent.
	MarkPaid(ctx context.Context, orderID gocql.UUID, paidAt time.Time) (applied bool, current models.OrderStatus, err error)
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type CreateOrderItem struct {
	PaintingID    string
	PaintingTitle string
	Price         int64 // Centimes
	Quantity      int
}

type CreateOrderInput struct {
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	ShippingAddress string
	Items           []CreateOrderItem
	Subtotal        int64 // Centimes
	ShippingCost    int64 // Centimes
	Total           int64 // Centimes
}

// ScyllaStore — implémentation ScyllaDB du magasin de commandes
type ScyllaStore struct {
	Inventory *Inventory
}

func NewScyllaStore(inventory *Inventory) *ScyllaStore {
	return &ScyllaStore{Inventory: inventory}
}

// CreateOrder valide la saisie, persiste la commande et ses lignes en un
// batch atomique, puis réserve le stock de chaque œuvre (réservation
// optimiste, plancher à zéro)
func (s *ScyllaStore) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	if err := validateOrderInput(in); err != nil {
		return nil, err
	}

	gallerySession, err := database.GetGallerySession()
	if err != nil {
		return nil, err
	}

	// Vérifier que chaque œuvre référencée existe et est achetable
	paintingIDs := make([]gocql.UUID, len(in.Items))
	for i, item := range in.Items {
		pid, err := gocql.ParseUUID(item.PaintingID)
		if err != nil {
			return nil, &ValidationError{Field: "items", Message: "ID d'œuvre invalide: " + item.PaintingID}
		}

		var quantity int
		var isAvailable bool
		err = gallerySession.Query("SELECT quantity, is_available FROM paintings WHERE painting_id = ?", pid).
			WithContext(ctx).Scan(&quantity, &isAvailable)
		if err != nil {
			return nil, paintingLookupError(err, item.PaintingID)
		}
		if !isAvailable {
			return nil, &ValidationError{Field: "items", Message: "œuvre non disponible: " + item.PaintingTitle}
		}
		paintingIDs[i] = pid
	}

	ordersSession, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	order := &models.Order{
		ID:              gocql.TimeUUID(),
		OrderNumber:     models.GenerateOrderNumber(),
		CustomerName:    in.CustomerName,
		CustomerEmail:   in.CustomerEmail,
		CustomerPhone:   in.CustomerPhone,
		ShippingAddress: in.ShippingAddress,
		Subtotal:        in.Subtotal,
		ShippingCost:    in.ShippingCost,
		Total:           in.Total,
		Status:          models.StatusPending,
		PaymentMethod:   models.PaymentMethodPesaPal,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	// Commande + lignes + table de correspondance en un seul batch
	batch := ordersSession.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(`
		INSERT INTO orders (order_id, order_number, customer_name, customer_email, customer_phone,
			shipping_address, subtotal, shipping_cost, total, status, payment_method,
			pesapal_tracking_id, pesapal_merchant_reference, paid_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID, order.OrderNumber, order.CustomerName, order.CustomerEmail, order.CustomerPhone,
		order.ShippingAddress, order.Subtotal, order.ShippingCost, order.Total, string(order.Status),
		order.PaymentMethod, "", "", nil, order.CreatedAt, order.UpdatedAt)

	for i, item := range in.Items {
		orderItem := models.OrderItem{
			ID:            gocql.TimeUUID(),
			OrderID:       order.ID,
			PaintingID:    paintingIDs[i],
			PaintingTitle: item.PaintingTitle,
			Price:         item.Price,
			Quantity:      item.Quantity,
			Subtotal:      item.Price * int64(item.Quantity),
		}
		order.Items = append(order.Items, orderItem)

		batch.Query(`
			INSERT INTO order_items (order_id, item_id, painting_id, painting_title, price, quantity, subtotal)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			orderItem.OrderID, orderItem.ID, orderItem.PaintingID, orderItem.PaintingTitle,
			orderItem.Price, orderItem.Quantity, orderItem.Subtotal)
	}

	batch.Query("INSERT INTO orders_by_number (order_number, order_id) VALUES (?, ?)",
		order.OrderNumber, order.ID)

	if err := ordersSession.ExecuteBatch(batch); err != nil {
		log.Printf("❌ Erreur insertion commande: %v", err)
		return nil, err
	}

	// Réservation optimiste du stock, une fois la commande persistée.
	// Non réversible automatiquement : seule l'annulation restitue.
	for i, item := range in.Items {
		if err := s.Inventory.Decrement(ctx, paintingIDs[i], item.Quantity, &order.ID); err != nil {
			log.Printf("⚠️ Échec décrément stock pour %s: %v", item.PaintingID, err)
		}
	}

	log.Printf("✅ Commande créée: %s (%d articles, total %d centimes)",
		order.OrderNumber, len(order.Items), order.Total)
	return order, nil
}

// paintingLookupError distingue l'œuvre absente (saisie corrigeable par
// le client, 422) d'une panne de la base (erreur interne, 500)
func paintingLookupError(err error, paintingID string) error {
	if err == gocql.ErrNotFound {
		return &ValidationError{Field: "items", Message: "œuvre introuvable: " + paintingID}
	}
	return err
}

func validateOrderInput(in CreateOrderInput) error {
	if strings.TrimSpace(in.CustomerName) == "" {
		return &ValidationError{Field: "customer_name", Message: "nom requis"}
	}
	if !emailPattern.MatchString(in.CustomerEmail) {
		return &ValidationError{Field: "customer_email", Message: "email invalide"}
	}
	if strings.TrimSpace(in.CustomerPhone) == "" {
		return &ValidationError{Field: "customer_phone", Message: "téléphone requis"}
	}
	if strings.TrimSpace(in.ShippingAddress) == "" {
		return &ValidationError{Field: "shipping_address", Message: "adresse de livraison requise"}
	}
	if len(in.Items) == 0 {
		return &ValidationError{Field: "items", Message: "au moins un article est requis"}
	}

	var itemsSubtotal int64
	for _, item := range in.Items {
		if item.Quantity < 1 {
			return &ValidationError{Field: "items", Message: "quantité invalide"}
		}
		if item.Price < 0 {
			return &ValidationError{Field: "items", Message: "prix invalide"}
		}
		itemsSubtotal += item.Price * int64(item.Quantity)
	}

	// Invariants monétaires : somme des lignes = sous-total,
	// sous-total + livraison = total
	if in.Subtotal < 0 || in.ShippingCost < 0 {
		return &ValidationError{Field: "subtotal", Message: "montant négatif"}
	}
	if itemsSubtotal != in.Subtotal {
		return &ValidationError{Field: "subtotal", Message: "le sous-total ne correspond pas aux articles"}
	}
	if in.Subtotal+in.ShippingCost != in.Total {
		return &ValidationError{Field: "total", Message: "total incohérent (sous-total + livraison)"}
	}

	return nil
}

// FindByID charge une commande et ses lignes
func (s *ScyllaStore) FindByID(ctx context.Context, orderID gocql.UUID) (*models.Order, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	order, err := scanOrder(ctx, session, orderID)
	if err != nil {
		return nil, err
	}

	order.Items, err = loadItems(ctx, session, orderID)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// FindByOrderNumber résout via orders_by_number (référence marchand PesaPal).
// Une requête construite par appel : l'IPN et le polling navigateur
// résolvent en parallèle, aucun état ne doit être partagé entre eux
// (gocql prépare et met en cache l'énoncé au niveau de la session).
func (s *ScyllaStore) FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	if orderNumber == "" {
		return nil, ErrOrderNotFound
	}

	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	var orderID gocql.UUID
	err = session.Query("SELECT order_id FROM orders_by_number WHERE order_number = ?", orderNumber).
		WithContext(ctx).Scan(&orderID)
	if err != nil {
		if err == gocql.ErrNotFound {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	return s.FindByID(ctx, orderID)
}

// FindByTrackingID résout via orders_by_tracking (identifiant de suivi
// PesaPal). Même règle que FindByOrderNumber : une requête par appel.
func (s *ScyllaStore) FindByTrackingID(ctx context.Context, trackingID string) (*models.Order, error) {
	if trackingID == "" {
		return nil, ErrOrderNotFound
	}

	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	var orderID gocql.UUID
	err = session.Query("SELECT order_id FROM orders_by_tracking WHERE tracking_id = ?", trackingID).
		WithContext(ctx).Scan(&orderID)
	if err != nil {
		if err == gocql.ErrNotFound {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	return s.FindByID(ctx, orderID)
}

// AttachGateway persiste les identifiants de corrélation PesaPal sur la
// commande (statut inchangé). Une re-soumission écrase les précédents :
// seule la dernière soumission compte.
func (s *ScyllaStore) AttachGateway(ctx context.Context, order *models.Order, trackingID, merchantRef string) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}

	now := time.Now()
	err = session.Query(`
		UPDATE orders SET pesapal_tracking_id = ?, pesapal_merchant_reference = ?, updated_at = ?
		WHERE order_id = ?`,
		trackingID, merchantRef, now, order.ID).WithContext(ctx).Exec()
	if err != nil {
		return err
	}

	if err := session.Query("INSERT INTO orders_by_tracking (tracking_id, order_id) VALUES (?, ?)",
		trackingID, order.ID).WithContext(ctx).Exec(); err != nil {
		return err
	}

	order.TrackingID = trackingID
	order.MerchantRef = merchantRef
	order.UpdatedAt = now
	return nil
}

// MarkPaid — LA transition atomique du cœur. Un seul des déclencheurs
// concurrents (IPN, polling navigateur) obtient applied=true ; les
// autres lisent le statut courant et n'agissent pas.
func (s *ScyllaStore) MarkPaid(ctx context.Context, orderID gocql.UUID, paidAt time.Time) (bool, models.OrderStatus, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return false, "", err
	}

	var previous string
	applied, err := session.Query(`
		UPDATE orders SET status = ?, paid_at = ?, updated_at = ?
		WHERE order_id = ? IF status = ?`,
		string(models.StatusPaid), paidAt, paidAt, orderID, string(models.StatusPending)).
		WithContext(ctx).ScanCAS(&previous)
	if err != nil {
		return false, "", err
	}

	if applied {
		return true, models.StatusPaid, nil
	}
	return false, models.OrderStatus(previous), nil
}

// ApplyStatus applique une transition manuelle (admin) en respectant la
// table des transitions ; paid_at n'est jamais réécrit
func (s *ScyllaStore) ApplyStatus(ctx context.Context, order *models.Order, newStatus models.OrderStatus) error {
	if !newStatus.IsValid() {
		return &ValidationError{Field: "status", Message: "statut inconnu: " + string(newStatus)}
	}
	if !order.Status.CanTransitionTo(newStatus) {
		return ErrInvalidTransition
	}

	// pending→paid passe par le check-and-set, même pour un admin :
	// c'est lui qui garantit l'unicité de paid_at
	if newStatus == models.StatusPaid {
		now := time.Now()
		applied, current, err := s.MarkPaid(ctx, order.ID, now)
		if err != nil {
			return err
		}
		if applied {
			order.Status = models.StatusPaid
			order.PaidAt = &now
			order.UpdatedAt = now
		} else {
			order.Status = current
		}
		return nil
	}

	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}

	now := time.Now()
	err = session.Query("UPDATE orders SET status = ?, updated_at = ? WHERE order_id = ?",
		string(newStatus), now, order.ID).WithContext(ctx).Exec()
	if err != nil {
		return err
	}

	order.Status = newStatus
	order.UpdatedAt = now
	return nil
}

// List retourne les commandes (filtre statut + recherche), triées par
// date décroissante. Le filtrage se fait en mémoire : le volume de
// commandes d'une galerie reste modeste.
func (s *ScyllaStore) List(ctx context.Context, status models.OrderStatus, search string, limit int) ([]models.Order, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(`
		SELECT order_id, order_number, customer_name, customer_email, customer_phone,
			shipping_address, subtotal, shipping_cost, total, status, payment_method,
			pesapal_tracking_id, pesapal_merchant_reference, paid_at, created_at, updated_at
		FROM orders`).WithContext(ctx).Iter()

	var result []models.Order
	needle := strings.ToLower(search)
	for {
		var o models.Order
		var st string
		var paidAt *time.Time
		if !iter.Scan(&o.ID, &o.OrderNumber, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone,
			&o.ShippingAddress, &o.Subtotal, &o.ShippingCost, &o.Total, &st, &o.PaymentMethod,
			&o.TrackingID, &o.MerchantRef, &paidAt, &o.CreatedAt, &o.UpdatedAt) {
			break
		}
		o.Status = models.OrderStatus(st)
		o.PaidAt = paidAt

		if status != "" && o.Status != status {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(o.OrderNumber), needle) &&
			!strings.Contains(strings.ToLower(o.CustomerName), needle) &&
			!strings.Contains(strings.ToLower(o.CustomerEmail), needle) {
			continue
		}
		result = append(result, o)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func scanOrder(ctx context.Context, session *gocql.Session, orderID gocql.UUID) (*models.Order, error) {
	var o models.Order
	var st string
	var paidAt *time.Time

	err := session.Query(`
		SELECT order_id, order_number, customer_name, customer_email, customer_phone,
			shipping_address, subtotal, shipping_cost, total, status, payment_method,
			pesapal_tracking_id, pesapal_merchant_reference, paid_at, created_at, updated_at
		FROM orders WHERE order_id = ?`, orderID).WithContext(ctx).
		Scan(&o.ID, &o.OrderNumber, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone,
			&o.ShippingAddress, &o.Subtotal, &o.ShippingCost, &o.Total, &st, &o.PaymentMethod,
			&o.TrackingID, &o.MerchantRef, &paidAt, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if err == gocql.ErrNotFound {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	o.Status = models.OrderStatus(st)
	o.PaidAt = paidAt
	return &o, nil
}

func loadItems(ctx context.Context, session *gocql.Session, orderID gocql.UUID) ([]models.OrderItem, error) {
	iter := session.Query(`
		SELECT order_id, item_id, painting_id, painting_title, price, quantity, subtotal
		FROM order_items WHERE order_id = ?`, orderID).WithContext(ctx).Iter()

	var items []models.OrderItem
	for {
		var item models.OrderItem
		if !iter.Scan(&item.OrderID, &item.ID, &item.PaintingID, &item.PaintingTitle,
			&item.Price, &item.Quantity, &item.Subtotal) {
			break
		}
		items = append(items, item)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return items, nil
}

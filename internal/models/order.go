package models

import (
	"strings"
	"time"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusPaid       OrderStatus = "paid"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// validTransitions décrit les transitions autorisées du cycle de vie.
// pending→paid est la seule transition écrite par le réconciliateur de
// paiement ; les autres sont des actions manuelles de l'admin.
var validTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusPaid, StatusCancelled},
	StatusPaid:       {StatusProcessing, StatusShipped, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// IsValid vérifie que le statut fait partie de l'énumération
func (s OrderStatus) IsValid() bool {
	_, ok := validTransitions[s]
	return ok
}

// CanTransitionTo vérifie qu'une transition de statut est autorisée
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

const PaymentMethodPesaPal = "pesapal"

type Order struct {
	ID              gocql.UUID  `json:"id"`
	OrderNumber     string      `json:"order_number"`
	CustomerName    string      `json:"customer_name"`
	CustomerEmail   string      `json:"customer_email"`
	CustomerPhone   string      `json:"customer_phone"`
	ShippingAddress string      `json:"shipping_address"`
	Subtotal        int64       `json:"subtotal"`      // Centimes (KES)
	ShippingCost    int64       `json:"shipping_cost"` // Centimes (KES)
	Total           int64       `json:"total"`         // Centimes (KES)
	Status          OrderStatus `json:"status"`
	PaymentMethod   string      `json:"payment_method"`
	TrackingID      string      `json:"pesapal_tracking_id,omitempty"`
	MerchantRef     string      `json:"pesapal_merchant_reference,omitempty"`
	PaidAt          *time.Time  `json:"paid_at,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
	Items           []OrderItem `json:"items,omitempty"`
}

type OrderItem struct {
	ID            gocql.UUID `json:"id"`
	OrderID       gocql.UUID `json:"order_id"`
	PaintingID    gocql.UUID `json:"painting_id"`
	PaintingTitle string     `json:"painting_title"` // Titre figé à la commande
	Price         int64      `json:"price"`          // Centimes (KES)
	Quantity      int        `json:"quantity"`
	Subtotal      int64      `json:"subtotal"` // Price × Quantity, en centimes
}

// GenerateOrderNumber génère un numéro de commande unique et lisible,
// format ORD-XXXXXXXXXXXX (12 hexadécimaux majuscules issus d'un UUID v4)
func GenerateOrderNumber() string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "ORD-" + strings.ToUpper(raw[:12])
}

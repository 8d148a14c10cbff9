package models

import (
	"time"

	"github.com/gocql/gocql"
)

type DeliveryRegion struct {
	ID        gocql.UUID `json:"id"`
	Name      string     `json:"name"`
	Cost      int64      `json:"cost"` // Frais de livraison en centimes (KES)
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

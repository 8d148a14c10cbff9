package models

import (
	"time"

	"github.com/gocql/gocql"
)

// Painting — une œuvre du catalogue. Le prix est en centimes (KES) :
// les montants ne circulent jamais en flottant dans le domaine.
type Painting struct {
	ID          gocql.UUID      `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Artist      string          `json:"artist"`
	Price       int64           `json:"price"` // Centimes (KES)
	Quantity    int             `json:"quantity"`
	Size        string          `json:"size"`
	Medium      string          `json:"medium"`
	Year        int             `json:"year"`
	IsFeatured  bool            `json:"is_featured"`
	IsAvailable bool            `json:"is_available"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Images      []PaintingImage `json:"images,omitempty"`
}

// Purchasable — visible en boutique et en stock
func (p *Painting) Purchasable() bool {
	return p.IsAvailable && p.Quantity > 0
}

// PrimaryImageURL retourne l'URL de l'image principale (ou la première)
func (p *Painting) PrimaryImageURL() string {
	for _, img := range p.Images {
		if img.IsPrimary {
			return img.URL
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0].URL
	}
	return ""
}

type PaintingImage struct {
	ID         gocql.UUID `json:"id"`
	PaintingID gocql.UUID `json:"painting_id"`
	ObjectKey  string     `json:"-"`
	URL        string     `json:"url"`
	IsPrimary  bool       `json:"is_primary"`
	Position   int        `json:"position"`
	CreatedAt  time.Time  `json:"created_at"`
}

// StockMovement — journal d'audit des ajustements de stock
type StockMovement struct {
	ID         gocql.UUID  `json:"id"`
	PaintingID gocql.UUID  `json:"painting_id"`
	Type       string      `json:"type"` // sale, return, adjustment
	Quantity   int         `json:"quantity"`
	PrevStock  int         `json:"prev_stock"`
	NewStock   int         `json:"new_stock"`
	Reason     string      `json:"reason"`
	OrderID    *gocql.UUID `json:"order_id,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

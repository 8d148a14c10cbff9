package models

import "time"

// AdminUser — compte administrateur du panneau d'admin.
// La boutique n'a pas de comptes clients : les commandes portent
// un instantané des coordonnées du client.
type AdminUser struct {
	Email     string    `json:"email"`
	Password  string    `json:"-"` // Hash Argon2id
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

package utils

import (
	"log"

	"docbadman_back_end/internal/models"
)

// EmailNotifier — notifications client par email, best-effort.
// Les envois partent en goroutine et les échecs sont journalisés puis
// avalés : un email perdu ne doit jamais bloquer une transition de
// commande (le paiement fait foi).
type EmailNotifier struct{}

func NewEmailNotifier() *EmailNotifier {
	return &EmailNotifier{}
}

// NotifyPaymentConfirmed envoie l'email de confirmation de paiement
func (n *EmailNotifier) NotifyPaymentConfirmed(order *models.Order) {
	o := *order
	go func() {
		html := GenerateOrderConfirmedHTML(&o)
		if err := SendEmail(o.CustomerEmail, GetStatusEmailSubject(models.StatusPaid), html); err != nil {
			log.Printf("❌ Erreur envoi e-mail confirmation pour %s: %v", o.OrderNumber, err)
			return
		}
		log.Println("📧 E-mail de confirmation envoyé à", o.CustomerEmail)
	}()
}

// NotifyStatusChanged envoie l'email correspondant à un changement de
// statut manuel (expédiée, livrée, annulée)
func (n *EmailNotifier) NotifyStatusChanged(order *models.Order, newStatus models.OrderStatus) {
	o := *order
	go func() {
		html := GenerateStatusEmailHTML(&o, newStatus)
		if err := SendEmail(o.CustomerEmail, GetStatusEmailSubject(newStatus), html); err != nil {
			log.Printf("❌ Erreur envoi email statut pour %s: %v", o.OrderNumber, err)
			return
		}
		log.Printf("📧 Email de statut envoyé: %s → %s", newStatus, o.CustomerEmail)
	}()
}

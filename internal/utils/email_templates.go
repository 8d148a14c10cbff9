package utils

import (
	"fmt"

	"docbadman_back_end/internal/models"
)

// FormatKES formate un montant en centimes pour l'affichage
func FormatKES(cents int64) string {
	return fmt.Sprintf("%.2f KES", float64(cents)/100)
}

// GetStatusEmailSubject retourne le sujet d'email pour un statut
func GetStatusEmailSubject(status models.OrderStatus) string {
	switch status {
	case models.StatusPaid:
		return "✅ Paiement confirmé - Doc Badman Classics"
	case models.StatusShipped:
		return "📦 Votre commande a été expédiée - Doc Badman Classics"
	case models.StatusDelivered:
		return "🎉 Votre commande a été livrée - Doc Badman Classics"
	case models.StatusCancelled:
		return "❌ Commande annulée - Doc Badman Classics"
	default:
		return "📋 Mise à jour de votre commande - Doc Badman Classics"
	}
}

// GenerateOrderConfirmedHTML génère l'email de confirmation de paiement
// avec le détail des œuvres commandées
func GenerateOrderConfirmedHTML(order *models.Order) string {
	itemsHTML := ""
	for _, item := range order.Items {
		itemsHTML += fmt.Sprintf(`
			<tr>
				<td style="padding: 10px; border: 1px solid #ddd;">%s</td>
				<td style="padding: 10px; border: 1px solid #ddd;">%d</td>
				<td style="padding: 10px; border: 1px solid #ddd;">%s</td>
				<td style="padding: 10px; border: 1px solid #ddd;">%s</td>
			</tr>`, item.PaintingTitle, item.Quantity, FormatKES(item.Price), FormatKES(item.Subtotal))
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>Confirmation de commande</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Votre paiement est confirmé</h2>
		<p>Bonjour %s,</p>
		<p>Nous avons bien reçu votre paiement pour la commande <strong>%s</strong>.</p>

		<h3>Détails de la commande</h3>
		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background-color: #f0f0f0;">
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Œuvre</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Quantité</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Prix unitaire</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Total</th>
				</tr>
			</thead>
			<tbody>
				%s
			</tbody>
			<tfoot>
				<tr>
					<td colspan="3" style="padding: 10px; text-align: right;">Sous-total:</td>
					<td style="padding: 10px;">%s</td>
				</tr>
				<tr>
					<td colspan="3" style="padding: 10px; text-align: right;">Livraison:</td>
					<td style="padding: 10px;">%s</td>
				</tr>
				<tr>
					<td colspan="3" style="padding: 10px; text-align: right; font-weight: bold;">Total:</td>
					<td style="padding: 10px; font-weight: bold;">%s</td>
				</tr>
			</tfoot>
		</table>

		<p>Adresse de livraison :<br>%s</p>

		<p style="margin-top: 30px; color: #555;">
			Cordialement,<br>
			<strong>L'équipe Doc Badman Classics</strong>
		</p>
	</div>
</body>
</html>`, order.CustomerName, order.OrderNumber, itemsHTML,
		FormatKES(order.Subtotal), FormatKES(order.ShippingCost), FormatKES(order.Total),
		order.ShippingAddress)
}

// GenerateStatusEmailHTML génère l'email de changement de statut
func GenerateStatusEmailHTML(order *models.Order, status models.OrderStatus) string {
	message := getStatusMessage(status)

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>Mise à jour de commande</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Mise à jour de votre commande %s</h2>
		<p>Bonjour %s,</p>
		<p>%s</p>

		<p style="margin-top: 30px; color: #555;">
			Cordialement,<br>
			<strong>L'équipe Doc Badman Classics</strong>
		</p>
	</div>
</body>
</html>`, order.OrderNumber, order.CustomerName, message)
}

func getStatusMessage(status models.OrderStatus) string {
	switch status {
	case models.StatusShipped:
		return "Bonne nouvelle : votre commande a été expédiée et arrive bientôt."
	case models.StatusDelivered:
		return "Votre commande a été livrée. Nous espérons que vos œuvres vous plaisent !"
	case models.StatusCancelled:
		return "Votre commande a été annulée. Si vous pensez qu'il s'agit d'une erreur, contactez-nous."
	default:
		return "Le statut de votre commande a été mis à jour : " + string(status) + "."
	}
}

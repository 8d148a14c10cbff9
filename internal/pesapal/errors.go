package pesapal

import "errors"

// Erreurs typées du prestataire de paiement. Elles remontent telles
// quelles à l'appelant : le client ne réessaie jamais de lui-même.
var (
	// ErrAuth — échec d'authentification (RequestToken)
	ErrAuth = errors.New("pesapal: authentification échouée")

	// ErrSubmit — échec de soumission de commande (ou d'enregistrement IPN)
	ErrSubmit = errors.New("pesapal: soumission de la commande échouée")

	// ErrStatus — échec de la consultation du statut de transaction
	ErrStatus = errors.New("pesapal: consultation du statut échouée")
)

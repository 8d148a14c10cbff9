package orders

import (
	"errors"
	"fmt"
)

var (
	// ErrOrderNotFound — aucune commande ne correspond aux identifiants
	// fournis. Sur le chemin IPN c'est le signe d'une incohérence de
	// corrélation : à signaler, pas à réessayer.
	ErrOrderNotFound = errors.New("commande introuvable")

	// ErrOrderNotPayable — la commande a quitté l'état pending,
	// initier un paiement n'a plus de sens
	ErrOrderNotPayable = errors.New("la commande n'est plus en attente de paiement")

	// ErrInvalidTransition — transition de statut refusée par la table
	// des transitions (ex: delivered → pending)
	ErrInvalidTransition = errors.New("transition de statut invalide")
)

// ValidationError — entrée invalide à la création de commande,
// corrigeable par l'appelant (retour 422)
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ReconciliationError enveloppe toute erreur prestataire rencontrée
// pendant la réconciliation ; l'appelant décide de réessayer ou non
type ReconciliationError struct {
	Err error
}

func (e *ReconciliationError) Error() string {
	return "réconciliation échouée: " + e.Err.Error()
}

func (e *ReconciliationError) Unwrap() error {
	return e.Err
}

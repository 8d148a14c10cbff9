package orders

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() CreateOrderInput {
	return CreateOrderInput{
		CustomerName:    "Amina Wanjiru",
		CustomerEmail:   "amina@example.com",
		CustomerPhone:   "+254700000001",
		ShippingAddress: "Nairobi, Westlands",
		Items: []CreateOrderItem{
			{PaintingID: "c0a80101-0000-1000-8000-000000000001", PaintingTitle: "Savane au crépuscule", Price: 100000, Quantity: 2},
		},
		Subtotal:     200000,
		ShippingCost: 50000,
		Total:        250000,
	}
}

func TestValidateOrderInputAccepted(t *testing.T) {
	assert.NoError(t, validateOrderInput(validInput()))
}

func TestValidateOrderInputRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*CreateOrderInput)
		field  string
	}{
		{"nom vide", func(in *CreateOrderInput) { in.CustomerName = "  " }, "customer_name"},
		{"email invalide", func(in *CreateOrderInput) { in.CustomerEmail = "pas-un-email" }, "customer_email"},
		{"téléphone vide", func(in *CreateOrderInput) { in.CustomerPhone = "" }, "customer_phone"},
		{"adresse vide", func(in *CreateOrderInput) { in.ShippingAddress = "" }, "shipping_address"},
		{"aucun article", func(in *CreateOrderInput) { in.Items = nil }, "items"},
		{"quantité nulle", func(in *CreateOrderInput) { in.Items[0].Quantity = 0 }, "items"},
		{"prix négatif", func(in *CreateOrderInput) { in.Items[0].Price = -1 }, "items"},
		{"sous-total incohérent", func(in *CreateOrderInput) { in.Subtotal = 199999 }, "subtotal"},
		{"livraison négative", func(in *CreateOrderInput) { in.ShippingCost = -1; in.Total = 199999 }, "subtotal"},
		{"total incohérent", func(in *CreateOrderInput) { in.Total = 250001 }, "total"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)

			err := validateOrderInput(in)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tc.field, vErr.Field)
		})
	}
}

func TestValidateOrderInputMultipleItems(t *testing.T) {
	in := validInput()
	in.Items = append(in.Items, CreateOrderItem{
		PaintingID: "c0a80101-0000-1000-8000-000000000002", PaintingTitle: "Marché de Mombasa", Price: 75000, Quantity: 1,
	})
	in.Subtotal = 275000
	in.Total = 325000

	assert.NoError(t, validateOrderInput(in))
}

func TestConcurrentOrderLookupsDoNotShareQueryState(t *testing.T) {
	// L'IPN PesaPal et le polling navigateur résolvent des commandes en
	// parallèle. Chaque résolution doit construire sa propre requête :
	// Bind écrit les valeurs dans la structure de la requête, et une
	// requête partagée entre résolutions concurrentes ferait scanner
	// l'order_id d'une autre commande (valeurs échangées en plein vol).
	// Ce test lie des valeurs en parallèle sur des requêtes construites
	// par appel, comme FindByOrderNumber et FindByTrackingID ; le
	// détecteur de course signalerait toute réintroduction d'une requête
	// partagée dans ce schéma.
	buildLookup := func(key string) *gocql.Query {
		return (&gocql.Query{}).Bind(key)
	}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if q := buildLookup(fmt.Sprintf("ORD-%012d", n)); q == nil {
				t.Error("requête de résolution non construite")
			}
		}(i)
	}
	wg.Wait()
}

func TestPaintingLookupError(t *testing.T) {
	// Œuvre absente : saisie corrigeable par le client (422)
	err := paintingLookupError(gocql.ErrNotFound, "c0a80101-0000-1000-8000-000000000001")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "items", vErr.Field)
	assert.Contains(t, vErr.Message, "c0a80101-0000-1000-8000-000000000001")

	// Panne de la base : erreur interne, jamais une erreur de validation
	boom := errors.New("connexion perdue")
	err = paintingLookupError(boom, "c0a80101-0000-1000-8000-000000000001")
	assert.ErrorIs(t, err, boom)
	assert.False(t, errors.As(err, &vErr))
}

func TestClampStock(t *testing.T) {
	assert.Equal(t, 5, clampStock(5))
	assert.Equal(t, 0, clampStock(0))
	// Sur-vente : le stock plancher à zéro, jamais négatif
	assert.Equal(t, 0, clampStock(-3))
}

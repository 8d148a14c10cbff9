package orders

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"docbadman_back_end/internal/models"
	"docbadman_back_end/internal/pesapal"

	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Faux magasin en mémoire (même contrat CAS que ScyllaStore) ---

type fakeStore struct {
	mu            sync.Mutex
	orders        map[gocql.UUID]*models.Order
	markPaidCalls int
}

func newFakeStore(orderList ...*models.Order) *fakeStore {
	s := &fakeStore{orders: make(map[gocql.UUID]*models.Order)}
	for _, o := range orderList {
		s.orders[o.ID] = o
	}
	return s
}

func (s *fakeStore) FindByID(_ context.Context, orderID gocql.UUID) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *fakeStore) FindByOrderNumber(_ context.Context, orderNumber string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.OrderNumber == orderNumber {
			cp := *o
			return &cp, nil
		}
	}
	return nil, ErrOrderNotFound
}

func (s *fakeStore) FindByTrackingID(_ context.Context, trackingID string) (*models.Order, error) {
	if trackingID == "" {
		return nil, ErrOrderNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.TrackingID == trackingID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, ErrOrderNotFound
}

func (s *fakeStore) AttachGateway(_ context.Context, order *models.Order, trackingID, merchantRef string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.orders[order.ID]
	if !ok {
		return ErrOrderNotFound
	}
	stored.TrackingID = trackingID
	stored.MerchantRef = merchantRef
	order.TrackingID = trackingID
	order.MerchantRef = merchantRef
	return nil
}

func (s *fakeStore) MarkPaid(_ context.Context, orderID gocql.UUID, paidAt time.Time) (bool, models.OrderStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markPaidCalls++

	o, ok := s.orders[orderID]
	if !ok {
		return false, "", ErrOrderNotFound
	}
	if o.Status != models.StatusPending {
		return false, o.Status, nil
	}
	o.Status = models.StatusPaid
	o.PaidAt = &paidAt
	return true, models.StatusPaid, nil
}

func (s *fakeStore) paidAt(orderID gocql.UUID) *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orders[orderID].PaidAt
}

func (s *fakeStore) status(orderID gocql.UUID) models.OrderStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orders[orderID].Status
}

// --- Faux prestataire de paiement ---

type fakeGateway struct {
	mu          sync.Mutex
	status      string
	statusErr   error
	submitErr   error
	statusCalls int
}

func (g *fakeGateway) SubmitOrder(_ context.Context, in pesapal.SubmitOrderInput) (*pesapal.SubmitOrderResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.submitErr != nil {
		return nil, g.submitErr
	}
	return &pesapal.SubmitOrderResult{
		TrackingID:  "track-" + in.OrderNumber,
		MerchantRef: in.OrderNumber,
		RedirectURL: "https://pay.pesapal.test/iframe/track-" + in.OrderNumber,
	}, nil
}

func (g *fakeGateway) GetTransactionStatus(_ context.Context, _ string) (*pesapal.TransactionStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.statusCalls++
	if g.statusErr != nil {
		return nil, g.statusErr
	}
	return &pesapal.TransactionStatus{PaymentStatusDescription: g.status}, nil
}

// --- Faux notificateur (compte les emails) ---

type fakeNotifier struct {
	mu        sync.Mutex
	confirmed int
	changed   int
}

func (n *fakeNotifier) NotifyPaymentConfirmed(_ *models.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmed++
}

func (n *fakeNotifier) NotifyStatusChanged(_ *models.Order, _ models.OrderStatus) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changed++
}

func (n *fakeNotifier) confirmations() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.confirmed
}

func pendingOrder() *models.Order {
	now := time.Now()
	return &models.Order{
		ID:              gocql.TimeUUID(),
		OrderNumber:     models.GenerateOrderNumber(),
		CustomerName:    "Amina Wanjiru",
		CustomerEmail:   "amina@example.com",
		CustomerPhone:   "+254700000001",
		ShippingAddress: "Nairobi, Westlands",
		Subtotal:        200000, // 2 × 1000.00 KES
		ShippingCost:    50000,
		Total:           250000,
		Status:          models.StatusPending,
		PaymentMethod:   models.PaymentMethodPesaPal,
		TrackingID:      "track-abc",
		MerchantRef:     "",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func TestReconcileMarksPaidExactlyOnce(t *testing.T) {
	order := pendingOrder()
	store := newFakeStore(order)
	gateway := &fakeGateway{status: pesapal.StatusCompleted}
	notifier := &fakeNotifier{}
	rec := NewReconciler(store, gateway, notifier)

	// IPN puis trois vérifications navigateur : une seule transition
	var transitions int
	for i := 0; i < 4; i++ {
		result, err := rec.Reconcile(context.Background(), order.TrackingID, order.OrderNumber)
		require.NoError(t, err)
		assert.Equal(t, pesapal.StatusCompleted, result.ProviderStatus)
		if result.Transitioned {
			transitions++
		}
	}

	assert.Equal(t, 1, transitions)
	assert.Equal(t, 1, notifier.confirmations())
	assert.Equal(t, models.StatusPaid, store.status(order.ID))

	// paid_at ne doit jamais être réécrit par les appels suivants
	first := store.paidAt(order.ID)
	require.NotNil(t, first)
	_, err := rec.Reconcile(context.Background(), order.TrackingID, order.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, first, store.paidAt(order.ID))
}

func TestReconcileConcurrentCallers(t *testing.T) {
	order := pendingOrder()
	store := newFakeStore(order)
	gateway := &fakeGateway{status: pesapal.StatusCompleted}
	notifier := &fakeNotifier{}
	rec := NewReconciler(store, gateway, notifier)

	// IPN et polling navigateur en parallèle, répétés
	var wg sync.WaitGroup
	var mu sync.Mutex
	transitions := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := rec.Reconcile(context.Background(), order.TrackingID, order.OrderNumber)
			if err != nil {
				t.Error(err)
				return
			}
			if result.Transitioned {
				mu.Lock()
				transitions++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, transitions)
	assert.Equal(t, 1, notifier.confirmations())
	assert.Equal(t, models.StatusPaid, store.status(order.ID))
}

func TestReconcileNonFinalStatusIsNoOp(t *testing.T) {
	for _, status := range []string{"Pending", "Failed", "Reversed", "completed", ""} {
		order := pendingOrder()
		store := newFakeStore(order)
		gateway := &fakeGateway{status: status}
		notifier := &fakeNotifier{}
		rec := NewReconciler(store, gateway, notifier)

		result, err := rec.Reconcile(context.Background(), order.TrackingID, order.OrderNumber)
		require.NoError(t, err)
		assert.False(t, result.Transitioned)
		assert.Equal(t, status, result.ProviderStatus)
		assert.Equal(t, models.StatusPending, store.status(order.ID))
		assert.Nil(t, store.paidAt(order.ID))
		assert.Equal(t, 0, notifier.confirmations())
	}
}

func TestReconcileResolvesByMerchantRefAlone(t *testing.T) {
	order := pendingOrder()
	store := newFakeStore(order)
	gateway := &fakeGateway{status: pesapal.StatusCompleted}
	rec := NewReconciler(store, gateway, &fakeNotifier{})

	// Pas d'identifiant de suivi dans l'appel : on retombe sur celui
	// attaché à la commande
	result, err := rec.Reconcile(context.Background(), "", order.OrderNumber)
	require.NoError(t, err)
	assert.True(t, result.Transitioned)
}

func TestReconcileResolvesByTrackingIDAlone(t *testing.T) {
	order := pendingOrder()
	store := newFakeStore(order)
	gateway := &fakeGateway{status: pesapal.StatusCompleted}
	rec := NewReconciler(store, gateway, &fakeNotifier{})

	result, err := rec.Reconcile(context.Background(), order.TrackingID, "")
	require.NoError(t, err)
	assert.True(t, result.Transitioned)
}

func TestReconcileUnknownOrder(t *testing.T) {
	rec := NewReconciler(newFakeStore(), &fakeGateway{status: pesapal.StatusCompleted}, &fakeNotifier{})

	_, err := rec.Reconcile(context.Background(), "track-inconnu", "ORD-INCONNUE")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestReconcileGatewayFailure(t *testing.T) {
	order := pendingOrder()
	store := newFakeStore(order)
	gateway := &fakeGateway{statusErr: pesapal.ErrStatus}
	rec := NewReconciler(store, gateway, &fakeNotifier{})

	_, err := rec.Reconcile(context.Background(), order.TrackingID, order.OrderNumber)

	var rErr *ReconciliationError
	require.ErrorAs(t, err, &rErr)
	assert.ErrorIs(t, err, pesapal.ErrStatus)
	// La commande reste intacte : l'appel sera réessayé
	assert.Equal(t, models.StatusPending, store.status(order.ID))
}

func TestReconcileNeverOverridesCancelled(t *testing.T) {
	order := pendingOrder()
	order.Status = models.StatusCancelled
	store := newFakeStore(order)
	gateway := &fakeGateway{status: pesapal.StatusCompleted}
	notifier := &fakeNotifier{}
	rec := NewReconciler(store, gateway, notifier)

	result, err := rec.Reconcile(context.Background(), order.TrackingID, order.OrderNumber)
	require.NoError(t, err)
	assert.False(t, result.Transitioned)
	assert.Equal(t, models.StatusCancelled, store.status(order.ID))
	assert.Equal(t, 0, notifier.confirmations())
}

func TestInitiatePaymentAttachesGatewayIDs(t *testing.T) {
	order := pendingOrder()
	order.TrackingID = ""
	store := newFakeStore(order)
	gateway := &fakeGateway{}
	rec := NewReconciler(store, gateway, &fakeNotifier{})

	redirectURL, err := rec.InitiatePayment(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Contains(t, redirectURL, "pay.pesapal.test")

	stored, err := store.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, "track-"+order.OrderNumber, stored.TrackingID)
	assert.Equal(t, order.OrderNumber, stored.MerchantRef)
	// Le statut ne bouge pas à l'initiation
	assert.Equal(t, models.StatusPending, stored.Status)
}

func TestInitiatePaymentRejectsNonPending(t *testing.T) {
	for _, status := range []models.OrderStatus{models.StatusPaid, models.StatusCancelled, models.StatusShipped} {
		order := pendingOrder()
		order.Status = status
		store := newFakeStore(order)
		rec := NewReconciler(store, &fakeGateway{}, &fakeNotifier{})

		_, err := rec.InitiatePayment(context.Background(), order.ID)
		assert.ErrorIs(t, err, ErrOrderNotPayable, "statut %s", status)
	}
}

func TestInitiatePaymentKeepsOrderPayableOnGatewayFailure(t *testing.T) {
	order := pendingOrder()
	order.TrackingID = ""
	store := newFakeStore(order)
	gateway := &fakeGateway{submitErr: errors.New("timeout prestataire")}
	rec := NewReconciler(store, gateway, &fakeNotifier{})

	_, err := rec.InitiatePayment(context.Background(), order.ID)
	require.Error(t, err)

	stored, _ := store.FindByID(context.Background(), order.ID)
	assert.Equal(t, models.StatusPending, stored.Status)
	assert.Empty(t, stored.TrackingID)
}

func TestInitiatePaymentUnknownOrder(t *testing.T) {
	rec := NewReconciler(newFakeStore(), &fakeGateway{}, &fakeNotifier{})

	_, err := rec.InitiatePayment(context.Background(), gocql.TimeUUID())
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

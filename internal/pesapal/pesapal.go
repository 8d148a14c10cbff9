package pesapal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"docbadman_back_end/internal/config"
)

const (
	// Le token PesaPal expire côté prestataire au bout de 5 minutes.
	// On le met en cache 4 minutes pour ne jamais servir un token
	// qui expirerait en plein vol.
	TokenCacheKey = "pesapal:token"
	TokenCacheTTL = 4 * time.Minute

	// L'enregistrement IPN ne change quasiment jamais ; le ré-enregistrer
	// est accepté par le prestataire, donc un cache long suffit.
	IPNCacheKey = "pesapal:ipn_id"
	IPNCacheTTL = 24 * time.Hour

	// Seule valeur de statut considérée comme un succès terminal.
	// Tout le reste ("Pending", "Failed", "Reversed", absent…) est non-final.
	StatusCompleted = "Completed"

	Currency = "KES"

	orderDescription = "Doc Badman Classics — Artwork Order"
)

// Cache — cache TTL injectable (Redis en production, faux cache en test)
type Cache interface {
	Remember(ctx context.Context, key string, ttl time.Duration, fn func() (string, error)) (string, error)
}

// Service encapsule toute l'interaction avec l'API PesaPal v3.
// Aucune persistance locale : uniquement du pass-through, avec cache
// pour le token et l'identifiant IPN.
type Service struct {
	cfg    config.PesaPalConfig
	client *http.Client
	cache  Cache
}

func New(cfg config.PesaPalConfig, cache Cache) *Service {
	return &Service{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		cache:  cache,
	}
}

// SubmitOrderInput — données de la commande soumises au prestataire
type SubmitOrderInput struct {
	OrderNumber   string
	Amount        int64 // Centimes (KES)
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
}

// SubmitOrderResult — identifiants de corrélation + URL de paiement hébergée
type SubmitOrderResult struct {
	TrackingID  string `json:"order_tracking_id"`
	MerchantRef string `json:"merchant_reference"`
	RedirectURL string `json:"redirect_url"`
}

// TransactionStatus — statut brut retourné par GetTransactionStatus
type TransactionStatus struct {
	PaymentStatusDescription string          `json:"payment_status_description"`
	Raw                      json.RawMessage `json:"-"`
}

// IsCompleted indique si le paiement est un succès terminal
func (t *TransactionStatus) IsCompleted() bool {
	return t.PaymentStatusDescription == StatusCompleted
}

// ── Étape 1 : token d'authentification (cache 4 minutes) ──────────
func (s *Service) GetToken(ctx context.Context) (string, error) {
	return s.cache.Remember(ctx, TokenCacheKey, TokenCacheTTL, func() (string, error) {
		body, err := s.postJSON(ctx, "/api/Auth/RequestToken", map[string]string{
			"consumer_key":    s.cfg.ConsumerKey,
			"consumer_secret": s.cfg.ConsumerSecret,
		}, "")
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrAuth, err)
		}

		var resp struct {
			Token string `json:"token"`
		}
		if err := json.Unmarshal(body, &resp); err != nil || resp.Token == "" {
			log.Printf("❌ Réponse RequestToken PesaPal invalide: %s", body)
			return "", fmt.Errorf("%w: token absent de la réponse", ErrAuth)
		}
		return resp.Token, nil
	})
}

// ── Étape 2 : enregistrement de l'URL IPN (cache 24h, idempotent) ──
func (s *Service) EnsureIPN(ctx context.Context) (string, error) {
	return s.cache.Remember(ctx, IPNCacheKey, IPNCacheTTL, func() (string, error) {
		token, err := s.GetToken(ctx)
		if err != nil {
			return "", err
		}

		body, err := s.postJSON(ctx, "/api/URLSetup/RegisterIPN", map[string]string{
			"url":                   s.cfg.IPNURL,
			"ipn_notification_type": "GET",
		}, token)
		if err != nil {
			return "", fmt.Errorf("%w: enregistrement IPN: %v", ErrSubmit, err)
		}

		var resp struct {
			IPNID string `json:"ipn_id"`
		}
		if err := json.Unmarshal(body, &resp); err != nil || resp.IPNID == "" {
			log.Printf("❌ Réponse RegisterIPN PesaPal invalide: %s", body)
			return "", fmt.Errorf("%w: ipn_id absent de la réponse", ErrSubmit)
		}
		return resp.IPNID, nil
	})
}

// ── Étape 3 : soumettre la commande → URL de paiement ──────────────
func (s *Service) SubmitOrder(ctx context.Context, in SubmitOrderInput) (*SubmitOrderResult, error) {
	token, err := s.GetToken(ctx)
	if err != nil {
		return nil, err
	}

	ipnID, err := s.EnsureIPN(ctx)
	if err != nil {
		return nil, err
	}

	firstName, lastName := splitName(in.CustomerName)

	payload := map[string]any{
		"id":       in.OrderNumber,
		"currency": Currency,
		// PesaPal attend un montant décimal ; les centimes ne sortent
		// d'entier qu'ici, à la frontière du protocole
		"amount":          float64(in.Amount) / 100,
		"description":     orderDescription,
		"callback_url":    s.cfg.CallbackURL + "?order=" + url.QueryEscape(in.OrderNumber),
		"notification_id": ipnID,
		"billing_address": map[string]string{
			"email_address": in.CustomerEmail,
			"phone_number":  in.CustomerPhone,
			"first_name":    firstName,
			"last_name":     lastName,
		},
	}

	body, err := s.postJSON(ctx, "/api/Transactions/SubmitOrderRequest", payload, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSubmit, err)
	}

	var result SubmitOrderResult
	if err := json.Unmarshal(body, &result); err != nil || result.TrackingID == "" || result.RedirectURL == "" {
		log.Printf("❌ Réponse SubmitOrderRequest PesaPal invalide: %s", body)
		return nil, fmt.Errorf("%w: réponse incomplète", ErrSubmit)
	}

	return &result, nil
}

// ── Étape 4 : consulter le statut d'une transaction ────────────────
func (s *Service) GetTransactionStatus(ctx context.Context, trackingID string) (*TransactionStatus, error) {
	token, err := s.GetToken(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := s.cfg.BaseURL + "/api/Transactions/GetTransactionStatus?orderTrackingId=" + url.QueryEscape(trackingID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStatus, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStatus, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStatus, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("❌ PesaPal GetTransactionStatus HTTP %d: %s", resp.StatusCode, body)
		return nil, fmt.Errorf("%w: HTTP %d", ErrStatus, resp.StatusCode)
	}

	var status TransactionStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("%w: réponse illisible: %v", ErrStatus, err)
	}
	status.Raw = body

	return &status, nil
}

// postJSON envoie une requête POST JSON et retourne le corps si 2xx
func (s *Service) postJSON(ctx context.Context, path string, payload any, token string) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("❌ PesaPal %s HTTP %d: %s", path, resp.StatusCode, body)
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	return body, nil
}

// splitName découpe "Prénom Nom…" pour le billing_address PesaPal
func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

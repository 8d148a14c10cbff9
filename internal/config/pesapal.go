package config

import "os"

// PesaPalConfig regroupe les identifiants et URLs du prestataire de paiement.
// base_url dépend de l'environnement : production ou sandbox (cybqa).
type PesaPalConfig struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	IPNURL         string
	CallbackURL    string
}

func LoadPesaPal() PesaPalConfig {
	baseURL := "https://pay.pesapal.com/v3"
	if os.Getenv("PESAPAL_ENV") != "production" {
		baseURL = "https://cybqa.pesapal.com/pesapalv3"
	}

	return PesaPalConfig{
		BaseURL:        baseURL,
		ConsumerKey:    os.Getenv("PESAPAL_CONSUMER_KEY"),
		ConsumerSecret: os.Getenv("PESAPAL_CONSUMER_SECRET"),
		IPNURL:         os.Getenv("PESAPAL_IPN_URL"),
		CallbackURL:    os.Getenv("PESAPAL_CALLBACK_URL"),
	}
}

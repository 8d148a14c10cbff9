package main

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"docbadman_back_end/internal/cache"
	"docbadman_back_end/internal/config"
	"docbadman_back_end/internal/database"
	"docbadman_back_end/internal/handlers/admin"
	"docbadman_back_end/internal/handlers/checkout"
	"docbadman_back_end/internal/orders"
	"docbadman_back_end/internal/pesapal"
	"docbadman_back_end/internal/routes"
	"docbadman_back_end/internal/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	config.Load()

	database.ConnectDatabases()

	// ✅ Client PesaPal (token et IPN cachés dans Redis)
	gateway := pesapal.New(config.LoadPesaPal(), cache.NewRedisCache(database.Redis))
	warmupPesaPalIPN(gateway)

	// --- Câblage du domaine commandes ---
	inventory := &orders.Inventory{}
	store := orders.NewScyllaStore(inventory)
	notifier := utils.NewEmailNotifier()
	reconciler := orders.NewReconciler(store, gateway, notifier)

	h := routes.Handlers{
		Orders:      checkout.NewOrderHandler(store),
		Payments:    checkout.NewPaymentHandler(reconciler),
		AdminOrders: admin.NewOrderHandler(store, inventory, notifier),
		Stats:       admin.NewStatsHandler(store),
	}

	r := gin.Default()
	r.Use(cors.New(corsConfig()))
	routes.RegisterRoutes(r, h)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Println("🚀 Serveur Doc Badman Classics lancé sur le port", port)
	r.Run(":" + port)
}

// warmupPesaPalIPN pré-enregistre l'URL IPN au démarrage. Un échec
// n'est pas bloquant : l'enregistrement sera retenté à la première
// soumission de commande.
func warmupPesaPalIPN(gateway *pesapal.Service) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	ipnID, err := gateway.EnsureIPN(ctx)
	if err != nil {
		log.Printf("⚠️ Enregistrement IPN PesaPal différé: %v", err)
		return
	}
	log.Println("✅ IPN PesaPal enregistré:", ipnID)
}

func corsConfig() cors.Config {
	cfg := cors.DefaultConfig()

	origins := os.Getenv("CORS_ORIGINS")
	if origins == "" {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = strings.Split(origins, ",")
	}

	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization")
	return cfg
}

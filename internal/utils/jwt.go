package utils

import (
	"os"
	"time"

	"docbadman_back_end/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

func GenerateAdminJWT(admin models.AdminUser) (string, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "super_secret"
	}

	claims := jwt.MapClaims{
		"email": admin.Email,
		"name":  admin.Name,
		"role":  "admin",
		"exp":   time.Now().Add(24 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

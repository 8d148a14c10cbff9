package admin

import (
	"log"
	"net/http"

	"docbadman_back_end/internal/database"
	"docbadman_back_end/internal/models"
	"docbadman_back_end/internal/utils"

	"github.com/gin-gonic/gin"
)

// Login — authentification du panneau d'administration.
// La réponse est volontairement identique pour « email inconnu » et
// « mot de passe faux ».
func Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email et mot de passe requis"})
		return
	}

	admin, err := findAdmin(c, req.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Identifiants invalides"})
		return
	}

	valid, err := utils.VerifyPassword(req.Password, admin.Password)
	if err != nil || !valid {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Identifiants invalides"})
		return
	}

	token, err := utils.GenerateAdminJWT(*admin)
	if err != nil {
		log.Printf("❌ Erreur génération JWT: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur de connexion"})
		return
	}

	log.Printf("🔐 Connexion admin: %s", admin.Email)
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"admin": gin.H{"email": admin.Email, "name": admin.Name},
	})
}

// Me — profil de l'admin connecté (email posé par le middleware JWT)
func Me(c *gin.Context) {
	email, _ := c.Get("admin_email")

	admin, err := findAdmin(c, email.(string))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Compte introuvable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"email": admin.Email, "name": admin.Name})
}

func findAdmin(c *gin.Context, email string) (*models.AdminUser, error) {
	session, err := database.GetGallerySession()
	if err != nil {
		return nil, err
	}

	var admin models.AdminUser
	err = session.Query("SELECT email, password, name, created_at FROM admins WHERE email = ?", email).
		WithContext(c.Request.Context()).
		Scan(&admin.Email, &admin.Password, &admin.Name, &admin.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

package admin

import (
	"log"
	"net/http"
	"time"

	"docbadman_back_end/internal/cache"
	"docbadman_back_end/internal/database"
	"docbadman_back_end/internal/handlers/gallery"
	"docbadman_back_end/internal/models"
	"docbadman_back_end/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

type paintingRequest struct {
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description"`
	Artist      string `json:"artist" binding:"required,max=255"`
	Price       int64  `json:"price" binding:"required,min=1"` // Centimes
	Quantity    int    `json:"quantity" binding:"min=0"`
	Size        string `json:"size"`
	Medium      string `json:"medium"`
	Year        int    `json:"year"`
	IsFeatured  bool   `json:"is_featured"`
	IsAvailable bool   `json:"is_available"`
}

// ListPaintings — catalogue complet pour l'admin, y compris les œuvres
// masquées ou en rupture
func ListPaintings(c *gin.Context) {
	session, err := database.GetGallerySession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`
		SELECT painting_id, title, description, artist, price, quantity, size, medium, year,
			is_featured, is_available, created_at, updated_at
		FROM paintings`).WithContext(c.Request.Context()).Iter()

	paintings := []models.Painting{}
	for {
		var p models.Painting
		if !iter.Scan(&p.ID, &p.Title, &p.Description, &p.Artist, &p.Price, &p.Quantity,
			&p.Size, &p.Medium, &p.Year, &p.IsFeatured, &p.IsAvailable, &p.CreatedAt, &p.UpdatedAt) {
			break
		}
		paintings = append(paintings, p)
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture catalogue"})
		return
	}

	c.JSON(http.StatusOK, paintings)
}

// CreatePainting ajoute une œuvre au catalogue et l'indexe
func CreatePainting(c *gin.Context) {
	var req paintingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": err.Error()})
		return
	}

	session, err := database.GetGallerySession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	now := time.Now()
	painting := models.Painting{
		ID:          gocql.TimeUUID(),
		Title:       req.Title,
		Description: req.Description,
		Artist:      req.Artist,
		Price:       req.Price,
		Quantity:    req.Quantity,
		Size:        req.Size,
		Medium:      req.Medium,
		Year:        req.Year,
		IsFeatured:  req.IsFeatured,
		IsAvailable: req.IsAvailable,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = session.Query(`
		INSERT INTO paintings (painting_id, title, description, artist, price, quantity, size, medium, year,
			is_featured, is_available, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		painting.ID, painting.Title, painting.Description, painting.Artist, painting.Price,
		painting.Quantity, painting.Size, painting.Medium, painting.Year,
		painting.IsFeatured, painting.IsAvailable, painting.CreatedAt, painting.UpdatedAt).
		WithContext(c.Request.Context()).Exec()
	if err != nil {
		log.Printf("❌ Erreur création œuvre: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la création"})
		return
	}

	services.IndexPainting(&painting)

	log.Printf("🎨 Œuvre créée: %s (%s)", painting.Title, painting.ID)
	c.JSON(http.StatusCreated, painting)
}

// UpdatePainting modifie une œuvre, réindexe et invalide le cache
func UpdatePainting(c *gin.Context) {
	paintingID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID d'œuvre invalide"})
		return
	}

	var req paintingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": err.Error()})
		return
	}

	painting, err := gallery.FetchPainting(c.Request.Context(), paintingID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Œuvre introuvable"})
		return
	}

	session, err := database.GetGallerySession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	now := time.Now()
	err = session.Query(`
		UPDATE paintings SET title = ?, description = ?, artist = ?, price = ?, quantity = ?,
			size = ?, medium = ?, year = ?, is_featured = ?, is_available = ?, updated_at = ?
		WHERE painting_id = ?`,
		req.Title, req.Description, req.Artist, req.Price, req.Quantity,
		req.Size, req.Medium, req.Year, req.IsFeatured, req.IsAvailable, now, paintingID).
		WithContext(c.Request.Context()).Exec()
	if err != nil {
		log.Printf("❌ Erreur mise à jour œuvre: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la mise à jour"})
		return
	}

	painting.Title = req.Title
	painting.Description = req.Description
	painting.Artist = req.Artist
	painting.Price = req.Price
	painting.Quantity = req.Quantity
	painting.Size = req.Size
	painting.Medium = req.Medium
	painting.Year = req.Year
	painting.IsFeatured = req.IsFeatured
	painting.IsAvailable = req.IsAvailable
	painting.UpdatedAt = now

	services.IndexPainting(painting)
	cache.InvalidatePaintingCache(paintingID)

	c.JSON(http.StatusOK, painting)
}

// DeletePainting supprime une œuvre, ses images (MinIO + table) et son
// entrée d'index
func DeletePainting(c *gin.Context) {
	paintingID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID d'œuvre invalide"})
		return
	}

	painting, err := gallery.FetchPainting(c.Request.Context(), paintingID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Œuvre introuvable"})
		return
	}

	session, err := database.GetGallerySession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	for _, img := range painting.Images {
		if err := services.DeletePaintingImage(c.Request.Context(), img.ObjectKey); err != nil {
			log.Printf("⚠️ Erreur suppression image MinIO %s: %v", img.ObjectKey, err)
		}
	}

	ctx := c.Request.Context()
	if err := session.Query("DELETE FROM painting_images WHERE painting_id = ?", paintingID).
		WithContext(ctx).Exec(); err != nil {
		log.Printf("⚠️ Erreur suppression images: %v", err)
	}
	if err := session.Query("DELETE FROM paintings WHERE painting_id = ?", paintingID).
		WithContext(ctx).Exec(); err != nil {
		log.Printf("❌ Erreur suppression œuvre: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la suppression"})
		return
	}

	services.RemovePaintingFromIndex(paintingID.String())
	cache.InvalidatePaintingCache(paintingID)

	log.Printf("🗑️ Œuvre supprimée: %s", painting.Title)
	c.JSON(http.StatusOK, gin.H{"message": "Œuvre supprimée"})
}

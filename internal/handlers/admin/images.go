package admin

import (
	"log"
	"net/http"
	"time"

	"docbadman_back_end/internal/cache"
	"docbadman_back_end/internal/database"
	"docbadman_back_end/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

// UploadImage — upload multipart d'une image d'œuvre vers MinIO.
// La première image d'une œuvre devient l'image principale.
func UploadImage(c *gin.Context) {
	paintingID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID d'œuvre invalide"})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fichier image requis (champ 'image')"})
		return
	}
	if fileHeader.Size > 10<<20 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Image trop volumineuse (10 Mo max)"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de lire le fichier"})
		return
	}
	defer file.Close()

	ctx := c.Request.Context()
	contentType := fileHeader.Header.Get("Content-Type")

	objectKey, err := services.UploadPaintingImage(ctx, paintingID.String(), fileHeader.Filename, file, fileHeader.Size, contentType)
	if err != nil {
		log.Printf("❌ Erreur upload image: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Échec de l'upload"})
		return
	}

	session, err := database.GetGallerySession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	// Position et statut principal selon les images déjà présentes
	var count int
	if err := session.Query("SELECT COUNT(*) FROM painting_images WHERE painting_id = ?", paintingID).
		WithContext(ctx).Scan(&count); err != nil {
		count = 0
	}

	imageID := gocql.TimeUUID()
	isPrimary := count == 0

	err = session.Query(`
		INSERT INTO painting_images (painting_id, image_id, object_key, is_primary, position, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		paintingID, imageID, objectKey, isPrimary, count, time.Now()).
		WithContext(ctx).Exec()
	if err != nil {
		log.Printf("❌ Erreur insertion image: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur enregistrement image"})
		return
	}

	cache.InvalidatePaintingCache(paintingID)

	c.JSON(http.StatusCreated, gin.H{
		"id":         imageID.String(),
		"url":        services.ImageURL(objectKey),
		"is_primary": isPrimary,
		"position":   count,
	})
}

// SetPrimaryImage bascule l'image principale d'une œuvre
func SetPrimaryImage(c *gin.Context) {
	paintingID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID d'œuvre invalide"})
		return
	}
	imageID, err := gocql.ParseUUID(c.Param("imageId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID d'image invalide"})
		return
	}

	session, err := database.GetGallerySession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	ctx := c.Request.Context()
	iter := session.Query("SELECT image_id FROM painting_images WHERE painting_id = ?", paintingID).
		WithContext(ctx).Iter()

	found := false
	var id gocql.UUID
	for iter.Scan(&id) {
		primary := id == imageID
		if primary {
			found = true
		}
		if err := session.Query(
			"UPDATE painting_images SET is_primary = ? WHERE painting_id = ? AND image_id = ?",
			primary, paintingID, id).WithContext(ctx).Exec(); err != nil {
			log.Printf("⚠️ Erreur bascule image principale: %v", err)
		}
	}
	iter.Close()

	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Image introuvable"})
		return
	}

	cache.InvalidatePaintingCache(paintingID)
	c.JSON(http.StatusOK, gin.H{"message": "Image principale mise à jour"})
}

// DeleteImage supprime une image (MinIO + table)
func DeleteImage(c *gin.Context) {
	paintingID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID d'œuvre invalide"})
		return
	}
	imageID, err := gocql.ParseUUID(c.Param("imageId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID d'image invalide"})
		return
	}

	session, err := database.GetGallerySession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	ctx := c.Request.Context()
	var objectKey string
	err = session.Query("SELECT object_key FROM painting_images WHERE painting_id = ? AND image_id = ?",
		paintingID, imageID).WithContext(ctx).Scan(&objectKey)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Image introuvable"})
		return
	}

	if err := services.DeletePaintingImage(ctx, objectKey); err != nil {
		log.Printf("⚠️ Erreur suppression MinIO %s: %v", objectKey, err)
	}

	if err := session.Query("DELETE FROM painting_images WHERE painting_id = ? AND image_id = ?",
		paintingID, imageID).WithContext(ctx).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la suppression"})
		return
	}

	cache.InvalidatePaintingCache(paintingID)
	c.JSON(http.StatusOK, gin.H{"message": "Image supprimée"})
}

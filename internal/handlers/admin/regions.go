package admin

import (
	"log"
	"net/http"
	"time"

	"docbadman_back_end/internal/cache"
	"docbadman_back_end/internal/database"
	"docbadman_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

type regionRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	Cost     int64  `json:"cost" binding:"min=0"` // Centimes
	IsActive *bool  `json:"is_active"`
}

// ListRegions — toutes les régions de livraison, actives ou non
func ListRegions(c *gin.Context) {
	session, err := database.GetGallerySession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`
		SELECT region_id, name, cost, is_active, created_at, updated_at
		FROM delivery_regions`).WithContext(c.Request.Context()).Iter()

	regions := []models.DeliveryRegion{}
	for {
		var r models.DeliveryRegion
		if !iter.Scan(&r.ID, &r.Name, &r.Cost, &r.IsActive, &r.CreatedAt, &r.UpdatedAt) {
			break
		}
		regions = append(regions, r)
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture régions"})
		return
	}

	c.JSON(http.StatusOK, regions)
}

// CreateRegion ajoute une région de livraison
func CreateRegion(c *gin.Context) {
	var req regionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": err.Error()})
		return
	}

	session, err := database.GetGallerySession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	now := time.Now()
	region := models.DeliveryRegion{
		ID:        gocql.TimeUUID(),
		Name:      req.Name,
		Cost:      req.Cost,
		IsActive:  active,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = session.Query(`
		INSERT INTO delivery_regions (region_id, name, cost, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		region.ID, region.Name, region.Cost, region.IsActive, region.CreatedAt, region.UpdatedAt).
		WithContext(c.Request.Context()).Exec()
	if err != nil {
		log.Printf("❌ Erreur création région: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la création"})
		return
	}

	cache.InvalidateRegionsCache()
	c.JSON(http.StatusCreated, region)
}

// UpdateRegion modifie une région (nom, coût, activation)
func UpdateRegion(c *gin.Context) {
	regionID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de région invalide"})
		return
	}

	var req regionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": err.Error()})
		return
	}

	session, err := database.GetGallerySession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	ctx := c.Request.Context()
	var region models.DeliveryRegion
	err = session.Query(`
		SELECT region_id, name, cost, is_active, created_at, updated_at
		FROM delivery_regions WHERE region_id = ?`, regionID).WithContext(ctx).
		Scan(&region.ID, &region.Name, &region.Cost, &region.IsActive, &region.CreatedAt, &region.UpdatedAt)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Région introuvable"})
		return
	}

	region.Name = req.Name
	region.Cost = req.Cost
	if req.IsActive != nil {
		region.IsActive = *req.IsActive
	}
	region.UpdatedAt = time.Now()

	err = session.Query(`
		UPDATE delivery_regions SET name = ?, cost = ?, is_active = ?, updated_at = ?
		WHERE region_id = ?`,
		region.Name, region.Cost, region.IsActive, region.UpdatedAt, regionID).
		WithContext(ctx).Exec()
	if err != nil {
		log.Printf("❌ Erreur mise à jour région: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la mise à jour"})
		return
	}

	cache.InvalidateRegionsCache()
	c.JSON(http.StatusOK, region)
}

// DeleteRegion supprime une région de livraison
func DeleteRegion(c *gin.Context) {
	regionID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de région invalide"})
		return
	}

	session, err := database.GetGallerySession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	if err := session.Query("DELETE FROM delivery_regions WHERE region_id = ?", regionID).
		WithContext(c.Request.Context()).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la suppression"})
		return
	}

	cache.InvalidateRegionsCache()
	c.JSON(http.StatusOK, gin.H{"message": "Région supprimée"})
}

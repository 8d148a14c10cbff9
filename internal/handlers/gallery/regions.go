package gallery

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"

	"docbadman_back_end/internal/cache"
	"docbadman_back_end/internal/database"
	"docbadman_back_end/internal/models"

	"github.com/gin-gonic/gin"
)

// ListRegions — régions de livraison actives avec leur coût, pour le
// choix des frais de port au checkout. Cachée dans Redis.
func ListRegions(c *gin.Context) {
	ctx := c.Request.Context()

	if data, err := database.Redis.Get(ctx, "regions:active").Result(); err == nil {
		var regions []models.DeliveryRegion
		if json.Unmarshal([]byte(data), &regions) == nil {
			c.JSON(http.StatusOK, regions)
			return
		}
	}

	regions, err := FetchActiveRegions(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	if jsonData, err := json.Marshal(regions); err == nil {
		database.Redis.Set(ctx, "regions:active", jsonData, cache.RegionsCacheTTL)
	}

	c.JSON(http.StatusOK, regions)
}

// FetchActiveRegions charge les régions actives, triées par nom
func FetchActiveRegions(ctx context.Context) ([]models.DeliveryRegion, error) {
	session, err := database.GetGallerySession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(`
		SELECT region_id, name, cost, is_active, created_at, updated_at
		FROM delivery_regions`).WithContext(ctx).Iter()

	regions := []models.DeliveryRegion{}
	for {
		var r models.DeliveryRegion
		if !iter.Scan(&r.ID, &r.Name, &r.Cost, &r.IsActive, &r.CreatedAt, &r.UpdatedAt) {
			break
		}
		if !r.IsActive {
			continue
		}
		regions = append(regions, r)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}

	sort.Slice(regions, func(i, j int) bool { return regions[i].Name < regions[j].Name })
	return regions, nil
}

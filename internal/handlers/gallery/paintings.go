package gallery

import (
	"context"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"docbadman_back_end/internal/database"
	"docbadman_back_end/internal/models"
	"docbadman_back_end/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

// ListPaintings — catalogue public : œuvres disponibles avec filtres
// (artiste, prix, recherche), tri et pagination
func ListPaintings(c *gin.Context) {
	artist := c.Query("artist")
	minPrice := c.Query("min_price")
	maxPrice := c.Query("max_price")
	search := c.Query("search")
	sortBy := c.DefaultQuery("sort_by", "created_at")
	sortOrder := c.DefaultQuery("sort_order", "desc")

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "12"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 12
	}

	paintings, err := fetchPaintings(c.Request.Context(), true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	// Recherche : Elasticsearch quand il est là, sinon filtrage en mémoire
	if search != "" {
		if ids, ok := services.SearchPaintingIDs(c.Request.Context(), search, 200); ok {
			keep := make(map[string]bool, len(ids))
			for _, id := range ids {
				keep[id] = true
			}
			var filtered []models.Painting
			for _, p := range paintings {
				if keep[p.ID.String()] {
					filtered = append(filtered, p)
				}
			}
			paintings = filtered
		} else {
			needle := strings.ToLower(search)
			var filtered []models.Painting
			for _, p := range paintings {
				if strings.Contains(strings.ToLower(p.Title), needle) ||
					strings.Contains(strings.ToLower(p.Artist), needle) ||
					strings.Contains(strings.ToLower(p.Description), needle) {
					filtered = append(filtered, p)
				}
			}
			paintings = filtered
		}
	}

	if artist != "" {
		needle := strings.ToLower(artist)
		var filtered []models.Painting
		for _, p := range paintings {
			if strings.Contains(strings.ToLower(p.Artist), needle) {
				filtered = append(filtered, p)
			}
		}
		paintings = filtered
	}

	if minPrice != "" {
		if min, err := strconv.ParseInt(minPrice, 10, 64); err == nil {
			var filtered []models.Painting
			for _, p := range paintings {
				if p.Price >= min {
					filtered = append(filtered, p)
				}
			}
			paintings = filtered
		}
	}
	if maxPrice != "" {
		if max, err := strconv.ParseInt(maxPrice, 10, 64); err == nil {
			var filtered []models.Painting
			for _, p := range paintings {
				if p.Price <= max {
					filtered = append(filtered, p)
				}
			}
			paintings = filtered
		}
	}

	sortPaintings(paintings, sortBy, sortOrder)

	total := len(paintings)
	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      paintings[start:end],
		"total":     total,
		"page":      page,
		"per_page":  perPage,
		"last_page": (total + perPage - 1) / perPage,
	})
}

// FeaturedPaintings — les œuvres mises en avant (6 max, disponibles)
func FeaturedPaintings(c *gin.Context) {
	paintings, err := fetchPaintings(c.Request.Context(), true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var featured []models.Painting
	for _, p := range paintings {
		if p.IsFeatured {
			featured = append(featured, p)
			if len(featured) == 6 {
				break
			}
		}
	}

	c.JSON(http.StatusOK, featured)
}

// GetPainting — détail d'une œuvre avec ses images
func GetPainting(c *gin.Context) {
	paintingID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID d'œuvre invalide"})
		return
	}

	painting, err := FetchPainting(c.Request.Context(), paintingID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Œuvre introuvable"})
		return
	}

	c.JSON(http.StatusOK, painting)
}

// ListArtists — liste des artistes distincts, triée
func ListArtists(c *gin.Context) {
	paintings, err := fetchPaintings(c.Request.Context(), false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	seen := make(map[string]bool)
	var artists []string
	for _, p := range paintings {
		if p.Artist != "" && !seen[p.Artist] {
			seen[p.Artist] = true
			artists = append(artists, p.Artist)
		}
	}
	sort.Strings(artists)

	c.JSON(http.StatusOK, artists)
}

// FetchPainting charge une œuvre et ses images
func FetchPainting(ctx context.Context, paintingID gocql.UUID) (*models.Painting, error) {
	session, err := database.GetGallerySession()
	if err != nil {
		return nil, err
	}

	var p models.Painting
	err = session.Query(`
		SELECT painting_id, title, description, artist, price, quantity, size, medium, year,
			is_featured, is_available, created_at, updated_at
		FROM paintings WHERE painting_id = ?`, paintingID).WithContext(ctx).
		Scan(&p.ID, &p.Title, &p.Description, &p.Artist, &p.Price, &p.Quantity, &p.Size,
			&p.Medium, &p.Year, &p.IsFeatured, &p.IsAvailable, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	p.Images = loadImages(ctx, session, paintingID)
	return &p, nil
}

// fetchPaintings charge le catalogue (availableOnly : disponibles et en stock)
func fetchPaintings(ctx context.Context, availableOnly bool) ([]models.Painting, error) {
	session, err := database.GetGallerySession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(`
		SELECT painting_id, title, description, artist, price, quantity, size, medium, year,
			is_featured, is_available, created_at, updated_at
		FROM paintings`).WithContext(ctx).Iter()

	var paintings []models.Painting
	for {
		var p models.Painting
		if !iter.Scan(&p.ID, &p.Title, &p.Description, &p.Artist, &p.Price, &p.Quantity,
			&p.Size, &p.Medium, &p.Year, &p.IsFeatured, &p.IsAvailable, &p.CreatedAt, &p.UpdatedAt) {
			break
		}
		if availableOnly && !p.Purchasable() {
			continue
		}
		paintings = append(paintings, p)
	}
	if err := iter.Close(); err != nil {
		log.Printf("❌ Erreur lecture catalogue: %v", err)
		return nil, err
	}

	for i := range paintings {
		paintings[i].Images = loadImages(ctx, session, paintings[i].ID)
	}

	return paintings, nil
}

func loadImages(ctx context.Context, session *gocql.Session, paintingID gocql.UUID) []models.PaintingImage {
	iter := session.Query(`
		SELECT image_id, painting_id, object_key, is_primary, position, created_at
		FROM painting_images WHERE painting_id = ?`, paintingID).WithContext(ctx).Iter()

	var images []models.PaintingImage
	for {
		var img models.PaintingImage
		if !iter.Scan(&img.ID, &img.PaintingID, &img.ObjectKey, &img.IsPrimary, &img.Position, &img.CreatedAt) {
			break
		}
		img.URL = services.ImageURL(img.ObjectKey)
		images = append(images, img)
	}
	iter.Close()

	sort.Slice(images, func(i, j int) bool { return images[i].Position < images[j].Position })
	return images
}

func sortPaintings(paintings []models.Painting, sortBy, sortOrder string) {
	less := func(i, j int) bool {
		switch sortBy {
		case "price":
			return paintings[i].Price < paintings[j].Price
		case "title":
			return paintings[i].Title < paintings[j].Title
		case "year":
			return paintings[i].Year < paintings[j].Year
		default:
			return paintings[i].CreatedAt.Before(paintings[j].CreatedAt)
		}
	}

	if sortOrder == "desc" {
		sort.Slice(paintings, func(i, j int) bool { return less(j, i) })
	} else {
		sort.Slice(paintings, less)
	}
}

package services

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"strings"

	"docbadman_back_end/internal/database"
	"docbadman_back_end/internal/models"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const paintingsIndex = "paintings"

// IndexPainting indexe une œuvre dans Elasticsearch (best-effort :
// sans ES la recherche retombe sur le filtrage en mémoire)
func IndexPainting(painting *models.Painting) {
	if database.Elastic == nil {
		return
	}

	doc := map[string]any{
		"title":        painting.Title,
		"description":  painting.Description,
		"artist":       painting.Artist,
		"price":        painting.Price,
		"is_available": painting.IsAvailable,
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return
	}

	req := esapi.IndexRequest{
		Index:      paintingsIndex,
		DocumentID: painting.ID.String(),
		Body:       bytes.NewReader(data),
		Refresh:    "false",
	}

	res, err := req.Do(context.Background(), database.Elastic)
	if err != nil {
		log.Printf("⚠️ Erreur indexation Elasticsearch: %v", err)
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Printf("⚠️ Indexation Elasticsearch refusée: %s", res.String())
	}
}

// RemovePaintingFromIndex retire une œuvre de l'index
func RemovePaintingFromIndex(paintingID string) {
	if database.Elastic == nil {
		return
	}

	res, err := database.Elastic.Delete(paintingsIndex, paintingID)
	if err != nil {
		log.Printf("⚠️ Erreur suppression index Elasticsearch: %v", err)
		return
	}
	defer res.Body.Close()
}

// SearchPaintingIDs recherche des œuvres par texte (titre, artiste,
// description) et retourne les identifiants trouvés
func SearchPaintingIDs(ctx context.Context, queryText string, limit int) ([]string, bool) {
	if database.Elastic == nil || strings.TrimSpace(queryText) == "" {
		return nil, false
	}

	query := map[string]any{
		"size": limit,
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  queryText,
				"fields": []string{"title^2", "artist^2", "description"},
			},
		},
	}

	data, err := json.Marshal(query)
	if err != nil {
		return nil, false
	}

	req := esapi.SearchRequest{
		Index: []string{paintingsIndex},
		Body:  bytes.NewReader(data),
	}

	res, err := req.Do(ctx, database.Elastic)
	if err != nil {
		log.Printf("⚠️ Erreur recherche Elasticsearch: %v", err)
		return nil, false
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, false
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, false
	}

	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, true
}

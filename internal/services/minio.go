package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"docbadman_back_end/internal/database"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// UploadPaintingImage stocke une image d'œuvre dans MinIO et retourne
// la clé d'objet
func UploadPaintingImage(ctx context.Context, paintingID string, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	if database.MinIO == nil {
		return "", fmt.Errorf("MinIO non initialisé")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	objectKey := fmt.Sprintf("paintings/%s/%s%s", paintingID, uuid.New().String(), ext)

	bucket := os.Getenv("MINIO_BUCKET")
	_, err := database.MinIO.PutObject(ctx, bucket, objectKey, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("erreur upload MinIO: %v", err)
	}

	log.Printf("🖼️ Image uploadée: %s", objectKey)
	return objectKey, nil
}

// DeletePaintingImage supprime une image d'œuvre de MinIO
func DeletePaintingImage(ctx context.Context, objectKey string) error {
	if database.MinIO == nil {
		return fmt.Errorf("MinIO non initialisé")
	}

	bucket := os.Getenv("MINIO_BUCKET")
	return database.MinIO.RemoveObject(ctx, bucket, objectKey, minio.RemoveObjectOptions{})
}

// ImageURL construit l'URL publique d'une image
func ImageURL(objectKey string) string {
	base := os.Getenv("MINIO_PUBLIC_URL")
	if base == "" {
		return objectKey
	}
	return strings.TrimSuffix(base, "/") + "/" + os.Getenv("MINIO_BUCKET") + "/" + objectKey
}

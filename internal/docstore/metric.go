package docstore

import (
	"context"
	"time"

	"dermadect/internal/models"

	"github.com/redis/go-redis/v9"
)

// AppendHealthMetrics performs the read-modify-write on the user's metrics
// document; an absent document is created on first write.
func AppendHealthMetrics(ctx context.Context, cmd redis.Cmdable, userID string, metrics []models.HealthMetric) error {
	doc, err := GetHealthMetrics(ctx, cmd, userID)
	if err == ErrNotFound {
		doc = &models.HealthMetrics{
			UserID:        userID,
			SchemaVersion: models.HealthMetricsSchemaVersion,
		}
	} else if err != nil {
		return err
	}

	doc.Metrics = append(doc.Metrics, metrics...)
	doc.UpdatedAt = time.Now()

	return setDocument(ctx, cmd, dbKeyHealthMetrics(userID), doc)
}

func GetHealthMetrics(ctx context.Context, cmd redis.Cmdable, userID string) (*models.HealthMetrics, error) {
	var doc models.HealthMetrics
	if err := getDocument(ctx, cmd, dbKeyHealthMetrics(userID), &doc); err != nil {
		return nil, err
	}

	return &doc, nil
}

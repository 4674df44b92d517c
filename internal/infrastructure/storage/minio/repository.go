package minio

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/newdrug-response/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/newdrug-response/pkg/errors"
)

const csvContentType = "text/csv"

// ArtifactRepository uploads the tables written by a prediction run.
type ArtifactRepository interface {
	// UploadArtifacts stores each file under <prefix>/<runID>/<basename> and
	// returns the object locations in input order.
	UploadArtifacts(ctx context.Context, runID string, paths ...string) ([]string, error)
}

type artifactRepository struct {
	client *MinIOClient
	logger logging.Logger
}

func NewArtifactRepository(client *MinIOClient, log logging.Logger) ArtifactRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &artifactRepository{
		client: client,
		logger: log,
	}
}

func (r *artifactRepository) UploadArtifacts(ctx context.Context, runID string, paths ...string) ([]string, error) {
	if runID == "" {
		return nil, errors.InvalidParam("run id is required")
	}

	bucket := r.client.Bucket()
	locations := make([]string, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.CodeCancelled, "artifact upload cancelled")
		}

		key := objectKey(r.client.Prefix(), runID, p)
		info, err := r.client.GetClient().FPutObject(ctx, bucket, key, p, minio.PutObjectOptions{
			ContentType: contentTypeFor(p),
			UserMetadata: map[string]string{
				"run-id": runID,
			},
		})
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeStorageUpload, "failed to upload artifact").WithDetail(p)
		}

		r.logger.Debug("artifact uploaded",
			logging.String("bucket", bucket),
			logging.String("key", key),
			logging.Int64("size", info.Size),
		)
		locations = append(locations, fmt.Sprintf("s3://%s/%s", bucket, key))
	}
	return locations, nil
}

func objectKey(prefix, runID, file string) string {
	return path.Join(strings.Trim(prefix, "/"), runID, filepath.Base(file))
}

func contentTypeFor(file string) string {
	if strings.EqualFold(filepath.Ext(file), ".csv") {
		return csvContentType
	}
	return "application/octet-stream"
}

//Personal.AI order the ending

package minio

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/ChemRxn-Core/internal/infrastructure/monitoring/logging"
	appErrors "github.com/turtacn/ChemRxn-Core/pkg/errors"
	"github.com/turtacn/ChemRxn-Core/pkg/types/common"
)

const xyzContentType = "chemical/x-xyz"

// ─────────────────────────────────────────────────────────────────────────────
// GeometryStore
// ─────────────────────────────────────────────────────────────────────────────

// GeometryStore archives TS guess geometries as plain xyz text objects, one
// object per guess, under the reaction's key prefix.
type GeometryStore struct {
	api    ObjectAPI
	bucket string
	logger logging.Logger
}

// NewGeometryStore builds a store over the shared client's bucket.
func NewGeometryStore(client *Client, log logging.Logger) *GeometryStore {
	return NewGeometryStoreWithAPI(client, client.Bucket(), log)
}

// NewGeometryStoreWithAPI builds a store over an arbitrary ObjectAPI, used
// by tests.
func NewGeometryStoreWithAPI(api ObjectAPI, bucket string, log logging.Logger) *GeometryStore {
	return &GeometryStore{api: api, bucket: bucket, logger: log}
}

// PutTSGuess archives one TS guess geometry for a reaction.
func (s *GeometryStore) PutTSGuess(ctx context.Context, id common.ID, index int, xyz string) error {
	key := tsGuessKey(id, index)
	_, err := s.api.PutObject(ctx, s.bucket, key,
		strings.NewReader(xyz), int64(len(xyz)),
		minio.PutObjectOptions{ContentType: xyzContentType},
	)
	if err != nil {
		s.logger.Error("GeometryStore.PutTSGuess",
			logging.String("key", key), logging.Err(err))
		return appErrors.Wrap(err, appErrors.ErrCodeInternal, "failed to archive ts guess")
	}
	return nil
}

// GetTSGuess fetches one archived TS guess geometry.
func (s *GeometryStore) GetTSGuess(ctx context.Context, id common.ID, index int) (string, error) {
	key := tsGuessKey(id, index)
	obj, err := s.api.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return "", mapObjectError(err, key)
	}
	defer obj.Close()

	// The object handle is lazy, so a missing key surfaces on read.
	raw, err := io.ReadAll(obj)
	if err != nil {
		return "", mapObjectError(err, key)
	}
	return string(raw), nil
}

func tsGuessKey(id common.ID, index int) string {
	return fmt.Sprintf("reactions/%s/ts_guess_%d.xyz", id, index)
}

func mapObjectError(err error, key string) error {
	if resp := minio.ToErrorResponse(err); resp.Code == "NoSuchKey" {
		return appErrors.New(appErrors.ErrCodeNotFound, "ts guess not found").WithDetail("key=" + key)
	}
	return appErrors.Wrap(err, appErrors.ErrCodeInternal, "failed to fetch ts guess")
}

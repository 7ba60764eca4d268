package visits

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"visit-tracker/core/reconcile"
	"visit-tracker/core/storage"

	"github.com/minio/minio-go/v7"
)

// ErrArchiveDisabled is returned by operations that need the snapshot archive.
var ErrArchiveDisabled = errors.New("snapshot archive is disabled")

// archivedSnapshot is the object body written for each snapshot.
type archivedSnapshot struct {
	reconcile.Snapshot
	Payload    json.RawMessage `json:"payload,omitempty"`
	ArchivedAt time.Time       `json:"archivedAt"`
}

// Archive keeps applied snapshots in object storage, one object per snapshot.
type Archive struct {
	client storage.Client
	bucket string
	prefix string
}

// NewArchive creates an archive writing under bucket/prefix.
func NewArchive(client storage.Client, bucket, prefix string) *Archive {
	return &Archive{client: client, bucket: bucket, prefix: prefix}
}

// EnsureBucket creates the bucket when it does not exist.
func (a *Archive) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", a.bucket, err)
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", a.bucket, err)
	}
	return nil
}

func (a *Archive) userPrefix(userID string) string {
	return storage.ObjectKey(a.prefix, userID) + "/"
}

// ObjectName returns the object key of a snapshot.
func (a *Archive) ObjectName(snap *reconcile.Snapshot) string {
	return storage.ObjectKey(a.prefix, snap.UserID, snap.ID+".json")
}

// Put stores snap. Writing the same snapshot id twice overwrites the object.
func (a *Archive) Put(ctx context.Context, snap *reconcile.Snapshot) error {
	body, err := json.Marshal(archivedSnapshot{
		Snapshot:   *snap,
		Payload:    snap.Raw,
		ArchivedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode snapshot %s: %w", snap.ID, err)
	}

	_, err = a.client.PutObject(ctx, a.bucket, a.ObjectName(snap),
		bytes.NewReader(body), int64(len(body)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("failed to archive snapshot %s: %w", snap.ID, err)
	}
	return nil
}

func (a *Archive) objectNames(ctx context.Context, userID string) ([]string, error) {
	var names []string
	for obj := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{
		Prefix:    a.userPrefix(userID),
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list archived snapshots: %w", obj.Err)
		}
		if strings.HasSuffix(obj.Key, ".json") {
			names = append(names, obj.Key)
		}
	}
	return names, nil
}

// List loads every archived snapshot of userID ordered by timestamp, then id.
func (a *Archive) List(ctx context.Context, userID string) ([]*reconcile.Snapshot, error) {
	names, err := a.objectNames(ctx, userID)
	if err != nil {
		return nil, err
	}

	snaps := make([]*reconcile.Snapshot, 0, len(names))
	for _, name := range names {
		snap, err := a.get(ctx, name)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}

	sort.SliceStable(snaps, func(i, j int) bool {
		if snaps[i].Timestamp != snaps[j].Timestamp {
			return snaps[i].Timestamp < snaps[j].Timestamp
		}
		return snaps[i].ID < snaps[j].ID
	})
	return snaps, nil
}

func (a *Archive) get(ctx context.Context, name string) (*reconcile.Snapshot, error) {
	reader, err := a.client.GetObject(ctx, a.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", name, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	var archived archivedSnapshot
	if err := json.Unmarshal(data, &archived); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	snap := archived.Snapshot
	snap.Raw = archived.Payload
	if err := ValidateSnapshot(&snap); err != nil {
		return nil, fmt.Errorf("archived snapshot %s: %w", name, err)
	}
	return &snap, nil
}

// Purge removes every archived snapshot of userID and returns how many were removed.
func (a *Archive) Purge(ctx context.Context, userID string) (int, error) {
	names, err := a.objectNames(ctx, userID)
	if err != nil {
		return 0, err
	}
	for i, name := range names {
		if err := a.client.RemoveObject(ctx, a.bucket, name, minio.RemoveObjectOptions{}); err != nil {
			return i, fmt.Errorf("failed to remove %s: %w", name, err)
		}
	}
	return len(names), nil
}

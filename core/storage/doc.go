// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind a small Client interface. The visit
// tracker uses it as the snapshot archive: every applied snapshot can be kept
// as a JSON object so a user's visits can be rebuilt later. Both AWS S3 and
// self-hosted MinIO are supported.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it easier
// to mock storage interactions for unit testing (see core/storage/mocks).
//
// # Usage
//
//	client, err := storage.NewClient(config)
//	exists, err := client.BucketExists(ctx, "visits")
package storage

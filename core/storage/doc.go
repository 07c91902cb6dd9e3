// Package storage publishes JSON reports of sync runs to object storage.
//
// It wraps the MinIO Go client behind the Client interface, which works against both
// AWS S3 and self-hosted MinIO and is mocked in core/storage/mocks.
//
// # Reports
//
// A Publisher uploads one JSON object per check, promotion, replicate or repair run,
// keyed <prefix>/<kind>/<productId>/<timestamp>.json, so the history of a product
// lists in chronological order.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	pub := storage.NewPublisher(client, cfg.Storage.Bucket, cfg.Storage.Prefix, logg)
//	key, err := pub.Publish(ctx, storage.KindPromotion, result.ProductID, result)
package storage

package service

import "context"

// StoredAsset identifies an object hosted by the external asset store.
// URL is what gets persisted on user records; Key is what delete needs.
type StoredAsset struct {
	URL string
	Key string
}

// MediaStorage defines the contract the core needs from the external
// object-storage service. Implementations must bound calls with timeouts;
// the core treats failures as upload errors, not hangs.
type MediaStorage interface {
	// Upload stores the file at localPath and returns its hosted reference.
	Upload(ctx context.Context, localPath string) (*StoredAsset, error)

	// Delete removes a previously uploaded object. Callers on compensation
	// paths log failures instead of propagating them.
	Delete(ctx context.Context, key string) error
}

package port

import (
	"context"

	"pixbox/internal/core/domain"
)

type BackgroundRemover interface {
	// RemoveBackground returns a copy of the asset with its background cut
	// out, as raw image bytes from the segmentation provider.
	RemoveBackground(ctx context.Context, asset domain.ImageAsset) (domain.ImageAsset, error)
}

package file

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pixbox/internal/adapters/gateway"
	"pixbox/internal/core/domain"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog/log"
)

const fetchTimeout = 30 * time.Second

// Saver materializes result payloads into files under a fixed artifacts
// directory. Both input shapes behave identically from the caller's side: a
// base64 data URI is decoded directly, a URL is fetched first.
type Saver struct {
	gw  *gateway.Gateway
	dir string
}

func NewSaver(gw *gateway.Gateway, dir string) (*Saver, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("error creating artifacts directory: %w", err)
	}

	return &Saver{gw: gw, dir: dir}, nil
}

// Materialize saves the referenced image locally and returns the written
// path. An empty fetched body is rejected rather than producing a zero-byte
// artifact.
func (s *Saver) Materialize(ctx context.Context, ref string, suggestedName string) (string, error) {
	var mediaType string
	var data []byte

	if strings.HasPrefix(ref, "data:") {
		var err error
		mediaType, data, err = domain.ParseDataURI(ref)
		if err != nil {
			return "", fmt.Errorf("materialize: %w",
				domain.Faultf(domain.FaultDownloadFailed, "invalid data URI: %s", err))
		}
	} else {
		asset, err := s.fetch(ctx, ref)
		if err != nil {
			return "", err
		}
		mediaType, data = asset.MediaType, asset.Data
	}

	return s.save(data, suggestedName, domain.ExtensionForMediaType(mediaType))
}

// fetch downloads result bytes with an image Accept hint. A 401/403 refusal
// is an origin-policy class fault, distinct from a plain download failure, so
// the caller can surface an actionable message.
func (s *Saver) fetch(ctx context.Context, url string) (domain.ImageAsset, error) {
	header := http.Header{}
	header.Set("Accept", "image/*")

	outcome := s.gw.Call(ctx, gateway.Request{
		Method:  http.MethodGet,
		URL:     url,
		Header:  header,
		Timeout: fetchTimeout,
	})

	if outcome.Fault != nil && outcome.Fault.Kind == domain.FaultRemoteRejected {
		kind := domain.FaultDownloadFailed
		if outcome.Fault.HTTPStatus == http.StatusUnauthorized || outcome.Fault.HTTPStatus == http.StatusForbidden {
			kind = domain.FaultCrossOriginBlocked
		}
		return domain.ImageAsset{}, fmt.Errorf("materialize: %w",
			domain.Faultf(kind, "host returned status %d", outcome.Fault.HTTPStatus))
	}

	asset, fault := gateway.DecodeBinary(outcome, "")
	if fault != nil {
		return domain.ImageAsset{}, fmt.Errorf("materialize: %w", fault)
	}

	return asset, nil
}

func (s *Saver) save(data []byte, suggestedName, extension string) (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}

	if suggestedName == "" {
		suggestedName = "image"
	}
	suggestedName = strings.TrimSuffix(suggestedName, filepath.Ext(suggestedName))

	path := filepath.Join(s.dir, fmt.Sprintf("%s-%s%s", suggestedName, id.String(), extension))

	log.Debug().Int("bytes", len(data)).Str("path", path).Msg("writing artifact")

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("error writing artifact: %w", err)
	}

	return path, nil
}

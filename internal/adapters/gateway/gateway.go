package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"pixbox/internal/core/domain"

	"github.com/rs/zerolog/log"
)

// Request describes a single remote call. Timeout must be finite; the
// deadline is enforced here by cancellation, never left to the transport.
type Request struct {
	Method  string
	URL     string
	Header  http.Header
	Body    io.Reader
	Timeout time.Duration
}

// Outcome is the classified result of a call. Fault is nil on success, and
// Call itself never returns a Go error.
type Outcome struct {
	Fault       *domain.Fault
	Status      int
	Body        []byte
	ContentType string
}

// Gateway wraps outbound HTTP with a per-call deadline and a fixed fault
// classification. It never retries; re-invoking the caller is the only retry
// path.
type Gateway struct {
	client *http.Client
}

func New() *Gateway {
	// No client-level timeout, every call carries its own deadline.
	return &Gateway{client: &http.Client{}}
}

func (g *Gateway) Call(ctx context.Context, r Request) Outcome {
	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL, r.Body)
	if err != nil {
		return Outcome{Fault: domain.Faultf(domain.FaultNetworkUnavailable, "error creating request: %s", err)}
	}

	for key, values := range r.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	res, err := g.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			log.Warn().Str("url", r.URL).Dur("timeout", r.Timeout).Msg("remote call hit deadline")
			return Outcome{Fault: domain.Faultf(domain.FaultTimeout, "deadline of %s exceeded", r.Timeout)}
		}
		log.Error().Err(err).Str("url", r.URL).Msg("remote call transport failure")
		return Outcome{Fault: domain.Faultf(domain.FaultNetworkUnavailable, "transport failure: %s", err)}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Outcome{Fault: domain.Faultf(domain.FaultTimeout, "deadline of %s exceeded", r.Timeout)}
		}
		return Outcome{Fault: domain.Faultf(domain.FaultNetworkUnavailable, "error reading response: %s", err)}
	}

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		log.Debug().Int("status", res.StatusCode).Str("url", r.URL).Msg("remote call rejected")
		return Outcome{
			Status: res.StatusCode,
			Fault: &domain.Fault{
				Kind:       domain.FaultRemoteRejected,
				Message:    rejectionMessage(res, body),
				HTTPStatus: res.StatusCode,
			},
		}
	}

	return Outcome{
		Status:      res.StatusCode,
		Body:        body,
		ContentType: res.Header.Get("Content-Type"),
	}
}

// rejectionMessage prefers a server-provided message over the status text.
// JSON error envelopes expose it under error.message or error, plain-text
// bodies are used as-is.
func rejectionMessage(res *http.Response, body []byte) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}

	var flat struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &flat); err == nil && flat.Error != "" {
		return flat.Error
	}

	if text := strings.TrimSpace(string(body)); text != "" && !strings.HasPrefix(text, "{") {
		return text
	}

	return http.StatusText(res.StatusCode)
}

// DecodeJSON unmarshals a successful outcome into v. The response shape is a
// fixed property of the endpoint, not auto-detected.
func DecodeJSON(o Outcome, v any) *domain.Fault {
	if o.Fault != nil {
		return o.Fault
	}

	if err := json.Unmarshal(o.Body, v); err != nil {
		return domain.Faultf(domain.FaultRemoteRejected, "unexpected response format: %s", err)
	}

	return nil
}

// DecodeBinary interprets a successful outcome as raw image bytes.
func DecodeBinary(o Outcome, name string) (domain.ImageAsset, *domain.Fault) {
	if o.Fault != nil {
		return domain.ImageAsset{}, o.Fault
	}

	if len(o.Body) == 0 {
		return domain.ImageAsset{}, domain.NewFault(domain.FaultDownloadFailed, "response body is empty")
	}

	mediaType := o.ContentType
	if mediaType == "" {
		mediaType = "image/png"
	}

	return domain.ImageAsset{Name: name, MediaType: mediaType, Data: o.Body}, nil
}

// DecodeDataURI interprets a successful outcome as raw image bytes and wraps
// them into a base64 data URI.
func DecodeDataURI(o Outcome) (string, *domain.Fault) {
	asset, fault := DecodeBinary(o, "")
	if fault != nil {
		return "", fault
	}

	return domain.EncodeDataURI(asset.MediaType, asset.Data), nil
}

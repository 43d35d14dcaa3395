package generator

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"pixbox/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVisionDescribeImage(t *testing.T) {
	tests := []struct {
		name           string
		responseBody   string
		responseStatus int
		wantContent    string
		wantErr        bool
		wantKind       domain.FaultKind
	}{
		{
			name: "success",
			responseBody: `{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"test-model",` +
				`"choices":[{"index":0,"message":{"role":"assistant","content":"a beach at sunset"},"finish_reason":"stop"}]}`,
			responseStatus: http.StatusOK,
			wantContent:    "a beach at sunset",
		},
		{
			name:           "api rejection",
			responseBody:   `{"error":{"message":"invalid model","type":"invalid_request_error"}}`,
			responseStatus: http.StatusBadRequest,
			wantErr:        true,
			wantKind:       domain.FaultRemoteRejected,
		},
		{
			name: "empty choices",
			responseBody: `{"id":"chatcmpl-2","object":"chat.completion","created":1,"model":"test-model",` +
				`"choices":[]}`,
			responseStatus: http.StatusOK,
			wantErr:        true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.responseStatus)
				_, _ = w.Write([]byte(tc.responseBody))
			}))
			defer srv.Close()

			v := NewVision("test-api-key", srv.URL, "test-model", "")

			asset := domain.ImageAsset{Name: "photo.png", MediaType: "image/png", Data: []byte{1, 2, 3}}
			got, err := v.DescribeImage(t.Context(), asset)

			if tc.wantErr {
				require.Error(t, err)
				if tc.wantKind != "" {
					assert.Equal(t, tc.wantKind, domain.KindOf(err))
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.wantContent, got)
		})
	}
}

func TestVisionDefaultQuestion(t *testing.T) {
	v := NewVision("test-api-key", "http://unused.invalid", "test-model", "")
	assert.Equal(t, DefaultQuestion, v.question)

	v = NewVision("test-api-key", "http://unused.invalid", "test-model", "describe the scene")
	assert.Equal(t, "describe the scene", v.question)
}

package handler

import (
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strconv"

	"pixbox/internal/core/domain"
	"pixbox/internal/core/service"
	"pixbox/internal/metrics"

	"github.com/labstack/echo/v4"
)

// API exposes the four feature orchestrators over HTTP. Every handler maps
// orchestrator faults to one JSON error body and a status code; nothing
// bubbles to a global handler.
type API struct {
	compress  *service.Compress
	generate  *service.Generate
	recognize *service.Recognize
	remove    *service.RemoveBackground
	reg       *metrics.Registry
}

func NewAPI(compress *service.Compress, generate *service.Generate,
	recognize *service.Recognize, remove *service.RemoveBackground,
	reg *metrics.Registry) *API {
	return &API{
		compress:  compress,
		generate:  generate,
		recognize: recognize,
		remove:    remove,
		reg:       reg,
	}
}

func (a *API) Register(e *echo.Echo) {
	e.GET("/healthz", a.handleHealth)
	e.GET("/metrics", a.reg.HandleText)
	e.GET("/metrics.json", a.reg.HandleJSON)

	e.POST("/api/generate", a.handleGenerate)
	e.GET("/api/generate/history", a.handleGenerateHistory)
	e.GET("/api/generate/examples", a.handleGenerateExamples)
	e.POST("/api/generate/download", a.handleGenerateDownload)

	e.POST("/api/recognize", a.handleRecognize)

	e.POST("/api/remove-background", a.handleRemoveBackground)
	e.POST("/api/remove-background/download", a.handleRemoveDownload)

	e.POST("/api/compress", a.handleCompress)
	e.POST("/api/compress/download", a.handleCompressDownload)
}

func (a *API) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

type generateResponse struct {
	ImageURL string `json:"imageUrl"`
	IsBase64 bool   `json:"isBase64,omitempty"`
	Prompt   string `json:"prompt"`
	Message  string `json:"message"`
}

func (a *API) handleGenerate(c echo.Context) error {
	var req generateRequest
	if err := c.Bind(&req); err != nil {
		return a.fail(c, domain.NewFault(domain.FaultValidation, "please provide a prompt"), "generate")
	}

	image, err := a.generate.Run(c.Request().Context(), req.Prompt)
	if err != nil {
		return a.fail(c, err, "generate")
	}

	a.count(c, "generate", "success")

	return c.JSON(http.StatusOK, generateResponse{
		ImageURL: image.Ref(),
		IsBase64: image.DataURI != "",
		Prompt:   req.Prompt,
		Message:  image.Note,
	})
}

func (a *API) handleGenerateHistory(c echo.Context) error {
	prompts, err := a.generate.History(c.Request().Context())
	if err != nil {
		return a.fail(c, err, "generate")
	}

	if prompts == nil {
		prompts = []string{}
	}

	return c.JSON(http.StatusOK, echo.Map{"prompts": prompts})
}

func (a *API) handleGenerateExamples(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"prompts": service.PromptExamples})
}

func (a *API) handleGenerateDownload(c echo.Context) error {
	path, err := a.generate.Download(c.Request().Context())
	if err != nil {
		return a.fail(c, err, "generate")
	}

	return c.JSON(http.StatusOK, echo.Map{"path": path})
}

type recognizeRequest struct {
	ImageBase64 string `json:"imageBase64"`
	ImageType   string `json:"imageType"`
}

func (a *API) handleRecognize(c echo.Context) error {
	var req recognizeRequest
	if err := c.Bind(&req); err != nil {
		return a.fail(c, domain.NewFault(domain.FaultValidation, "please provide an image"), "recognize")
	}

	data, err := base64.StdEncoding.DecodeString(req.ImageBase64)
	if err != nil {
		return a.fail(c, domain.NewFault(domain.FaultValidation, "image payload is not valid base64"), "recognize")
	}

	content, err := a.recognize.Run(c.Request().Context(), domain.ImageAsset{
		Name:      "upload",
		MediaType: req.ImageType,
		Data:      data,
	})
	if err != nil {
		return a.fail(c, err, "recognize")
	}

	a.count(c, "recognize", "success")

	// Shape-compatible with the upstream chat completions payload the UI
	// already reads.
	return c.JSON(http.StatusOK, echo.Map{
		"choices": []echo.Map{
			{"message": echo.Map{"role": "assistant", "content": content}},
		},
	})
}

func (a *API) handleRemoveBackground(c echo.Context) error {
	asset, fault := readUpload(c)
	if fault != nil {
		return a.fail(c, fault, "remove-background")
	}

	result, err := a.remove.Run(c.Request().Context(), asset)
	if err != nil {
		return a.fail(c, err, "remove-background")
	}

	a.count(c, "remove-background", "success")

	return c.Blob(http.StatusOK, result.MediaType, result.Data)
}

func (a *API) handleRemoveDownload(c echo.Context) error {
	path, err := a.remove.Download(c.Request().Context())
	if err != nil {
		return a.fail(c, err, "remove-background")
	}

	return c.JSON(http.StatusOK, echo.Map{"path": path})
}

type compressResponse struct {
	ImageURL       string  `json:"imageUrl"`
	OriginalSize   string  `json:"originalSize"`
	CompressedSize string  `json:"compressedSize"`
	Ratio          string  `json:"ratio"`
	RatioPercent   float64 `json:"ratioPercent"`
}

func (a *API) handleCompress(c echo.Context) error {
	asset, fault := readUpload(c)
	if fault != nil {
		return a.fail(c, fault, "compress")
	}

	quality := 70
	if raw := c.FormValue("quality"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return a.fail(c, domain.NewFault(domain.FaultValidation,
				"quality must be a number between 1 and 100"), "compress")
		}
		quality = parsed
	}

	result, err := a.compress.Run(c.Request().Context(), asset, quality)
	if err != nil {
		return a.fail(c, err, "compress")
	}

	a.count(c, "compress", "success")

	return c.JSON(http.StatusOK, compressResponse{
		ImageURL:       domain.EncodeDataURI(result.Encoded.MediaType, result.Encoded.Data),
		OriginalSize:   domain.FormatByteSize(result.OriginalByteSize),
		CompressedSize: domain.FormatByteSize(result.EncodedByteSize),
		Ratio:          strconv.FormatFloat(result.RatioPercent, 'f', 1, 64) + "%",
		RatioPercent:   result.RatioPercent,
	})
}

func (a *API) handleCompressDownload(c echo.Context) error {
	path, err := a.compress.Download(c.Request().Context())
	if err != nil {
		return a.fail(c, err, "compress")
	}

	return c.JSON(http.StatusOK, echo.Map{"path": path})
}

// readUpload pulls the multipart image field into an asset. Size and type
// limits are checked before the body is read so an oversized upload never
// gets buffered in full.
func readUpload(c echo.Context) (domain.ImageAsset, error) {
	header, err := c.FormFile("image")
	if err != nil {
		return domain.ImageAsset{}, domain.NewFault(domain.FaultValidation, "please upload a valid image file")
	}

	mediaType := header.Header.Get("Content-Type")
	if err := domain.ValidateUpload(mediaType, int(header.Size)); err != nil {
		return domain.ImageAsset{}, err
	}

	src, err := header.Open()
	if err != nil {
		return domain.ImageAsset{}, domain.NewFault(domain.FaultValidation, "uploaded file could not be read")
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, domain.MaxUploadBytes))
	if err != nil {
		return domain.ImageAsset{}, domain.NewFault(domain.FaultValidation, "uploaded file could not be read")
	}

	return domain.ImageAsset{
		Name:      header.Filename,
		MediaType: mediaType,
		Data:      data,
	}, nil
}

func (a *API) fail(c echo.Context, err error, feature string) error {
	a.count(c, feature, string(domain.KindOf(err)))

	if errors.Is(err, service.ErrBusy) {
		return c.JSON(http.StatusConflict, echo.Map{"error": service.ErrBusy.Error()})
	}

	return c.JSON(statusFor(err), echo.Map{"error": domain.UserMessage(err)})
}

func (a *API) count(c echo.Context, feature, outcome string) {
	if a.reg == nil {
		return
	}
	a.reg.Inc(c.Request().Context(), "operations_total", map[string]string{
		"feature": feature,
		"outcome": outcome,
	}, 1)
}

// statusFor maps fault kinds to response codes: bad input 400, deadline 504,
// upstream rejection passes the upstream status through, everything else 500.
func statusFor(err error) int {
	var f *domain.Fault
	if !errors.As(err, &f) {
		return http.StatusInternalServerError
	}

	switch f.Kind {
	case domain.FaultValidation:
		return http.StatusBadRequest
	case domain.FaultTimeout:
		return http.StatusGatewayTimeout
	case domain.FaultRemoteRejected:
		if f.HTTPStatus >= http.StatusBadRequest {
			return f.HTTPStatus
		}
		return http.StatusBadGateway
	case domain.FaultNetworkUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

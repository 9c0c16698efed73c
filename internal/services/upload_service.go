package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"mime/multipart"
	"net/http"
	"regexp"
	"time"

	"github.com/kolesa-team/go-webp/decoder"
	"github.com/kolesa-team/go-webp/webp"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

const (
	// MaxUploadBytes bounds the accepted input image size.
	MaxUploadBytes = 10 << 20

	// Pre-upload downscale policy: neither dimension exceeds this, re-encoded
	// as JPEG at fixed quality. Best effort only.
	maxUploadDimension = 2048
	uploadJPEGQuality  = 85
)

var acceptedUploadMIMEs = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/bmp":  true,
}

// filename characters outside this set are stripped to prevent path injection
var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// UploadFile is one caller-provided image.
type UploadFile struct {
	Data        []byte
	Filename    string
	ContentType string
}

// UploadService implements the upload adapter: validate, best-effort
// downscale, exchange the policy with the generation service, and post the
// file straight to its object storage.
type UploadService struct {
	remote     GenerationAPI
	httpClient *http.Client
}

func NewUploadService(remote GenerationAPI) *UploadService {
	return &UploadService{
		remote:     remote,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Upload stores the file and returns a URL the generation service can fetch
// without additional credentials.
func (s *UploadService) Upload(ctx context.Context, file UploadFile, userID, model string) (string, error) {
	if len(file.Data) == 0 {
		return "", &ValidationError{Msg: "no file provided"}
	}
	if len(file.Data) > MaxUploadBytes {
		return "", &ValidationError{Msg: "image exceeds the 10MB size limit"}
	}
	if !acceptedUploadMIMEs[file.ContentType] {
		return "", &ValidationError{Msg: fmt.Sprintf("unsupported image type %q", file.ContentType)}
	}

	data := s.preprocess(file)

	policy, err := s.remote.GetUploadPolicy(ctx, model)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s%s_%d_%s",
		policy.UploadDir,
		SanitizeFilename(userID),
		time.Now().UnixMilli(),
		SanitizeFilename(file.Filename),
	)

	if err := s.postToStorage(ctx, policy, key, data); err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/%s", policy.UploadHost, key), nil
}

// SanitizeFilename strips every character outside [A-Za-z0-9._-].
func SanitizeFilename(name string) string {
	cleaned := unsafeFilenameChars.ReplaceAllString(name, "")
	if cleaned == "" {
		cleaned = "image"
	}
	return cleaned
}

// preprocess downscales oversized images and re-encodes them as JPEG to
// bound upload size and remote processing cost. Any failure falls back to
// the original bytes.
func (s *UploadService) preprocess(file UploadFile) []byte {
	img, err := decodeUploadImage(file.Data, file.ContentType)
	if err != nil {
		log.Debug().Err(err).Str("filename", file.Filename).Msg("skipping upload preprocessing")
		return file.Data
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxUploadDimension || h > maxUploadDimension {
		img = scaleToFit(img, maxUploadDimension)
	}

	var out bytes.Buffer
	if err := jpeg.Encode(&out, img, &jpeg.Options{Quality: uploadJPEGQuality}); err != nil {
		return file.Data
	}
	return out.Bytes()
}

func decodeUploadImage(data []byte, contentType string) (image.Image, error) {
	switch contentType {
	case "image/jpeg":
		return jpeg.Decode(bytes.NewReader(data))
	case "image/png":
		return png.Decode(bytes.NewReader(data))
	case "image/webp":
		return webp.Decode(bytes.NewReader(data), &decoder.Options{})
	case "image/bmp":
		return bmp.Decode(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("unsupported content type %q", contentType)
	}
}

// scaleToFit shrinks img so neither dimension exceeds maxDim, preserving
// aspect ratio.
func scaleToFit(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	scale := float64(maxDim) / float64(w)
	if h > w {
		scale = float64(maxDim) / float64(h)
	}
	dstW := int(float64(w) * scale)
	dstH := int(float64(h) * scale)
	if dstW < 1 {
		dstW = 1
	}
	if dstH < 1 {
		dstH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

// postToStorage performs the direct multipart POST to the object storage
// host using the temporary credentials from the policy exchange.
func (s *UploadService) postToStorage(ctx context.Context, policy UploadPolicy, key string, data []byte) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	fields := [][2]string{
		{"OSSAccessKeyId", policy.OSSAccessKeyID},
		{"Signature", policy.Signature},
		{"policy", policy.Policy},
		{"key", key},
		{"x-oss-object-acl", policy.XOSSObjectACL},
		{"x-oss-forbid-overwrite", policy.XOSSForbidOverwrite},
		{"success_action_status", "200"},
	}
	for _, f := range fields {
		if err := writer.WriteField(f[0], f[1]); err != nil {
			return &UploadError{Msg: "failed to build storage request", Err: err}
		}
	}

	part, err := writer.CreateFormFile("file", key)
	if err != nil {
		return &UploadError{Msg: "failed to build storage request", Err: err}
	}
	if _, err := part.Write(data); err != nil {
		return &UploadError{Msg: "failed to build storage request", Err: err}
	}
	if err := writer.Close(); err != nil {
		return &UploadError{Msg: "failed to build storage request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, policy.UploadHost, &body)
	if err != nil {
		return &UploadError{Msg: "failed to build storage request", Err: err}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return &UploadError{Msg: "image upload failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return &UploadError{Msg: fmt.Sprintf("image upload returned HTTP %d", resp.StatusCode)}
	}
	return nil
}

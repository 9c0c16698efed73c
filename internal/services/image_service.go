package services

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"

	"github.com/kolesa-team/go-webp/decoder"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// Output formats for converted wallpapers.
const (
	FormatJPEG = "jpeg"
	FormatPNG  = "png"
	FormatWebP = "webp"
)

// ConvertOptions describes one wallpaper conversion: optional crop in source
// pixels, optional resize to the device preset's dimensions, and the output
// encoding.
type ConvertOptions struct {
	Format  string
	Quality int

	// Target dimensions; zero means keep the (cropped) source size.
	Width  int
	Height int

	// Crop rectangle in source pixels; zero width/height means no crop.
	CropX      int
	CropY      int
	CropWidth  int
	CropHeight int
}

// ImageService converts uploaded stills into device-sized wallpapers.
type ImageService struct{}

func NewImageService() *ImageService {
	return &ImageService{}
}

// Convert crops, resizes and re-encodes an image. Returns the encoded bytes
// and their MIME type.
func (s *ImageService) Convert(data []byte, opts ConvertOptions) ([]byte, string, error) {
	if len(data) == 0 {
		return nil, "", &ValidationError{Msg: "no file provided"}
	}

	img, err := decodeSniffed(data)
	if err != nil {
		return nil, "", &ValidationError{Msg: fmt.Sprintf("could not decode image: %v", err)}
	}

	if opts.CropWidth > 0 && opts.CropHeight > 0 {
		img, err = cropImage(img, image.Rect(opts.CropX, opts.CropY, opts.CropX+opts.CropWidth, opts.CropY+opts.CropHeight))
		if err != nil {
			return nil, "", &ValidationError{Msg: err.Error()}
		}
	}

	if opts.Width > 0 && opts.Height > 0 {
		img = resizeCover(img, opts.Width, opts.Height)
	}

	quality := opts.Quality
	if quality <= 0 || quality > 100 {
		quality = 80
	}

	var out bytes.Buffer
	mimeType := "image/jpeg"
	switch opts.Format {
	case FormatPNG:
		mimeType = "image/png"
		err = png.Encode(&out, img)
	case FormatWebP:
		mimeType = "image/webp"
		var webpOpts *encoder.Options
		webpOpts, err = encoder.NewLossyEncoderOptions(encoder.PresetDefault, float32(quality))
		if err == nil {
			err = webp.Encode(&out, img, webpOpts)
		}
	default:
		// JPEG, also the fallback for unrecognized formats.
		err = jpeg.Encode(&out, img, &jpeg.Options{Quality: quality})
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode image: %w", err)
	}

	return out.Bytes(), mimeType, nil
}

// OutputExtension returns the download filename extension for a format.
func OutputExtension(format string) string {
	switch format {
	case FormatPNG:
		return "png"
	case FormatWebP:
		return "webp"
	default:
		return "jpg"
	}
}

func decodeSniffed(data []byte) (image.Image, error) {
	switch http.DetectContentType(data) {
	case "image/jpeg":
		return jpeg.Decode(bytes.NewReader(data))
	case "image/png":
		return png.Decode(bytes.NewReader(data))
	case "image/webp":
		return webp.Decode(bytes.NewReader(data), &decoder.Options{})
	case "image/bmp":
		return bmp.Decode(bytes.NewReader(data))
	default:
		img, _, err := image.Decode(bytes.NewReader(data))
		return img, err
	}
}

func cropImage(img image.Image, rect image.Rectangle) (image.Image, error) {
	rect = rect.Intersect(img.Bounds())
	if rect.Empty() {
		return nil, fmt.Errorf("crop area is outside the image")
	}
	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), img, rect.Min, draw.Src)
	return dst, nil
}

// resizeCover scales the image to completely fill width x height, cropping
// the overflow around the center.
func resizeCover(img image.Image, width, height int) image.Image {
	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()

	// Centered source window with the target aspect ratio.
	targetRatio := float64(width) / float64(height)
	srcRatio := float64(srcW) / float64(srcH)

	window := bounds
	if srcRatio > targetRatio {
		w := int(float64(srcH) * targetRatio)
		x0 := bounds.Min.X + (srcW-w)/2
		window = image.Rect(x0, bounds.Min.Y, x0+w, bounds.Max.Y)
	} else if srcRatio < targetRatio {
		h := int(float64(srcW) / targetRatio)
		y0 := bounds.Min.Y + (srcH-h)/2
		window = image.Rect(bounds.Min.X, y0, bounds.Max.X, y0+h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, window, draw.Over, nil)
	return dst
}

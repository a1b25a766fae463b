package utils

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"strings"

	"github.com/nfnt/resize"
)

var (
	ErrNotAnImage   = errors.New("payload is not an image")
	ErrImageTooBig  = errors.New("image payload exceeds size limit")
	ErrEmptyPayload = errors.New("empty image payload")
)

// DecodeImagePayload decodes an inline image payload, either a data URI
// ("data:image/png;base64,...") or raw base64. The content type is taken
// from the data URI when present, otherwise sniffed from the bytes.
func DecodeImagePayload(data string) ([]byte, string, error) {
	if data == "" {
		return nil, "", ErrEmptyPayload
	}

	declaredType := ""
	if strings.HasPrefix(data, "data:") {
		parts := strings.SplitN(data, ",", 2)
		if len(parts) != 2 {
			return nil, "", errors.New("malformed data URI")
		}
		meta := strings.TrimPrefix(parts[0], "data:")
		declaredType = strings.TrimSuffix(strings.SplitN(meta, ";", 2)[0], ";")
		data = parts[1]
	}

	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, "", fmt.Errorf("invalid base64 payload: %w", err)
	}
	if len(decoded) == 0 {
		return nil, "", ErrEmptyPayload
	}

	contentType := declaredType
	if contentType == "" {
		contentType = http.DetectContentType(decoded)
	}

	if !IsImageContentType(contentType) {
		return nil, "", ErrNotAnImage
	}

	return decoded, contentType, nil
}

func IsImageContentType(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}

// ExtensionForContentType maps an image content type to a file extension.
func ExtensionForContentType(contentType string) string {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".img"
	}
}

// NormalizeImage downscales an image that exceeds the given bounds,
// re-encoding it in its original format. Formats without an encoder (gif,
// webp) are returned unchanged.
func NormalizeImage(data []byte, contentType string, maxWidth, maxHeight uint) ([]byte, error) {
	config, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		// Not decodable by the standard codecs; leave it alone.
		return data, nil
	}

	if uint(config.Width) <= maxWidth && uint(config.Height) <= maxHeight {
		return data, nil
	}

	var encode func(io.Writer, image.Image) error
	switch contentType {
	case "image/jpeg", "image/jpg":
		encode = func(w io.Writer, img image.Image) error {
			return jpeg.Encode(w, img, &jpeg.Options{Quality: 85})
		}
	case "image/png":
		encode = png.Encode
	default:
		return data, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data, nil
	}

	resized := resize.Thumbnail(maxWidth, maxHeight, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := encode(&buf, resized); err != nil {
		return nil, fmt.Errorf("failed to re-encode image: %w", err)
	}

	return buf.Bytes(), nil
}

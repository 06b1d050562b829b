package archive

import (
	"encoding/base64"
	"fmt"
	"strings"

	sheeterr "github.com/KirkDiggler/aionia-sheet/internal/errors"
)

var mimeToExt = map[string]string{
	"image/png":     "png",
	"image/jpeg":    "jpg",
	"image/gif":     "gif",
	"image/webp":    "webp",
	"image/svg+xml": "svg",
	"image/bmp":     "bmp",
	"image/avif":    "avif",
}

var extToMIME = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"webp": "image/webp",
	"svg":  "image/svg+xml",
	"bmp":  "image/bmp",
	"avif": "image/avif",
}

// DecodeDataURL splits a base64 data URL into its lower-cased MIME type and payload
func DecodeDataURL(url string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(url, "data:")
	if !ok {
		return "", nil, sheeterr.Wrap(ErrUnsupportedPayload, "image is not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, sheeterr.Wrap(ErrUnsupportedPayload, "data URL has no payload")
	}
	mime, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, sheeterr.Wrap(ErrUnsupportedPayload, "data URL is not base64 encoded")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, sheeterr.WrapWithCode(err, sheeterr.CodeInvalidArgument, "failed to decode data URL payload")
	}
	return strings.ToLower(mime), data, nil
}

// CanonicalDataURL re-encodes an image data URL with the MIME type Parse would return for it
func CanonicalDataURL(url string) (string, error) {
	mime, data, err := DecodeDataURL(url)
	if err != nil {
		return "", err
	}
	ext, err := ExtensionFor(mime)
	if err != nil {
		return "", err
	}
	return EncodeDataURL(MIMEFor(ext), data), nil
}

// EncodeDataURL builds a base64 data URL
func EncodeDataURL(mime string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data))
}

// ExtensionFor returns the file extension used for an image MIME type
func ExtensionFor(mime string) (string, error) {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if ext, ok := mimeToExt[mime]; ok {
		return ext, nil
	}
	sub, ok := strings.CutPrefix(mime, "image/")
	if !ok || sub == "" || !isAlnum(sub) {
		return "", sheeterr.Wrapf(ErrUnsupportedPayload, "unsupported image type %q", mime)
	}
	return sub, nil
}

// MIMEFor returns the image MIME type for a file extension
func MIMEFor(ext string) string {
	ext = strings.ToLower(ext)
	if mime, ok := extToMIME[ext]; ok {
		return mime
	}
	return "image/" + ext
}

func isAlnum(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

package media

import (
	"errors"
	"net/http"
)

// ErrUnsupportedType is returned for anything but the accepted image types.
var ErrUnsupportedType = errors.New("unsupported media type")

// allowed maps sniffed content types to file extensions / Associe les types détectés aux extensions
var allowed = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// Sniff detects the image type from the first bytes / Détecte le type d'image à partir des premiers octets
func Sniff(head []byte) (contentType, ext string, err error) {
	contentType = http.DetectContentType(head)
	ext, ok := allowed[contentType]
	if !ok {
		return contentType, "", ErrUnsupportedType
	}
	return contentType, ext, nil
}

// ContentTypeForExt returns the content type served for an extension.
func ContentTypeForExt(ext string) string {
	for ct, e := range allowed {
		if e == ext {
			return ct
		}
	}
	return "application/octet-stream"
}

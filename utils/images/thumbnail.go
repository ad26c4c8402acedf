// Package images provides preview-image processing for the file-input
// enhancer: decoding posted file bytes and producing thumbnail data URIs.
package images

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
)

// SpacerGIF is the 1x1 transparent placeholder every preview image starts
// from; the stylesheet sizes it while the real thumbnail loads.
const SpacerGIF = "data:image/gif;base64,R0lGODlhAQABAIAAAAAAAP///yH5BAEAAAAALAAAAAABAAEAAAIBRAA7"

// DetectMIME returns the declared type when present, otherwise sniffs the
// content. Drag-and-drop payloads frequently arrive with no declared type.
func DetectMIME(declared string, data []byte) string {
	if declared != "" {
		return declared
	}
	if len(data) == 0 {
		return ""
	}
	return mimetype.Detect(data).String()
}

// Thumbnail decodes an image payload, fits it within maxPx on the long
// edge, and returns a PNG data URI. Non-image or undecodable payloads
// return an error; the caller degrades that file to a fallback icon.
func Thumbnail(data []byte, mimeType string, maxPx int) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty file payload")
	}

	img, err := decode(data, DetectMIME(mimeType, data))
	if err != nil {
		return "", err
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxPx || bounds.Dy() > maxPx {
		img = imaging.Fit(img, maxPx, maxPx, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode thumbnail: %w", err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// decode routes webp to its dedicated decoder; imaging handles the
// remaining raster formats.
func decode(data []byte, mimeType string) (image.Image, error) {
	if strings.Contains(mimeType, "image/webp") {
		img, err := webp.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode webp: %w", err)
		}
		return img, nil
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, fmt.Errorf("not an image: %s", mimeType)
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

package imaging

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"tastebook/backend/internal/filestorage"

	img "github.com/disintegration/imaging"
)

// ErrDecode marks an upload that could not be decoded as an image.
// Nothing is written when it is returned.
var ErrDecode = errors.New("uploaded file is not a decodable image")

// ThumbnailBox is the maximum bounding box for stored images. Uploads are
// scaled down preserving aspect ratio; smaller images are left alone.
const ThumbnailBox = 125

// Ingest decodes an uploaded image, downsizes it to fit ThumbnailBox and
// stores it under dir with a random hexadecimal base name that keeps the
// original extension. Returns the generated filename.
func Ingest(ctx context.Context, provider filestorage.Provider, dir, originalFilename string, upload io.Reader) (string, error) {
	if provider == nil {
		return "", fmt.Errorf("no storage provider configured")
	}

	decoded, err := img.Decode(upload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}

	thumb := img.Fit(decoded, ThumbnailBox, ThumbnailBox, img.Lanczos)

	ext := strings.ToLower(path.Ext(originalFilename))
	format, err := img.FormatFromExtension(ext)
	if err != nil {
		ext = ".jpg"
		format = img.JPEG
	}

	filename, err := randomName(ext)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := img.Encode(&buf, thumb, format); err != nil {
		return "", fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	objectName := dir + "/" + filename
	if err := provider.Save(ctx, objectName, &buf); err != nil {
		return "", fmt.Errorf("failed to store image %s: %w", objectName, err)
	}
	return filename, nil
}

// randomName draws 8 random bytes, enough to make collisions with existing
// files negligible (same name space as the usual token_hex(8)).
func randomName(ext string) (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random filename: %w", err)
	}
	return hex.EncodeToString(b) + ext, nil
}

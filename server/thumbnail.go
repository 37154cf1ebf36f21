package server

import (
	"bytes"

	"github.com/disintegration/imaging"
)

// ThumbnailQuality is the JPEG quality of downscaled thumbnails.
const ThumbnailQuality = 80

// Downscale shrinks an encoded image so its longest edge is at most maxEdge pixels and re-encodes it as JPEG. It
// returns nil data when the image already fits, and an error when data is not an image it can decode.
func Downscale(data []byte, maxEdge int) ([]byte, string, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", err
	}

	b := img.Bounds()
	if b.Dx() <= maxEdge && b.Dy() <= maxEdge {
		return nil, "", nil
	}

	thumb := imaging.Fit(img, maxEdge, maxEdge, imaging.Lanczos)

	buf := &bytes.Buffer{}
	if err := imaging.Encode(buf, thumb, imaging.JPEG, imaging.JPEGQuality(ThumbnailQuality)); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), "image/jpeg", nil
}

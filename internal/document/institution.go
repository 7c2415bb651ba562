package document

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"
)

// Institution identity printed on every document.
type Institution struct {
	Name     string
	NIF      string
	Address  string
	Phone    string
	Email    string
	Currency string
	// Logo PNG bytes, already downscaled by PrepareLogo. May be nil.
	Logo []byte
}

const logoMaxSide = 320

// PrepareLogo decodes any image the caller fetched (PNG, JPEG, GIF, BMP, TIFF)
// and re-encodes it as a PNG no larger than logoMaxSide on either side.
func PrepareLogo(raw []byte) ([]byte, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode logo: %w", err)
	}
	var fitted image.Image = img
	if b := img.Bounds(); b.Dx() > logoMaxSide || b.Dy() > logoMaxSide {
		fitted = imaging.Fit(img, logoMaxSide, logoMaxSide, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, fitted, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode logo: %w", err)
	}
	return buf.Bytes(), nil
}

// LoadLogo reads and prepares the logo at path. An empty path is not an error.
func LoadLogo(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read logo: %w", err)
	}
	return PrepareLogo(raw)
}

func (i Institution) logoDataURI() string {
	if len(i.Logo) == 0 {
		return ""
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(i.Logo)
}

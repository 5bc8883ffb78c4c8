package catalog

import (
	"encoding/base64"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
)

const qrImageSize = 256

// tableLandingURL is the link encoded in a table's QR code. Scanning it
// lands the diner on the frontend with the table preselected.
func tableLandingURL(frontendURL string, tableID uuid.UUID) string {
	return fmt.Sprintf("%s/t/%s", frontendURL, url.PathEscape(tableID.String()))
}

// renderQRCode encodes target as a PNG and returns it as a data URL
// ready for an <img> tag.
func renderQRCode(target string) (string, error) {
	png, err := qrcode.Encode(target, qrcode.Medium, qrImageSize)
	if err != nil {
		return "", fmt.Errorf("encoding qr code: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

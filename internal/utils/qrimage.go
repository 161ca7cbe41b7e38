package utils

import (
	"encoding/base64"

	qrcode "github.com/skip2/go-qrcode"
)

// QrDataURL renders a QR token into a base64 PNG data URL suitable for an
// <img src> attribute or a JSON payload.  Clients scan the image at the
// entrance reader; the encoded content is the opaque token itself.
func QrDataURL(token string) (string, error) {
	png, err := qrcode.Encode(token, qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

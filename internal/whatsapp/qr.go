package whatsapp

import (
	"fmt"
	"os"

	qrcode "github.com/skip2/go-qrcode"
)

const DefaultQRPath = "whatsapp_qr.png"

// DisplayQR prints the pairing code as a terminal QR and saves it as a PNG.
func DisplayQR(code, pngPath string) error {
	if pngPath == "" {
		pngPath = DefaultQRPath
	}
	qr, err := qrcode.New(code, qrcode.Medium)
	if err != nil {
		return fmt.Errorf("failed to encode QR: %w", err)
	}
	fmt.Fprintln(os.Stdout, qr.ToSmallString(false))

	if err := qr.WriteFile(512, pngPath); err != nil {
		return fmt.Errorf("could not save QR code PNG: %w", err)
	}
	return nil
}

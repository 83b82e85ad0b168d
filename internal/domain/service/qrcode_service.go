package service

// QRCodeService renders QR codes for shareable profile links.
type QRCodeService interface {
	// GenerateProfileQR returns a PNG-encoded QR code pointing at the
	// public profile URL for the given username.
	GenerateProfileQR(username string) ([]byte, error)
}

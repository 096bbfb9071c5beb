package qr_test

import (
	"bytes"
	"testing"

	"ms-booking/internal/booking/qr"
	"ms-booking/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47}

func sampleConfirmation() models.BookingConfirmation {
	return models.BookingConfirmation{
		BookingID:      "booking-1",
		Title:          "Indie Music Night",
		TicketCategory: "VIP",
		Price:          1499.0,
	}
}

func TestGenerateConfirmationQR(t *testing.T) {
	gen := qr.NewGenerator("test-secret")

	code, err := gen.GenerateConfirmationQR(sampleConfirmation())
	require.NoError(t, err)
	require.NotEmpty(t, code)
	assert.True(t, bytes.HasPrefix(code, pngHeader), "QR output should be a PNG image")
}

func TestGenerateConfirmationQRAnySecretLength(t *testing.T) {
	// The secret is hashed to a fixed key size, so any length works.
	for _, secret := range []string{"", "s", "a-much-longer-secret-than-thirty-two-bytes-in-total"} {
		gen := qr.NewGenerator(secret)
		code, err := gen.GenerateConfirmationQR(sampleConfirmation())
		require.NoError(t, err, "secret %q", secret)
		require.NotEmpty(t, code)
	}
}

func TestGenerateConfirmationQRIgnoresEmbeddedQR(t *testing.T) {
	// A confirmation that already carries QR bytes must not feed them back
	// into the payload.
	gen := qr.NewGenerator("test-secret")

	conf := sampleConfirmation()
	conf.QR = []byte("stale image bytes")
	code, err := gen.GenerateConfirmationQR(conf)
	require.NoError(t, err)
	require.NotEmpty(t, code)
}

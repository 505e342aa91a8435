package documents

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
	"github.com/zenjaura/marketplace/internal/models"
)

var ErrInvalidTicket = errors.New("invalid ticket")

// TicketSigner signs registration payloads so door staff can verify a scanned QR code offline.
type TicketSigner struct {
	secret []byte
}

func NewTicketSigner(secret []byte) *TicketSigner {
	return &TicketSigner{secret: secret}
}

func (s *TicketSigner) sign(data string) string {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(data))

	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

// Payload is eventID|userID|registeredAtUnix|signature.
func (s *TicketSigner) Payload(registration *models.Registration) string {
	data := fmt.Sprintf("%s|%s|%d", registration.EventID, registration.UserID, registration.RegisteredAt.Unix())
	return data + "|" + s.sign(data)
}

func (s *TicketSigner) Verify(payload string) (eventID, userID uuid.UUID, err error) {
	idx := strings.LastIndex(payload, "|")
	if idx < 0 {
		return uuid.Nil, uuid.Nil, ErrInvalidTicket
	}

	data, signature := payload[:idx], payload[idx+1:]
	if !hmac.Equal([]byte(signature), []byte(s.sign(data))) {
		return uuid.Nil, uuid.Nil, ErrInvalidTicket
	}

	parts := strings.Split(data, "|")
	if len(parts) != 3 {
		return uuid.Nil, uuid.Nil, ErrInvalidTicket
	}

	if eventID, err = uuid.Parse(parts[0]); err != nil {
		return uuid.Nil, uuid.Nil, ErrInvalidTicket
	}

	if userID, err = uuid.Parse(parts[1]); err != nil {
		return uuid.Nil, uuid.Nil, ErrInvalidTicket
	}

	return eventID, userID, nil
}

// TicketQR renders the signed registration payload as a 256px PNG.
func (s *TicketSigner) TicketQR(registration *models.Registration) ([]byte, error) {
	png, err := qrcode.Encode(s.Payload(registration), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to render ticket QR: %w", err)
	}

	return png, nil
}

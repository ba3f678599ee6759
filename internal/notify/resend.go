package notify

import (
	"context"
	"fmt"
	"html"
	"time"

	"github.com/omriShneor/project_casa/internal/database"
	"github.com/resend/resend-go/v2"
)

// ResendNotifier sends email notifications via Resend API
type ResendNotifier struct {
	client      *resend.Client
	fromAddress string
	agencyName  string
}

// NewResendNotifier creates a new Resend email notifier, nil without an API key
func NewResendNotifier(apiKey, from, agencyName string) *ResendNotifier {
	if apiKey == "" {
		return nil
	}
	return &ResendNotifier{
		client:      resend.NewClient(apiKey),
		fromAddress: from,
		agencyName:  agencyName,
	}
}

// IsConfigured returns true if the notifier has server-side config
func (r *ResendNotifier) IsConfigured() bool {
	return r != nil && r.client != nil && r.fromAddress != ""
}

func (r *ResendNotifier) Name() string {
	return "resend"
}

// Send emails the agency about a new visit request
func (r *ResendNotifier) Send(ctx context.Context, booking *database.Booking, listing *database.Listing, recipient string) error {
	if recipient == "" {
		return fmt.Errorf("no recipient specified")
	}

	params := &resend.SendEmailRequest{
		From:    r.fromAddress,
		To:      []string{recipient},
		Subject: fmt.Sprintf("Nueva visita: %s - %s", listing.Reference, booking.ClientName),
		Html:    r.formatEmailHTML(booking, listing, time.Now()),
	}

	if _, err := r.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("resend send failed: %w", err)
	}
	return nil
}

func (r *ResendNotifier) formatEmailHTML(b *database.Booking, l *database.Listing, sentAt time.Time) string {
	when := b.RequestedText
	if b.ScheduledAt != nil {
		when = b.ScheduledAt.Format("02/01/2006 15:04")
	}

	location := l.Location()
	if location == "" {
		location = "Sin ubicación"
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f5f5f5;">
  <div style="background-color: white; border-radius: 8px; padding: 24px; box-shadow: 0 2px 4px rgba(0,0,0,0.1);">
    <div style="margin-bottom: 16px;">
      <span style="background-color: #28a745; color: white; padding: 4px 12px; border-radius: 4px; font-size: 12px; font-weight: 600;">Nueva visita</span>
    </div>

    <h2 style="margin: 0 0 16px 0; color: #333;">%s</h2>

    <div style="background: #f8f9fa; padding: 16px; border-radius: 8px; margin: 16px 0; border-left: 4px solid #007bff;">
      <p style="margin: 8px 0;"><strong>Cliente:</strong> %s</p>
      <p style="margin: 8px 0;"><strong>Teléfono:</strong> %s</p>
      <p style="margin: 8px 0;"><strong>Fecha:</strong> %s</p>
      <p style="margin: 8px 0;"><strong>Ubicación:</strong> %s</p>
      <p style="margin: 8px 0;"><strong>Precio:</strong> %s</p>
    </div>

    <hr style="margin-top: 32px; border: none; border-top: 1px solid #eee;">
    <p style="color: #999; font-size: 12px; margin-top: 16px;">
      %s - Asistente de WhatsApp<br>
      <span style="color: #ccc;">Reserva #%d, enviado %s</span>
    </p>
  </div>
</body>
</html>`,
		html.EscapeString(l.Reference),
		html.EscapeString(b.ClientName),
		html.EscapeString(b.ClientContact),
		html.EscapeString(when),
		html.EscapeString(location),
		html.EscapeString(l.PriceText()),
		html.EscapeString(r.agencyName),
		b.ID,
		sentAt.Format("02/01/2006 15:04"),
	)
}

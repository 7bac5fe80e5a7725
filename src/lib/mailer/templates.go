package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

type BookingMessage struct {
	RoomTitle     string
	RoomAddress   string
	OwnerName     string
	OwnerEmail    string
	OwnerPhone    string
	TenantName    string
	TenantEmail   string
	TenantPhone   string
	PreferredTime string
	Amount        string
	OrderID       string
}

var tenantReceiptTmpl = template.Must(template.New("tenant_receipt").Parse(`
<p>Hello {{.TenantName}},</p>
<p>We received your viewing fee of <b>{{.Amount}}</b> for <b>{{.RoomTitle}}</b> at <b>{{.RoomAddress}}</b>.</p>
<p>Payment reference: {{.OrderID}}</p>
<h4>Owner contact</h4>
<p style="margin:0;"><b>Name:</b> {{.OwnerName}}</p>
<p style="margin:0;"><b>Email:</b> {{.OwnerEmail}}</p>
<p style="margin:0;"><b>Phone:</b> {{.OwnerPhone}}</p>
<p>The owner will contact you to arrange the viewing.</p>
`))

var ownerPaymentAlertTmpl = template.Must(template.New("owner_payment_alert").Parse(`
<p>Hello {{.OwnerName}},</p>
<p>A tenant has paid the viewing fee for your room <b>{{.RoomTitle}}</b> at <b>{{.RoomAddress}}</b>. The room is now marked as In Booking Process and hidden from search.</p>
<h4>Tenant's Contact Information:</h4>
<p style="margin:0;"><b>Name:</b> {{.TenantName}}</p>
<p style="margin:0;"><b>Email:</b> {{.TenantEmail}}</p>
<p style="margin:0;"><b>Phone:</b> {{.TenantPhone}}</p>
<p>Please contact the tenant as soon as possible. Toggle the room back to Available once the booking concludes.</p>
`))

var ownerViewingRequestTmpl = template.Must(template.New("owner_viewing_request").Parse(`
<p>Hello {{.OwnerName}},</p>
<p>A potential tenant has submitted a viewing request for your room: <b>{{.RoomTitle}}</b> at <b>{{.RoomAddress}}</b>.</p>
<h4>Tenant's Contact Information:</h4>
<p style="margin:0;"><b>Name:</b> {{.TenantName}}</p>
<p style="margin:0;"><b>Email:</b> {{.TenantEmail}}</p>
<p style="margin:0;"><b>Phone:</b> {{.TenantPhone}}</p>
<p style="margin:0;"><b>Preferred Time:</b> {{if .PreferredTime}}{{.PreferredTime}}{{else}}Any time / Not specified{{end}}</p>
<p>Please contact the tenant directly as soon as possible to confirm the appointment.</p>
`))

func render(t *template.Template, m *BookingMessage) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, m); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func TenantReceipt(m *BookingMessage) (subject string, body string, err error) {
	body, err = render(tenantReceiptTmpl, m)
	return fmt.Sprintf("Payment received: viewing request for %s", m.RoomTitle), body, err
}

func OwnerPaymentAlert(m *BookingMessage) (subject string, body string, err error) {
	body, err = render(ownerPaymentAlertTmpl, m)
	return fmt.Sprintf("ACTION REQUIRED: Paid viewing request for Room: %s", m.RoomTitle), body, err
}

func OwnerViewingRequest(m *BookingMessage) (subject string, body string, err error) {
	body, err = render(ownerViewingRequestTmpl, m)
	return fmt.Sprintf("ACTION REQUIRED: New Viewing Request for Room: %s", m.RoomTitle), body, err
}

// FormatAmount renders minor units as a major-unit amount with currency.
func FormatAmount(minor int64, currency string) string {
	symbol := currency
	if currency == "inr" {
		symbol = "₹"
	}
	return fmt.Sprintf("%s%d.%02d", symbol, minor/100, minor%100)
}

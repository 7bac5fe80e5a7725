package lib

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

var stripeClient *stripe.Client

func GetStripeClient() *stripe.Client {
	if stripeClient != nil {
		return stripeClient
	}
	apiKey := os.Getenv("STRIPE_SECRET_KEY")
	sc := stripe.NewClient(apiKey)
	stripeClient = sc

	return sc
}

func NewStripeClient(c *stripe.Client) {
	stripeClient = c
}

// PaymentOrder is an order created on the payment gateway. ID is the value
// bookings are correlated by.
type PaymentOrder struct {
	ID           string `json:"id"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	ClientSecret string `json:"client_secret,omitempty"`
	Status       string `json:"status"`
}

const (
	ORDER_SUCCEEDED = string(stripe.PaymentIntentStatusSucceeded)
	ORDER_CANCELED  = string(stripe.PaymentIntentStatusCanceled)
)

type PaymentGateway interface {
	CreateOrder(ctx context.Context, amount int64, currency string, autoCapture bool) (*PaymentOrder, error)
	GetOrder(ctx context.Context, orderId string) (*PaymentOrder, error)
	// CancelOrder voids an order so it can no longer be paid. It fails for
	// an order that has already been paid.
	CancelOrder(ctx context.Context, orderId string) error
}

// StripeGateway creates orders as Stripe PaymentIntents.
type StripeGateway struct {
	client *stripe.Client
}

func NewStripeGateway(c *stripe.Client) *StripeGateway {
	return &StripeGateway{client: c}
}

func (g *StripeGateway) CreateOrder(ctx context.Context, amount int64, currency string, autoCapture bool) (*PaymentOrder, error) {
	captureMethod := stripe.PaymentIntentCaptureMethodAutomatic
	if !autoCapture {
		captureMethod = stripe.PaymentIntentCaptureMethodManual
	}
	params := stripe.PaymentIntentCreateParams{
		Amount:        stripe.Int64(amount),
		Currency:      stripe.String(currency),
		CaptureMethod: stripe.String(string(captureMethod)),
		AutomaticPaymentMethods: &stripe.PaymentIntentCreateAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	pi, err := g.client.V1PaymentIntents.Create(ctx, &params)
	if err != nil {
		log.Printf("[Stripe] Error creating PaymentIntent: %s\n", err.Error())
		return nil, err
	}
	return &PaymentOrder{
		ID:           pi.ID,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
	}, nil
}

func (g *StripeGateway) GetOrder(ctx context.Context, orderId string) (*PaymentOrder, error) {
	pi, err := g.client.V1PaymentIntents.Retrieve(ctx, orderId, &stripe.PaymentIntentRetrieveParams{})
	if err != nil {
		log.Printf("[Stripe] Error retrieving PaymentIntent %s: %s\n", orderId, err.Error())
		return nil, err
	}
	return &PaymentOrder{
		ID:       pi.ID,
		Amount:   pi.Amount,
		Currency: string(pi.Currency),
		Status:   string(pi.Status),
	}, nil
}

func (g *StripeGateway) CancelOrder(ctx context.Context, orderId string) error {
	params := stripe.PaymentIntentCancelParams{
		CancellationReason: stripe.String(string(stripe.PaymentIntentCancellationReasonAbandoned)),
	}
	if _, err := g.client.V1PaymentIntents.Cancel(ctx, orderId, &params); err != nil {
		log.Printf("[Stripe] Error cancelling PaymentIntent %s: %s\n", orderId, err.Error())
		return err
	}
	return nil
}

var paymentGateway PaymentGateway

// GetPaymentGateway returns nil when no gateway has been configured.
func GetPaymentGateway() PaymentGateway {
	if paymentGateway != nil {
		return paymentGateway
	}
	if os.Getenv("STRIPE_SECRET_KEY") == "" {
		return nil
	}
	paymentGateway = NewStripeGateway(GetStripeClient())
	return paymentGateway
}

// NewPaymentGateway replaces the payment gateway with a custom implementation
func NewPaymentGateway(g PaymentGateway) {
	paymentGateway = g
}

// ParsePaymentSucceeded verifies a Stripe webhook and returns the order id of
// a succeeded payment. ok is false for any other event type.
func ParsePaymentSucceeded(payload []byte, signature string) (orderId string, ok bool, err error) {
	whsecret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	event, err := webhook.ConstructEvent(payload, signature, whsecret)
	if err != nil {
		return "", false, err
	}
	log.Printf("[StripeEvent] %s\n", event.Type)
	if event.Type != stripe.EventTypePaymentIntentSucceeded {
		return "", false, nil
	}
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return "", false, fmt.Errorf("error parsing PaymentIntent: %s", err.Error())
	}
	return pi.ID, true, nil
}

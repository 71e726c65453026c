package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

var ErrInvalidSignature = errors.New("invalid webhook signature")

type LineItem struct {
	PriceID  string
	Quantity int64
}

type CheckoutParams struct {
	CustomerID string
	Items      []LineItem
}

type CheckoutSession struct {
	ID  string `json:"sessionId"`
	URL string `json:"url"`
}

type Event struct {
	ID   string
	Type string
}

type customerCreator interface {
	New(params *stripe.CustomerParams) (*stripe.Customer, error)
}

type sessionCreator interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

type Gateway struct {
	customers      customerCreator
	sessions       sessionCreator
	webhookSecret  string
	paymentMethods []string
	successURL     string
	cancelURL      string
}

type Options struct {
	SecretKey      string
	WebhookSecret  string
	PaymentMethods []string
	SuccessURL     string
	CancelURL      string
}

func NewGateway(opts Options) *Gateway {
	sc := client.New(opts.SecretKey, nil)
	return &Gateway{
		customers:      sc.Customers,
		sessions:       sc.CheckoutSessions,
		webhookSecret:  opts.WebhookSecret,
		paymentMethods: opts.PaymentMethods,
		successURL:     opts.SuccessURL,
		cancelURL:      opts.CancelURL,
	}
}

func (g *Gateway) CreateCustomer(ctx context.Context, name, email string) (string, error) {
	params := &stripe.CustomerParams{
		Name:  stripe.String(name),
		Email: stripe.String(email),
	}
	params.Context = ctx

	cus, err := g.customers.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe: create customer: %w", err)
	}
	return cus.ID, nil
}

// CreateCheckoutSession starts a subscription checkout.
func (g *Gateway) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL:         stripe.String(g.successURL),
		CancelURL:          stripe.String(g.cancelURL),
		PaymentMethodTypes: stripe.StringSlice(g.paymentMethods),
	}
	if p.CustomerID != "" {
		params.Customer = stripe.String(p.CustomerID)
	}
	for _, it := range p.Items {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			Price:    stripe.String(it.PriceID),
			Quantity: stripe.Int64(it.Quantity),
		})
	}
	params.Context = ctx

	s, err := g.sessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create checkout session: %w", err)
	}
	return &CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

func (g *Gateway) ParseWebhook(payload []byte, signature string) (*Event, error) {
	ev, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	return &Event{ID: ev.ID, Type: string(ev.Type)}, nil
}

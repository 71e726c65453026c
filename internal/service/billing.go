package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/saas_boilerplate/internal/models"
	"github.com/Skotchmaster/saas_boilerplate/internal/payments"
)

type CheckoutItem struct {
	ID       string `json:"id"`
	Quantity int64  `json:"quantity"`
}

type BillingService struct {
	Users          UserStore
	Payments       PaymentGateway
	PublishableKey string
}

// CreateCustomer registers the user with the payment provider once.
func (s *BillingService) CreateCustomer(ctx context.Context, userID uuid.UUID) (string, error) {
	l := loggerFor(ctx, "billing.create_customer")

	if s.Payments == nil {
		return "", ErrUnavailable
	}
	user, err := findUser(ctx, s.Users, userID)
	if err != nil {
		return "", err
	}
	if user.PaymentCustomerID != nil && *user.PaymentCustomerID != "" {
		l.Warn("create_customer_error", "status", 409, "reason", "customer already exists", "user_id", userID)
		return "", ErrConflict
	}

	name := strings.TrimSpace(user.Firstname + " " + user.Lastname)
	customerID, err := s.Payments.CreateCustomer(ctx, name, user.Email)
	if err != nil {
		l.Error("create_customer_error", "status", 500, "user_id", userID, "error", err)
		return "", fmt.Errorf("%w: %w", ErrInternal, err)
	}

	if err := s.Users.Update(ctx, userID, models.UserUpdate{PaymentCustomerID: &customerID}); err != nil {
		l.Error("create_customer_error", "status", 500, "reason", "cannot store customer id", "error", err)
		return "", fmt.Errorf("%w: store customer id: %w", ErrPersistence, err)
	}

	l.Info("customer_created", "user_id", userID)
	return customerID, nil
}

func (s *BillingService) Checkout(ctx context.Context, userID uuid.UUID, items []CheckoutItem) (*payments.CheckoutSession, error) {
	l := loggerFor(ctx, "billing.checkout")

	if s.Payments == nil {
		return nil, ErrUnavailable
	}
	v := &ValidationError{}
	if len(items) == 0 {
		v.add("items", "at least one item is required")
	}
	for i, it := range items {
		if strings.TrimSpace(it.ID) == "" {
			v.add(fmt.Sprintf("items[%d].id", i), "required")
		}
		if it.Quantity < 1 {
			v.add(fmt.Sprintf("items[%d].quantity", i), "must be at least 1")
		}
	}
	if err := v.orNil(); err != nil {
		return nil, err
	}

	user, err := findUser(ctx, s.Users, userID)
	if err != nil {
		return nil, err
	}

	params := payments.CheckoutParams{}
	if user.PaymentCustomerID != nil {
		params.CustomerID = *user.PaymentCustomerID
	}
	for _, it := range items {
		params.Items = append(params.Items, payments.LineItem{PriceID: it.ID, Quantity: it.Quantity})
	}

	sess, err := s.Payments.CreateCheckoutSession(ctx, params)
	if err != nil {
		l.Error("checkout_error", "status", 500, "user_id", userID, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrInternal, err)
	}
	l.Info("checkout_created", "user_id", userID)
	return sess, nil
}

// HandleWebhook authenticates a provider callback and returns its event type.
func (s *BillingService) HandleWebhook(ctx context.Context, payload []byte, signature string) (*payments.Event, error) {
	l := loggerFor(ctx, "billing.webhook")

	if s.Payments == nil {
		return nil, ErrUnavailable
	}
	ev, err := s.Payments.ParseWebhook(payload, signature)
	if err != nil {
		l.Warn("webhook_rejected", "status", 400, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	l.Info("webhook_received", "event_id", ev.ID, "type", ev.Type)
	return ev, nil
}

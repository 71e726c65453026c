package testutil

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/Skotchmaster/saas_boilerplate/internal/payments"
)

// ValidSignature is the only webhook signature StubGateway accepts.
const ValidSignature = "valid"

// MemAvatars keeps uploaded objects in memory.
type MemAvatars struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func NewMemAvatars() *MemAvatars {
	return &MemAvatars{objects: map[string][]byte{}}
}

func (m *MemAvatars) Put(_ context.Context, key, _ string, body io.Reader, _ int64) error {
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = b
	return nil
}

func (m *MemAvatars) PresignGet(_ context.Context, key string, ttl time.Duration) (string, error) {
	return "https://objects.test/" + key + "?ttl=" + ttl.String(), nil
}

func (m *MemAvatars) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *MemAvatars) Object(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[key]
	return b, ok
}

// StubGateway stands in for the payment provider.
type StubGateway struct {
	mu       sync.Mutex
	LastItem []payments.LineItem
	Fail     bool
}

func (g *StubGateway) CreateCustomer(_ context.Context, _, email string) (string, error) {
	if g.Fail {
		return "", errors.New("provider unavailable")
	}
	return "cus_" + email, nil
}

func (g *StubGateway) CreateCheckoutSession(_ context.Context, p payments.CheckoutParams) (*payments.CheckoutSession, error) {
	if g.Fail {
		return nil, errors.New("provider unavailable")
	}
	g.mu.Lock()
	g.LastItem = p.Items
	g.mu.Unlock()
	return &payments.CheckoutSession{ID: "cs_test", URL: "https://checkout.test/cs_test"}, nil
}

func (g *StubGateway) ParseWebhook(_ []byte, signature string) (*payments.Event, error) {
	if signature != ValidSignature {
		return nil, payments.ErrInvalidSignature
	}
	return &payments.Event{ID: "evt_test", Type: "checkout.session.completed"}, nil
}

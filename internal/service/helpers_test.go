package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Skotchmaster/saas_boilerplate/internal/hash"
	"github.com/Skotchmaster/saas_boilerplate/internal/models"
	"github.com/Skotchmaster/saas_boilerplate/internal/mykafka"
	"github.com/Skotchmaster/saas_boilerplate/internal/payments"
	"github.com/Skotchmaster/saas_boilerplate/internal/repo"
	"github.com/Skotchmaster/saas_boilerplate/internal/testutil"
	"github.com/Skotchmaster/saas_boilerplate/pkg/tokens"
)

const testPassword = "Secret123"

type recorder struct {
	mu     sync.Mutex
	events []mykafka.UserEvent
	err    error
}

func (r *recorder) Publish(_ context.Context, ev mykafka.UserEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

type env struct {
	db       *gorm.DB
	repo     *repo.GormRepo
	tokens   *tokens.Service
	events   *recorder
	sessions *SessionService
	accounts *AccountService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db := testutil.NewDB(t)
	rp := repo.New(db)
	hasher := hash.Bcrypt{Cost: bcrypt.MinCost}
	tk := tokens.NewService([]byte("test-access-secret"), []byte("test-refresh-secret"), 15*time.Minute, 24*time.Hour)
	ev := &recorder{}

	return &env{
		db:     db,
		repo:   rp,
		tokens: tk,
		events: ev,
		sessions: &SessionService{
			Users:  rp,
			Hasher: hasher,
			Tokens: tk,
			Events: ev,
		},
		accounts: &AccountService{
			Users:  rp,
			Hasher: hasher,
			Events: ev,
		},
	}
}

func (e *env) register(t *testing.T, email string) *models.Profile {
	t.Helper()

	p, err := e.accounts.Register(context.Background(), RegisterInput{
		Email:     email,
		Firstname: "Jane",
		Lastname:  "Doe",
		Password:  testPassword,
	})
	require.NoError(t, err)
	return p
}

func (e *env) storedDigest(t *testing.T, id uuid.UUID) *string {
	t.Helper()

	var u models.User
	require.NoError(t, e.db.First(&u, "id = ?", id).Error)
	return u.RefreshToken
}

// failingStore wraps the real store and fails selected writes.
type failingStore struct {
	*repo.GormRepo
	failSet    bool
	failRotate bool
	failClear  bool
	failUpdate bool
	afterFind  func(owner *models.User)
}

func (f *failingStore) FindByRefreshToken(ctx context.Context, token string) (*models.User, error) {
	owner, err := f.GormRepo.FindByRefreshToken(ctx, token)
	if err == nil && f.afterFind != nil {
		f.afterFind(owner)
	}
	return owner, err
}

func (f *failingStore) SetRefreshToken(ctx context.Context, id uuid.UUID, token string) error {
	if f.failSet {
		return repo.ErrNotUpdated
	}
	return f.GormRepo.SetRefreshToken(ctx, id, token)
}

func (f *failingStore) RotateRefreshToken(ctx context.Context, id uuid.UUID, oldToken, newToken string) error {
	if f.failRotate {
		return errors.New("connection reset")
	}
	return f.GormRepo.RotateRefreshToken(ctx, id, oldToken, newToken)
}

func (f *failingStore) ClearRefreshToken(ctx context.Context, id uuid.UUID) error {
	if f.failClear {
		return repo.ErrNotUpdated
	}
	return f.GormRepo.ClearRefreshToken(ctx, id)
}

func (f *failingStore) Update(ctx context.Context, id uuid.UUID, upd models.UserUpdate) error {
	if f.failUpdate {
		return repo.ErrNotUpdated
	}
	return f.GormRepo.Update(ctx, id, upd)
}

type memAvatars struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newMemAvatars() *memAvatars {
	return &memAvatars{objects: map[string][]byte{}}
}

func (m *memAvatars) Put(_ context.Context, key, _ string, body io.Reader, _ int64) error {
	if m.putErr != nil {
		return m.putErr
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = b
	return nil
}

func (m *memAvatars) PresignGet(_ context.Context, key string, ttl time.Duration) (string, error) {
	return "https://cdn.example.com/" + key + "?expires=" + ttl.String(), nil
}

func (m *memAvatars) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memAvatars) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

type fakeGateway struct {
	customers int
	checkout  *payments.CheckoutParams
	err       error
}

func (g *fakeGateway) CreateCustomer(_ context.Context, name, email string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	g.customers++
	return "cus_" + email, nil
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, p payments.CheckoutParams) (*payments.CheckoutSession, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.checkout = &p
	return &payments.CheckoutSession{ID: "cs_1", URL: "https://checkout.example.com/cs_1"}, nil
}

func (g *fakeGateway) ParseWebhook(payload []byte, signature string) (*payments.Event, error) {
	if signature != "valid" {
		return nil, payments.ErrInvalidSignature
	}
	return &payments.Event{ID: "evt_1", Type: "invoice.paid"}, nil
}

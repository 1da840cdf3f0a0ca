package contact

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AmigoCRM/entity"
	"AmigoCRM/internal/phone"
)

// memStore is an in-memory Store with exact-match phone lookup,
// mirroring the real repository's contract.
type memStore struct {
	mu            sync.Mutex
	contacts      []*entity.Contact
	opportunities []*entity.Opportunity
	lookups       int
	oppErr        error
}

func (s *memStore) FindContactByPhone(p string) (*entity.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups++
	for _, c := range s.contacts {
		if c.Phone == p {
			return c, nil
		}
	}
	return nil, nil
}

func (s *memStore) InsertContact(c *entity.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts = append(s.contacts, c)
	return nil
}

func (s *memStore) InsertOpportunity(o *entity.Opportunity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.oppErr != nil {
		return s.oppErr
	}
	s.opportunities = append(s.opportunities, o)
	return nil
}

func newTestResolver(store *memStore) *Resolver {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewResolver(store, phone.NewNormalizer("52", "1"), log)
}

func TestResolveCreatesContactAndOpportunity(t *testing.T) {
	store := &memStore{}
	r := newTestResolver(store)

	contact, err := r.ResolveOrCreate("+525512345678", "")
	require.NoError(t, err)
	require.NotNil(t, contact)

	assert.Equal(t, "+525512345678", contact.Phone)
	assert.Equal(t, "New - +525512345678", contact.Name)
	assert.Equal(t, "+525512345678@chat", contact.Email)
	assert.Equal(t, entity.CategoryProspect, contact.Category)
	assert.Equal(t, entity.SourceOther, contact.LeadSource)
	assert.Contains(t, contact.Tags, "chat")
	assert.Contains(t, contact.Tags, "auto-created")

	require.Len(t, store.opportunities, 1)
	opp := store.opportunities[0]
	assert.Equal(t, contact.UUID, opp.ContactUUID)
	assert.Contains(t, opp.Title, contact.Name)
	assert.Equal(t, entity.StageNew, opp.Stage)
	assert.Zero(t, opp.Value)
}

func TestResolveUsesNameHint(t *testing.T) {
	store := &memStore{}
	r := newTestResolver(store)

	contact, err := r.ResolveOrCreate("5512345678", "Ana Torres")
	require.NoError(t, err)
	assert.Equal(t, "Ana Torres", contact.Name)
	assert.Equal(t, "+525512345678", contact.Phone)
}

func TestResolveReusesContactAcrossVariants(t *testing.T) {
	store := &memStore{}
	r := newTestResolver(store)

	first, err := r.ResolveOrCreate("+525512345678", "")
	require.NoError(t, err)

	// Same real number, different raw shapes.
	for _, raw := range []string{"525512345678", "5512345678", "+5215512345678", "5215512345678"} {
		again, err := r.ResolveOrCreate(raw, "Somebody Else")
		require.NoError(t, err, "raw %q", raw)
		assert.Equal(t, first.UUID, again.UUID, "raw %q", raw)
	}

	assert.Len(t, store.contacts, 1)
	assert.Len(t, store.opportunities, 1)
}

func TestResolveRejectsUnresolvable(t *testing.T) {
	store := &memStore{}
	r := newTestResolver(store)

	_, err := r.ResolveOrCreate("12345", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, phone.ErrUnresolvableIdentity))

	_, err = r.ResolveOrCreate("", "")
	assert.True(t, errors.Is(err, phone.ErrUnresolvableIdentity))

	assert.Empty(t, store.contacts)
}

func TestResolveConcurrentCreatesExactlyOne(t *testing.T) {
	store := &memStore{}
	r := newTestResolver(store)

	const n = 16
	raws := []string{"+525512345678", "525512345678", "5512345678", "+5215512345678"}

	var wg sync.WaitGroup
	results := make([]*entity.Contact, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = r.ResolveOrCreate(raws[i%len(raws)], "")
		}(i)
	}
	wg.Wait()

	require.Len(t, store.contacts, 1)
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, store.contacts[0].UUID, results[i].UUID)
	}
}

func TestResolveReleasesPhoneLockAfterCreate(t *testing.T) {
	store := &memStore{}
	r := newTestResolver(store)

	for _, raw := range []string{"5511111111", "5522222222", "5533333333"} {
		_, err := r.ResolveOrCreate(raw, "")
		require.NoError(t, err)
	}

	r.mu.Lock()
	pending := len(r.creating)
	r.mu.Unlock()
	assert.Zero(t, pending, "creation locks must not accumulate per phone")
}

func TestOpportunityFailureKeepsContact(t *testing.T) {
	store := &memStore{oppErr: errors.New("store unavailable")}
	r := newTestResolver(store)

	contact, err := r.ResolveOrCreate("5512345678", "")
	require.NoError(t, err)
	require.NotNil(t, contact)

	assert.Len(t, store.contacts, 1)
	assert.Empty(t, store.opportunities)
}

// Package contact resolves raw transport phone numbers to CRM
// contacts, creating the contact (and its default opportunity) on
// first sight of an unknown number.
package contact

import (
	"fmt"
	"log/slog"
	"sync"

	"AmigoCRM/entity"
	"AmigoCRM/internal/lib/sl"
	"AmigoCRM/internal/phone"
)

// Store is the persistence surface the resolver needs. Operations
// are atomic at the single-record level only.
type Store interface {
	FindContactByPhone(phone string) (*entity.Contact, error)
	InsertContact(contact *entity.Contact) error
	InsertOpportunity(opp *entity.Opportunity) error
}

type Resolver struct {
	store  Store
	phones phone.Normalizer
	log    *slog.Logger

	// creating serializes find-or-create per canonical phone. The
	// store contract gives no multi-record transaction and no unique
	// index promise, so two events for the same unseen number racing
	// through ResolveOrCreate would otherwise both insert.
	mu       sync.Mutex
	creating map[string]*sync.Mutex
}

func NewResolver(store Store, phones phone.Normalizer, log *slog.Logger) *Resolver {
	return &Resolver{
		store:    store,
		phones:   phones,
		log:      log.With(sl.Module("contact.resolver")),
		creating: make(map[string]*sync.Mutex),
	}
}

func (r *Resolver) phoneLock(canonical string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.creating[canonical]
	if !ok {
		lock = &sync.Mutex{}
		r.creating[canonical] = lock
	}
	return lock
}

// releasePhoneLock drops the map entry once the contact exists; the
// lock only guards creation, and waiters still holding the old mutex
// re-probe the store after acquiring it.
func (r *Resolver) releasePhoneLock(canonical string) {
	r.mu.Lock()
	delete(r.creating, canonical)
	r.mu.Unlock()
}

// findByVariants probes the store with every recognized shape of
// rawPhone, in the normalizer's fixed order. First match wins.
func (r *Resolver) findByVariants(rawPhone string) (*entity.Contact, error) {
	for _, variant := range r.phones.Variants(rawPhone) {
		contact, err := r.store.FindContactByPhone(variant)
		if err != nil {
			return nil, fmt.Errorf("find contact by phone %q: %w", variant, err)
		}
		if contact != nil {
			return contact, nil
		}
	}
	return nil, nil
}

// ResolveOrCreate returns the contact owning rawPhone, creating it
// (plus a zero-value opportunity) when no stored variant matches.
// A failed opportunity insert is logged and never rolls the contact
// back: the contact is already valid on its own, and another event
// may reference it by the time the failure surfaces.
func (r *Resolver) ResolveOrCreate(rawPhone, nameHint string) (*entity.Contact, error) {
	if rawPhone == "" {
		return nil, phone.ErrUnresolvableIdentity
	}

	if contact, err := r.findByVariants(rawPhone); err != nil || contact != nil {
		return contact, err
	}

	canonical, err := r.phones.Canonicalize(rawPhone)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", rawPhone, err)
	}

	lock := r.phoneLock(canonical)
	lock.Lock()
	defer lock.Unlock()

	// Re-probe under the lock: a concurrent event may have created
	// the contact while we waited.
	if contact, err := r.findByVariants(rawPhone); err != nil || contact != nil {
		if contact != nil {
			r.releasePhoneLock(canonical)
		}
		return contact, err
	}

	contact := entity.NewChatContact(canonical, nameHint)
	if err := r.store.InsertContact(contact); err != nil {
		return nil, fmt.Errorf("insert contact %s: %w", canonical, err)
	}
	r.releasePhoneLock(canonical)

	opp := entity.NewDefaultOpportunity(contact)
	if err := r.store.InsertOpportunity(opp); err != nil {
		r.log.With(
			slog.String("contact", contact.UUID),
			slog.String("phone", canonical),
			sl.Err(err),
		).Error("default opportunity insert failed, contact kept")
	}

	r.log.With(
		slog.String("contact", contact.UUID),
		slog.String("phone", canonical),
		slog.String("name", contact.Name),
	).Info("contact auto-created from chat")

	return contact, nil
}

package campaign

import (
	"context"
	"log/slog"
	"time"

	"AmigoCRM/entity"
	"AmigoCRM/internal/lib/sl"
)

// Sender dispatches one text message to one phone.
type Sender interface {
	Send(ctx context.Context, rawPhone, text string) error
}

// ContactLister supplies campaign audiences.
type ContactLister interface {
	ListContacts() ([]entity.Contact, error)
}

// Result is the per-recipient outcome of a campaign run.
type Result struct {
	Phone string `json:"phone"`
	Sent  bool   `json:"sent"`
	Error string `json:"error,omitempty"`
}

// Report summarizes one campaign run.
type Report struct {
	Total   int      `json:"total"`
	Sent    int      `json:"sent"`
	Failed  int      `json:"failed"`
	Results []Result `json:"results"`
}

// Service sends one text to many recipients, spacing the sends so the
// account does not look like a spam cannon.
type Service struct {
	sender Sender
	store  ContactLister
	delay  time.Duration
	log    *slog.Logger
}

func New(sender Sender, store ContactLister, delay time.Duration, log *slog.Logger) *Service {
	return &Service{
		sender: sender,
		store:  store,
		delay:  delay,
		log:    log.With(sl.Module("campaign service")),
	}
}

// SendToPhones runs a campaign over an explicit recipient list. One
// failed recipient never stops the rest; the report carries every
// outcome. The context cancels the run between sends.
func (s *Service) SendToPhones(ctx context.Context, phones []string, text string) Report {
	report := Report{Total: len(phones)}

	for i, phone := range phones {
		if i > 0 && s.delay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(s.delay):
			}
		}
		if ctx.Err() != nil {
			s.log.Warn("campaign cancelled", slog.Int("sent", report.Sent), slog.Int("remaining", len(phones)-i))
			for _, rest := range phones[i:] {
				report.Failed++
				report.Results = append(report.Results, Result{Phone: rest, Error: ctx.Err().Error()})
			}
			return report
		}

		if err := s.sender.Send(ctx, phone, text); err != nil {
			s.log.With(
				slog.String("phone", phone),
				sl.Err(err),
			).Error("campaign send failed")
			report.Failed++
			report.Results = append(report.Results, Result{Phone: phone, Error: err.Error()})
			continue
		}

		report.Sent++
		report.Results = append(report.Results, Result{Phone: phone, Sent: true})
	}

	s.log.With(
		slog.Int("total", report.Total),
		slog.Int("sent", report.Sent),
		slog.Int("failed", report.Failed),
	).Info("campaign finished")
	return report
}

// SendToCategory runs a campaign over every stored contact in the
// category; an empty category targets everyone.
func (s *Service) SendToCategory(ctx context.Context, category, text string) (Report, error) {
	contacts, err := s.store.ListContacts()
	if err != nil {
		return Report{}, err
	}

	var phones []string
	for _, contact := range contacts {
		if category != "" && contact.Category != category {
			continue
		}
		if contact.Phone == "" {
			continue
		}
		phones = append(phones, contact.Phone)
	}

	return s.SendToPhones(ctx, phones, text), nil
}

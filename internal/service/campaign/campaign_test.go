package campaign

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AmigoCRM/entity"
)

type scriptedSender struct {
	failures  map[string]error
	sent      []string
	afterSend func()
}

func (s *scriptedSender) Send(ctx context.Context, rawPhone, text string) error {
	if err := s.failures[rawPhone]; err != nil {
		return err
	}
	s.sent = append(s.sent, rawPhone)
	if s.afterSend != nil {
		s.afterSend()
	}
	return nil
}

type stubLister struct {
	contacts []entity.Contact
	err      error
}

func (s *stubLister) ListContacts() ([]entity.Contact, error) {
	return s.contacts, s.err
}

func newTestService(sender *scriptedSender, lister *stubLister, delay time.Duration) *Service {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(sender, lister, delay, log)
}

func TestSendToPhonesContinuesPastFailures(t *testing.T) {
	sender := &scriptedSender{failures: map[string]error{
		"+525500000002": errors.New("recipient is not registered on WhatsApp"),
	}}
	svc := newTestService(sender, &stubLister{}, 0)

	report := svc.SendToPhones(context.Background(),
		[]string{"+525500000001", "+525500000002", "+525500000003"}, "promo")

	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 2, report.Sent)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, []string{"+525500000001", "+525500000003"}, sender.sent)

	require.Len(t, report.Results, 3)
	assert.True(t, report.Results[0].Sent)
	assert.False(t, report.Results[1].Sent)
	assert.Contains(t, report.Results[1].Error, "not registered")
}

func TestSendToPhonesStopsOnMidRunCancellation(t *testing.T) {
	sender := &scriptedSender{}
	svc := newTestService(sender, &stubLister{}, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	sender.afterSend = cancel

	report := svc.SendToPhones(ctx, []string{"+525500000001", "+525500000002", "+525500000003"}, "promo")

	assert.Equal(t, 1, report.Sent)
	assert.Equal(t, 2, report.Failed)
	assert.Equal(t, []string{"+525500000001"}, sender.sent)
}

func TestSendToPhonesCancelledBeforeStart(t *testing.T) {
	sender := &scriptedSender{}
	// No pacing delay: cancellation must still stop the run.
	svc := newTestService(sender, &stubLister{}, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := svc.SendToPhones(ctx, []string{"+525500000001", "+525500000002"}, "promo")

	assert.Zero(t, report.Sent)
	assert.Equal(t, 2, report.Failed)
	assert.Empty(t, sender.sent)
	require.Len(t, report.Results, 2)
	assert.Contains(t, report.Results[0].Error, "context canceled")
}

func TestSendToCategoryFilters(t *testing.T) {
	lister := &stubLister{contacts: []entity.Contact{
		{Phone: "+525500000001", Category: entity.CategoryProspect},
		{Phone: "+525500000002", Category: entity.CategoryClient},
		{Phone: "", Category: entity.CategoryProspect},
	}}
	sender := &scriptedSender{}
	svc := newTestService(sender, lister, 0)

	report, err := svc.SendToCategory(context.Background(), entity.CategoryProspect, "hola")
	require.NoError(t, err)

	assert.Equal(t, 1, report.Total)
	assert.Equal(t, []string{"+525500000001"}, sender.sent)
}

func TestSendToCategoryEmptyTargetsAll(t *testing.T) {
	lister := &stubLister{contacts: []entity.Contact{
		{Phone: "+525500000001", Category: entity.CategoryProspect},
		{Phone: "+525500000002", Category: entity.CategoryClient},
	}}
	sender := &scriptedSender{}
	svc := newTestService(sender, lister, 0)

	report, err := svc.SendToCategory(context.Background(), "", "hola")
	require.NoError(t, err)
	assert.Equal(t, 2, report.Total)
}

func TestSendToCategoryStoreError(t *testing.T) {
	svc := newTestService(&scriptedSender{}, &stubLister{err: errors.New("store down")}, 0)

	_, err := svc.SendToCategory(context.Background(), "", "hola")
	require.Error(t, err)
}

package integrations

import (
	"context"
	"fmt"
	"sync"
)

// FakeSIEM is an in-memory SIEM used in tests. Set Err to force failures,
// or Block to make calls wait until the channel is closed.
type FakeSIEM struct {
	mu     sync.Mutex
	Err    error
	Block  chan struct{}
	Alerts []Alert
}

func (f *FakeSIEM) SendAlert(ctx context.Context, alert Alert) (string, error) {
	if err := f.wait(ctx); err != nil {
		return "", err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Err != nil {
		return "", f.Err
	}

	f.Alerts = append(f.Alerts, alert)

	return fmt.Sprintf("siem-%d", len(f.Alerts)), nil
}

func (f *FakeSIEM) Enrich(ctx context.Context, req EnrichmentRequest) (string, error) {
	if err := f.wait(ctx); err != nil {
		return "", err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Err != nil {
		return "", f.Err
	}

	return "enrichment-" + req.Indicator, nil
}

func (f *FakeSIEM) wait(ctx context.Context) error {
	if f.Block == nil {
		return nil
	}

	select {
	case <-f.Block:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// FakeTicketing is an in-memory ticketing system used in tests.
type FakeTicketing struct {
	mu      sync.Mutex
	Err     error
	Block   chan struct{}
	Tickets []Ticket
	Updates map[string]map[string]any
}

func (f *FakeTicketing) CreateTicket(ctx context.Context, ticket Ticket) (string, error) {
	if f.Block != nil {
		select {
		case <-f.Block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Err != nil {
		return "", f.Err
	}

	f.Tickets = append(f.Tickets, ticket)

	return fmt.Sprintf("TICKET-%d", len(f.Tickets)), nil
}

func (f *FakeTicketing) UpdateTicket(ctx context.Context, ref string, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Err != nil {
		return f.Err
	}

	if f.Updates == nil {
		f.Updates = make(map[string]map[string]any)
	}

	f.Updates[ref] = fields

	return nil
}

// CreatedTickets returns a copy of the tickets created so far.
func (f *FakeTicketing) CreatedTickets() []Ticket {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]Ticket(nil), f.Tickets...)
}

// FakeNotifier records channel sends. Set Err to force failures.
type FakeNotifier struct {
	mu    sync.Mutex
	Err   error
	Sends []NotifierSend
}

type NotifierSend struct {
	Channel string
	Message map[string]any
}

func (f *FakeNotifier) Send(_ context.Context, channel string, message map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Err != nil {
		return f.Err
	}

	f.Sends = append(f.Sends, NotifierSend{Channel: channel, Message: message})

	return nil
}

// SentTo returns how many sends went to the given channel.
func (f *FakeNotifier) SentTo(channel string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0

	for _, send := range f.Sends {
		if send.Channel == channel {
			count++
		}
	}

	return count
}

// NewFakeSet bundles fresh fakes for tests.
func NewFakeSet() (Set, *FakeSIEM, *FakeTicketing, *FakeNotifier) {
	siem := &FakeSIEM{}
	ticketing := &FakeTicketing{}
	notifier := &FakeNotifier{}

	return Set{SIEM: siem, Ticketing: ticketing, Notifier: notifier}, siem, ticketing, notifier
}

package service

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"go-expense-tracker/internal/model"
)

type fakeEventStore struct {
	mu      sync.Mutex
	lastSeq map[string]int64
	events  map[string]model.ExpenseEvent
}

func newFakeEventStore() *fakeEventStore {
	return &fakeEventStore{
		lastSeq: map[string]int64{},
		events:  map[string]model.ExpenseEvent{},
	}
}

func (f *fakeEventStore) Create(_ context.Context, e model.ExpenseEvent) (model.ExpenseEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lastSeq[e.UserID]++
	e.Seq = f.lastSeq[e.UserID]
	f.events[e.ID] = e
	return e, nil
}

func (f *fakeEventStore) FindByID(_ context.Context, userID string, id string) (model.ExpenseEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	e, ok := f.events[id]
	if !ok || e.UserID != userID {
		return model.ExpenseEvent{}, model.ErrEventNotFound
	}
	return e, nil
}

func (f *fakeEventStore) Update(_ context.Context, e model.ExpenseEvent, replaceItems bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, ok := f.events[e.ID]
	if !ok || current.UserID != e.UserID {
		return model.ErrEventNotFound
	}
	if !replaceItems {
		e.Items = current.Items
	}
	f.events[e.ID] = e
	return nil
}

func (f *fakeEventStore) List(_ context.Context, userID string, from *time.Time, to *time.Time, typ string) ([]model.ExpenseEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]model.ExpenseEvent, 0)
	for _, e := range f.events {
		if e.UserID != userID {
			continue
		}
		if from != nil && e.Date.Before(*from) {
			continue
		}
		if to != nil && e.Date.After(*to) {
			continue
		}
		if typ != "" && e.Type != typ {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (f *fakeEventStore) Delete(_ context.Context, userID string, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	e, ok := f.events[id]
	if !ok || e.UserID != userID {
		return model.ErrEventNotFound
	}
	delete(f.events, id)
	return nil
}

func (f *fakeEventStore) Sum(_ context.Context, userID string, from *time.Time, to *time.Time) (int64, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var income, expense int64
	for _, e := range f.events {
		if e.UserID != userID {
			continue
		}
		if from != nil && e.Date.Before(*from) {
			continue
		}
		if to != nil && e.Date.After(*to) {
			continue
		}
		if e.Type == model.TypeIncome {
			income += e.AmountCents
		} else {
			expense += e.AmountCents
		}
	}
	return income, expense, nil
}

func validCreateRequest(amount float64, typ string) model.CreateEventRequest {
	return model.CreateEventRequest{
		Date:             "2026-08-15",
		Type:             typ,
		Amount:           amount,
		Category:         "Food",
		OrderNo:          "INV-001",
		CounterpartyName: "Corner Shop",
	}
}

func TestExpenseServiceCreate(t *testing.T) {
	t.Parallel()

	t.Run("assigns sequence and converts money", func(t *testing.T) {
		svc := NewExpenseService(newFakeEventStore())

		event, err := svc.Create(context.Background(), "u1", validCreateRequest(19.99, model.TypeExpense))
		require.NoError(t, err)
		require.Equal(t, int64(1), event.Seq)
		require.Equal(t, int64(1999), event.AmountCents)
		require.Equal(t, model.CustomerIndividual, event.CustomerType)
	})

	t.Run("empty category defaults to Other", func(t *testing.T) {
		svc := NewExpenseService(newFakeEventStore())

		req := validCreateRequest(10, model.TypeExpense)
		req.Category = "   "
		event, err := svc.Create(context.Background(), "u1", req)
		require.NoError(t, err)
		require.Equal(t, "Other", event.Category)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		svc := NewExpenseService(newFakeEventStore())

		req := validCreateRequest(0, model.TypeExpense)
		_, err := svc.Create(context.Background(), "u1", req)
		requireBadRequest(t, err, "Amount must be positive")

		req = validCreateRequest(10, "savings")
		_, err = svc.Create(context.Background(), "u1", req)
		require.Error(t, err)

		req = validCreateRequest(10, model.TypeExpense)
		req.Date = "15/08/2026"
		_, err = svc.Create(context.Background(), "u1", req)
		require.Error(t, err)

		req = validCreateRequest(10, model.TypeExpense)
		req.CustomerType = "government"
		_, err = svc.Create(context.Background(), "u1", req)
		require.Error(t, err)
	})

	t.Run("accepts RFC 3339 dates", func(t *testing.T) {
		svc := NewExpenseService(newFakeEventStore())

		req := validCreateRequest(10, model.TypeExpense)
		req.Date = "2026-08-15T14:30:00+07:00"
		event, err := svc.Create(context.Background(), "u1", req)
		require.NoError(t, err)
		require.Equal(t, 7, event.Date.UTC().Hour())
	})

	t.Run("line items are validated and converted", func(t *testing.T) {
		svc := NewExpenseService(newFakeEventStore())

		req := validCreateRequest(30, model.TypeExpense)
		req.ExpenseItems = []model.ExpenseItemInput{
			{Name: "Coffee", Amount: 4.5},
			{Name: "Sandwich", Amount: 25.5},
		}
		event, err := svc.Create(context.Background(), "u1", req)
		require.NoError(t, err)
		require.Len(t, event.Items, 2)
		require.Equal(t, int64(450), event.Items[0].AmountCents)

		req.ExpenseItems = []model.ExpenseItemInput{{Name: "Free", Amount: 0}}
		_, err = svc.Create(context.Background(), "u1", req)
		require.Error(t, err)
	})
}

func TestExpenseServiceSequences(t *testing.T) {
	t.Parallel()

	t.Run("concurrent creates get distinct gap-free sequences", func(t *testing.T) {
		svc := NewExpenseService(newFakeEventStore())

		const n = 50
		var mu sync.Mutex
		seqs := make([]int64, 0, n)

		g, ctx := errgroup.WithContext(context.Background())
		for i := 0; i < n; i++ {
			g.Go(func() error {
				event, err := svc.Create(ctx, "u1", validCreateRequest(10, model.TypeExpense))
				if err != nil {
					return err
				}
				mu.Lock()
				seqs = append(seqs, event.Seq)
				mu.Unlock()
				return nil
			})
		}
		require.NoError(t, g.Wait())

		sort.Slice(seqs, func(i, j int) bool { return seqs[i] < seqs[j] })
		for i, seq := range seqs {
			require.Equal(t, int64(i+1), seq)
		}
	})

	t.Run("sequences are per user", func(t *testing.T) {
		svc := NewExpenseService(newFakeEventStore())

		first, err := svc.Create(context.Background(), "u1", validCreateRequest(10, model.TypeExpense))
		require.NoError(t, err)
		other, err := svc.Create(context.Background(), "u2", validCreateRequest(10, model.TypeExpense))
		require.NoError(t, err)

		require.Equal(t, int64(1), first.Seq)
		require.Equal(t, int64(1), other.Seq)
	})

	t.Run("deleting does not free the sequence", func(t *testing.T) {
		svc := NewExpenseService(newFakeEventStore())

		first, err := svc.Create(context.Background(), "u1", validCreateRequest(10, model.TypeExpense))
		require.NoError(t, err)
		require.NoError(t, svc.Remove(context.Background(), "u1", first.ID))

		second, err := svc.Create(context.Background(), "u1", validCreateRequest(10, model.TypeExpense))
		require.NoError(t, err)
		require.Equal(t, int64(2), second.Seq)
	})
}

func TestExpenseServiceUpdate(t *testing.T) {
	t.Parallel()

	t.Run("patches only supplied fields", func(t *testing.T) {
		svc := NewExpenseService(newFakeEventStore())

		event, err := svc.Create(context.Background(), "u1", validCreateRequest(10, model.TypeExpense))
		require.NoError(t, err)

		amount := 25.0
		updated, err := svc.Update(context.Background(), "u1", event.ID, model.UpdateEventRequest{Amount: &amount})
		require.NoError(t, err)
		require.Equal(t, int64(2500), updated.AmountCents)
		require.Equal(t, event.Category, updated.Category)
		require.Equal(t, event.Seq, updated.Seq)
	})

	t.Run("items replace wholesale when provided", func(t *testing.T) {
		svc := NewExpenseService(newFakeEventStore())

		req := validCreateRequest(30, model.TypeExpense)
		req.ExpenseItems = []model.ExpenseItemInput{
			{Name: "Coffee", Amount: 4.5},
			{Name: "Sandwich", Amount: 25.5},
		}
		event, err := svc.Create(context.Background(), "u1", req)
		require.NoError(t, err)

		items := []model.ExpenseItemInput{{Name: "Tea", Amount: 3}}
		updated, err := svc.Update(context.Background(), "u1", event.ID, model.UpdateEventRequest{ExpenseItems: &items})
		require.NoError(t, err)
		require.Len(t, updated.Items, 1)
		require.Equal(t, "Tea", updated.Items[0].Name)
	})

	t.Run("nil items leave the collection alone", func(t *testing.T) {
		svc := NewExpenseService(newFakeEventStore())

		req := validCreateRequest(30, model.TypeExpense)
		req.ExpenseItems = []model.ExpenseItemInput{{Name: "Coffee", Amount: 4.5}}
		event, err := svc.Create(context.Background(), "u1", req)
		require.NoError(t, err)

		note := "paid cash"
		updated, err := svc.Update(context.Background(), "u1", event.ID, model.UpdateEventRequest{Note: &note})
		require.NoError(t, err)
		require.Len(t, updated.Items, 1)
	})

	t.Run("unknown event is not found", func(t *testing.T) {
		svc := NewExpenseService(newFakeEventStore())

		amount := 25.0
		_, err := svc.Update(context.Background(), "u1", "missing", model.UpdateEventRequest{Amount: &amount})
		require.Error(t, err)
	})
}

func TestExpenseServiceSummary(t *testing.T) {
	t.Parallel()

	t.Run("balances income against expense", func(t *testing.T) {
		svc := NewExpenseService(newFakeEventStore())

		_, err := svc.Create(context.Background(), "u1", validCreateRequest(100, model.TypeIncome))
		require.NoError(t, err)
		_, err = svc.Create(context.Background(), "u1", validCreateRequest(50, model.TypeIncome))
		require.NoError(t, err)
		_, err = svc.Create(context.Background(), "u1", validCreateRequest(30, model.TypeExpense))
		require.NoError(t, err)

		summary, err := svc.Summary(context.Background(), "u1", "", "")
		require.NoError(t, err)
		require.Equal(t, 150.0, summary.Income)
		require.Equal(t, 30.0, summary.Expense)
		require.Equal(t, 120.0, summary.Balance)
	})

	t.Run("empty range reports zeroes", func(t *testing.T) {
		svc := NewExpenseService(newFakeEventStore())

		_, err := svc.Create(context.Background(), "u1", validCreateRequest(100, model.TypeIncome))
		require.NoError(t, err)

		summary, err := svc.Summary(context.Background(), "u1", "2030-01-01", "2030-12-31")
		require.NoError(t, err)
		require.Equal(t, 0.0, summary.Income)
		require.Equal(t, 0.0, summary.Expense)
		require.Equal(t, 0.0, summary.Balance)
	})

	t.Run("date-only upper bound includes the whole day", func(t *testing.T) {
		svc := NewExpenseService(newFakeEventStore())

		req := validCreateRequest(40, model.TypeExpense)
		req.Date = "2026-08-15T18:00:00Z"
		_, err := svc.Create(context.Background(), "u1", req)
		require.NoError(t, err)

		summary, err := svc.Summary(context.Background(), "u1", "2026-08-15", "2026-08-15")
		require.NoError(t, err)
		require.Equal(t, 40.0, summary.Expense)
	})
}

func TestExpenseServiceList(t *testing.T) {
	t.Parallel()

	svc := NewExpenseService(newFakeEventStore())

	older := validCreateRequest(10, model.TypeExpense)
	older.Date = "2026-08-01"
	newer := validCreateRequest(20, model.TypeIncome)
	newer.Date = "2026-08-20"

	_, err := svc.Create(context.Background(), "u1", older)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), "u1", newer)
	require.NoError(t, err)

	t.Run("newest first", func(t *testing.T) {
		events, err := svc.List(context.Background(), "u1", "", "", "")
		require.NoError(t, err)
		require.Len(t, events, 2)
		require.True(t, events[0].Date.After(events[1].Date))
	})

	t.Run("type filter", func(t *testing.T) {
		events, err := svc.List(context.Background(), "u1", "", "", model.TypeIncome)
		require.NoError(t, err)
		require.Len(t, events, 1)

		_, err = svc.List(context.Background(), "u1", "", "", "savings")
		require.Error(t, err)
	})

	t.Run("date window", func(t *testing.T) {
		events, err := svc.List(context.Background(), "u1", "2026-08-10", "2026-08-31", "")
		require.NoError(t, err)
		require.Len(t, events, 1)
	})
}

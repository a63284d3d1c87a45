package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-expense-tracker/internal/model"
	"go-expense-tracker/pkg/apierror"
)

const defaultCategory = "Other"

type eventStore interface {
	List(ctx context.Context, userID string, from *time.Time, to *time.Time, typ string) ([]model.ExpenseEvent, error)
	FindByID(ctx context.Context, userID string, id string) (model.ExpenseEvent, error)
	Create(ctx context.Context, e model.ExpenseEvent) (model.ExpenseEvent, error)
	Update(ctx context.Context, e model.ExpenseEvent, replaceItems bool) error
	Delete(ctx context.Context, userID string, id string) error
	Sum(ctx context.Context, userID string, from *time.Time, to *time.Time) (int64, int64, error)
}

type ExpenseService struct {
	store eventStore
}

func NewExpenseService(store eventStore) *ExpenseService {
	return &ExpenseService{store: store}
}

// parseEventDate accepts a plain calendar date or a full RFC 3339 timestamp.
func parseEventDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, apierror.BadRequest("date is required", "date")
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, apierror.BadRequest("date must be YYYY-MM-DD or RFC 3339", raw)
}

// ParsePeriod turns optional from/to query values into bounds. The upper bound
// is pushed to the end of its day so a date-only "to" includes that whole day.
func ParsePeriod(fromRaw string, toRaw string) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if fromRaw != "" {
		t, err := parseEventDate(fromRaw)
		if err != nil {
			return nil, nil, err
		}
		from = &t
	}
	if toRaw != "" {
		t, err := parseEventDate(toRaw)
		if err != nil {
			return nil, nil, err
		}
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		to = &t
	}
	return from, to, nil
}

func normalizeText(raw *string) *string {
	if raw == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func validateCustomerType(customerType string) error {
	if customerType != model.CustomerIndividual && customerType != model.CustomerCompany {
		return apierror.BadRequest("customerType must be individual or company", customerType)
	}
	return nil
}

func buildItems(inputs []model.ExpenseItemInput) ([]model.ExpenseItem, error) {
	items := make([]model.ExpenseItem, 0, len(inputs))
	for _, in := range inputs {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			return nil, apierror.BadRequest("item name is required", "expenseItems")
		}
		if in.Amount <= 0 {
			return nil, apierror.BadRequest("item amount must be positive", name)
		}
		items = append(items, model.ExpenseItem{
			Name:        name,
			AmountCents: model.CentsFromAmount(in.Amount),
		})
	}
	return items, nil
}

func (s *ExpenseService) Create(ctx context.Context, userID string, req model.CreateEventRequest) (model.ExpenseEvent, error) {
	if err := validateType(req.Type); err != nil {
		return model.ExpenseEvent{}, err
	}
	if req.Amount <= 0 {
		return model.ExpenseEvent{}, apierror.BadRequest("Amount must be positive", "amount")
	}

	date, err := parseEventDate(req.Date)
	if err != nil {
		return model.ExpenseEvent{}, err
	}

	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = defaultCategory
	}

	customerType := req.CustomerType
	if customerType == "" {
		customerType = model.CustomerIndividual
	}
	if err := validateCustomerType(customerType); err != nil {
		return model.ExpenseEvent{}, err
	}

	if req.WithholdingTaxPercent < 0 || req.ServiceFeePercent < 0 {
		return model.ExpenseEvent{}, apierror.BadRequest("percent values cannot be negative", "")
	}

	items, err := buildItems(req.ExpenseItems)
	if err != nil {
		return model.ExpenseEvent{}, err
	}

	now := time.Now().UTC()
	event := model.ExpenseEvent{
		ID:                    uuid.NewString(),
		UserID:                userID,
		Date:                  date,
		Type:                  req.Type,
		AmountCents:           model.CentsFromAmount(req.Amount),
		Category:              category,
		Note:                  normalizeText(req.Note),
		OrderNo:               strings.TrimSpace(req.OrderNo),
		CounterpartyName:      strings.TrimSpace(req.CounterpartyName),
		Address:               normalizeText(req.Address),
		TelNo:                 normalizeText(req.TelNo),
		CustomerType:          customerType,
		WithholdingTaxPercent: req.WithholdingTaxPercent,
		WithholdingTaxCents:   model.CentsFromAmount(req.WithholdingTaxAmount),
		ServiceFeePercent:     req.ServiceFeePercent,
		ServiceFeeCents:       model.CentsFromAmount(req.ServiceFeeAmount),
		Items:                 items,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	return s.store.Create(ctx, event)
}

func (s *ExpenseService) Get(ctx context.Context, userID string, id string) (model.ExpenseEvent, error) {
	event, err := s.store.FindByID(ctx, userID, id)
	if errors.Is(err, model.ErrEventNotFound) {
		return model.ExpenseEvent{}, apierror.NotFound("expense event not found", id)
	}
	return event, err
}

func (s *ExpenseService) List(ctx context.Context, userID string, fromRaw string, toRaw string, typ string) ([]model.ExpenseEvent, error) {
	if typ != "" {
		if err := validateType(typ); err != nil {
			return nil, err
		}
	}
	from, to, err := ParsePeriod(fromRaw, toRaw)
	if err != nil {
		return nil, err
	}
	return s.store.List(ctx, userID, from, to, typ)
}

// Update patches only the supplied fields. A non-nil ExpenseItems slice
// replaces the whole line-item collection; nil leaves the items alone.
func (s *ExpenseService) Update(ctx context.Context, userID string, id string, req model.UpdateEventRequest) (model.ExpenseEvent, error) {
	event, err := s.store.FindByID(ctx, userID, id)
	if errors.Is(err, model.ErrEventNotFound) {
		return model.ExpenseEvent{}, apierror.NotFound("expense event not found", id)
	}
	if err != nil {
		return model.ExpenseEvent{}, err
	}

	if req.Type != nil {
		if err := validateType(*req.Type); err != nil {
			return model.ExpenseEvent{}, err
		}
		event.Type = *req.Type
	}
	if req.Date != nil {
		date, err := parseEventDate(*req.Date)
		if err != nil {
			return model.ExpenseEvent{}, err
		}
		event.Date = date
	}
	if req.Amount != nil {
		if *req.Amount <= 0 {
			return model.ExpenseEvent{}, apierror.BadRequest("Amount must be positive", "amount")
		}
		event.AmountCents = model.CentsFromAmount(*req.Amount)
	}
	if req.Category != nil {
		category := strings.TrimSpace(*req.Category)
		if category == "" {
			category = defaultCategory
		}
		event.Category = category
	}
	if req.Note != nil {
		event.Note = normalizeText(req.Note)
	}
	if req.OrderNo != nil {
		event.OrderNo = strings.TrimSpace(*req.OrderNo)
	}
	if req.CounterpartyName != nil {
		event.CounterpartyName = strings.TrimSpace(*req.CounterpartyName)
	}
	if req.Address != nil {
		event.Address = normalizeText(req.Address)
	}
	if req.TelNo != nil {
		event.TelNo = normalizeText(req.TelNo)
	}
	if req.CustomerType != nil {
		if err := validateCustomerType(*req.CustomerType); err != nil {
			return model.ExpenseEvent{}, err
		}
		event.CustomerType = *req.CustomerType
	}
	if req.WithholdingTaxPercent != nil {
		if *req.WithholdingTaxPercent < 0 {
			return model.ExpenseEvent{}, apierror.BadRequest("percent values cannot be negative", "withholdingTaxPercent")
		}
		event.WithholdingTaxPercent = *req.WithholdingTaxPercent
	}
	if req.WithholdingTaxAmount != nil {
		event.WithholdingTaxCents = model.CentsFromAmount(*req.WithholdingTaxAmount)
	}
	if req.ServiceFeePercent != nil {
		if *req.ServiceFeePercent < 0 {
			return model.ExpenseEvent{}, apierror.BadRequest("percent values cannot be negative", "serviceFeePercent")
		}
		event.ServiceFeePercent = *req.ServiceFeePercent
	}
	if req.ServiceFeeAmount != nil {
		event.ServiceFeeCents = model.CentsFromAmount(*req.ServiceFeeAmount)
	}

	replaceItems := req.ExpenseItems != nil
	if replaceItems {
		items, err := buildItems(*req.ExpenseItems)
		if err != nil {
			return model.ExpenseEvent{}, err
		}
		event.Items = items
	}
	event.UpdatedAt = time.Now().UTC()

	if err := s.store.Update(ctx, event, replaceItems); err != nil {
		if errors.Is(err, model.ErrEventNotFound) {
			return model.ExpenseEvent{}, apierror.NotFound("expense event not found", id)
		}
		return model.ExpenseEvent{}, err
	}

	return s.store.FindByID(ctx, userID, id)
}

func (s *ExpenseService) Remove(ctx context.Context, userID string, id string) error {
	err := s.store.Delete(ctx, userID, id)
	if errors.Is(err, model.ErrEventNotFound) {
		return apierror.NotFound("expense event not found", id)
	}
	return err
}

func (s *ExpenseService) Summary(ctx context.Context, userID string, fromRaw string, toRaw string) (model.Summary, error) {
	from, to, err := ParsePeriod(fromRaw, toRaw)
	if err != nil {
		return model.Summary{}, err
	}

	income, expense, err := s.store.Sum(ctx, userID, from, to)
	if err != nil {
		return model.Summary{}, err
	}

	return model.Summary{
		Income:  model.AmountFromCents(income),
		Expense: model.AmountFromCents(expense),
		Balance: model.AmountFromCents(income - expense),
	}, nil
}

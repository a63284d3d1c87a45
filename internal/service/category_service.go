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

type categoryStore interface {
	ListActive(ctx context.Context, userID string, typ string) ([]model.Category, error)
	FindByID(ctx context.Context, userID string, id string) (model.Category, error)
	SiblingExists(ctx context.Context, userID string, typ string, parentID *string, name string, excludeID string) (bool, error)
	Create(ctx context.Context, c model.Category) error
	Update(ctx context.Context, c model.Category) error
	Delete(ctx context.Context, userID string, id string) error
	CountChildren(ctx context.Context, userID string, id string) (int, error)
	CountEventsUsing(ctx context.Context, userID string, name string) (int, error)
	HasAny(ctx context.Context, userID string) (bool, error)
	FindRootByName(ctx context.Context, userID string, typ string, name string) (model.Category, error)
}

type CategoryService struct {
	store categoryStore
}

func NewCategoryService(store categoryStore) *CategoryService {
	return &CategoryService{store: store}
}

// SeedResult reports whether seeding ran or was skipped because the user
// already had categories.
type SeedResult struct {
	OK      bool `json:"ok"`
	Skipped bool `json:"skipped,omitempty"`
}

func validateType(typ string) error {
	if !model.ValidType(typ) {
		return apierror.BadRequest("type must be income or expense", typ)
	}
	return nil
}

func (s *CategoryService) List(ctx context.Context, userID string, typ string) ([]model.Category, error) {
	if typ != "" {
		if err := validateType(typ); err != nil {
			return nil, err
		}
	}
	return s.store.ListActive(ctx, userID, typ)
}

// Tree builds the forest from the flat list in one pass. A category whose
// parent is missing from the list is promoted to a root rather than dropped.
func (s *CategoryService) Tree(ctx context.Context, userID string, typ string) ([]*model.CategoryNode, error) {
	flat, err := s.List(ctx, userID, typ)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*model.CategoryNode, len(flat))
	for _, c := range flat {
		byID[c.ID] = &model.CategoryNode{Category: c, Children: []*model.CategoryNode{}}
	}

	roots := make([]*model.CategoryNode, 0)
	for _, c := range flat {
		node := byID[c.ID]
		if c.ParentID != nil {
			if parent, ok := byID[*c.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots, nil
}

func (s *CategoryService) Create(ctx context.Context, userID string, req model.CreateCategoryRequest) (model.Category, error) {
	if err := validateType(req.Type); err != nil {
		return model.Category{}, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return model.Category{}, apierror.BadRequest("name is required", "name")
	}

	if req.ParentID != nil {
		parent, err := s.store.FindByID(ctx, userID, *req.ParentID)
		if errors.Is(err, model.ErrCategoryNotFound) {
			return model.Category{}, apierror.NotFound("parent not found", *req.ParentID)
		}
		if err != nil {
			return model.Category{}, err
		}
		if parent.Type != req.Type {
			return model.Category{}, apierror.BadRequest("type must match parent", "")
		}
	}

	if err := s.assertSiblingUnique(ctx, userID, req.Type, req.ParentID, name, ""); err != nil {
		return model.Category{}, err
	}

	sortOrder := 0
	if req.SortOrder != nil {
		sortOrder = *req.SortOrder
	}

	now := time.Now().UTC()
	category := model.Category{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      req.Type,
		Name:      name,
		ParentID:  req.ParentID,
		SortOrder: sortOrder,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.Create(ctx, category); err != nil {
		if errors.Is(err, model.ErrSiblingNameTaken) {
			return model.Category{}, apierror.BadRequest("category name already exists at this level", name)
		}
		return model.Category{}, err
	}
	return category, nil
}

func (s *CategoryService) Update(ctx context.Context, userID string, id string, patch model.UpdateCategoryRequest) (model.Category, error) {
	current, err := s.store.FindByID(ctx, userID, id)
	if errors.Is(err, model.ErrCategoryNotFound) {
		return model.Category{}, apierror.NotFound("category not found", id)
	}
	if err != nil {
		return model.Category{}, err
	}

	next := current
	if patch.Type != nil {
		if err := validateType(*patch.Type); err != nil {
			return model.Category{}, err
		}
		next.Type = *patch.Type
	}
	if patch.ParentID.Set {
		next.ParentID = patch.ParentID.Value
	}

	if next.ParentID != nil {
		parent, err := s.store.FindByID(ctx, userID, *next.ParentID)
		if errors.Is(err, model.ErrCategoryNotFound) {
			return model.Category{}, apierror.NotFound("parent not found", *next.ParentID)
		}
		if err != nil {
			return model.Category{}, err
		}
		if parent.Type != next.Type {
			return model.Category{}, apierror.BadRequest("type must match parent", "")
		}
		if err := s.assertNoCycle(ctx, userID, id, *next.ParentID); err != nil {
			return model.Category{}, err
		}
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return model.Category{}, apierror.BadRequest("name is required", "name")
		}
		if err := s.assertSiblingUnique(ctx, userID, next.Type, next.ParentID, name, id); err != nil {
			return model.Category{}, err
		}
		next.Name = name
	}

	if patch.SortOrder != nil {
		next.SortOrder = *patch.SortOrder
	}
	if patch.IsActive != nil {
		next.IsActive = *patch.IsActive
	}
	next.UpdatedAt = time.Now().UTC()

	if err := s.store.Update(ctx, next); err != nil {
		if errors.Is(err, model.ErrSiblingNameTaken) {
			return model.Category{}, apierror.BadRequest("category name already exists at this level", next.Name)
		}
		if errors.Is(err, model.ErrCategoryNotFound) {
			return model.Category{}, apierror.NotFound("category not found", id)
		}
		return model.Category{}, err
	}
	return next, nil
}

// Remove hard-deletes a category, but only when nothing depends on it.
func (s *CategoryService) Remove(ctx context.Context, userID string, id string) error {
	category, err := s.store.FindByID(ctx, userID, id)
	if errors.Is(err, model.ErrCategoryNotFound) {
		return apierror.NotFound("category not found", id)
	}
	if err != nil {
		return err
	}

	children, err := s.store.CountChildren(ctx, userID, id)
	if err != nil {
		return err
	}
	if children > 0 {
		return apierror.BadRequest("cannot delete: category has children", category.Name)
	}

	inUse, err := s.store.CountEventsUsing(ctx, userID, category.Name)
	if err != nil {
		return err
	}
	if inUse > 0 {
		return apierror.BadRequest("cannot delete: category in use", category.Name)
	}

	if err := s.store.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, model.ErrCategoryNotFound) {
			return apierror.NotFound("category not found", id)
		}
		return err
	}
	return nil
}

func (s *CategoryService) assertSiblingUnique(ctx context.Context, userID string, typ string, parentID *string, name string, excludeID string) error {
	exists, err := s.store.SiblingExists(ctx, userID, typ, parentID, name, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return apierror.BadRequest("category name already exists at this level", name)
	}
	return nil
}

// assertNoCycle walks the ancestor chain upward from the candidate parent.
// Cost is bounded by tree depth regardless of how wide the forest is.
func (s *CategoryService) assertNoCycle(ctx context.Context, userID string, id string, parentID string) error {
	if parentID == id {
		return apierror.BadRequest("cannot set parent to itself", id)
	}

	cursor := &parentID
	for cursor != nil {
		if *cursor == id {
			return apierror.BadRequest("cannot move category under its descendant", id)
		}
		ancestor, err := s.store.FindByID(ctx, userID, *cursor)
		if errors.Is(err, model.ErrCategoryNotFound) {
			// Ancestor vanished or belongs to someone else; the chain ends here.
			return nil
		}
		if err != nil {
			return err
		}
		cursor = ancestor.ParentID
	}
	return nil
}

// SeedDefaults installs the starter taxonomy exactly once per user: any
// existing category, default or not, makes this a no-op.
func (s *CategoryService) SeedDefaults(ctx context.Context, userID string) (SeedResult, error) {
	hasAny, err := s.store.HasAny(ctx, userID)
	if err != nil {
		return SeedResult{}, err
	}
	if hasAny {
		return SeedResult{OK: true, Skipped: true}, nil
	}

	create := func(typ string, name string, parentID *string, sortOrder int) (model.Category, error) {
		now := time.Now().UTC()
		c := model.Category{
			ID:        uuid.NewString(),
			UserID:    userID,
			Type:      typ,
			Name:      name,
			ParentID:  parentID,
			SortOrder: sortOrder,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return c, s.store.Create(ctx, c)
	}

	if _, err := create(model.TypeIncome, "Salary", nil, 0); err != nil {
		return SeedResult{}, err
	}
	if _, err := create(model.TypeIncome, "Other", nil, 1); err != nil {
		return SeedResult{}, err
	}

	if _, err := create(model.TypeExpense, "Food & Drink", nil, 0); err != nil {
		return SeedResult{}, err
	}
	shopping, err := create(model.TypeExpense, "Shopping", nil, 1)
	if err != nil {
		return SeedResult{}, err
	}
	if _, err := create(model.TypeExpense, "Bills", nil, 2); err != nil {
		return SeedResult{}, err
	}
	if _, err := create(model.TypeExpense, "Travel", nil, 3); err != nil {
		return SeedResult{}, err
	}

	for i, name := range []string{"Clothing", "Shoes", "Personal Care", "Fashion", "Games"} {
		if _, err := create(model.TypeExpense, name, &shopping.ID, i); err != nil {
			return SeedResult{}, err
		}
	}

	bills, err := s.store.FindRootByName(ctx, userID, model.TypeExpense, "Bills")
	if err == nil {
		for i, name := range []string{"Rent", "Electricity"} {
			if _, err := create(model.TypeExpense, name, &bills.ID, i); err != nil {
				return SeedResult{}, err
			}
		}
	}

	travel, err := s.store.FindRootByName(ctx, userID, model.TypeExpense, "Travel")
	if err == nil {
		for i, name := range []string{"Transport", "Fuel", "Tickets"} {
			if _, err := create(model.TypeExpense, name, &travel.ID, i); err != nil {
				return SeedResult{}, err
			}
		}
	}

	return SeedResult{OK: true}, nil
}

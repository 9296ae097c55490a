package editorial

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/tendant/simple-editorial/pkg/editorial/slug"
)

// Categories and tags are slug-unique: a second record whose name slugifies to a
// taken slug is a conflict, not a disambiguated copy.

func (s *service) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*Category, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	categorySlug := slug.MakeOr(req.Name, "category")
	if err := s.ensureSlugFree(ctx, categorySlug, uuid.Nil, s.categorySlugOwner); err != nil {
		return nil, err
	}

	color := req.Color
	if color == "" {
		color = DefaultCategoryColor
	}
	category := &Category{
		ID:          uuid.New(),
		Name:        req.Name,
		Slug:        categorySlug,
		Description: req.Description,
		Color:       color,
		CreatedAt:   s.now(),
	}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("create category: %w", asDependency(err))
	}
	return category, nil
}

func (s *service) UpdateCategory(ctx context.Context, id uuid.UUID, req UpdateCategoryRequest) (*Category, error) {
	trimPtr(req.Name)
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	category, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update category %s: %w", id, asDependency(err))
	}

	if req.Name != nil && *req.Name != category.Name {
		newSlug := slug.MakeOr(*req.Name, "category")
		if newSlug != category.Slug {
			if err := s.ensureSlugFree(ctx, newSlug, category.ID, s.categorySlugOwner); err != nil {
				return nil, err
			}
		}
		category.Name = *req.Name
		category.Slug = newSlug
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if req.Color != nil {
		category.Color = *req.Color
	}

	if err := s.repo.UpdateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("update category %s: %w", id, asDependency(err))
	}
	return category, nil
}

func (s *service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetCategory(ctx, id); err != nil {
		return fmt.Errorf("delete category %s: %w", id, asDependency(err))
	}
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("delete category %s: %w", id, asDependency(err))
	}
	return nil
}

func (s *service) GetCategory(ctx context.Context, id uuid.UUID) (*Category, error) {
	category, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category %s: %w", id, asDependency(err))
	}
	return category, nil
}

func (s *service) ListCategories(ctx context.Context) ([]*Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", asDependency(err))
	}
	if categories == nil {
		categories = []*Category{}
	}
	return categories, nil
}

func (s *service) CreateTag(ctx context.Context, req CreateTagRequest) (*Tag, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	tagSlug := slug.MakeOr(req.Name, "tag")
	if err := s.ensureSlugFree(ctx, tagSlug, uuid.Nil, s.tagSlugOwner); err != nil {
		return nil, err
	}

	tag := &Tag{
		ID:        uuid.New(),
		Name:      req.Name,
		Slug:      tagSlug,
		CreatedAt: s.now(),
	}
	if err := s.repo.CreateTag(ctx, tag); err != nil {
		return nil, fmt.Errorf("create tag: %w", asDependency(err))
	}
	return tag, nil
}

func (s *service) UpdateTag(ctx context.Context, id uuid.UUID, req UpdateTagRequest) (*Tag, error) {
	trimPtr(req.Name)
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	tag, err := s.repo.GetTag(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update tag %s: %w", id, asDependency(err))
	}

	if req.Name != nil && *req.Name != tag.Name {
		newSlug := slug.MakeOr(*req.Name, "tag")
		if newSlug != tag.Slug {
			if err := s.ensureSlugFree(ctx, newSlug, tag.ID, s.tagSlugOwner); err != nil {
				return nil, err
			}
		}
		tag.Name = *req.Name
		tag.Slug = newSlug
	}

	if err := s.repo.UpdateTag(ctx, tag); err != nil {
		return nil, fmt.Errorf("update tag %s: %w", id, asDependency(err))
	}
	return tag, nil
}

func (s *service) DeleteTag(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetTag(ctx, id); err != nil {
		return fmt.Errorf("delete tag %s: %w", id, asDependency(err))
	}
	if err := s.repo.DeleteTag(ctx, id); err != nil {
		return fmt.Errorf("delete tag %s: %w", id, asDependency(err))
	}
	return nil
}

func (s *service) GetTag(ctx context.Context, id uuid.UUID) (*Tag, error) {
	tag, err := s.repo.GetTag(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get tag %s: %w", id, asDependency(err))
	}
	return tag, nil
}

func (s *service) ListTags(ctx context.Context) ([]*Tag, error) {
	tags, err := s.repo.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", asDependency(err))
	}
	if tags == nil {
		tags = []*Tag{}
	}
	return tags, nil
}

// slugOwner returns the id of the record holding a slug
type slugOwner func(ctx context.Context, value string) (uuid.UUID, error)

func (s *service) categorySlugOwner(ctx context.Context, value string) (uuid.UUID, error) {
	c, err := s.repo.GetCategoryBySlug(ctx, value)
	if err != nil {
		return uuid.Nil, err
	}
	return c.ID, nil
}

func (s *service) tagSlugOwner(ctx context.Context, value string) (uuid.UUID, error) {
	t, err := s.repo.GetTagBySlug(ctx, value)
	if err != nil {
		return uuid.Nil, err
	}
	return t.ID, nil
}

// ensureSlugFree fails with ErrSlugTaken when a record other than self holds value
func (s *service) ensureSlugFree(ctx context.Context, value string, self uuid.UUID, owner slugOwner) error {
	id, err := owner(ctx, value)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return asDependency(err)
	}
	if id != self {
		return fmt.Errorf("%w: %s", ErrSlugTaken, value)
	}
	return nil
}

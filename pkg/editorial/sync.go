package editorial

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// TagSyncResult lists the writes a tag sync performed
type TagSyncResult struct {
	Added   []uuid.UUID `json:"added"`
	Removed []uuid.UUID `json:"removed"`
}

// Changed reports whether the sync wrote anything
func (r *TagSyncResult) Changed() bool {
	return len(r.Added) > 0 || len(r.Removed) > 0
}

// diffTagIDs returns desired minus current and current minus desired.
// Duplicates in desired are ignored.
func diffTagIDs(current, desired []uuid.UUID) (add, remove []uuid.UUID) {
	have := make(map[uuid.UUID]struct{}, len(current))
	for _, id := range current {
		have[id] = struct{}{}
	}
	want := make(map[uuid.UUID]struct{}, len(desired))
	for _, id := range desired {
		if _, dup := want[id]; dup {
			continue
		}
		want[id] = struct{}{}
		if _, ok := have[id]; !ok {
			add = append(add, id)
		}
	}
	for _, id := range current {
		if _, ok := want[id]; !ok {
			remove = append(remove, id)
		}
	}
	return add, remove
}

// syncTags converges the tag set of a post inside one transaction
func (s *service) syncTags(ctx context.Context, postID uuid.UUID, desired []uuid.UUID) (*TagSyncResult, error) {
	result := &TagSyncResult{}
	err := s.repo.InTx(ctx, func(tx Repository) error {
		current, err := tx.ListPostTagIDs(ctx, postID)
		if err != nil {
			return err
		}
		add, remove := diffTagIDs(current, desired)
		if len(add) > 0 {
			if err := tx.AddPostTags(ctx, postID, add); err != nil {
				return err
			}
		}
		if len(remove) > 0 {
			if err := tx.RemovePostTags(ctx, postID, remove); err != nil {
				return err
			}
		}
		result.Added, result.Removed = add, remove
		return nil
	})
	if err != nil {
		return nil, asDependency(err)
	}
	return result, nil
}

// mergeSEO applies patch over current without touching nil fields.
// It reports whether the merged settings differ from current.
func mergeSEO(current *SEOSettings, patch SEOPatch, postID uuid.UUID, now time.Time) (*SEOSettings, bool) {
	var merged SEOSettings
	changed := false
	if current == nil {
		merged = SEOSettings{PostID: postID, RobotsMeta: DefaultRobotsMeta, CreatedAt: now}
		changed = true
	} else {
		merged = *current
	}

	apply := func(dst **string, src *string) {
		if src == nil {
			return
		}
		if *dst != nil && **dst == *src {
			return
		}
		v := *src
		*dst = &v
		changed = true
	}
	apply(&merged.MetaTitle, patch.MetaTitle)
	apply(&merged.MetaDescription, patch.MetaDescription)
	apply(&merged.Keywords, patch.Keywords)
	apply(&merged.OGTitle, patch.OGTitle)
	apply(&merged.OGDescription, patch.OGDescription)
	apply(&merged.OGImage, patch.OGImage)
	apply(&merged.TwitterTitle, patch.TwitterTitle)
	apply(&merged.TwitterDescription, patch.TwitterDescription)
	apply(&merged.TwitterImage, patch.TwitterImage)
	apply(&merged.CanonicalURL, patch.CanonicalURL)
	if patch.RobotsMeta != nil && *patch.RobotsMeta != merged.RobotsMeta {
		merged.RobotsMeta = *patch.RobotsMeta
		changed = true
	}

	if changed {
		merged.UpdatedAt = now
	}
	return &merged, changed
}

// syncSEO upserts the SEO settings of a post inside one transaction.
// Nothing is written when the patch leaves the settings unchanged.
func (s *service) syncSEO(ctx context.Context, postID uuid.UUID, patch SEOPatch) (*SEOSettings, error) {
	var result *SEOSettings
	err := s.repo.InTx(ctx, func(tx Repository) error {
		current, err := tx.GetSEOSettings(ctx, postID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		merged, changed := mergeSEO(current, patch, postID, s.now())
		if changed {
			if err := tx.UpsertSEOSettings(ctx, merged); err != nil {
				return err
			}
		}
		result = merged
		return nil
	})
	if err != nil {
		return nil, asDependency(err)
	}
	return result, nil
}

func (s *service) SyncTags(ctx context.Context, postID uuid.UUID, tagIDs []uuid.UUID) (*TagSyncResult, error) {
	if _, err := s.repo.GetPost(ctx, postID); err != nil {
		return nil, &PostError{PostID: postID, Op: "sync_tags", Err: asDependency(err)}
	}
	result, err := s.syncTags(ctx, postID, tagIDs)
	if err != nil {
		return nil, &PostError{PostID: postID, Op: "sync_tags", Err: err}
	}
	return result, nil
}

func (s *service) SyncSEOSettings(ctx context.Context, postID uuid.UUID, patch SEOPatch) (*SEOSettings, error) {
	if err := validateRequest(patch); err != nil {
		return nil, &PostError{PostID: postID, Op: "sync_seo", Err: err}
	}
	if _, err := s.repo.GetPost(ctx, postID); err != nil {
		return nil, &PostError{PostID: postID, Op: "sync_seo", Err: asDependency(err)}
	}
	settings, err := s.syncSEO(ctx, postID, patch)
	if err != nil {
		return nil, &PostError{PostID: postID, Op: "sync_seo", Err: err}
	}
	return settings, nil
}

func (s *service) ListPostTags(ctx context.Context, postID uuid.UUID) ([]*Tag, error) {
	tags, err := s.repo.ListTagsForPosts(ctx, []uuid.UUID{postID})
	if err != nil {
		return nil, &PostError{PostID: postID, Op: "list_tags", Err: asDependency(err)}
	}
	if tags[postID] == nil {
		return []*Tag{}, nil
	}
	return tags[postID], nil
}

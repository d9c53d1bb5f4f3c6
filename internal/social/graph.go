// Package social owns the directed follow edges between profiles.
// Edges are created pre-accepted; the pending and blocked states exist
// in the type for a future approval workflow but are never produced by
// the simple-follow flow here.
package social

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"lift-social/internal/apperr"
	"lift-social/internal/models"
	"lift-social/internal/privacy"
	"lift-social/internal/profiles"
	"lift-social/internal/store"
)

// resolveWorkers bounds the fan-out when batch-resolving the profiles
// behind a follow list. Each resolution is an independent round trip.
const resolveWorkers = 8

// Graph manages follow relationships on top of the record store.
type Graph struct {
	store    store.Store
	registry *profiles.Registry
}

// NewGraph creates a relationship graph.
func NewGraph(s store.Store, registry *profiles.Registry) *Graph {
	return &Graph{store: s, registry: registry}
}

// Follow creates an accepted edge from follower to following.
//
// The existence check before the insert makes retries idempotent from
// the caller's perspective: a follow repeated after a timeout fails with
// AlreadyFollowing instead of creating a duplicate. Two follows racing
// inside the store's replication window can still both land; that race
// is tolerated, not prevented (the store has no cross-record atomicity).
func (g *Graph) Follow(ctx context.Context, followerID, followingID string) (*models.FriendRelationship, error) {
	if followerID == "" || followingID == "" {
		return nil, apperr.New(apperr.KindInvalidData, "follower and following ids are required")
	}
	if followerID == followingID {
		return nil, apperr.New(apperr.KindSelfFollow, "you cannot follow yourself")
	}

	// Both edge ends must reference registered profiles: an authenticated
	// subject that never registered cannot create edges.
	if _, err := g.registry.GetProfile(ctx, followerID); err != nil {
		return nil, err
	}
	// The target must also permit being followed.
	if _, err := g.registry.GetProfile(ctx, followingID); err != nil {
		return nil, err
	}
	settings, err := g.registry.SettingsFor(ctx, followingID)
	if err != nil {
		return nil, err
	}
	if err := privacy.CanFollow(settings); err != nil {
		return nil, err
	}

	existing, err := g.edgeBetween(ctx, followerID, followingID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.New(apperr.KindAlreadyFollowing, "already following this user")
	}

	edge := &models.FriendRelationship{
		ID:          uuid.New().String(),
		FollowerID:  followerID,
		FollowingID: followingID,
		Status:      models.StatusAccepted,
		CreatedAt:   time.Now().UTC(),
	}
	if err := g.store.Save(ctx, store.Record{
		Type:   models.RecordTypeRelationship,
		ID:     edge.ID,
		Fields: edge.Fields(),
	}); err != nil {
		return nil, apperr.FromStore(err, "create follow")
	}
	return edge, nil
}

// Unfollow removes the edge from follower to following. Deletion is
// immediate and irreversible; re-following creates a fresh edge. A
// self-unfollow needs no special case: the self-edge can never exist,
// so it reports NotFollowing like any other missing edge.
func (g *Graph) Unfollow(ctx context.Context, followerID, followingID string) error {
	edge, err := g.edgeBetween(ctx, followerID, followingID)
	if err != nil {
		return err
	}
	if edge == nil {
		return apperr.New(apperr.KindNotFollowing, "not following this user")
	}

	if err := g.store.Delete(ctx, models.RecordTypeRelationship, edge.ID); err != nil {
		return apperr.FromStore(err, "delete follow")
	}
	return nil
}

// IsFollowing reports whether an accepted edge exists. Absence is a
// valid false, never an error.
func (g *Graph) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	if followerID == "" || followingID == "" || followerID == followingID {
		return false, nil
	}
	edge, err := g.edgeBetween(ctx, followerID, followingID)
	if err != nil {
		return false, err
	}
	return edge != nil, nil
}

// FollowingIDs returns the ids of every profile the user follows.
func (g *Graph) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	return g.adjacentIDs(ctx, "follower_id", userID, "following_id")
}

// FollowerIDs returns the ids of every profile following the user.
func (g *Graph) FollowerIDs(ctx context.Context, userID string) ([]string, error) {
	return g.adjacentIDs(ctx, "following_id", userID, "follower_id")
}

// ListFollowing resolves the profiles the user follows.
func (g *Graph) ListFollowing(ctx context.Context, userID string) ([]*models.UserProfile, error) {
	ids, err := g.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return g.ResolveProfiles(ctx, ids)
}

// ListFollowers resolves the profiles following the user.
func (g *Graph) ListFollowers(ctx context.Context, userID string) ([]*models.UserProfile, error) {
	ids, err := g.FollowerIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return g.ResolveProfiles(ctx, ids)
}

// CountFollowing returns the size of the user's following set.
func (g *Graph) CountFollowing(ctx context.Context, userID string) (int, error) {
	ids, err := g.FollowingIDs(ctx, userID)
	return len(ids), err
}

// CountFollowers returns the number of followers the user has.
func (g *Graph) CountFollowers(ctx context.Context, userID string) (int, error) {
	ids, err := g.FollowerIDs(ctx, userID)
	return len(ids), err
}

// ResolveProfiles batch-resolves profiles with a bounded worker pool.
// Results keep the input order; dangling ids (a deleted profile behind a
// surviving edge) and malformed records are skipped. Cancellation stops
// the fan-out without leaking goroutines.
func (g *Graph) ResolveProfiles(ctx context.Context, ids []string) ([]*models.UserProfile, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]*models.UserProfile, len(ids))
	jobs := make(chan int)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	workers := resolveWorkers
	if len(ids) < workers {
		workers = len(ids)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				profile, err := g.registry.GetProfile(ctx, ids[i])
				switch {
				case err == nil:
					results[i] = profile
				case apperr.IsKind(err, apperr.KindProfileNotFound),
					apperr.IsKind(err, apperr.KindInvalidData):
					log.Printf("social: skipping unresolvable profile %s: %v", ids[i], err)
				default:
					mu.Lock()
					if firstErr == nil {
						firstErr = err
						cancel()
					}
					mu.Unlock()
				}
			}
		}()
	}

dispatch:
	for i := range ids {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, apperr.FromStore(err, "resolve profiles")
	}

	resolved := make([]*models.UserProfile, 0, len(results))
	for _, profile := range results {
		if profile != nil {
			resolved = append(resolved, profile)
		}
	}
	return resolved, nil
}

func (g *Graph) adjacentIDs(ctx context.Context, matchField, userID, wantField string) ([]string, error) {
	records, err := g.store.Query(ctx, models.RecordTypeRelationship, store.Query{
		Filters: []store.Filter{
			store.Eq(matchField, userID),
			store.Eq("status", string(models.StatusAccepted)),
		},
	})
	if err != nil {
		return nil, apperr.FromStore(err, "query relationships")
	}

	ids := make([]string, 0, len(records))
	for _, record := range records {
		edge, err := models.RelationshipFromFields(record.ID, record.Fields)
		if err != nil {
			log.Printf("social: skipping malformed edge %s: %v", record.ID, err)
			continue
		}
		if wantField == "following_id" {
			ids = append(ids, edge.FollowingID)
		} else {
			ids = append(ids, edge.FollowerID)
		}
	}
	return ids, nil
}

func (g *Graph) edgeBetween(ctx context.Context, followerID, followingID string) (*models.FriendRelationship, error) {
	records, err := g.store.Query(ctx, models.RecordTypeRelationship, store.Query{
		Filters: []store.Filter{
			store.Eq("follower_id", followerID),
			store.Eq("following_id", followingID),
		},
		Limit: 1,
	})
	if err != nil {
		return nil, apperr.FromStore(err, "query relationship")
	}
	if len(records) == 0 {
		return nil, nil
	}

	edge, err := models.RelationshipFromFields(records[0].ID, records[0].Fields)
	if err != nil {
		// A malformed edge record is treated as absent; follow will
		// write a fresh well-formed one.
		log.Printf("social: malformed edge %s: %v", records[0].ID, err)
		return nil, nil
	}
	return edge, nil
}

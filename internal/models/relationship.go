package models

import (
	"time"

	"lift-social/internal/apperr"
)

// RecordTypeRelationship is the record type for follow edges.
const RecordTypeRelationship = "friend_relationships"

// RelationshipStatus is the state of a follow edge. The simple-follow
// flow only ever creates accepted edges; pending and blocked exist for
// a future approval workflow.
type RelationshipStatus string

const (
	StatusPending  RelationshipStatus = "pending"
	StatusAccepted RelationshipStatus = "accepted"
	StatusBlocked  RelationshipStatus = "blocked"
)

// FriendRelationship is a directed edge, follower -> following. At most
// one edge exists per ordered pair; "followers of X" is the inverse
// query, not a separate edge.
type FriendRelationship struct {
	ID          string             `json:"id"`
	FollowerID  string             `json:"follower_id"`
	FollowingID string             `json:"following_id"`
	Status      RelationshipStatus `json:"status"`
	CreatedAt   time.Time          `json:"created_at"`
}

// Fields flattens the edge into a store record field map.
func (r *FriendRelationship) Fields() map[string]interface{} {
	return map[string]interface{}{
		"follower_id":  r.FollowerID,
		"following_id": r.FollowingID,
		"status":       string(r.Status),
		"created_at":   r.CreatedAt,
	}
}

// RelationshipFromFields rebuilds an edge from a store record.
func RelationshipFromFields(id string, fields map[string]interface{}) (*FriendRelationship, error) {
	followerID, ok := stringField(fields, "follower_id")
	if !ok || followerID == "" {
		return nil, apperr.Newf(apperr.KindInvalidData, "relationship %s: missing follower id", id)
	}
	followingID, ok := stringField(fields, "following_id")
	if !ok || followingID == "" {
		return nil, apperr.Newf(apperr.KindInvalidData, "relationship %s: missing following id", id)
	}

	status, _ := stringField(fields, "status")
	if status == "" {
		status = string(StatusAccepted)
	}

	return &FriendRelationship{
		ID:          id,
		FollowerID:  followerID,
		FollowingID: followingID,
		Status:      RelationshipStatus(status),
		CreatedAt:   timeField(fields, "created_at"),
	}, nil
}

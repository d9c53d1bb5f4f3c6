// Package models contains the data records of the social graph service
// and their conversions to and from store record field maps. The store
// holds four record types: profiles, friend_relationships,
// public_workouts, and privacy_settings.
package models

// RecordTypes lists every record type the service persists.
func RecordTypes() []string {
	return []string{
		RecordTypeProfile,
		RecordTypeRelationship,
		RecordTypeWorkout,
		RecordTypeSettings,
	}
}

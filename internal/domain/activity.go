package domain

import "time"

// ActivityType names what happened / Nomme ce qui s'est passé
type ActivityType string

const (
	ActivityPostCreated      ActivityType = "post.created"
	ActivityPostUpdated      ActivityType = "post.updated"
	ActivityPostDeleted      ActivityType = "post.deleted"
	ActivityCommentCreated   ActivityType = "comment.created"
	ActivityCommentUpdated   ActivityType = "comment.updated"
	ActivityCommentDeleted   ActivityType = "comment.deleted"
	ActivityReactionAdded    ActivityType = "reaction.added"
	ActivityReactionRemoved  ActivityType = "reaction.removed"
	ActivityEventCreated     ActivityType = "event.created"
	ActivityEventUpdated     ActivityType = "event.updated"
	ActivityEventDeleted     ActivityType = "event.deleted"
	ActivityGoalCreated      ActivityType = "goal.created"
	ActivityGoalUpdated      ActivityType = "goal.updated"
	ActivityGoalCompleted    ActivityType = "goal.completed"
	ActivityGoalDeleted      ActivityType = "goal.deleted"
	ActivityHelpCreated      ActivityType = "help_request.created"
	ActivityHelpUpdated      ActivityType = "help_request.updated"
	ActivityHelpClaimed      ActivityType = "help_request.claimed"
	ActivityHelpUnclaimed    ActivityType = "help_request.unclaimed"
	ActivityHelpResolved     ActivityType = "help_request.resolved"
	ActivityHelpReopened     ActivityType = "help_request.reopened"
	ActivityHelpExpired      ActivityType = "help_request.expired"
	ActivityHelpDeleted      ActivityType = "help_request.deleted"
	ActivitySharePostCreated ActivityType = "share_post.created"
	ActivitySharePostUpdated ActivityType = "share_post.updated"
	ActivitySharePostDeleted ActivityType = "share_post.deleted"
	ActivityProfileUpdated   ActivityType = "profile.updated"
)

// Activity is a domain event broadcast after a write / Événement métier diffusé après une écriture
type Activity struct {
	Type       ActivityType `json:"type"`
	ActorID    int64        `json:"actor_id"`
	SubjectID  int64        `json:"subject_id"`
	OccurredAt time.Time    `json:"occurred_at"`
	Payload    any          `json:"payload,omitempty"`
}

// NewActivity stamps an activity with the current time / Horodate une activité
func NewActivity(kind ActivityType, actorID, subjectID int64, payload any) Activity {
	return Activity{
		Type:       kind,
		ActorID:    actorID,
		SubjectID:  subjectID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

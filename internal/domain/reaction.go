package domain

import "time"

// TargetType names a reactable collection / Nomme une collection réagissable
type TargetType string

const (
	TargetPost      TargetType = "post"
	TargetSharePost TargetType = "share_post"
)

// IsValid checks target type / Vérifie le type de cible
func (t TargetType) IsValid() bool {
	return t == TargetPost || t == TargetSharePost
}

// Target points to a reactable record / Désigne un enregistrement réagissable
type Target struct {
	Type TargetType
	ID   int64
}

// ReactionKind is an emoji-like reaction / Réaction de type emoji
type ReactionKind string

const (
	ReactionLike  ReactionKind = "like"
	ReactionLove  ReactionKind = "love"
	ReactionLaugh ReactionKind = "laugh"
	ReactionWow   ReactionKind = "wow"
	ReactionSad   ReactionKind = "sad"
	ReactionPray  ReactionKind = "pray"
)

// ReactionKinds lists accepted reactions / Liste les réactions acceptées
func ReactionKinds() []ReactionKind {
	return []ReactionKind{ReactionLike, ReactionLove, ReactionLaugh, ReactionWow, ReactionSad, ReactionPray}
}

// IsValid checks reaction kind / Vérifie le type de réaction
func (k ReactionKind) IsValid() bool {
	for _, known := range ReactionKinds() {
		if k == known {
			return true
		}
	}
	return false
}

// ValidateReaction checks a reaction request / Vérifie une demande de réaction
func ValidateReaction(kind ReactionKind) error {
	if !kind.IsValid() {
		return NewValidationError("kind", "unknown reaction kind")
	}
	return nil
}

// ReactionCounts maps kinds to totals / Associe chaque réaction à son total
type ReactionCounts map[ReactionKind]int

// Total sums every reaction / Additionne toutes les réactions
func (c ReactionCounts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// ViewerState is what the current member did on a record / Ce que le membre courant a fait sur l'enregistrement
type ViewerState struct {
	Reactions  []ReactionKind
	Bookmarked bool
}

// Bookmark is a saved record / Enregistrement sauvegardé
type Bookmark struct {
	Target    Target
	UserID    int64
	CreatedAt time.Time
}

// Bookmarks groups a member's saved records / Regroupe les favoris d'un membre
type Bookmarks struct {
	Posts      []*Post
	SharePosts []*SharePost
}

package domain

import (
	"strings"
	"time"
)

// UserSummary is the author view embedded in records / Vue auteur embarquée dans les enregistrements
type UserSummary struct {
	ID          int64
	DisplayName string
	AvatarURL   string
}

// ProfileUpdate is a partial profile change / Modification partielle du profil
type ProfileUpdate struct {
	DisplayName   *string
	Bio           *string
	AvatarURL     *string
	Birthday      *time.Time
	ClearBirthday bool
}

// Normalize trims text fields / Nettoie les champs texte
func (p *ProfileUpdate) Normalize() {
	trim(p.DisplayName)
	trim(p.Bio)
	trim(p.AvatarURL)
}

// Validate checks profile fields / Vérifie les champs du profil
func (p ProfileUpdate) Validate() error {
	var v validator
	if p.DisplayName != nil {
		v.required("display_name", *p.DisplayName)
		v.maxLen("display_name", *p.DisplayName, MaxDisplayNameLength)
	}
	if p.Bio != nil {
		v.maxLen("bio", *p.Bio, MaxBioLength)
	}
	if p.AvatarURL != nil {
		v.link("avatar_url", *p.AvatarURL, true)
	}
	if p.Birthday != nil && p.Birthday.After(time.Now()) {
		v.add("birthday", "birthday cannot be in the future")
	}
	return v.err()
}

// IsEmpty reports whether nothing changes / Indique si rien ne change
func (p ProfileUpdate) IsEmpty() bool {
	return p.DisplayName == nil && p.Bio == nil && p.AvatarURL == nil && p.Birthday == nil && !p.ClearBirthday
}

// ProfileStats counts a member's content / Compte le contenu d'un membre
type ProfileStats struct {
	Posts            int
	Goals            int
	CompletedGoals   int
	OpenHelpRequests int
	SharePosts       int
}

// Profile is the profile page of a member / Page de profil d'un membre
type Profile struct {
	User        *User
	Stats       ProfileStats
	RecentPosts []*Post
	OpenGoals   []*Goal
}

func trim(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}

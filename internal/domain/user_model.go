package domain

import (
	"strings"
	"time"
)

// UserRole represents user's role for authorization / Représente le rôle utilisateur pour l'autorisation
type UserRole string

const (
	RoleUser      UserRole = "user"      // Default family member / Membre de la famille par défaut
	RoleModerator UserRole = "moderator" // Can moderate family content / Peut modérer le contenu familial
	RoleAdmin     UserRole = "admin"     // Full admin access / Accès administrateur complet
)

// IsValid checks if role is valid / Vérifie si le rôle est valide
func (r UserRole) IsValid() bool {
	return r == RoleUser || r == RoleModerator || r == RoleAdmin
}

// User represents a family member account / Représente le compte d'un membre de la famille
type User struct {
	BaseModel
	ID                  int64
	Email               string
	Password            string // Hashed password / Mot de passe haché
	Role                UserRole
	DisplayName         string
	Bio                 string
	AvatarURL           string
	Birthday            *time.Time
	FailedLoginAttempts int        // Failed login counter / Compteur d'échecs de connexion
	LockedUntil         *time.Time // Account lock expiry / Expiration du verrouillage du compte
	Token               *RefreshToken
}

// LockedFor returns how long the account stays locked, zero when it is open / Durée restante du verrouillage
func (u *User) LockedFor(now time.Time) time.Duration {
	if u.LockedUntil == nil || !now.Before(*u.LockedUntil) {
		return 0
	}
	return u.LockedUntil.Sub(now)
}

// IsLocked checks if account is locked / Vérifie si le compte est verrouillé
func (u *User) IsLocked() bool {
	return u.LockedFor(time.Now()) > 0
}

// Actor returns the user as request actor / Retourne l'utilisateur en tant qu'acteur
func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Role: u.Role}
}

// Summary returns the embeddable author view / Retourne la vue auteur embarquée
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, DisplayName: u.DisplayName, AvatarURL: u.AvatarURL}
}

// DefaultDisplayName derives a display name from an email / Dérive un nom affiché depuis un email
func DefaultDisplayName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	local = strings.TrimSpace(local)
	if local == "" {
		return "member"
	}
	return truncateRunes(local, MaxDisplayNameLength)
}

// RefreshToken represents refresh token entity / Représente l'entité refresh token
type RefreshToken struct {
	Token     string // Hashed token value / Valeur du token hachée
	UserID    int64
	IssueAt   time.Time
	ExpiresAt time.Time
	IsRevoked bool
	IPHash    string // SHA-256 hash of client IP / Hash SHA-256 de l'IP client
	UAHash    string // SHA-256 hash of User-Agent / Hash SHA-256 du User-Agent
}

// Usable reports whether the token may still be exchanged / Indique si le token peut encore être échangé
func (rt *RefreshToken) Usable(now time.Time) bool {
	return !rt.IsRevoked && now.Before(rt.ExpiresAt)
}

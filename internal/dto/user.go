package dto

import (
	"time"

	"github.com/Olprog59/go-familyhub/internal/domain"
)

// UserDTOResponse is the public view of a member / Vue publique d'un membre
type UserDTOResponse struct {
	ID          int64     `json:"id"`                   // User unique identifier / Identifiant unique de l'utilisateur
	Email       string    `json:"email,omitempty"`      // Only sent to the member and admins / Envoyé seulement au membre et aux admins
	Role        string    `json:"role"`                 // User role / Rôle de l'utilisateur
	DisplayName string    `json:"display_name"`         // Shown name / Nom affiché
	Bio         string    `json:"bio,omitempty"`        // Short presentation / Courte présentation
	AvatarURL   string    `json:"avatar_url,omitempty"` // Avatar link / Lien de l'avatar
	Birthday    *Date     `json:"birthday,omitempty"`   // Birthday date / Date d'anniversaire
	CreatedAt   time.Time `json:"created_at"`
}

// UserSummaryDTO is the author block embedded in records / Bloc auteur embarqué dans les enregistrements
type UserSummaryDTO struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// UserDTOReq is DTO for login requests / Est le DTO pour les demandes de connexion
type UserDTOReq struct {
	Username string `json:"email,omitempty"`    // User email / Email de l'utilisateur
	Password string `json:"password,omitempty"` // User password / Mot de passe de l'utilisateur
}

// RegisterDTOReq is DTO for registration / Est le DTO pour l'inscription
type RegisterDTOReq struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name,omitempty"` // Defaults to the email local part / Par défaut la partie locale de l'email
}

// ProfileUpdateDTOReq is a partial profile change / Modification partielle du profil
type ProfileUpdateDTOReq struct {
	DisplayName   *string `json:"display_name"`
	Bio           *string `json:"bio"`
	AvatarURL     *string `json:"avatar_url"`
	Birthday      *Date   `json:"birthday"`
	ClearBirthday bool    `json:"clear_birthday"`
}

// ToDomain converts the request / Convertit la requête
func (r ProfileUpdateDTOReq) ToDomain() domain.ProfileUpdate {
	return domain.ProfileUpdate{
		DisplayName:   r.DisplayName,
		Bio:           r.Bio,
		AvatarURL:     r.AvatarURL,
		Birthday:      r.Birthday.TimePtr(),
		ClearBirthday: r.ClearBirthday,
	}
}

// RoleDTOReq carries a new role / Contient le nouveau rôle
type RoleDTOReq struct {
	Role string `json:"role"`
}

// RolePermissionsDTOResponse lists a role's permissions / Liste les permissions d'un rôle
type RolePermissionsDTOResponse struct {
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// ProfileStatsDTO counts a member's content / Compte le contenu d'un membre
type ProfileStatsDTO struct {
	Posts            int `json:"posts"`
	Goals            int `json:"goals"`
	CompletedGoals   int `json:"completed_goals"`
	OpenHelpRequests int `json:"open_help_requests"`
	SharePosts       int `json:"share_posts"`
}

// ProfileDTOResponse is a profile page / Page de profil
type ProfileDTOResponse struct {
	User        UserDTOResponse   `json:"user"`
	Stats       ProfileStatsDTO   `json:"stats"`
	RecentPosts []PostDTOResponse `json:"recent_posts"`
	OpenGoals   []GoalDTOResponse `json:"open_goals"`
}

// StatsDTOResponse is the family dashboard / Tableau de bord de la famille
type StatsDTOResponse struct {
	TotalUsers int            `json:"total_users"`
	Roles      map[string]int `json:"roles"`
	Content    map[string]int `json:"content"`
}

// UserToDTO converts domain.User, hiding the email unless asked / Convertit domain.User, masque l'email sauf demande
func UserToDTO(user *domain.User, withEmail bool) UserDTOResponse {
	out := UserDTOResponse{
		ID:          user.ID,
		Role:        string(user.Role),
		DisplayName: user.DisplayName,
		Bio:         user.Bio,
		AvatarURL:   user.AvatarURL,
		Birthday:    DateFromPtr(user.Birthday),
		CreatedAt:   user.CreatedAt,
	}
	if withEmail {
		out.Email = user.Email
	}
	return out
}

// UserLoginToDTO converts the logged-in user / Convertit l'utilisateur connecté
func UserLoginToDTO(user *domain.User) UserDTOResponse {
	return UserToDTO(user, true)
}

// SummaryToDTO converts an embedded author / Convertit un auteur embarqué
func SummaryToDTO(s domain.UserSummary) UserSummaryDTO {
	return UserSummaryDTO{ID: s.ID, DisplayName: s.DisplayName, AvatarURL: s.AvatarURL}
}

// ProfileToDTO converts a profile page / Convertit une page de profil
func ProfileToDTO(p *domain.Profile, withEmail bool) ProfileDTOResponse {
	return ProfileDTOResponse{
		User: UserToDTO(p.User, withEmail),
		Stats: ProfileStatsDTO{
			Posts:            p.Stats.Posts,
			Goals:            p.Stats.Goals,
			CompletedGoals:   p.Stats.CompletedGoals,
			OpenHelpRequests: p.Stats.OpenHelpRequests,
			SharePosts:       p.Stats.SharePosts,
		},
		RecentPosts: Map(p.RecentPosts, PostToDTO),
		OpenGoals:   Map(p.OpenGoals, GoalToDTO),
	}
}

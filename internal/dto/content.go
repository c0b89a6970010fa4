package dto

import (
	"time"

	"github.com/Olprog59/go-familyhub/internal/domain"
)

// ViewerDTO is what the current member did on a record / Ce que le membre courant a fait
type ViewerDTO struct {
	Reactions  []string `json:"reactions"`
	Bookmarked bool     `json:"bookmarked"`
}

// PostDTOReq is DTO for new posts / Est le DTO des nouveaux posts
type PostDTOReq struct {
	Content  string `json:"content"`
	ImageURL string `json:"image_url,omitempty"`
}

// ToDomain converts the request / Convertit la requête
func (r PostDTOReq) ToDomain() domain.PostInput {
	return domain.PostInput{Content: r.Content, ImageURL: r.ImageURL}
}

// PostPatchDTOReq is a partial post change / Modification partielle d'un post
type PostPatchDTOReq struct {
	Content  *string `json:"content"`
	ImageURL *string `json:"image_url"`
}

// ToDomain converts the request / Convertit la requête
func (r PostPatchDTOReq) ToDomain() domain.PostPatch {
	return domain.PostPatch{Content: r.Content, ImageURL: r.ImageURL}
}

// PostDTOResponse is a feed post / Post du fil
type PostDTOResponse struct {
	ID           int64          `json:"id"`
	Author       UserSummaryDTO `json:"author"`
	Content      string         `json:"content"`
	ImageURL     string         `json:"image_url,omitempty"`
	CommentCount int            `json:"comment_count"`
	Reactions    map[string]int `json:"reactions"`
	Viewer       ViewerDTO      `json:"viewer"`
	Edited       bool           `json:"edited"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// PostToDTO converts domain.Post / Convertit domain.Post
func PostToDTO(p *domain.Post) PostDTOResponse {
	return PostDTOResponse{
		ID:           p.ID,
		Author:       SummaryToDTO(p.Author),
		Content:      p.Content,
		ImageURL:     p.ImageURL,
		CommentCount: p.CommentCount,
		Reactions:    CountsToDTO(p.Reactions),
		Viewer:       ViewerToDTO(p.Viewer),
		Edited:       p.WasEdited(),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// CommentDTOReq carries comment text / Contient le texte du commentaire
type CommentDTOReq struct {
	Content string `json:"content"`
}

// ToDomain converts the request / Convertit la requête
func (r CommentDTOReq) ToDomain() domain.CommentInput {
	return domain.CommentInput{Content: r.Content}
}

// CommentDTOResponse is a comment under a post / Commentaire sous un post
type CommentDTOResponse struct {
	ID        int64          `json:"id"`
	PostID    int64          `json:"post_id"`
	Author    UserSummaryDTO `json:"author"`
	Content   string         `json:"content"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// CommentToDTO converts domain.Comment / Convertit domain.Comment
func CommentToDTO(c *domain.Comment) CommentDTOResponse {
	return CommentDTOResponse{
		ID:        c.ID,
		PostID:    c.PostID,
		Author:    SummaryToDTO(c.Author),
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// ReactionsDTOResponse is returned after a reaction change / Retourné après une réaction
type ReactionsDTOResponse struct {
	Reactions map[string]int `json:"reactions"`
	Total     int            `json:"total"`
}

// ReactionsToDTO converts reaction totals / Convertit les totaux de réactions
func ReactionsToDTO(c domain.ReactionCounts) ReactionsDTOResponse {
	return ReactionsDTOResponse{Reactions: CountsToDTO(c), Total: c.Total()}
}

// BookmarksDTOResponse lists saved records / Liste les favoris
type BookmarksDTOResponse struct {
	Posts      []PostDTOResponse      `json:"posts"`
	SharePosts []SharePostDTOResponse `json:"share_posts"`
}

// CountsToDTO turns reaction counts into a plain map / Transforme les compteurs en map simple
func CountsToDTO(c domain.ReactionCounts) map[string]int {
	out := make(map[string]int, len(c))
	for kind, n := range c {
		out[string(kind)] = n
	}
	return out
}

// ViewerToDTO converts viewer flags / Convertit l'état du lecteur
func ViewerToDTO(v domain.ViewerState) ViewerDTO {
	out := ViewerDTO{Reactions: make([]string, 0, len(v.Reactions)), Bookmarked: v.Bookmarked}
	for _, kind := range v.Reactions {
		out.Reactions = append(out.Reactions, string(kind))
	}
	return out
}

// SharePostDTOReq is DTO for new share posts / Est le DTO des nouveaux partages
type SharePostDTOReq struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
	Category    string `json:"category,omitempty"`
}

// ToDomain converts the request / Convertit la requête
func (r SharePostDTOReq) ToDomain() domain.SharePostInput {
	return domain.SharePostInput{Title: r.Title, Description: r.Description, URL: r.URL, Category: r.Category}
}

// SharePostPatchDTOReq is a partial share post change / Modification partielle d'un partage
type SharePostPatchDTOReq struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	URL         *string `json:"url"`
	Category    *string `json:"category"`
}

// ToDomain converts the request / Convertit la requête
func (r SharePostPatchDTOReq) ToDomain() domain.SharePostPatch {
	return domain.SharePostPatch{Title: r.Title, Description: r.Description, URL: r.URL, Category: r.Category}
}

// SharePostDTOResponse is a shared link or tip / Lien ou astuce partagé
type SharePostDTOResponse struct {
	ID          int64          `json:"id"`
	Author      UserSummaryDTO `json:"author"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	URL         string         `json:"url,omitempty"`
	Category    string         `json:"category,omitempty"`
	ShareURL    string         `json:"share_url,omitempty"`
	Reactions   map[string]int `json:"reactions"`
	Viewer      ViewerDTO      `json:"viewer"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// SharePostToDTO converts domain.SharePost / Convertit domain.SharePost
func SharePostToDTO(s *domain.SharePost) SharePostDTOResponse {
	return SharePostDTOResponse{
		ID:          s.ID,
		Author:      SummaryToDTO(s.Author),
		Title:       s.Title,
		Description: s.Description,
		URL:         s.URL,
		Category:    s.Category,
		Reactions:   CountsToDTO(s.Reactions),
		Viewer:      ViewerToDTO(s.Viewer),
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// MediaDTOResponse is an uploaded file / Fichier téléversé
type MediaDTOResponse struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
}

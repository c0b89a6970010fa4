package domain

import "strings"

// Post is a message on the family feed / Message du fil familial
type Post struct {
	BaseModel
	ID           int64
	Author       UserSummary
	Content      string
	ImageURL     string
	CommentCount int
	Reactions    ReactionCounts
	Viewer       ViewerState
}

// PostInput holds fields for a new post / Champs d'un nouveau post
type PostInput struct {
	Content  string
	ImageURL string
}

// Normalize trims input / Nettoie la saisie
func (in *PostInput) Normalize() {
	in.Content = strings.TrimSpace(in.Content)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
}

// Validate checks post fields / Vérifie les champs du post
func (in PostInput) Validate() error {
	var v validator
	v.required("content", in.Content)
	v.maxLen("content", in.Content, MaxPostLength)
	v.link("image_url", in.ImageURL, true)
	return v.err()
}

// PostPatch is a partial post change / Modification partielle d'un post
type PostPatch struct {
	Content  *string
	ImageURL *string
}

// Normalize trims input / Nettoie la saisie
func (p *PostPatch) Normalize() {
	trim(p.Content)
	trim(p.ImageURL)
}

// Validate checks provided fields / Vérifie les champs fournis
func (p PostPatch) Validate() error {
	var v validator
	if p.Content != nil {
		v.required("content", *p.Content)
		v.maxLen("content", *p.Content, MaxPostLength)
	}
	if p.ImageURL != nil {
		v.link("image_url", *p.ImageURL, true)
	}
	return v.err()
}

// Apply copies patched fields onto the post / Applique les champs modifiés
func (p PostPatch) Apply(post *Post) {
	if p.Content != nil {
		post.Content = *p.Content
	}
	if p.ImageURL != nil {
		post.ImageURL = *p.ImageURL
	}
}

// PostFilter narrows post listings / Filtre les listes de posts
type PostFilter struct {
	AuthorID     int64
	Query        string
	BookmarkedBy int64
	Page         Page
}

// Comment is a reply under a post / Réponse sous un post
type Comment struct {
	BaseModel
	ID      int64
	PostID  int64
	Author  UserSummary
	Content string
}

// CommentInput holds comment text / Texte d'un commentaire
type CommentInput struct {
	Content string
}

// Normalize trims input / Nettoie la saisie
func (in *CommentInput) Normalize() {
	in.Content = strings.TrimSpace(in.Content)
}

// Validate checks comment fields / Vérifie les champs du commentaire
func (in CommentInput) Validate() error {
	var v validator
	v.required("content", in.Content)
	v.maxLen("content", in.Content, MaxCommentLength)
	return v.err()
}

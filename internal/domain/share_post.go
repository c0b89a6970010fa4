package domain

import "strings"

// SharePost is a shared link or tip / Lien ou astuce partagé
type SharePost struct {
	BaseModel
	ID          int64
	Author      UserSummary
	Title       string
	Description string
	URL         string
	Category    string
	Reactions   ReactionCounts
	Viewer      ViewerState
}

// SharePostInput holds share post fields / Champs d'un partage
type SharePostInput struct {
	Title       string
	Description string
	URL         string
	Category    string
}

// Normalize trims input and lower-cases the category / Nettoie la saisie et met la catégorie en minuscules
func (in *SharePostInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.URL = strings.TrimSpace(in.URL)
	in.Category = strings.ToLower(strings.TrimSpace(in.Category))
}

// Validate checks share post fields / Vérifie les champs du partage
func (in SharePostInput) Validate() error {
	var v validator
	v.required("title", in.Title)
	v.maxLen("title", in.Title, MaxTitleLength)
	v.maxLen("description", in.Description, MaxDescriptionLength)
	v.maxLen("category", in.Category, MaxCategoryLength)
	v.link("url", in.URL, false)
	return v.err()
}

// SharePostPatch is a partial share post change / Modification partielle d'un partage
type SharePostPatch struct {
	Title       *string
	Description *string
	URL         *string
	Category    *string
}

// Merge produces the full input after the patch / Produit la saisie complète après modification
func (p SharePostPatch) Merge(s *SharePost) SharePostInput {
	in := SharePostInput{Title: s.Title, Description: s.Description, URL: s.URL, Category: s.Category}
	if p.Title != nil {
		in.Title = *p.Title
	}
	if p.Description != nil {
		in.Description = *p.Description
	}
	if p.URL != nil {
		in.URL = *p.URL
	}
	if p.Category != nil {
		in.Category = *p.Category
	}
	in.Normalize()
	return in
}

// SharePostFilter narrows share post listings / Filtre les listes de partages
type SharePostFilter struct {
	AuthorID int64
	Category string
	Query    string
	Page     Page
}

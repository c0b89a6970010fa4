package domain

import (
	"errors"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Field limits / Limites des champs
const (
	MaxDisplayNameLength = 80
	MaxBioLength         = 500
	MaxTitleLength       = 200
	MaxDescriptionLength = 2000
	MaxLocationLength    = 200
	MaxPostLength        = 5000
	MaxCommentLength     = 2000
	MaxCategoryLength    = 40
	MaxUnitLength        = 20
	MaxURLLength         = 2048
)

// MediaPathPrefix is the public prefix of uploaded files / Préfixe public des fichiers téléversés
const MediaPathPrefix = "/media/"

// ValidationError lists invalid fields with their message / Liste les champs invalides et leur message
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsValidationError extracts a ValidationError / Extrait une ValidationError
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// NewValidationError builds a single-field error / Construit une erreur sur un seul champ
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// validator accumulates field errors, first message wins / Accumule les erreurs, le premier message gagne
type validator struct {
	fields map[string]string
}

func (v *validator) add(field, message string) {
	if v.fields == nil {
		v.fields = make(map[string]string)
	}
	if _, exists := v.fields[field]; !exists {
		v.fields[field] = message
	}
}

func (v *validator) required(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.add(field, field+" is required")
	}
}

func (v *validator) maxLen(field, value string, limit int) {
	if utf8.RuneCountInString(value) > limit {
		v.add(field, field+" must be at most "+strconv.Itoa(limit)+" characters")
	}
}

// link accepts http(s) URLs and uploaded media paths / Accepte les URLs http(s) et les chemins média
func (v *validator) link(field, value string, allowMedia bool) {
	if value == "" {
		return
	}
	if len(value) > MaxURLLength {
		v.add(field, field+" is too long")
		return
	}
	if allowMedia && strings.HasPrefix(value, MediaPathPrefix) && len(value) > len(MediaPathPrefix) {
		return
	}
	u, err := url.Parse(value)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		v.add(field, field+" must be a valid http(s) URL")
	}
}

func (v *validator) err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: v.fields}
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}

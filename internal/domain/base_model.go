package domain

import "time"

// BaseModel provides common fields for domain models / Fournit les champs communs aux modèles
type BaseModel struct {
	CreatedAt time.Time  // Record creation time / Heure de création de l'enregistrement
	UpdatedAt time.Time  // Record last update time / Heure de dernière mise à jour
	DeletedAt *time.Time // Soft delete timestamp / Horodatage de suppression logique
}

// IsDeleted checks if soft-deleted / Vérifie si supprimé (soft delete)
func (bm *BaseModel) IsDeleted() bool {
	return bm.DeletedAt != nil
}

// WasEdited reports whether the record changed after creation / Indique si l'enregistrement a été modifié
func (bm *BaseModel) WasEdited() bool {
	return bm.UpdatedAt.After(bm.CreatedAt)
}

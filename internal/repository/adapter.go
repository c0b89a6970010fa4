package repository

import (
	"strings"

	"github.com/Olprog59/go-familyhub/internal/ports"
	"github.com/Olprog59/go-familyhub/internal/repository/mysql"
	"github.com/Olprog59/go-familyhub/internal/repository/postgres"
	"github.com/Olprog59/go-familyhub/internal/repository/sqlite"
	"github.com/Olprog59/go-familyhub/internal/repository/sqlstore"
	"github.com/jmoiron/sqlx"
)

// Compile-time checks / Vérifications à la compilation
var (
	_ DatabaseFactory = (*sqlite.Factory)(nil)
	_ DatabaseFactory = (*mysql.Factory)(nil)
	_ DatabaseFactory = (*postgres.Factory)(nil)
)

// factoryRegistry holds all database factories / Registre de toutes les factories de BD
// No switch statements - just a map lookup / Pas de switch - juste une recherche dans la map
var factoryRegistry = map[string]DatabaseFactory{
	"sqlite":     &sqlite.Factory{},
	"sqlite3":    &sqlite.Factory{},
	"mysql":      &mysql.Factory{},
	"postgres":   &postgres.Factory{},
	"postgresql": &postgres.Factory{},
}

// Adapter adapts database connection to repositories / Adapte la connexion BD vers les repositories
type Adapter struct {
	db      *sqlx.DB
	dialect sqlstore.Dialect
}

// NewAdapter creates repository adapter / Crée l'adapteur de repositories
func NewAdapter(db *sqlx.DB, driver string) *Adapter {
	factory := factoryRegistry[strings.ToLower(driver)]
	if factory == nil {
		factory = &sqlite.Factory{} // default fallback
	}

	return &Adapter{
		db:      db,
		dialect: factory.Dialect(),
	}
}

// Dialect returns the dialect in use / Retourne le dialecte utilisé
func (a *Adapter) Dialect() sqlstore.Dialect {
	return a.dialect
}

// UserRepository returns user repository / Retourne le repository utilisateur
func (a *Adapter) UserRepository() ports.UserRepository {
	return sqlstore.NewUserRepository(a.db, a.dialect)
}

// RefreshTokenStore returns refresh token store / Retourne le store de refresh tokens
func (a *Adapter) RefreshTokenStore() ports.RefreshTokenStore {
	return sqlstore.NewRefreshTokenStore(a.db, a.dialect)
}

// PostRepository returns post repository / Retourne le repository des posts
func (a *Adapter) PostRepository() ports.PostRepository {
	return sqlstore.NewPostRepository(a.db, a.dialect)
}

// CommentRepository returns comment repository / Retourne le repository des commentaires
func (a *Adapter) CommentRepository() ports.CommentRepository {
	return sqlstore.NewCommentRepository(a.db, a.dialect)
}

// EventRepository returns calendar repository / Retourne le repository du calendrier
func (a *Adapter) EventRepository() ports.EventRepository {
	return sqlstore.NewEventRepository(a.db, a.dialect)
}

// GoalRepository returns goal repository / Retourne le repository des objectifs
func (a *Adapter) GoalRepository() ports.GoalRepository {
	return sqlstore.NewGoalRepository(a.db, a.dialect)
}

// HelpRequestRepository returns help request repository / Retourne le repository des demandes d'aide
func (a *Adapter) HelpRequestRepository() ports.HelpRequestRepository {
	return sqlstore.NewHelpRequestRepository(a.db, a.dialect)
}

// SharePostRepository returns share post repository / Retourne le repository des partages
func (a *Adapter) SharePostRepository() ports.SharePostRepository {
	return sqlstore.NewSharePostRepository(a.db, a.dialect)
}

// ReactionRepository returns reaction repository / Retourne le repository des réactions
func (a *Adapter) ReactionRepository() ports.ReactionRepository {
	return sqlstore.NewReactionRepository(a.db, a.dialect)
}

package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Olprog59/go-familyhub/internal/domain"
	"github.com/Olprog59/go-familyhub/internal/dto"
	"github.com/Olprog59/go-familyhub/internal/service"
	"github.com/Olprog59/go-familyhub/internal/service/auth"
)

const registrationMessage = "Registration successful. You can now log in."

// clientHashes binds tokens to the client IP and User-Agent / Lie les tokens à l'IP et au User-Agent
func (h *Handler) clientHashes(r *http.Request) (ipHash, uaHash string) {
	return fingerprint(h.proxies.clientIP(r)), fingerprint(r.Header.Get("User-Agent"))
}

// setCookie writes a cookie with the configured scope / Écrit un cookie avec la portée configurée
func (h *Handler) setCookie(w http.ResponseWriter, name, value string, maxAge int, httpOnly bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     h.container.Config.Auth.CookiePath,
		MaxAge:   maxAge,
		HttpOnly: httpOnly,
		Secure:   h.container.Config.Auth.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		Domain:   h.container.Config.Auth.CookieDomain,
	})
}

const (
	accessCookie  = "access_token"
	refreshCookie = "refresh_token"
)

// startSession writes the token cookies and a fresh CSRF cookie.
// The CSRF cookie stays readable so the client can echo it in X-CSRF-Token.
func (h *Handler) startSession(w http.ResponseWriter, pair *auth.TokenPair) error {
	conf := h.container.Config.Auth
	h.setCookie(w, accessCookie, pair.AccessToken, int(conf.AccessTokenDuration.Seconds()), true)
	h.setCookie(w, refreshCookie, pair.RefreshToken, int(conf.RefreshTokenDuration.Seconds()), true)
	return h.rotateCSRF(w)
}

// rotateCSRF replaces the CSRF cookie / Remplace le cookie CSRF
func (h *Handler) rotateCSRF(w http.ResponseWriter) error {
	token, err := newCSRFToken()
	if err != nil {
		return err
	}
	h.setCookie(w, csrfCookieName, token, int(h.container.Config.Auth.RefreshTokenDuration.Seconds()), false)
	return nil
}

// endSession expires every session cookie / Expire tous les cookies de session
func (h *Handler) endSession(w http.ResponseWriter) {
	h.setCookie(w, accessCookie, "", -1, true)
	h.setCookie(w, refreshCookie, "", -1, true)
	h.setCookie(w, csrfCookieName, "", -1, false)
}

// loginOutcome labels a failed login for metrics, "" means unexpected
func loginOutcome(err error) string {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return "failure"
	case errors.Is(err, service.ErrAccountLocked):
		return "locked"
	}
	return ""
}

// Login checks credentials and opens a session / Vérifie les identifiants et ouvre une session
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.UserDTOReq
	if !decodeJSON(w, r, &req) {
		return
	}

	ipHash, uaHash := h.clientHashes(r)
	user, pair, err := h.container.AuthSvc.Login(r.Context(), req.Username, req.Password, ipHash, uaHash)
	if err != nil {
		outcome := loginOutcome(err)
		if outcome == "" {
			slog.Error("login failed", "err", err)
			ErrorResponse(w, "authentication failed", http.StatusInternalServerError)
			return
		}
		h.container.Metrics.RecordLoginAttempt(outcome)
		ErrorResponse(w, err.Error(), http.StatusUnauthorized)
		return
	}

	if err := h.startSession(w, pair); err != nil {
		slog.Error("start session", "user_id", user.ID, "err", err)
		ErrorResponse(w, "internal server error", http.StatusInternalServerError)
		return
	}
	h.container.Metrics.RecordLoginAttempt("success")

	jsonResponse(w, dto.UserLoginToDTO(user))
}

// Register handles new user registration / Gère l'inscription des utilisateurs
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterDTOReq
	if !decodeJSON(w, r, &req) {
		return
	}

	_, err := h.container.UserSvc.Register(r.Context(), req.Email, req.Password, req.DisplayName)
	switch {
	case err == nil:
		h.container.Metrics.RecordRegistration()
	case errors.Is(err, service.ErrEmailTaken):
		// Same answer as a success to prevent email enumeration / Même réponse pour éviter l'énumération
	default:
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"message": registrationMessage})
}

// RefreshToken trades a refresh token for a new pair / Échange un refresh token contre une nouvelle paire
// The token comes from the body or the cookie, the old one is revoked with the same transaction.
func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if r.ContentLength != 0 {
		if !decodeJSON(w, r, &req) {
			return
		}
	}
	if req.RefreshToken == "" {
		if cookie, err := r.Cookie(refreshCookie); err == nil {
			req.RefreshToken = cookie.Value
		}
	}
	if req.RefreshToken == "" {
		ErrorResponse(w, "refresh token required", http.StatusBadRequest)
		return
	}

	ipHash, uaHash := h.clientHashes(r)
	tokenPair, err := h.container.AuthSvc.RefreshToken(r.Context(), req.RefreshToken, ipHash, uaHash)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTokenBinding):
			h.container.Metrics.RecordTokenRefresh("binding_failure")
			h.container.Metrics.RecordTokenBindingFailure()
		case errors.Is(err, service.ErrExpiredRefreshToken), errors.Is(err, service.ErrRevokedRefreshToken):
			h.container.Metrics.RecordTokenRefresh("expired")
		default:
			h.container.Metrics.RecordTokenRefresh("invalid")
		}
		ErrorResponse(w, "invalid refresh token", http.StatusUnauthorized)
		return
	}

	h.container.Metrics.RecordTokenRefresh("success")
	conf := h.container.Config.Auth
	h.setCookie(w, accessCookie, tokenPair.AccessToken, int(conf.AccessTokenDuration.Seconds()), true)
	h.setCookie(w, refreshCookie, tokenPair.RefreshToken, int(conf.RefreshTokenDuration.Seconds()), true)

	jsonResponse(w, tokenPair)
}

// Me returns current user details / Retourne les détails de l'utilisateur courant
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	actor := ActorFromContext(r.Context())

	user, err := h.container.UserSvc.GetUser(r.Context(), actor.ID)
	if err != nil {
		ErrorResponse(w, "User not found", http.StatusUnauthorized)
		return
	}

	jsonResponse(w, dto.UserLoginToDTO(user))
}

// UpdateMe changes the current member's profile / Modifie le profil du membre courant
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req dto.ProfileUpdateDTOReq
	if !decodeJSON(w, r, &req) {
		return
	}

	actor := ActorFromContext(r.Context())
	user, err := h.container.UserSvc.UpdateProfile(r.Context(), actor, actor.ID, req.ToDomain())
	if err != nil {
		respondError(w, r, err)
		return
	}

	jsonResponse(w, dto.UserLoginToDTO(user))
}

// MyBookmarks lists the current member's saved records / Liste les favoris du membre courant
func (h *Handler) MyBookmarks(w http.ResponseWriter, r *http.Request) {
	actor := ActorFromContext(r.Context())

	bookmarks, err := h.container.ReactionSvc.ListBookmarks(r.Context(), actor.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	jsonResponse(w, dto.BookmarksDTOResponse{
		Posts:      dto.Map(bookmarks.Posts, dto.PostToDTO),
		SharePosts: dto.Map(bookmarks.SharePosts, h.sharePostToDTO),
	})
}

// ListFamily returns the family directory / Retourne l'annuaire de la famille
func (h *Handler) ListFamily(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)

	users, total, err := h.container.UserSvc.ListUsers(r.Context(), page.Offset, page.Limit)
	if err != nil {
		respondError(w, r, err)
		return
	}

	jsonResponse(w, dto.NewList(users, publicUserDTO, page, total))
}

func publicUserDTO(u *domain.User) dto.UserDTOResponse {
	return dto.UserToDTO(u, false)
}

// GetProfile returns a member's profile page / Retourne la page de profil d'un membre
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	profile, err := h.container.UserSvc.GetProfile(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	actor := ActorFromContext(r.Context())
	withEmail := actor.Owns(id)
	if !withEmail {
		withEmail, _ = h.container.Access.Has(r.Context(), actor, domain.PermissionUsersRead)
	}

	jsonResponse(w, dto.ProfileToDTO(profile, withEmail))
}

// Logout revokes every refresh token and clears cookies / Révoque tous les refresh tokens et efface les cookies
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.container.AuthSvc.RevokeAllTokens(r.Context(), userID); err != nil {
		slog.Error("failed to revoke tokens during logout", "user_id", userID, "err", err)
		ErrorResponse(w, "Logout failed", http.StatusInternalServerError)
		return
	}

	h.endSession(w)
	jsonResponse(w, map[string]string{"message": "Logged out successfully"})
}

package cache

import "strconv"

// ProfileKey is the cache key of a member's profile page / Clé de cache du profil d'un membre
func ProfileKey(userID int64) string {
	return "profile:" + strconv.FormatInt(userID, 10)
}

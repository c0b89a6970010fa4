package web

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Olprog59/go-familyhub/internal/config"
	"golang.org/x/time/rate"
)

const limiterIdleTTL = 3 * time.Minute

// limitPolicy sizes a bucket and the answer sent once it runs dry.
type limitPolicy struct {
	label      string
	rps        float64
	burst      int
	retryAfter time.Duration
	message    string
}

// limitPolicies derives the four limiters from one configured rate.
// Auth endpoints get half the rate in production, members twice the base.
func limitPolicies(conf *config.Config) (global, strict, member, upload limitPolicy) {
	base := conf.RateLimiter
	busy := "Too many requests. Please try again later."

	global = limitPolicy{"global", base.RPS, base.Burst, time.Minute, busy}
	strict = global
	strict.label = "strict"
	if conf.IsProduction() {
		strict.rps /= 2
		strict.burst = max(2, base.Burst/2)
	}
	member = limitPolicy{"member", base.RPS * 2, base.Burst * 2, time.Minute, busy}
	upload = limitPolicy{"upload", 0.3, 3, 10 * time.Second, "Too many uploads. Please wait a few seconds."}
	return global, strict, member, upload
}

// RateLimiter keeps one token bucket per key / Garde un seau de jetons par clé
// Idle keys are pruned while traffic flows, no goroutine is needed.
type RateLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	limit     rate.Limit
	burst     int
	lastPrune time.Time
	now       func() time.Time
}

type bucket struct {
	limiter *rate.Limiter
	seen    time.Time
}

// NewRateLimiter allows rps tokens per second up to burst / Autorise rps jetons par seconde
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		buckets: make(map[string]*bucket),
		limit:   rate.Limit(rps),
		burst:   burst,
		now:     time.Now,
	}
}

// Allow consumes a token for key / Consomme un jeton pour la clé
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastPrune) >= limiterIdleTTL {
		for k, b := range rl.buckets {
			if now.Sub(b.seen) > limiterIdleTTL {
				delete(rl.buckets, k)
			}
		}
		rl.lastPrune = now
	}

	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.buckets[key] = b
	}
	b.seen = now
	return b.limiter.AllowN(now, 1)
}

func (rl *RateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.buckets)
}

// keyedLimiter pairs a bucket set with its policy / Associe les seaux à leur politique
type keyedLimiter struct {
	policy limitPolicy
	*RateLimiter
}

func newKeyedLimiter(p limitPolicy) *keyedLimiter {
	return &keyedLimiter{policy: p, RateLimiter: NewRateLimiter(p.rps, p.burst)}
}

// limit wraps next, keyFor picks the bucket and may rename the metric label.
func (mw *Middleware) limit(kl *keyedLimiter, keyFor func(*http.Request) (key, label string)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if kl == nil {
				next.ServeHTTP(w, r)
				return
			}
			key, label := keyFor(r)
			if !kl.Allow(key) {
				mw.metrics.RecordRateLimitHit(label)
				tooManyRequests(w, kl.policy)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// byIP keys buckets on the hashed client address / Clé sur l'adresse client hachée
func (mw *Middleware) byIP(label string) func(*http.Request) (string, string) {
	return func(r *http.Request) (string, string) {
		return fingerprint(mw.proxies.clientIP(r)), label
	}
}

// byMember keys on the member id, anonymous calls fall back to the address.
func (mw *Middleware) byMember(r *http.Request) (string, string) {
	if userID, ok := UserIDFromContext(r.Context()); ok {
		return "user:" + strconv.FormatInt(userID, 10), "member"
	}
	return fingerprint(mw.proxies.clientIP(r)), "member_ip"
}

// RateLimit applies the global per-IP limit / Applique la limite globale par IP
func (mw *Middleware) RateLimit(next http.Handler) http.Handler {
	return mw.limit(mw.global, mw.byIP("global"))(next)
}

// RateLimitStrict guards login and registration / Protège la connexion et l'inscription
func (mw *Middleware) RateLimitStrict(next http.Handler) http.Handler {
	return mw.limit(mw.strict, mw.byIP("strict"))(next)
}

// RateLimitUpload applies the media upload limit / Applique la limite des téléversements
func (mw *Middleware) RateLimitUpload(next http.Handler) http.Handler {
	return mw.limit(mw.upload, mw.byIP("upload"))(next)
}

// RateLimitByUser applies the per-member limit / Applique la limite par membre
func (mw *Middleware) RateLimitByUser(next http.Handler) http.Handler {
	return mw.limit(mw.member, mw.byMember)(next)
}

// tooManyRequests answers 429 with Retry-After / Répond 429 avec Retry-After
func tooManyRequests(w http.ResponseWriter, p limitPolicy) {
	seconds := int(math.Ceil(p.retryAfter.Seconds()))
	w.Header().Set("Retry-After", strconv.Itoa(seconds))
	writeJSON(w, http.StatusTooManyRequests, map[string]any{
		"error":               "rate_limit_exceeded",
		"message":             p.message,
		"retry_after_seconds": seconds,
	})
}

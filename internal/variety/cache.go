package variety

import (
	"strings"
	"sync"
	"time"

	"github.com/claude/repcoach/internal/models"
)

// Default cache lifetimes.
const (
	DefaultPreferencesTTL = 2 * time.Minute
	DefaultUsageTTL       = 30 * time.Second
)

// Cache holds per-user preferences and usage between requests. A stale entry
// can only make selection less varied; it never feeds a safety decision.
type Cache interface {
	Preferences(userID int) (models.VarietyPreferences, bool)
	SetPreferences(userID int, p models.VarietyPreferences)
	Usage(userID int, muscle string) ([]models.UsageRecord, bool)
	SetUsage(userID int, muscle string, usage []models.UsageRecord)
	// Invalidate drops everything cached for the user.
	Invalidate(userID int)
}

// NopCache never stores anything.
type NopCache struct{}

func (NopCache) Preferences(int) (models.VarietyPreferences, bool) {
	return models.VarietyPreferences{}, false
}
func (NopCache) SetPreferences(int, models.VarietyPreferences)  {}
func (NopCache) Usage(int, string) ([]models.UsageRecord, bool) { return nil, false }
func (NopCache) SetUsage(int, string, []models.UsageRecord)     {}
func (NopCache) Invalidate(int)                                 {}

type prefEntry struct {
	prefs   models.VarietyPreferences
	expires time.Time
}

type usageKey struct {
	userID int
	muscle string
}

type usageEntry struct {
	usage   []models.UsageRecord
	expires time.Time
}

// TTLCache is an in-memory Cache with separate lifetimes for preferences and
// usage. Concurrent writers for the same key are last-write-wins.
type TTLCache struct {
	mu       sync.Mutex
	prefTTL  time.Duration
	usageTTL time.Duration
	now      func() time.Time
	prefs    map[int]prefEntry
	usage    map[usageKey]usageEntry
}

// NewTTLCache creates a cache. Zero TTLs use the defaults; a nil clock uses
// time.Now.
func NewTTLCache(prefTTL, usageTTL time.Duration, now func() time.Time) *TTLCache {
	if prefTTL <= 0 {
		prefTTL = DefaultPreferencesTTL
	}
	if usageTTL <= 0 {
		usageTTL = DefaultUsageTTL
	}
	if now == nil {
		now = time.Now
	}
	return &TTLCache{
		prefTTL:  prefTTL,
		usageTTL: usageTTL,
		now:      now,
		prefs:    make(map[int]prefEntry),
		usage:    make(map[usageKey]usageEntry),
	}
}

func (c *TTLCache) Preferences(userID int) (models.VarietyPreferences, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.prefs[userID]
	if !ok {
		return models.VarietyPreferences{}, false
	}
	if !c.now().Before(e.expires) {
		delete(c.prefs, userID)
		return models.VarietyPreferences{}, false
	}
	return e.prefs, true
}

func (c *TTLCache) SetPreferences(userID int, p models.VarietyPreferences) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prefs[userID] = prefEntry{prefs: p, expires: c.now().Add(c.prefTTL)}
}

func (c *TTLCache) Usage(userID int, muscle string) ([]models.UsageRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := usageKey{userID, strings.ToLower(muscle)}
	e, ok := c.usage[k]
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expires) {
		delete(c.usage, k)
		return nil, false
	}
	return e.usage, true
}

func (c *TTLCache) SetUsage(userID int, muscle string, usage []models.UsageRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := make([]models.UsageRecord, len(usage))
	copy(cp, usage)
	c.usage[usageKey{userID, strings.ToLower(muscle)}] = usageEntry{usage: cp, expires: c.now().Add(c.usageTTL)}
}

func (c *TTLCache) Invalidate(userID int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.prefs, userID)
	for k := range c.usage {
		if k.userID == userID {
			delete(c.usage, k)
		}
	}
}

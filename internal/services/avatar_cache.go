package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/yukikurage/community-workspace-api/internal/constants"
	"github.com/yukikurage/community-workspace-api/internal/logging"
	"github.com/yukikurage/community-workspace-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrProfileNotFound = errors.New("profile not found")

// AvatarChange is delivered to subscribers when a user's avatar changes or is
// dropped from the cache
type AvatarChange struct {
	UserID      string
	AvatarURL   *string
	Invalidated bool
}

type AvatarListener func(AvatarChange)

// AvatarCache keeps recently used avatar URLs in a bounded LRU and fans out
// changes to subscribers
type AvatarCache struct {
	profiles repository.ProfileRepository
	cache    *lru.Cache[string, *string]
	logger   *zap.Logger

	mu          sync.Mutex
	nextID      uint64
	subscribers map[string]map[uint64]AvatarListener
}

func NewAvatarCache(profiles repository.ProfileRepository, size int, logger *zap.Logger) (*AvatarCache, error) {
	if size <= 0 {
		size = constants.DefaultAvatarCacheSize
	}
	cache, err := lru.New[string, *string](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create avatar cache: %w", err)
	}
	return &AvatarCache{
		profiles:    profiles,
		cache:       cache,
		logger:      logging.OrNop(logger),
		subscribers: make(map[string]map[uint64]AvatarListener),
	}, nil
}

// Get returns the user's avatar URL, which is nil when the user has none
func (c *AvatarCache) Get(ctx context.Context, userID string) (*string, error) {
	if url, ok := c.cache.Get(userID); ok {
		return url, nil
	}

	profile, err := c.profiles.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	c.cache.Add(userID, profile.AvatarURL)
	return profile.AvatarURL, nil
}

// Invalidate drops the cached URL so the next Get reloads it
func (c *AvatarCache) Invalidate(userID string) {
	c.cache.Remove(userID)
	c.notify(AvatarChange{UserID: userID, Invalidated: true})
}

// Update stores a new avatar URL, or clears it when url is nil
func (c *AvatarCache) Update(ctx context.Context, userID string, url *string) error {
	rows, err := c.profiles.UpdateAvatar(ctx, userID, url)
	if err != nil {
		return fmt.Errorf("failed to update avatar: %w", err)
	}
	if rows == 0 {
		return ErrProfileNotFound
	}
	c.cache.Add(userID, url)
	c.notify(AvatarChange{UserID: userID, AvatarURL: url})
	return nil
}

// Subscribe registers fn for changes to userID's avatar. The returned func
// removes the subscription.
func (c *AvatarCache) Subscribe(userID string, fn AvatarListener) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	if c.subscribers[userID] == nil {
		c.subscribers[userID] = make(map[uint64]AvatarListener)
	}
	c.subscribers[userID][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			delete(c.subscribers[userID], id)
			if len(c.subscribers[userID]) == 0 {
				delete(c.subscribers, userID)
			}
		})
	}
}

func (c *AvatarCache) notify(change AvatarChange) {
	c.mu.Lock()
	listeners := make([]AvatarListener, 0, len(c.subscribers[change.UserID]))
	for _, fn := range c.subscribers[change.UserID] {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()

	for _, fn := range listeners {
		c.safeCall(fn, change)
	}
}

func (c *AvatarCache) safeCall(fn AvatarListener, change AvatarChange) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("avatar listener panicked", zap.String("user_id", change.UserID), zap.Any("panic", r))
		}
	}()
	fn(change)
}

// Len is the number of cached entries
func (c *AvatarCache) Len() int {
	return c.cache.Len()
}

package utils

import (
	"context"
	"encoding/json"
	"strconv"
	"time"
)

const defaultCacheTTL = time.Hour

// Cache key namespaces for the post endpoints. Detail keys embed the post id
// so one post can be invalidated without dropping the whole namespace.
const (
	postListCacheKey    = "cache:posts:list"
	postDetailKeyPrefix = "cache:post:detail:"
)

// PostListCacheKey is the key holding the rendered public post listing.
func PostListCacheKey() string { return postListCacheKey }

// PostDetailCacheKey is the key holding one post's rendered detail payload.
func PostDetailCacheKey(postID uint) string {
	return postDetailKeyPrefix + strconv.FormatUint(uint64(postID), 10)
}

// InvalidatePostCaches drops the post listing together with one post's
// detail entry. Every post mutation funnels through here.
func InvalidatePostCaches(postID uint) {
	InvalidateByPrefix(postListCacheKey)
	InvalidateByPrefix(PostDetailCacheKey(postID))
}

// CacheGetBytes returns cached bytes for a key from Redis.
func CacheGetBytes(key string) ([]byte, bool) {
	rc := GetRedis()
	if rc == nil {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	b, err := rc.Get(ctx, key).Bytes()
	if err != nil {
		if Sugar != nil {
			Sugar.Debugf("cache get miss key=%s err=%v", key, err)
		}
		return nil, false
	}
	return b, true
}

// CacheSetBytes stores bytes with default TTL.
func CacheSetBytes(key string, b []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	rc := GetRedis()
	if rc == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rc.Set(ctx, key, b, ttl).Err(); err != nil {
		if Sugar != nil {
			Sugar.Warnf("cache set failed key=%s err=%v", key, err)
		}
	}
}

// CacheSetJSON marshals v and stores JSON bytes.
func CacheSetJSON(key string, v interface{}, ttl time.Duration) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	CacheSetBytes(key, b, ttl)
}

// InvalidateByPrefix deletes keys that match the given prefix using SCAN.
func InvalidateByPrefix(prefix string) {
	rc := GetRedis()
	if rc == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	var cursor uint64
	for i := 0; i < 10; i++ { // limit rounds to avoid long loops
		keys, cur, err := rc.Scan(ctx, cursor, prefix+"*", 1000).Result()
		if err != nil {
			break
		}
		cursor = cur
		if len(keys) > 0 {
			pipe := rc.Pipeline()
			for _, k := range keys {
				pipe.Del(ctx, k)
			}
			_, _ = pipe.Exec(ctx)
		}
		if cursor == 0 {
			break
		}
	}
}

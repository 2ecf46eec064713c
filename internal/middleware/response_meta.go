package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	responseMetaKey   = "response_meta"
	requestStartKey   = "request_started_at"
	cacheStatusHeader = "X-Cache"
)

// WithResponseMeta opens a metadata map for the envelope's meta block and stamps the request start.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(requestStartKey, time.Now())
		c.Set(responseMetaKey, map[string]interface{}{})
		c.Next()
	}
}

// SetMeta stores one meta entry for the response being built.
func SetMeta(c *gin.Context, key string, value interface{}) {
	if c == nil || key == "" {
		return
	}
	ensureMeta(c)[key] = value
}

// SetCacheHit marks whether a list came from the tag cache. The X-Cache header mirrors it.
func SetCacheHit(c *gin.Context, tag string, hit bool) {
	SetMeta(c, "cache_hit", hit)
	if tag != "" {
		SetMeta(c, "cache_tag", tag)
	}
	status := "MISS"
	if hit {
		status = "HIT"
	}
	c.Header(cacheStatusHeader, status)
}

// ExtractMeta returns the metadata for the response with the elapsed handler time filled in.
// Nil when nothing was recorded.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	raw, ok := c.Get(responseMetaKey)
	if !ok {
		return nil
	}
	meta, ok := raw.(map[string]interface{})
	if !ok || len(meta) == 0 {
		return nil
	}
	if started, ok := c.Get(requestStartKey); ok {
		if t, ok := started.(time.Time); ok {
			meta["processing_time_ms"] = time.Since(t).Milliseconds()
		}
	}
	return meta
}

func ensureMeta(c *gin.Context) map[string]interface{} {
	if raw, ok := c.Get(responseMetaKey); ok {
		if meta, ok := raw.(map[string]interface{}); ok {
			return meta
		}
	}
	meta := make(map[string]interface{})
	c.Set(responseMetaKey, meta)
	return meta
}

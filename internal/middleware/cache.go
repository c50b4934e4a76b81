package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	responseMetaKey  = "response_meta"
	responseStartKey = "response_meta_start"
)

// WithResponseMeta gives each request a meta map that handlers can fill and
// response.JSON can echo.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(responseStartKey, time.Now())
		c.Set(responseMetaKey, gin.H{})
		c.Next()
	}
}

// SetMeta stores a single response meta value.
func SetMeta(c *gin.Context, key string, value interface{}) {
	if m := metaFor(c, true); m != nil {
		m[key] = value
	}
}

// SetCacheHit reports whether the payload came from the overview cache.
func SetCacheHit(c *gin.Context, hit bool) {
	SetMeta(c, "cache_hit", hit)
}

// ExtractMeta returns the meta map, or nil when WithResponseMeta is not installed
// and nothing was set. Call it while writing the response: processing_time_ms
// is measured up to that point.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	m := metaFor(c, false)
	if m == nil {
		return nil
	}
	if v, ok := c.Get(responseStartKey); ok {
		if start, ok := v.(time.Time); ok {
			m["processing_time_ms"] = time.Since(start).Milliseconds()
		}
	}
	return m
}

func metaFor(c *gin.Context, create bool) gin.H {
	if c == nil {
		return nil
	}
	if v, ok := c.Get(responseMetaKey); ok {
		if m, ok := v.(gin.H); ok {
			return m
		}
	}
	if !create {
		return nil
	}
	m := gin.H{}
	c.Set(responseMetaKey, m)
	return m
}

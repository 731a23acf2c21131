package service

import (
	"fmt"
	"os"
	"sync"
)

// TemplateCache keeps template files in memory after their first read
type TemplateCache struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewTemplateCache creates an empty TemplateCache
func NewTemplateCache() *TemplateCache {
	return &TemplateCache{entries: make(map[string]string)}
}

// Get returns the contents of path, reading the file only on the first call
func (c *TemplateCache) Get(path string) (string, error) {
	c.mu.RLock()
	content, ok := c.entries[path]
	c.mu.RUnlock()
	if ok {
		return content, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrMissingTemplate, path, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, ok := c.entries[path]; ok {
		return cached, nil
	}
	c.entries[path] = string(data)
	return c.entries[path], nil
}

// Invalidate drops path so the next Get re-reads it
func (c *TemplateCache) Invalidate(path string) {
	c.mu.Lock()
	delete(c.entries, path)
	c.mu.Unlock()
}

// Len returns the number of cached templates
func (c *TemplateCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

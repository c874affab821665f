// Package cache guarda por sesión las existencias por sub-unidad consultadas al sistema contable.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/Entregas-api/internal/domain/entity"
)

type memoryEntry struct {
	subUnits  []entity.SubUnit
	expiresAt time.Time
}

// MemoryBalanceCache caché en proceso; la implementación por defecto cuando no hay Redis configurado.
type MemoryBalanceCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]map[string]memoryEntry // sesión → ítem → existencias
	now     func() time.Time
}

// NewMemoryBalanceCache crea la caché. ttl 0 desactiva el vencimiento.
func NewMemoryBalanceCache(ttl time.Duration) *MemoryBalanceCache {
	return &MemoryBalanceCache{
		ttl:     ttl,
		entries: map[string]map[string]memoryEntry{},
		now:     time.Now,
	}
}

func (c *MemoryBalanceCache) Get(_ context.Context, session, item string) ([]entity.SubUnit, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[session][item]
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && c.now().After(e.expiresAt) {
		return nil, false, nil
	}
	return cloneSubUnits(e.subUnits), true, nil
}

// Set reemplaza la entrada del ítem; la última escritura gana.
func (c *MemoryBalanceCache) Set(_ context.Context, session, item string, subUnits []entity.SubUnit) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	bySession, ok := c.entries[session]
	if !ok {
		bySession = map[string]memoryEntry{}
		c.entries[session] = bySession
	}
	e := memoryEntry{subUnits: cloneSubUnits(subUnits)}
	if c.ttl > 0 {
		e.expiresAt = c.now().Add(c.ttl)
	}
	bySession[item] = e
	return nil
}

func (c *MemoryBalanceCache) Invalidate(_ context.Context, session, item string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries[session], item)
	return nil
}

// Drop descarta todo lo de la sesión.
func (c *MemoryBalanceCache) Drop(_ context.Context, session string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, session)
	return nil
}

func cloneSubUnits(in []entity.SubUnit) []entity.SubUnit {
	if in == nil {
		return []entity.SubUnit{}
	}
	out := make([]entity.SubUnit, len(in))
	copy(out, in)
	return out
}

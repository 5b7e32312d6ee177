package tokenmanager

import (
	"context"
	"time"
)

// Info is a read-only diagnostic projection of the stored record.
type Info struct {
	Exists          bool      `json:"exists"`
	Valid           bool      `json:"valid"`
	CreatedAt       time.Time `json:"created_at,omitzero"`
	ExpiresAt       time.Time `json:"expires_at,omitzero"`
	HasRefreshToken bool      `json:"has_refresh_token"`
}

// Info inspects the stored record without modifying it.
func (m *Manager) Info(ctx context.Context) Info {
	info := Info{
		Exists: m.HasStored(ctx),
	}

	stored := m.GetStored(ctx)
	if stored == nil {
		return info
	}

	info.Valid = !m.IsExpired(stored)
	info.CreatedAt = stored.CreatedTime()
	info.ExpiresAt = stored.ExpiryTime()
	info.HasRefreshToken = stored.RefreshToken != ""
	return info
}

package models

import "time"

// DeriveStatus is the only source of truth for a post's status: a post is
// Expired from its expiry instant onwards and Live before it.
func DeriveStatus(expiresAt, now time.Time) Status {
	if !now.Before(expiresAt) {
		return StatusExpired
	}
	return StatusLive
}

// Refresh recomputes the cached status from ExpiresAt and reports whether
// it changed. Nothing else on the post is touched. It is not a latch: a
// post whose ExpiresAt lies in the future becomes Live again.
func (p *Post) Refresh(now time.Time) bool {
	status := DeriveStatus(p.ExpiresAt, now)
	if p.Status == status {
		return false
	}
	p.Status = status
	return true
}

// TimeLeft is how long the post stays live after now, never negative.
func (p *Post) TimeLeft(now time.Time) time.Duration {
	left := p.ExpiresAt.Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

package models

import "time"

// CountByKind counts the ledger entries of the given kind.
func CountByKind(p *Post, kind InteractionKind) int {
	n := 0
	for _, i := range p.Interactions {
		if i.Kind() == kind {
			n++
		}
	}
	return n
}

// LikesCount is the number of likes in the ledger.
func (p *Post) LikesCount() int { return CountByKind(p, KindLike) }

// DislikesCount is the number of dislikes in the ledger.
func (p *Post) DislikesCount() int { return CountByKind(p, KindDislike) }

// CommentsCount is the number of comments in the ledger.
func (p *Post) CommentsCount() int { return CountByKind(p, KindComment) }

// ActivityScore ranks posts by reactions. Comments do not count.
func ActivityScore(p *Post) int {
	return p.LikesCount() + p.DislikesCount()
}

// MostActive refreshes every post and returns the one with the highest
// activity score. A later post only takes the lead with a strictly greater
// score, so the earliest post in the given order wins ties. ok is false when
// posts is empty.
func MostActive(posts []*Post, now time.Time) (leader *Post, score int, ok bool) {
	best := -1
	for _, p := range posts {
		p.Refresh(now)
		if s := ActivityScore(p); s > best {
			best = s
			leader = p
		}
	}
	if leader == nil {
		return nil, 0, false
	}
	return leader, best, true
}

package tombola

import (
	"slices"

	"go-tombola/config"
	"go-tombola/geometry"
)

// Candidate is a live ball considered for eviction
type Candidate[K comparable] struct {
	Key      K
	Ball     Ball
	Position geometry.Vec2
}

// Evict returns the keys of balls to despawn: those outside bounds or at the
// bounce limit, then the oldest survivors until the population cap holds
func Evict[K comparable](balls []Candidate[K], bounds geometry.Rect, s *config.Settings) []K {
	var removed []K
	survivors := make([]Candidate[K], 0, len(balls))

	for _, c := range balls {
		switch {
		case !bounds.Contains(c.Position):
			removed = append(removed, c.Key)
		case s.MaxBounces.Enabled && c.Ball.Bounces >= s.MaxBounces.Value:
			removed = append(removed, c.Key)
		default:
			survivors = append(survivors, c)
		}
	}

	if !s.MaxBalls.Enabled {
		return removed
	}
	limit := max(s.MaxBalls.Value, 0)
	if len(survivors) <= limit {
		return removed
	}

	// newest first; everything past the limit goes
	slices.SortStableFunc(survivors, func(a, b Candidate[K]) int {
		switch {
		case a.Ball.SpawnTime > b.Ball.SpawnTime:
			return -1
		case a.Ball.SpawnTime < b.Ball.SpawnTime:
			return 1
		}
		return 0
	})
	for _, c := range survivors[limit:] {
		removed = append(removed, c.Key)
	}
	return removed
}

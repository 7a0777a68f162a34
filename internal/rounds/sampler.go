// Package rounds draws practice rounds from a rotating pool of item ids so
// that no item repeats until every other pool member has been shown.
package rounds

import (
	"errors"
	"math/rand/v2"
)

// MinRoundSize is the smallest eligible set a session may start with.
const MinRoundSize = 3

// ErrInsufficientPool is returned when fewer eligible items exist than the
// round needs.
var ErrInsufficientPool = errors.New("not enough items to fill a round")

// Pool is the working rotation of item ids for one session.
type Pool struct {
	IDs []string

	// Drawn counts ids handed out since the last refill or reshuffle.
	Drawn int

	// Last is the previous round, kept out of the next one when possible.
	Last []string
}

// Len returns the number of ids in the pool.
func (p *Pool) Len() int {
	return len(p.IDs)
}

// Reset empties the pool.
func (p *Pool) Reset() {
	p.IDs = nil
	p.Drawn = 0
	p.Last = nil
}

// Sampler draws rounds. It is not safe for concurrent use; each session
// owns its own sampler.
type Sampler struct {
	rng *rand.Rand
}

// NewSampler returns a sampler over src. A nil src seeds from the runtime.
func NewSampler(src rand.Source) *Sampler {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Sampler{rng: rand.New(src)}
}

// Draw takes the next k ids from p. The pool is first reconciled with
// eligible: ids no longer eligible are dropped and newcomers are shuffled
// in. When the pool holds fewer than k ids it is refilled with a fresh
// permutation of eligible.
func (s *Sampler) Draw(p *Pool, k int, eligible []string) ([]string, error) {
	if k <= 0 {
		return nil, nil
	}
	set := dedupe(eligible)
	if len(set) < k {
		return nil, ErrInsufficientPool
	}

	s.reconcile(p, set)

	if len(p.IDs) < k {
		p.IDs = append([]string(nil), set...)
		s.shuffle(p.IDs)
		p.Drawn = 0
		s.avoidLast(p, k)
	} else if p.Drawn >= len(p.IDs) {
		// Full cycle: every member has been shown once.
		s.shuffle(p.IDs)
		p.Drawn = 0
		s.avoidLast(p, k)
	}

	round := append([]string(nil), p.IDs[:k]...)
	p.IDs = append(p.IDs[k:], round...)
	p.Drawn += k
	p.Last = round
	return round, nil
}

// reconcile drops pool ids missing from set and appends newcomers in
// random order.
func (s *Sampler) reconcile(p *Pool, set []string) {
	allowed := make(map[string]struct{}, len(set))
	for _, id := range set {
		allowed[id] = struct{}{}
	}

	// IDs[:boundary] are undrawn this cycle; the tail was already shown.
	boundary := len(p.IDs) - min(p.Drawn, len(p.IDs))
	kept := make([]string, 0, len(p.IDs))
	inPool := make(map[string]struct{}, len(p.IDs))
	drawn := 0
	for i, id := range p.IDs {
		if _, ok := allowed[id]; !ok {
			continue
		}
		if _, dup := inPool[id]; dup {
			continue
		}
		inPool[id] = struct{}{}
		kept = append(kept, id)
		if i >= boundary {
			drawn++
		}
	}
	p.Drawn = drawn
	p.IDs = kept

	var fresh []string
	for _, id := range set {
		if _, ok := inPool[id]; !ok {
			fresh = append(fresh, id)
		}
	}
	if len(fresh) == 0 {
		return
	}
	s.shuffle(fresh)
	// Newcomers go in front of the already-drawn tail so they are shown
	// within the current cycle.
	undrawn := len(p.IDs) - min(p.Drawn, len(p.IDs))
	out := make([]string, 0, len(p.IDs)+len(fresh))
	out = append(out, p.IDs[:undrawn]...)
	out = append(out, fresh...)
	out = append(out, p.IDs[undrawn:]...)
	p.IDs = out
}

// avoidLast moves the previous round's ids out of the first k slots when
// the pool holds at least 2k ids.
func (s *Sampler) avoidLast(p *Pool, k int) {
	if len(p.Last) == 0 || len(p.IDs) < 2*k {
		return
	}
	last := make(map[string]struct{}, len(p.Last))
	for _, id := range p.Last {
		last[id] = struct{}{}
	}
	next := k
	for i := 0; i < k; i++ {
		if _, ok := last[p.IDs[i]]; !ok {
			continue
		}
		for next < len(p.IDs) {
			if _, ok := last[p.IDs[next]]; !ok {
				break
			}
			next++
		}
		if next >= len(p.IDs) {
			return
		}
		p.IDs[i], p.IDs[next] = p.IDs[next], p.IDs[i]
		next++
	}
}

// shuffle is a Fisher-Yates permutation.
func (s *Sampler) shuffle(ids []string) {
	s.rng.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

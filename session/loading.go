package session

import (
	"context"
	"math/rand"
	"time"
)

const (
	InitialLoadingText    = "Querying..."
	DefaultPhraseInterval = 2 * time.Second
)

var loadingPhrases = []string{
	"Powering up processors...",
	"Scanning the cyberverse...",
	"Loading cosmic algorithms...",
	"Summoning AI magic...",
	"Interfacing with bots...",
	"Consulting digital oracles...",
	"Mining data crystals...",
	"Enhancing neural networks...",
}

// LoadingPhrases returns the rotation pool.
func LoadingPhrases() []string {
	out := make([]string, len(loadingPhrases))
	copy(out, loadingPhrases)
	return out
}

func randomPhrase() string {
	return loadingPhrases[rand.Intn(len(loadingPhrases))]
}

// rotate swaps the loading text every interval until ctx is done or the query
// it was started for is no longer the current one.
func (s *Session) rotate(ctx context.Context, gen uint64) {
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.mu.Lock()
			if s.gen != gen || !s.loading {
				s.mu.Unlock()
				return
			}
			s.loadingText = s.phrase()
			s.publishLocked()
			s.mu.Unlock()
		}
	}
}

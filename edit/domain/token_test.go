package domain

import (
	"sync"
	"testing"
)

func TestNewTokenUniqueness(t *testing.T) {
	const n = 10000

	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		token := NewToken()
		if token == "" {
			t.Fatal("NewToken returned an empty token")
		}
		if seen[token] {
			t.Fatalf("NewToken produced duplicate %q", token)
		}
		seen[token] = true
	}
}

func TestNewTokenConcurrent(t *testing.T) {
	const workers = 8
	const perWorker = 500

	var mu sync.Mutex
	seen := make(map[string]bool, workers*perWorker)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				token := NewToken()
				mu.Lock()
				if seen[token] {
					t.Errorf("duplicate token %q", token)
				}
				seen[token] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
}

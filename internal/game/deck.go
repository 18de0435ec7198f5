package game

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
)

// Shuffler permutes n elements through swap. *rand.Rand satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// ShuffleDeck returns a shuffled copy of cards. A nil shuffler keeps the order.
func ShuffleDeck(cards []Card, shuffler Shuffler) []Card {
	deck := cloneCards(cards)
	if shuffler != nil {
		shuffler.Shuffle(len(deck), func(i, j int) {
			deck[i], deck[j] = deck[j], deck[i]
		})
	}
	return deck
}

// NewSeededRand returns a deterministic shuffler for seed.
func NewSeededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (uint64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// ShufflerForSeed returns a shuffler seeded with seed, or with a fresh random
// seed when seed is zero. The seed actually used is returned so a game can be
// reproduced.
func ShufflerForSeed(seed uint64) (*rand.Rand, uint64, error) {
	if seed == 0 {
		s, err := NewSeed()
		if err != nil {
			return nil, 0, err
		}
		seed = s
	}
	return NewSeededRand(seed), seed, nil
}

// internal/names/names.go
//
// Guest display names for players who join without picking one, built
// from the embedded adjective and animal lists ("Plucky Narwhal").
// Lists are lazily initialized once; if loading fails, Random falls back
// to a numbered guest name rather than erroring a join.

package names

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"

	"github.com/signullgame/server/assets"
)

var (
	once       sync.Once
	adjectives []string
	animals    []string
)

func load() {
	adjectives, _ = assets.AdjectivesList()
	animals, _ = assets.AnimalsList()
}

// Random returns a fresh display name.
func Random() string {
	once.Do(load)
	if len(adjectives) == 0 || len(animals) == 0 {
		n, _ := rand.Int(rand.Reader, big.NewInt(10000))
		return fmt.Sprintf("Guest%04d", n.Int64())
	}
	return pick(adjectives) + " " + pick(animals)
}

func pick(list []string) string {
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(list))))
	return list[n.Int64()]
}

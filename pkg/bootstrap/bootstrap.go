// Package bootstrap fills a universe of random partitions for the engine to
// work on, along with a small user table and per-partition permissions.
package bootstrap

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/tymbaca/sharedkeys/mapreduce"
)

const (
	_defaultSeed       = 31
	_defaultPayloadLen = 8
	_maxUsers          = 100
)

type Config struct {
	// Maps is the number of partitions, Size the records in each.
	Maps int
	Size int

	Seed int64

	// Overlap is the fraction of every partition's keys drawn from a key
	// sequence common to all partitions. With 1 every partition holds the
	// same keys; with 0 keys are (almost surely) unique.
	Overlap float64

	PayloadLen int
}

func DefaultConfig() Config {
	return Config{
		Seed:       _defaultSeed,
		Overlap:    1,
		PayloadLen: _defaultPayloadLen,
	}
}

func (c Config) validate() error {
	switch {
	case c.Maps < 0:
		return fmt.Errorf("maps must not be negative, got %d", c.Maps)
	case c.Size < 0:
		return fmt.Errorf("size must not be negative, got %d", c.Size)
	case c.Seed < 0:
		return fmt.Errorf("seed must not be negative, got %d", c.Seed)
	case c.Overlap < 0 || c.Overlap > 1:
		return fmt.Errorf("overlap must be within [0, 1], got %v", c.Overlap)
	case c.PayloadLen <= 0:
		return fmt.Errorf("payload length must be positive, got %d", c.PayloadLen)
	}

	return nil
}

type User struct {
	Name         string
	PasswordHash string
}

type Universe struct {
	Users map[int32]User
	Maps  []mapreduce.Partition
}

// Records is the total number of records over all partitions.
func (u *Universe) Records() int {
	n := 0
	for _, m := range u.Maps {
		n += m.Len()
	}

	return n
}

// Create builds the universe. Partition i has color i. The output only
// depends on cfg.
func Create(cfg Config) (*Universe, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	// gofakeit picks a random seed for 0, so no derived seed may be 0
	faker := gofakeit.New(uint64(cfg.Size)*1000 + 1)
	users := createUsers(faker, min(_maxUsers, cfg.Maps/2))

	uids := make([]int32, 0, len(users))
	for uid := range users {
		uids = append(uids, uid)
	}
	slices.Sort(uids)

	shared := int(math.Round(cfg.Overlap * float64(cfg.Size)))

	maps := make([]mapreduce.Partition, cfg.Maps)
	for color := range cfg.Maps {
		maps[color] = fillPartition(cfg, color, shared, uids)
	}

	slog.Info("bootstrap: universe created", "maps", cfg.Maps, "size", cfg.Size, "users", len(users))

	return &Universe{Users: users, Maps: maps}, nil
}

func createUsers(faker *gofakeit.Faker, n int) map[int32]User {
	users := make(map[int32]User, n)
	for len(users) < n {
		name := faker.Username()
		sum := sha1.Sum([]byte(name))
		users[faker.Int32()] = User{Name: name, PasswordHash: hex.EncodeToString(sum[:])}
	}

	return users
}

func fillPartition(cfg Config, color, shared int, uids []int32) mapreduce.Partition {
	part := mapreduce.NewPartition(color, cfg.Size)

	// every partition replays the same key sequence for its shared keys
	keys := gofakeit.New(uint64(cfg.Seed) + 1)
	own := gofakeit.New(uint64(cfg.Seed) + uint64(color) + 2)

	perms := make(mapreduce.PermTable, len(uids))
	for i := 0; part.Len() < cfg.Size; i++ {
		var key mapreduce.Key
		if i < shared {
			key = mapreduce.Key(keys.Int64())
		} else {
			key = mapreduce.Key(own.Int64())
		}

		if i < len(uids) {
			perms[uids[i]] = mapreduce.PermReadWrite
		}

		val := mapreduce.NewValue(own.LetterN(uint(cfg.PayloadLen)), color)
		part.Put(key, val)
		slog.Debug("bootstrap: new value", "color", color, "key", key, "value", val.Payload)
	}

	part.SetPermissions(perms)

	return part
}

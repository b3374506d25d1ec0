package engine

import (
	"strconv"

	"github.com/roach88/embody/internal/errdefs"
	"github.com/roach88/embody/internal/value"
)

// CollisionPolicy decides what happens when resolved keys repeat within
// one map.
type CollisionPolicy string

const (
	// CollisionError fails with KEY_COLLISION naming every repeated key.
	CollisionError CollisionPolicy = "error"

	// CollisionLastWins keeps the first position of a key and the value of
	// its last occurrence.
	CollisionLastWins CollisionPolicy = "last_wins"

	// CollisionNamespace keeps the first occurrence as is and renames each
	// later one to key_1, key_2, and so on.
	CollisionNamespace CollisionPolicy = "namespace"
)

// CollisionPolicies lists every accepted policy.
var CollisionPolicies = []CollisionPolicy{CollisionError, CollisionLastWins, CollisionNamespace}

// ParseCollisionPolicy validates a policy name.
func ParseCollisionPolicy(s string) (CollisionPolicy, error) {
	for _, p := range CollisionPolicies {
		if string(p) == s {
			return p, nil
		}
	}
	return "", errdefs.NewInvalidConfig("unknown key collision policy %q (want one of %s)", s, joinNames(CollisionPolicies))
}

// ResolveKeys builds a map from embodied pairs given in template order.
//
// Under CollisionNamespace a suffixed name that is already taken, by a
// resolved key or an earlier rename, is skipped and the counter advances
// until the name is free.
func ResolveKeys(pairs []value.Entry, policy CollisionPolicy) (*value.Map, error) {
	switch policy {
	case CollisionLastWins:
		return value.NewMap(pairs...), nil

	case CollisionNamespace:
		base := make(map[string]struct{}, len(pairs))
		for _, p := range pairs {
			base[p.Key] = struct{}{}
		}
		used := make(map[string]struct{}, len(pairs))
		counters := make(map[string]int)
		out := value.NewMap()
		for _, p := range pairs {
			key := p.Key
			if _, taken := used[key]; taken {
				for {
					counters[p.Key]++
					key = p.Key + "_" + strconv.Itoa(counters[p.Key])
					_, isUsed := used[key]
					_, isBase := base[key]
					if !isUsed && !isBase {
						break
					}
				}
			}
			used[key] = struct{}{}
			out.Set(key, p.Value)
		}
		return out, nil

	case CollisionError, "":
		out := value.NewMap()
		var repeated []string
		for _, p := range pairs {
			if out.Has(p.Key) {
				repeated = append(repeated, p.Key)
				continue
			}
			out.Set(p.Key, p.Value)
		}
		if len(repeated) > 0 {
			return nil, errdefs.NewKeyCollision(repeated...)
		}
		return out, nil

	default:
		return nil, errdefs.NewInvalidConfig("unknown key collision policy %q", policy)
	}
}

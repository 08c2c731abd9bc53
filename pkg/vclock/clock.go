package vclock

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// entry is one (replica_uid, generation) pair of a Clock.
type entry struct {
	ReplicaUID string
	Generation int
}

// Clock is a vector-clock revision: a set of per-replica generation
// counters, kept sorted by replica_uid so String is canonical.
type Clock struct {
	entries []entry
}

// Empty returns the empty clock.
func Empty() Clock {
	return Clock{}
}

// Parse decodes the wire form "uid1:gen1|uid2:gen2|...". The empty
// string parses to the empty clock. Duplicate uids, missing colons,
// empty uids, non-digit generations, and a trailing separator are all
// rejected.
func Parse(s string) (Clock, error) {
	if s == "" {
		return Empty(), nil
	}
	parts := strings.Split(s, "|")
	entries := make([]entry, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for _, part := range parts {
		if part == "" {
			return Clock{}, fmt.Errorf("vclock: empty segment in %q", s)
		}
		idx := strings.IndexByte(part, ':')
		if idx <= 0 || idx == len(part)-1 {
			return Clock{}, fmt.Errorf("vclock: malformed segment %q", part)
		}
		uid := part[:idx]
		genStr := part[idx+1:]
		gen, err := strconv.Atoi(genStr)
		if err != nil || gen < 1 {
			return Clock{}, fmt.Errorf("vclock: invalid generation in %q", part)
		}
		if seen[uid] {
			return Clock{}, fmt.Errorf("vclock: duplicate replica_uid %q in %q", uid, s)
		}
		seen[uid] = true
		entries = append(entries, entry{ReplicaUID: uid, Generation: gen})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ReplicaUID < entries[j].ReplicaUID
	})
	return Clock{entries: entries}, nil
}

// MustParse is Parse but panics on error; useful for literals in tests.
func MustParse(s string) Clock {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// String returns the canonical wire form: "" for the empty clock,
// otherwise "uid1:gen1|uid2:gen2|..." in sorted replica_uid order.
func (c Clock) String() string {
	if len(c.entries) == 0 {
		return ""
	}
	var b strings.Builder
	for i, e := range c.entries {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(e.ReplicaUID)
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(e.Generation))
	}
	return b.String()
}

// IsEmpty reports whether the clock has no entries.
func (c Clock) IsEmpty() bool {
	return len(c.entries) == 0
}

// Generation returns the generation recorded for replicaUID, or 0 if
// the replica has no entry in this clock.
func (c Clock) Generation(replicaUID string) int {
	for _, e := range c.entries {
		if e.ReplicaUID == replicaUID {
			return e.Generation
		}
	}
	return 0
}

// Increment returns a new clock equal to c with replicaUID's
// generation incremented by one (or set to 1 if absent). The result
// is always strictly newer than c.
func (c Clock) Increment(replicaUID string) Clock {
	out := make([]entry, len(c.entries))
	copy(out, c.entries)
	for i := range out {
		if out[i].ReplicaUID == replicaUID {
			out[i].Generation++
			return Clock{entries: out}
		}
	}
	out = append(out, entry{ReplicaUID: replicaUID, Generation: 1})
	sort.Slice(out, func(i, j int) bool {
		return out[i].ReplicaUID < out[j].ReplicaUID
	})
	return Clock{entries: out}
}

// Maximize returns the componentwise maximum of c and other over the
// union of their replica uids. Maximize is commutative and idempotent.
func (c Clock) Maximize(other Clock) Clock {
	merged := make(map[string]int, len(c.entries)+len(other.entries))
	for _, e := range c.entries {
		merged[e.ReplicaUID] = e.Generation
	}
	for _, e := range other.entries {
		if cur, ok := merged[e.ReplicaUID]; !ok || e.Generation > cur {
			merged[e.ReplicaUID] = e.Generation
		}
	}
	out := make([]entry, 0, len(merged))
	for uid, gen := range merged {
		out = append(out, entry{ReplicaUID: uid, Generation: gen})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ReplicaUID < out[j].ReplicaUID
	})
	return Clock{entries: out}
}

// IsNewer reports whether c strictly causally dominates other: for
// every replica_uid in other, c has that uid with a generation >=
// other's, and at least one entry is strictly greater (either a
// larger generation, or a uid present only in c). The empty clock is
// never newer than anything; any non-empty clock is newer than the
// empty clock.
func (c Clock) IsNewer(other Clock) bool {
	if c.IsEmpty() {
		return false
	}
	if other.IsEmpty() {
		return true
	}
	strictlyGreater := false
	for _, oe := range other.entries {
		found := false
		for _, ce := range c.entries {
			if ce.ReplicaUID == oe.ReplicaUID {
				found = true
				if ce.Generation < oe.Generation {
					return false
				}
				if ce.Generation > oe.Generation {
					strictlyGreater = true
				}
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(c.entries) > len(other.entries) {
		strictlyGreater = true
	}
	return strictlyGreater
}

// Equal reports whether c and other have identical canonical string
// forms.
func (c Clock) Equal(other Clock) bool {
	return c.String() == other.String()
}

// Concurrent reports whether neither clock is newer than the other
// and they are not equal.
func (c Clock) Concurrent(other Clock) bool {
	return !c.Equal(other) && !c.IsNewer(other) && !other.IsNewer(c)
}

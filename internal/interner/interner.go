// Package interner provides the process-wide bidirectional mapping between
// identifier strings (class names, member names, file paths) and dense
// 32-bit ids used by every other component so comparisons never touch a
// string.
package interner

import "sync"

// ID is a dense, process-lifetime-stable identifier for an interned string.
type ID uint32

// Well-known ids are fixed constants so downstream code can compare
// against them without a lookup. They are pre-populated by New.
const (
	Empty ID = iota
	This
	Construct
	Static
	Parent
	SelfKeyword
	Arraykey
	HHContainer
	HHKeyedContainer
	wellKnownCount
)

var wellKnownNames = [wellKnownCount]string{
	Empty: "",
	This: "$this",
	Construct: "__construct",
	Static: "static",
	Parent: "parent",
	SelfKeyword: "self",
	Arraykey: "arraykey",
	HHContainer: "HH\\Container",
	HHKeyedContainer: "HH\\KeyedContainer",
}

const shardCount = 16

type shard struct {
	mu sync.RWMutex
	strToID map[string]ID
	idToStr []string
}

// Interner is a sharded, mutex-guarded bidirectional string<->ID table.
// It is safe for concurrent use by the scanning and analysis worker pools
// described in : lookups by id require no lock once the id has been
// allocated (idToStr entries are only ever appended, never mutated).
type Interner struct {
	shards [shardCount]*shard
	// global is a single sequence counter guarded by seqMu so ids are
	// globally unique across shards even though the string->id maps are
	// sharded for write concurrency.
	seqMu sync.Mutex
	next ID
	// byID maps id -> string across all shards for O(1) Lookup without
	// having to know which shard produced the id.
	byIDMu sync.RWMutex
	byID []string
}

// New creates an Interner pre-populated with the well-known identifiers so
// their ids are available as the constants above.
func New() *Interner {
	in := &Interner{}
	for i := range in.shards {
		in.shards[i] = &shard{strToID: make(map[string]ID)}
	}
	in.byID = make([]string, 0, wellKnownCount+1024)
	for id := ID(0); id < wellKnownCount; id++ {
		in.internExact(wellKnownNames[id], id)
	}
	in.next = wellKnownCount
	return in
}

func (in *Interner) shardFor(s string) *shard {
	h := fnv32(s)
	return in.shards[h%shardCount]
}

func fnv32(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}

func (in *Interner) internExact(s string, id ID) {
	sh := in.shardFor(s)
	sh.mu.Lock()
	sh.strToID[s] = id
	sh.mu.Unlock()
	in.byIDMu.Lock()
	for ID(len(in.byID)) <= id {
		in.byID = append(in.byID, "")
	}
	in.byID[id] = s
	in.byIDMu.Unlock()
}

// Intern returns the id for s, allocating a new one if s has not been seen
// before. Idempotent: interning the same string twice returns the same id.
func (in *Interner) Intern(s string) ID {
	sh := in.shardFor(s)

	sh.mu.RLock()
	if id, ok := sh.strToID[s]; ok {
		sh.mu.RUnlock()
		return id
	}
	sh.mu.RUnlock()

	sh.mu.Lock()
	if id, ok := sh.strToID[s]; ok {
		sh.mu.Unlock()
		return id
	}
	in.seqMu.Lock()
	id := in.next
	in.next++
	in.seqMu.Unlock()
	sh.strToID[s] = id
	sh.mu.Unlock()

	in.byIDMu.Lock()
	for ID(len(in.byID)) <= id {
		in.byID = append(in.byID, "")
	}
	in.byID[id] = s
	in.byIDMu.Unlock()

	return id
}

// Lookup returns the string for id. Panics if id was never allocated by
// this interner, since that indicates a programmer error (an id leaked
// from a different process or a corrupt cache, which is a tier-1 fatal
// condition per, not a diagnostic).
func (in *Interner) Lookup(id ID) string {
	in.byIDMu.RLock()
	defer in.byIDMu.RUnlock()
	if int(id) >= len(in.byID) {
		panic("interner: unknown id")
	}
	return in.byID[id]
}

// Get probes for s without allocating a new id if it is absent.
func (in *Interner) Get(s string) (ID, bool) {
	sh := in.shardFor(s)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	id, ok := sh.strToID[s]
	return id, ok
}

// Len returns the number of interned strings, for diagnostics/metrics.
func (in *Interner) Len() int {
	in.byIDMu.RLock()
	defer in.byIDMu.RUnlock()
	return len(in.byID)
}

package service

import (
	"hash/fnv"
	"sync"
)

const lockStripes = 64

// keyedMutex serializes operations per key with a fixed set of striped locks,
// keyed by FNV hash. Two near-simultaneous scans of the same card therefore
// run their read-modify-write strictly one after the other; unrelated users
// rarely contend.
type keyedMutex struct {
	stripes [lockStripes]sync.Mutex
}

func (k *keyedMutex) Lock(key string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	m := &k.stripes[h.Sum32()%lockStripes]
	m.Lock()
	return m
}

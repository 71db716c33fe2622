package sim

import (
	"fmt"
	"hash/fnv"

	"golang.org/x/exp/rand"
)

// Subsystem stream names for the partitioned RNG.
const (
	StreamTraffic  = "traffic"
	StreamBalancer = "balancer"
	StreamMetrics  = "metrics"
)

// PartitionedRNG provides isolated random streams per subsystem so that the
// evaluation order of one component can never perturb the samples drawn by
// another. Streams are derived deterministically from a single master seed.
type PartitionedRNG struct {
	masterSeed int64
	streams    map[string]*rand.Rand
}

// NewPartitionedRNG creates a partitioned RNG with the given master seed.
func NewPartitionedRNG(masterSeed int64) *PartitionedRNG {
	return &PartitionedRNG{
		masterSeed: masterSeed,
		streams:    make(map[string]*rand.Rand),
	}
}

// Stream returns the RNG for the named subsystem, creating it lazily.
// Repeated calls with the same name return the same stream.
func (p *PartitionedRNG) Stream(name string) *rand.Rand {
	if rng, ok := p.streams[name]; ok {
		return rng
	}
	rng := rand.New(rand.NewSource(p.deriveSeed(name)))
	p.streams[name] = rng
	return rng
}

// ForServer returns the RNG stream for a server by id.
func (p *PartitionedRNG) ForServer(id int) *rand.Rand {
	return p.Stream(fmt.Sprintf("server_%d", id))
}

// deriveSeed hashes the stream name with FNV-1a and XORs it into the master
// seed, so derivation is independent of the order streams are requested in.
func (p *PartitionedRNG) deriveSeed(name string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(name))
	return uint64(p.masterSeed) ^ h.Sum64()
}

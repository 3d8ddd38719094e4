package graph

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/reactive-notebook/nbcore/api"
	"github.com/reactive-notebook/nbcore/internal/cellcache"
)

// contentKey hashes cell source text the same way the semantic analyzer
// does when it stamps CellImpl.Key, so IsCellCached can compare a fresh
// source string against what's on record without re-running analysis.
func contentKey(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// Coordinator is the single-writer orchestrator of spec.md §4.9: it
// guards topology, registry and cycle mutation with one mutex, grounded on
// the teacher's MemoryStore (internal/graph/graph.go), which likewise
// guards its node map and bitmap indexes with a single sync.RWMutex.
type Coordinator struct {
	mu sync.Mutex

	topology *Topology
	registry *DefinitionRegistry
	cycles   *CycleTracker
	edges    *EdgeComputer

	cache cellcache.Store
}

// NewCoordinator wires a fresh topology/registry/cycle-tracker/edge-computer
// quadruple into a coordinator, backed by an in-memory content-hash cache.
func NewCoordinator() *Coordinator {
	return NewCoordinatorWithCache(cellcache.NewMemStore())
}

// NewCoordinatorWithCache wires a coordinator against a caller-supplied
// content-hash cache (e.g. a cellcache.SQLiteStore for cross-restart
// persistence).
func NewCoordinatorWithCache(cache cellcache.Store) *Coordinator {
	topo := NewTopology()
	reg := NewDefinitionRegistry()
	return &Coordinator{
		topology: topo,
		registry: reg,
		cycles:   NewCycleTracker(topo),
		edges:    NewEdgeComputer(topo, reg),
		cache:    cache,
	}
}

// RegisterResult reports what changed as a side effect of RegisterCell, so
// the caller (the scheduler) can propagate staleness outside the lock.
type RegisterResult struct {
	Parents  []api.CellId
	Children []api.CellId
}

// RegisterCell inserts a cell, registers its definitions, computes and
// records its edges, and detects any cycles the new edges close.
func (co *Coordinator) RegisterCell(cid api.CellId, cell *api.CellImpl) (RegisterResult, error) {
	co.mu.Lock()
	defer co.mu.Unlock()

	if err := co.topology.AddNode(cid, cell); err != nil {
		return RegisterResult{}, err
	}

	for name, vdl := range cell.VariableData {
		co.registry.RegisterDefinition(cid, name, vdl)
	}

	parentEdges, childEdges := co.edges.ComputeEdgesForCell(cid, cell)

	var result RegisterResult
	for _, e := range parentEdges {
		co.topology.AddEdge(e.Parent, e.Child)
		co.cycles.DetectCycleForEdge(e.Parent, e.Child)
		result.Parents = append(result.Parents, e.Parent)
	}
	for _, e := range childEdges {
		co.topology.AddEdge(e.Parent, e.Child)
		co.cycles.DetectCycleForEdge(e.Parent, e.Child)
		result.Children = append(result.Children, e.Child)
	}

	co.cache.Record(cid, cell.Key)
	return result, nil
}

// DeleteCell removes a cell and every edge/cycle touching it, returning the
// cell's direct children so the caller can mark them stale.
func (co *Coordinator) DeleteCell(cid api.CellId) ([]api.CellId, error) {
	co.mu.Lock()
	defer co.mu.Unlock()

	cell, ok := co.topology.Cell(cid)
	if !ok {
		return nil, fmt.Errorf("graph: unknown cell %q", cid)
	}
	children := co.topology.ChildrenOf(cid)

	co.registry.UnregisterDefinitions(cid, cell.Defs)
	co.cycles.RemoveCellEdges(cid)
	co.topology.RemoveNode(cid)
	co.cache.Forget(cid)

	return children, nil
}

// IsCellCached answers whether a previously-registered cell has the same
// content hash as code (spec.md §4.9, §4.12).
func (co *Coordinator) IsCellCached(cid api.CellId, code string) bool {
	co.mu.Lock()
	defer co.mu.Unlock()
	if !co.topology.Has(cid) {
		return false
	}
	return co.cache.IsCached(cid, contentKey(code))
}

// Topology exposes the underlying topology for read-only queries
// (ancestors/descendants/path) used by the validator, toposort and
// staleness propagation.
func (co *Coordinator) Topology() *Topology { return co.topology }

// Registry exposes the underlying definition registry for read-only
// queries (e.g. multiple-definition reporting).
func (co *Coordinator) Registry() *DefinitionRegistry { return co.registry }

// Cycles exposes the underlying cycle tracker for read-only queries.
func (co *Coordinator) Cycles() *CycleTracker { return co.cycles }

// WithLock runs fn while holding the coordinator's write lock, for callers
// that need to compose several otherwise-unsynchronized read operations
// atomically (e.g. the validator snapshotting state before reporting).
func (co *Coordinator) WithLock(fn func()) {
	co.mu.Lock()
	defer co.mu.Unlock()
	fn()
}

package ast

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"fortio.org/safecast"

	"github.com/t14raptor/fastscope/diag"
	"github.com/t14raptor/fastscope/source"
)

var lastContextID atomic.Uint32

// markTag is the two-valued mark of a slot. A slot is marked for the
// current cycle when its tag equals Context.marked; the meaning of each
// value flips after every collection so no clearing pass is needed.
type markTag uint8

const (
	markA markTag = iota
	markB
)

func (m markTag) flip() markTag { return m ^ 1 }

type slotHeader struct {
	// owner is the id of the owning Context, 0 when the slot is free.
	owner uint32
	mark  markTag
	gen   uint32
}

type nodeSlot struct {
	slotHeader
	refs uint32
	node Node
}

type linkSlot struct {
	slotHeader
	node NodeRef
	next LinkRef
}

type Options struct {
	Files          *source.FileSet
	MaxDiagnostics int
	Logger         *slog.Logger
}

// Context is the arena owning every node of one compilation unit.
// It is not safe for concurrent use; every access goes through a GCLock.
type Context struct {
	id uint32

	// index 0 of both tables is a sentinel so that zero refs stay invalid
	nodes     []nodeSlot
	links     []linkSlot
	freeNodes []uint32
	freeLinks []uint32

	// marked is the tag reachable slots receive in the next collection.
	marked markTag

	handles int
	locked  bool
	closed  bool

	atoms *AtomTable
	sm    *diag.SourceManager
	log   *slog.Logger
}

func NewContext(opts Options) *Context {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	id := lastContextID.Add(1)
	return &Context{
		id:     id,
		nodes:  make([]nodeSlot, 1, 64),
		links:  make([]linkSlot, 1, 64),
		marked: markB,
		atoms:  NewAtomTable(),
		sm:     diag.NewSourceManager(opts.Files, opts.MaxDiagnostics),
		log:    logger.With("ctx", id),
	}
}

func (ctx *Context) ID() uint32 { return ctx.id }

func (ctx *Context) Atoms() *AtomTable { return ctx.atoms }

func (ctx *Context) SourceManager() *diag.SourceManager { return ctx.sm }

func (ctx *Context) Logger() *slog.Logger { return ctx.log }

// OutstandingHandles is the number of NodeRc handles not yet released.
func (ctx *Context) OutstandingHandles() int { return ctx.handles }

type ArenaStats struct {
	LiveNodes int
	FreeNodes int
	LiveLinks int
	FreeLinks int
}

func (ctx *Context) Stats() ArenaStats {
	return ArenaStats{
		LiveNodes: len(ctx.nodes) - 1 - len(ctx.freeNodes),
		FreeNodes: len(ctx.freeNodes),
		LiveLinks: len(ctx.links) - 1 - len(ctx.freeLinks),
		FreeLinks: len(ctx.freeLinks),
	}
}

// Close tears the arena down. A NodeRc outliving its Context is a bug in
// the caller, so Close panics when any handle is still outstanding.
func (ctx *Context) Close() {
	if ctx.closed {
		return
	}
	if ctx.handles != 0 {
		panic(fmt.Sprintf("ast: %d NodeRc handle(s) outlive Context %d", ctx.handles, ctx.id))
	}
	if ctx.locked {
		panic(fmt.Sprintf("ast: Context %d closed while a GCLock is held", ctx.id))
	}
	ctx.closed = true
	ctx.nodes = nil
	ctx.links = nil
	ctx.freeNodes = nil
	ctx.freeLinks = nil
}

func (ctx *Context) checkOpen() {
	if ctx.closed {
		panic(fmt.Sprintf("ast: use of closed Context %d", ctx.id))
	}
}

func (ctx *Context) slot(r NodeRef) *nodeSlot {
	if r.ctx != ctx.id {
		panic(fmt.Sprintf("ast: node %v belongs to Context %d, not %d", r, r.ctx, ctx.id))
	}
	if r.idx == 0 || int(r.idx) >= len(ctx.nodes) {
		panic(fmt.Sprintf("ast: invalid node reference %v", r))
	}
	s := &ctx.nodes[r.idx]
	if s.owner == 0 || s.gen != r.gen {
		panic(fmt.Sprintf("ast: stale node reference %v", r))
	}
	return s
}

func (ctx *Context) linkSlot(r LinkRef) *linkSlot {
	if r.ctx != ctx.id {
		panic(fmt.Sprintf("ast: list link belongs to Context %d, not %d", r.ctx, ctx.id))
	}
	if r.idx == 0 || int(r.idx) >= len(ctx.links) {
		panic(fmt.Sprintf("ast: invalid list link %d", r.idx))
	}
	s := &ctx.links[r.idx]
	if s.owner == 0 || s.gen != r.gen {
		panic(fmt.Sprintf("ast: stale list link %d", r.idx))
	}
	return s
}

func (ctx *Context) alloc(n Node) NodeRef {
	if n == nil {
		panic("ast: allocating nil node")
	}
	ctx.checkOwnership(n)
	unmarked := ctx.marked.flip()
	if k := len(ctx.freeNodes); k > 0 {
		idx := ctx.freeNodes[k-1]
		ctx.freeNodes = ctx.freeNodes[:k-1]
		s := &ctx.nodes[idx]
		s.owner = ctx.id
		s.mark = unmarked
		s.gen++
		s.refs = 0
		s.node = n
		return NodeRef{ctx: ctx.id, idx: idx, gen: s.gen}
	}
	idx, err := safecast.Conv[uint32](len(ctx.nodes))
	if err != nil {
		panic(fmt.Errorf("ast: node arena overflow: %w", err))
	}
	ctx.nodes = append(ctx.nodes, nodeSlot{
		slotHeader: slotHeader{owner: ctx.id, mark: unmarked, gen: 1},
		node:       n,
	})
	return NodeRef{ctx: ctx.id, idx: idx, gen: 1}
}

func (ctx *Context) appendLink(prev LinkRef, node NodeRef) LinkRef {
	if !node.IsZero() {
		ctx.slot(node)
	}
	unmarked := ctx.marked.flip()
	var ref LinkRef
	if k := len(ctx.freeLinks); k > 0 {
		idx := ctx.freeLinks[k-1]
		ctx.freeLinks = ctx.freeLinks[:k-1]
		s := &ctx.links[idx]
		s.owner = ctx.id
		s.mark = unmarked
		s.gen++
		s.node = node
		s.next = LinkRef{}
		ref = LinkRef{ctx: ctx.id, idx: idx, gen: s.gen}
	} else {
		idx, err := safecast.Conv[uint32](len(ctx.links))
		if err != nil {
			panic(fmt.Errorf("ast: link arena overflow: %w", err))
		}
		ctx.links = append(ctx.links, linkSlot{
			slotHeader: slotHeader{owner: ctx.id, mark: unmarked, gen: 1},
			node:       node,
		})
		ref = LinkRef{ctx: ctx.id, idx: idx, gen: 1}
	}
	if !prev.IsZero() {
		p := ctx.linkSlot(prev)
		if !p.next.IsZero() {
			panic("ast: list link already has a successor")
		}
		p.next = ref
	}
	return ref
}

// checkOwnership rejects payloads pointing into another arena.
func (ctx *Context) checkOwnership(n Node) {
	eachChild(n, func(r NodeRef) {
		if !r.IsZero() {
			ctx.slot(r)
		}
	}, func(l NodeList) {
		if !l.Head.IsZero() {
			ctx.linkSlot(l.Head)
		}
	})
}

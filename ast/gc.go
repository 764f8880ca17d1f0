package ast

import (
	"fmt"
	"time"
)

type CollectStats struct {
	Roots       int
	MarkedNodes int
	MarkedLinks int
	FreedNodes  int
	FreedLinks  int
}

// Collect runs one mark-and-sweep cycle. Roots are the nodes held by a
// NodeRc; everything unreachable from them is reclaimed. Collect must be
// called between passes, never while a GCLock is live.
func (ctx *Context) Collect() CollectStats {
	ctx.checkOpen()
	if ctx.locked {
		panic(fmt.Sprintf("ast: Collect on Context %d while a GCLock is held", ctx.id))
	}
	start := time.Now()
	target := ctx.marked
	var stats CollectStats

	var work []NodeRef
	for i := 1; i < len(ctx.nodes); i++ {
		s := &ctx.nodes[i]
		if s.owner == 0 {
			continue
		}
		if s.mark == target {
			panic(fmt.Sprintf("ast: node slot %d already marked before collection", i))
		}
		if s.refs > 0 {
			work = append(work, NodeRef{ctx: ctx.id, idx: uint32(i), gen: s.gen})
			stats.Roots++
		}
	}
	for i := 1; i < len(ctx.links); i++ {
		s := &ctx.links[i]
		if s.owner != 0 && s.mark == target {
			panic(fmt.Sprintf("ast: list link %d already marked before collection", i))
		}
	}

	push := func(r NodeRef) {
		if !r.IsZero() && ctx.slot(r).mark != target {
			work = append(work, r)
		}
	}
	for len(work) > 0 {
		r := work[len(work)-1]
		work = work[:len(work)-1]
		s := ctx.slot(r)
		if s.mark == target {
			continue
		}
		s.mark = target
		stats.MarkedNodes++
		eachChild(s.node, push, func(l NodeList) {
			for link := l.Head; !link.IsZero(); {
				ls := ctx.linkSlot(link)
				// a marked link means the rest of the chain is marked too
				if ls.mark == target {
					break
				}
				ls.mark = target
				stats.MarkedLinks++
				push(ls.node)
				link = ls.next
			}
		})
	}

	for i := 1; i < len(ctx.nodes); i++ {
		s := &ctx.nodes[i]
		if s.owner != 0 && s.refs == 0 && s.mark != target {
			s.owner = 0
			s.node = nil
			ctx.freeNodes = append(ctx.freeNodes, uint32(i))
			stats.FreedNodes++
		}
	}
	for i := 1; i < len(ctx.links); i++ {
		s := &ctx.links[i]
		if s.owner != 0 && s.mark != target {
			s.owner = 0
			s.node = NodeRef{}
			s.next = LinkRef{}
			ctx.freeLinks = append(ctx.freeLinks, uint32(i))
			stats.FreedLinks++
		}
	}

	ctx.marked = target.flip()
	ctx.log.Debug("gc cycle",
		"roots", stats.Roots,
		"marked", stats.MarkedNodes,
		"freed_nodes", stats.FreedNodes,
		"freed_links", stats.FreedLinks,
		"elapsed", time.Since(start))
	return stats
}

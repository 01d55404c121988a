package behavior

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/warforge/server/internal/core/ecs"
	"github.com/warforge/server/internal/data"
)

// Processor evaluates declarative behavior trees into a single desired
// action result per entity per tick. The node table is compiled once from
// collections at boot and never mutated afterward.
//
// Determinism contract: nothing on the evaluate path consults wall-clock
// time or randomness, and every entity list it touches is id-sorted.
type Processor struct {
	collections [][]compiledNode
	actions     *Actions
	log         *zap.Logger
}

type compiledNode interface {
	evaluate(ctx *Context, e ecs.EntityID) *Result
}

// selectNode is the prioritized composition: candidates in fixed order,
// first non-nil result wins.
type selectNode struct {
	children []compiledNode
}

func (n *selectNode) evaluate(ctx *Context, e ecs.EntityID) *Result {
	for _, child := range n.children {
		if r := child.evaluate(ctx, e); r != nil {
			return r
		}
	}
	return nil
}

// leafNode binds a node-table slot to a registered action.
type leafNode struct {
	ref    ActionRef
	action Action
}

func (n *leafNode) evaluate(ctx *Context, e ecs.EntityID) *Result {
	r := n.action.Execute(e, ctx)
	if r == nil {
		return nil
	}
	if r.Action.IsNone() && r.Inner == nil {
		r.Action = n.ref
	}
	return r
}

// NewProcessor compiles the declarative collections against the action
// table. Unknown action names and out-of-range child indices are boot
// errors, not runtime surprises.
func NewProcessor(collections []data.TreeCollection, actions *Actions, log *zap.Logger) (*Processor, error) {
	if log == nil {
		log = zap.NewNop()
	}
	p := &Processor{
		collections: make([][]compiledNode, len(collections)),
		actions:     actions,
		log:         log,
	}
	for ci, col := range collections {
		nodes := make([]compiledNode, len(col.Nodes))
		for ni, def := range col.Nodes {
			switch def.Kind {
			case "select":
				if len(def.Children) == 0 {
					return nil, fmt.Errorf("behavior: collection %q node %d: select with no children", col.Name, ni)
				}
				for _, c := range def.Children {
					if c < 0 || c >= len(col.Nodes) {
						return nil, fmt.Errorf("behavior: collection %q node %d: child %d out of range", col.Name, ni, c)
					}
				}
			case "leaf":
				act, ok := actions.Get(def.Action)
				if !ok {
					return nil, fmt.Errorf("behavior: collection %q node %d: unknown action %q", col.Name, ni, def.Action)
				}
				nodes[ni] = &leafNode{ref: ActionRef{Collection: ci, Index: ni}, action: act}
			default:
				return nil, fmt.Errorf("behavior: collection %q node %d: unknown kind %q", col.Name, ni, def.Kind)
			}
		}
		for ni, def := range col.Nodes {
			if def.Kind == "select" {
				nodes[ni] = &selectNode{children: make([]compiledNode, len(def.Children))}
			}
		}
		// Second pass wires select children now that every slot exists,
		// so forward references between selectors resolve.
		for ni, def := range col.Nodes {
			if def.Kind != "select" {
				continue
			}
			sel := nodes[ni].(*selectNode)
			for i, c := range def.Children {
				sel.children[i] = nodes[c]
			}
		}
		p.collections[ci] = nodes
	}
	return p, nil
}

// Evaluate runs the tree rooted at (collection, tree) for one entity.
// A nil result means no behavior applies this tick.
func (p *Processor) Evaluate(collection, tree int, e ecs.EntityID, ctx *Context) *Result {
	if collection < 0 || collection >= len(p.collections) {
		return nil
	}
	nodes := p.collections[collection]
	if tree < 0 || tree >= len(nodes) {
		return nil
	}
	return nodes[tree].evaluate(ctx, e)
}

// ActionAt resolves a leaf identity back to its action. ok=false for
// selector slots and out-of-range refs.
func (p *Processor) ActionAt(ref ActionRef) (Action, bool) {
	if ref.IsNone() || ref.Collection >= len(p.collections) {
		return nil, false
	}
	nodes := p.collections[ref.Collection]
	if ref.Index >= len(nodes) {
		return nil, false
	}
	leaf, ok := nodes[ref.Index].(*leafNode)
	if !ok {
		return nil, false
	}
	return leaf.action, true
}

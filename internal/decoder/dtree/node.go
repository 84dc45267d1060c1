// Package dtree defines the decoder-tree Node hierarchy and the
// Switchable expressions a Switch node dispatches on.
package dtree

import (
	"insndecode/internal/decoder/condition"
	"insndecode/internal/decoder/spec"
)

// Kind tags which variant a Node holds.
type Kind int

const (
	KindEmpty Kind = iota
	KindRule
	KindSequence
	KindIfElse
	KindSwitch
	KindChildReference
)

// Node is a decoder-tree node. Which fields are meaningful depends on Kind;
// see the constructors below for the invariants each variant maintains.
type Node struct {
	Kind Kind

	// KindRule
	Rule *spec.Rule

	// KindSequence
	Items []*Node

	// KindIfElse
	Condition  condition.Condition
	IfBranch   *Node
	ElseBranch *Node

	// KindSwitch
	Expr  Switchable
	Cases []*Node

	// KindChildReference
	RefIndex int
}

// Empty returns the empty leaf.
func Empty() *Node { return &Node{Kind: KindEmpty} }

// RuleLeaf returns a leaf wrapping a matched rule.
func RuleLeaf(r *spec.Rule) *Node {
	if r == nil {
		panic("dtree: nil rule")
	}
	return &Node{Kind: KindRule, Rule: r}
}

// Sequence returns a Sequence node over items, in order.
func Sequence(items ...*Node) *Node {
	return &Node{Kind: KindSequence, Items: items}
}

// IfElse returns an IfElse node.
func IfElse(cond condition.Condition, ifBranch, elseBranch *Node) *Node {
	if ifBranch == nil || elseBranch == nil {
		panic("dtree: IfElse branches must not be nil")
	}
	return &Node{Kind: KindIfElse, Condition: cond, IfBranch: ifBranch, ElseBranch: elseBranch}
}

// Switch returns a Switch node. cases must have exactly expr.NumValues()
// entries.
func Switch(expr Switchable, cases []*Node) *Node {
	if len(cases) != expr.NumValues() {
		panic("dtree: switch case count must equal expr.NumValues()")
	}
	return &Node{Kind: KindSwitch, Expr: expr, Cases: cases}
}

// ChildReference returns a node that, inside a Switch, marks its case as a
// fallthrough to an earlier case's body.
func ChildReference(index int) *Node {
	return &Node{Kind: KindChildReference, RefIndex: index}
}

// Equal reports structural equality: same Kind and recursively equal
// children. Two ChildReference nodes are equal iff they target the same
// case index.
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.Kind != o.Kind {
		return false
	}
	switch n.Kind {
	case KindEmpty:
		return true
	case KindRule:
		return n.Rule == o.Rule
	case KindSequence:
		if len(n.Items) != len(o.Items) {
			return false
		}
		for i := range n.Items {
			if !n.Items[i].Equal(o.Items[i]) {
				return false
			}
		}
		return true
	case KindIfElse:
		return conditionEqual(n.Condition, o.Condition) &&
			n.IfBranch.Equal(o.IfBranch) &&
			n.ElseBranch.Equal(o.ElseBranch)
	case KindSwitch:
		if !switchableEqual(n.Expr, o.Expr) {
			return false
		}
		if len(n.Cases) != len(o.Cases) {
			return false
		}
		for i := range n.Cases {
			if !n.Cases[i].Equal(o.Cases[i]) {
				return false
			}
		}
		return true
	case KindChildReference:
		return n.RefIndex == o.RefIndex
	default:
		return false
	}
}

func conditionEqual(a, b condition.Condition) bool {
	return a.Decode.Equal(b.Decode) && a.Flags.Equal(b.Flags)
}

func switchableEqual(a, b Switchable) bool {
	switch av := a.(type) {
	case Bitfield:
		bv, ok := b.(Bitfield)
		return ok && av.Equal(bv)
	case BitfieldSet:
		bv, ok := b.(BitfieldSet)
		return ok && av.Equal(bv)
	default:
		return false
	}
}

// Visitor is called once per node, pre-order, by Touch.
type Visitor func(*Node)

// Touch walks the tree pre-order, calling visit on every node including
// the root.
func Touch(n *Node, visit Visitor) {
	if n == nil {
		return
	}
	visit(n)
	switch n.Kind {
	case KindSequence:
		for _, c := range n.Items {
			Touch(c, visit)
		}
	case KindIfElse:
		Touch(n.IfBranch, visit)
		Touch(n.ElseBranch, visit)
	case KindSwitch:
		for _, c := range n.Cases {
			Touch(c, visit)
		}
	}
}

package resolver

import (
	"github.com/G-USI/wirecrab/ast"
	"github.com/G-USI/wirecrab/wcerrors"
)

// refKeyword is the mapping key that marks a reference node.
const refKeyword = "$ref"

// Expand returns a copy of value with every $ref node replaced by the value
// it references, recursively. References are resolved relative to
// currentFile.
//
// A mapping whose "$ref" member is a string is replaced wholesale: the
// "$ref" key and any siblings are dropped. A reference that reappears on its
// own resolution chain fails with wcerrors.ErrCircularReference; the same
// target reached from unrelated branches is expanded each time. Any failure
// aborts the whole expansion and no partial result is returned.
func (r *Resolver) Expand(value ast.Value, currentFile string) (ast.Value, error) {
	e := &expansion{
		r:     r,
		log:   r.log.With("root", currentFile),
		chain: make(map[string]bool),
	}
	return e.expand(value, currentFile)
}

// ExpandFile loads the document at path (a file path or URL) through the
// document cache and expands it.
func (r *Resolver) ExpandFile(path string) (ast.Value, error) {
	loc := ParseLocation(path)
	doc, err := r.Document(loc)
	if err != nil {
		return nil, err
	}
	r.log.Info("expanding document", "location", loc.String())
	return r.Expand(doc, loc.String())
}

// DereferenceFile is a convenience wrapper that creates a Resolver with opts
// and expands the document at path.
func DereferenceFile(path string, opts ...Option) (ast.Value, error) {
	r, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return r.ExpandFile(path)
}

// expansion is the state of one top-level Expand call.
type expansion struct {
	r   *Resolver
	log Logger
	// chain holds the "<base>#<ref>" keys of references currently being
	// expanded, outermost first. Entries are removed on return so only the
	// active resolution path counts as a cycle.
	chain map[string]bool
}

func (e *expansion) expand(v ast.Value, base string) (ast.Value, error) {
	switch tv := v.(type) {
	case *ast.Object:
		if refVal, ok := tv.Get(refKeyword); ok {
			if ref, ok := refVal.(ast.String); ok {
				return e.expandRef(string(ref), base)
			}
		}
		members := make([]ast.Member, 0, tv.Len())
		for k, child := range tv.All() {
			expanded, err := e.expand(child, base)
			if err != nil {
				return nil, err
			}
			members = append(members, ast.Member{Key: k, Value: expanded})
		}
		return ast.NewObject(members...), nil

	case ast.Array:
		out := make(ast.Array, len(tv))
		for i, child := range tv {
			expanded, err := e.expand(child, base)
			if err != nil {
				return nil, err
			}
			out[i] = expanded
		}
		return out, nil

	default:
		return v, nil
	}
}

func (e *expansion) expandRef(ref, base string) (ast.Value, error) {
	key := base + "#" + ref
	if e.chain[key] {
		e.log.Warn("circular reference detected", "ref", ref, "base", base)
		return nil, &wcerrors.ReferenceError{Ref: ref, Base: base, IsCircular: true}
	}
	if limit := e.r.cfg.maxRefDepth; len(e.chain) >= limit {
		return nil, &wcerrors.ResourceLimitError{
			ResourceType: "ref_depth",
			Limit:        int64(limit),
			Actual:       int64(len(e.chain) + 1),
			Message:      "reference chain too deep at " + ref,
		}
	}

	e.chain[key] = true
	defer delete(e.chain, key)

	target, err := e.r.refTarget(base, ref)
	if err != nil {
		return nil, wrapRefError(ref, base, err)
	}
	resolved, err := e.r.Resolve(target)
	if err != nil {
		return nil, wrapRefError(ref, base, err)
	}
	e.r.countExpanded()
	e.log.Debug("resolved reference", "ref", ref, "base", base, "depth", len(e.chain))

	next := base
	if e.r.cfg.rebaseExternalRefs {
		next = target.Location.String()
	}
	return e.expand(resolved, next)
}

// wrapRefError attaches the failing reference to err, unless err already
// describes that reference.
func wrapRefError(ref, base string, err error) error {
	if re, ok := err.(*wcerrors.ReferenceError); ok && re.Ref == ref {
		if re.Base == "" {
			re.Base = base
		}
		return re
	}
	return &wcerrors.ReferenceError{Ref: ref, Base: base, Cause: err}
}

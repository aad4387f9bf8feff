// Package schema validates entity and edge props against a CUE schema.
//
// A schema may define up to three fields:
//
//	entity: {type?: string}            // every entity
//	edge: {weight?: number}            // every edge
//	edges: hasPart: {order?: int}      // edges labeled hasPart
//
// Props are encoded as CUE data, unified with the applicable schemas and
// checked for concreteness, so a required field missing from the props is a
// violation. Schemas are open unless written with close() or definitions.
package schema

import (
	"fmt"
	"os"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/semnet/internal/network"
	"github.com/roach88/semnet/internal/props"
)

// CompileError reports an invalid schema source with its position.
type CompileError struct {
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return e.Message
}

// ViolationError reports props that do not conform to the schema. It
// matches network.ErrSchemaViolation with errors.Is.
type ViolationError struct {
	// Kind is "entity" or "edge".
	Kind string

	// Ref is the entity id or the edge label.
	Ref string

	// Message is CUE's first error message.
	Message string
}

func (e *ViolationError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Kind, e.Ref, e.Message)
}

// Is matches network.ErrSchemaViolation.
func (e *ViolationError) Is(target error) bool {
	return target == network.ErrSchemaViolation
}

// Validator checks props against a compiled CUE schema. It implements
// network.Validator and is safe for concurrent use.
type Validator struct {
	mu sync.Mutex

	source string
	ctx    *cue.Context
	entity cue.Value
	edge   cue.Value
	edges  cue.Value
}

var _ network.Validator = (*Validator)(nil)

// Compile builds a Validator from CUE source.
func Compile(source string) (*Validator, error) {
	return compile(source, "schema.cue")
}

// Load reads and compiles a CUE schema file.
func Load(path string) (*Validator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return compile(string(data), path)
}

func compile(source, filename string) (*Validator, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(source, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	s := &Validator{
		source: source,
		ctx:    ctx,
		entity: v.LookupPath(cue.ParsePath("entity")),
		edge:   v.LookupPath(cue.ParsePath("edge")),
		edges:  v.LookupPath(cue.ParsePath("edges")),
	}
	for name, field := range map[string]cue.Value{"entity": s.entity, "edge": s.edge, "edges": s.edges} {
		if field.Exists() && field.IncompleteKind() != cue.StructKind {
			return nil, &CompileError{
				Message: fmt.Sprintf("%s must be a struct, got %v", name, field.IncompleteKind()),
				Pos:     field.Pos(),
			}
		}
	}
	return s, nil
}

// Source returns the schema text the validator was compiled from.
func (s *Validator) Source() string {
	return s.source
}

// ValidateEntity checks entity props against the entity schema.
func (s *Validator) ValidateEntity(id string, p props.Object) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.check("entity", id, p, s.entity)
}

// ValidateEdge checks edge props against the edge schema and the schema
// for its label, when present.
func (s *Validator) ValidateEdge(label string, p props.Object) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	perLabel := cue.Value{}
	if s.edges.Exists() {
		perLabel = s.edges.LookupPath(cue.MakePath(cue.Str(label)))
	}
	return s.check("edge", label, p, s.edge, perLabel)
}

func (s *Validator) check(kind, ref string, p props.Object, schemas ...cue.Value) error {
	data := s.ctx.Encode(p.ToMap())
	if err := data.Err(); err != nil {
		return &ViolationError{Kind: kind, Ref: ref, Message: firstMessage(err)}
	}

	for _, schema := range schemas {
		if !schema.Exists() {
			continue
		}
		unified := schema.Unify(data)
		if err := unified.Validate(cue.Concrete(true)); err != nil {
			return &ViolationError{Kind: kind, Ref: ref, Message: firstMessage(err)}
		}
	}
	return nil
}

func firstMessage(err error) string {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err.Error()
	}
	return errs[0].Error()
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		return &CompileError{Message: first.Error(), Pos: positions[0]}
	}
	return &CompileError{Message: first.Error()}
}

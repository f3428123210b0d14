package schema

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/umee-network/wallet-registry/internal/record"
)

//go:embed chain.cue
var chainSchema string

// definitions maps a kind to its CUE definition in chain.cue.
var definitions = map[Kind]string{
	KindCosmos: "#CosmosChain",
	KindEvm:    "#EvmChain",
}

// structure holds a compiled chain.cue. A cue.Context is not safe for
// concurrent use, so every call goes through mu.
type structure struct {
	mu     sync.Mutex
	ctx    *cue.Context
	schema cue.Value
}

func newStructure() (*structure, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(chainSchema, cue.Filename("chain.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("failed to compile chain schema: %w", err)
	}
	return &structure{ctx: ctx, schema: schema}, nil
}

// check returns one message per structural violation.
func (s *structure) check(name string, doc record.Document) []string {
	kind, err := KindOf(doc)
	if err != nil {
		return []string{err.Error()}
	}

	data, err := normalizeDecimals(doc).Encode()
	if err != nil {
		return []string{fmt.Sprintf("failed to encode document: %v", err)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	value := s.ctx.CompileBytes(data, cue.Filename(name))
	if err := value.Err(); err != nil {
		return formatCUEErrors(err)
	}

	def := s.schema.LookupPath(cue.ParsePath(definitions[kind]))
	if err := def.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return formatCUEErrors(err)
	}
	return nil
}

func formatCUEErrors(err error) []string {
	var messages []string
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		msg := fmt.Sprintf(format, args...)
		if path := e.Path(); len(path) > 0 {
			msg = fmt.Sprintf("%s: %s", strings.Join(path, "."), msg)
		}
		messages = append(messages, msg)
	}
	if len(messages) == 0 {
		messages = append(messages, err.Error())
	}
	return messages
}

var (
	defaultStructure     *structure
	defaultStructureErr  error
	defaultStructureOnce sync.Once
)

// ValidateStructure checks doc against the CUE definition of its variant:
// required keys present, decimals an integer, strings are strings. Unknown
// fields are allowed.
func ValidateStructure(doc record.Document) error {
	defaultStructureOnce.Do(func() {
		defaultStructure, defaultStructureErr = newStructure()
	})
	if defaultStructureErr != nil {
		return defaultStructureErr
	}

	if problems := defaultStructure.check("chain.json", doc); len(problems) > 0 {
		return &StructureError{Problems: problems}
	}
	return nil
}

// StructureError lists the violations found by the structural check.
type StructureError struct {
	Problems []string
}

func (e *StructureError) Error() string {
	if len(e.Problems) == 1 {
		return "structure: " + e.Problems[0]
	}
	return fmt.Sprintf("structure: %s (and %d more)", e.Problems[0], len(e.Problems)-1)
}

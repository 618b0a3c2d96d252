package membership

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrShapeExists   = errors.New("shape already registered")
	ErrShapeNotFound = errors.New("shape not found")
)

// Factory builds a membership function from its control points.
type Factory func(params ...float64) (Function, error)

type ShapeSpec struct {
	Kind    string
	Arity   int
	Factory Factory
}

type registeredShape struct {
	arity   int
	factory Factory
}

var shapeRegistry = struct {
	mu sync.RWMutex
	m  map[string]registeredShape
}{
	m: make(map[string]registeredShape),
}

func init() {
	initializeBuiltInShapes()
}

func initializeBuiltInShapes() {
	MustRegister(ShapeSpec{Kind: "triangular", Arity: 3, Factory: func(p ...float64) (Function, error) {
		return Triangular(p[0], p[1], p[2]), nil
	}})
	MustRegister(ShapeSpec{Kind: "trapezoidal", Arity: 4, Factory: func(p ...float64) (Function, error) {
		return Trapezoidal(p[0], p[1], p[2], p[3]), nil
	}})
	MustRegister(ShapeSpec{Kind: "gaussian", Arity: 2, Factory: func(p ...float64) (Function, error) {
		fn, err := Gaussian(p[0], p[1])
		if err != nil {
			return nil, err
		}
		return fn, nil
	}})
	MustRegister(ShapeSpec{Kind: "sigmoid", Arity: 2, Factory: func(p ...float64) (Function, error) {
		return Sigmoid(p[0], p[1]), nil
	}})
}

// Register adds a named shape. Arity 0 accepts any number of parameters.
func Register(spec ShapeSpec) error {
	if spec.Kind == "" {
		return errors.New("shape kind is required")
	}
	if spec.Factory == nil {
		return errors.New("shape factory is required")
	}
	if spec.Arity < 0 {
		return fmt.Errorf("%w: negative arity for %s", ErrInvalidParameter, spec.Kind)
	}

	shapeRegistry.mu.Lock()
	defer shapeRegistry.mu.Unlock()

	if _, exists := shapeRegistry.m[spec.Kind]; exists {
		return fmt.Errorf("%w: %s", ErrShapeExists, spec.Kind)
	}
	shapeRegistry.m[spec.Kind] = registeredShape{arity: spec.Arity, factory: spec.Factory}
	return nil
}

func MustRegister(spec ShapeSpec) {
	if err := Register(spec); err != nil {
		panic(err)
	}
}

// New builds a registered shape by kind.
func New(kind string, params ...float64) (Function, error) {
	shapeRegistry.mu.RLock()
	entry, ok := shapeRegistry.m[kind]
	shapeRegistry.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrShapeNotFound, kind)
	}
	if entry.arity > 0 && len(params) != entry.arity {
		return nil, fmt.Errorf("%w: %s expects %d parameters, got %d", ErrInvalidParameter, kind, entry.arity, len(params))
	}
	fn, err := entry.factory(params...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}
	return fn, nil
}

func Kinds() []string {
	shapeRegistry.mu.RLock()
	defer shapeRegistry.mu.RUnlock()

	kinds := make([]string, 0, len(shapeRegistry.m))
	for kind := range shapeRegistry.m {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

func resetShapeRegistryForTests() {
	shapeRegistry.mu.Lock()
	shapeRegistry.m = make(map[string]registeredShape)
	shapeRegistry.mu.Unlock()
	initializeBuiltInShapes()
}

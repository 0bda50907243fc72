package scheme

import (
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// ReservedPrefix marks the method namespace JSON-RPC 2.0 reserves for
// protocol-internal extensions. Messages in this namespace never receive a
// response.
const ReservedPrefix = "rpc."

// Method describes a single method a handler recognizes.
type Method struct {
	// Name is the wire-level method name.
	Name string
	// ParamsRequired rejects calls that omit the params member.
	ParamsRequired bool
}

// Scheme is the protocol configuration a handler declares at construction
// time. The codec consults it to validate incoming messages before dispatch.
// Safe for concurrent use.
type Scheme struct {
	methods *sync.Map
}

func New() *Scheme {
	return &Scheme{
		methods: new(sync.Map),
	}
}

// Add declares a method. Re-declaring a name overwrites the previous entry.
func (s *Scheme) Add(m Method) {
	log.Debug("declaring method in scheme", "method", m.Name, "paramsRequired", m.ParamsRequired)
	s.methods.Store(m.Name, m)
}

// Lookup returns the declaration for a method name.
func (s *Scheme) Lookup(name string) (Method, bool) {
	m, ok := s.methods.Load(name)
	if !ok {
		return Method{}, false
	}
	return m.(Method), true
}

// Methods returns the declared method names.
func (s *Scheme) Methods() []string {
	names := make([]string, 0)

	s.methods.Range(func(key, value any) bool {
		names = append(names, key.(string))
		return true
	})

	return names
}

// Reserved reports whether a method name lives in the protocol-internal
// namespace.
func Reserved(name string) bool {
	return strings.HasPrefix(name, ReservedPrefix)
}

package reflection

import (
	"fmt"
	"reflect"
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// TypeID identifies one native type. Equal types always yield equal ids.
type TypeID uint64

// InvalidTypeID is never produced for a real type.
const InvalidTypeID TypeID = 0

var (
	typeIDCache sync.Map // reflect.Type -> TypeID
	typeIDNames sync.Map // TypeID -> canonical name

	// typeOwnersMu guards typeOwners, the Go type that claimed each name.
	typeOwnersMu sync.Mutex
	typeOwners   = map[string]reflect.Type{}
)

// TypeOf returns the TypeID of T. The id is computed on first use and cached
// for the lifetime of the process.
func TypeOf[T any]() TypeID {
	return TypeIDOf(reflect.TypeFor[T]())
}

// TypeIDOf returns the TypeID of t, or InvalidTypeID for a nil type.
//
// Distinct Go types can share a spelling, e.g. types declared inside two
// functions of one package. The first type seen keeps the plain name; later
// ones are numbered ("pkg.local#2") so their ids never coincide.
func TypeIDOf(t reflect.Type) TypeID {
	if t == nil {
		return InvalidTypeID
	}
	if id, ok := typeIDCache.Load(t); ok {
		return id.(TypeID)
	}

	typeOwnersMu.Lock()
	defer typeOwnersMu.Unlock()
	if id, ok := typeIDCache.Load(t); ok {
		return id.(TypeID)
	}

	base := canonicalName(t)
	name := base
	for n := 2; ; n++ {
		owner, taken := typeOwners[name]
		if !taken || owner == t {
			break
		}
		name = base + "#" + strconv.Itoa(n)
	}
	typeOwners[name] = t

	id := NamedTypeID(name)
	typeIDCache.Store(t, id)
	return id
}

// NamedTypeID returns the id for a type known only by name, e.g. a type
// defined on the engine side. It shares the hash space with TypeOf, so the
// name of a Go type yields that type's id.
//
// Two different names hashing to the same id is a programming error and panics.
func NamedTypeID(name string) TypeID {
	h := xxhash.Sum64String(name)
	if h == uint64(InvalidTypeID) {
		h = xxhash.Sum64String(name + "\x00")
	}
	id := TypeID(h)
	if prev, loaded := typeIDNames.LoadOrStore(id, name); loaded && prev.(string) != name {
		panic(fmt.Sprintf("reflection: type id collision between %q and %q", prev, name))
	}
	return id
}

// CanonicalName returns the name id was derived from, if it has been seen.
func CanonicalName(id TypeID) (string, bool) {
	name, ok := typeIDNames.Load(id)
	if !ok {
		return "", false
	}
	return name.(string), true
}

func (id TypeID) String() string {
	return fmt.Sprintf("%016x", uint64(id))
}

func (id TypeID) Valid() bool {
	return id != InvalidTypeID
}

func canonicalName(t reflect.Type) string {
	if name := t.Name(); name != "" {
		if pkg := t.PkgPath(); pkg != "" {
			return pkg + "." + name
		}
		return name
	}

	switch t.Kind() {
	case reflect.Pointer:
		return "*" + canonicalName(t.Elem())
	case reflect.Slice:
		return "[]" + canonicalName(t.Elem())
	case reflect.Array:
		return "[" + strconv.Itoa(t.Len()) + "]" + canonicalName(t.Elem())
	case reflect.Map:
		return "map[" + canonicalName(t.Key()) + "]" + canonicalName(t.Elem())
	case reflect.Chan:
		return t.ChanDir().String() + " " + canonicalName(t.Elem())
	default:
		return t.String()
	}
}

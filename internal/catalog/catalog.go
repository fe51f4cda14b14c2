// # internal/catalog/catalog.go
package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"classjs/internal/core/errors"
)

// Field is a field as seen from a class, possibly inherited.
type Field struct {
	Name      string
	Type      string
	Static    bool
	Declaring *Class
}

// Method is one overload candidate, possibly inherited.
type Method struct {
	Name      string
	Static    bool
	Abstract  bool
	Params    []string
	Returns   string
	Declaring *Class
}

// Class is the flattened, read-only view of a descriptor. Own members
// precede inherited ones.
type Class struct {
	desc       ClassDescriptor
	super      *Class
	interfaces []*Class
	fields     map[string]Field
	methods    map[string][]Method
	inner      map[string]string
}

func (c *Class) Name() string          { return c.desc.Name }
func (c *Class) QualifiedName() string { return c.desc.QualifiedName() }
func (c *Class) Super() *Class         { return c.super }
func (c *Class) IsEnum() bool          { return c.desc.Kind == KindEnum }
func (c *Class) IsInterface() bool     { return c.desc.Kind == KindInterface }
func (c *Class) IsInner() bool         { return c.desc.Outer != "" && !c.desc.Anonymous && !c.desc.Local }
func (c *Class) IsAnonymous() bool     { return c.desc.Anonymous }
func (c *Class) IsGlobal() bool {
	return c.desc.GlobalScope || c.desc.hasAnnotation(AnnotationGlobalScope)
}
func (c *Class) IsDataType() bool {
	return c.desc.DataType || c.desc.hasAnnotation(AnnotationDataType)
}

// Binding is the name of the generated constructor variable.
func (c *Class) Binding() string {
	return c.desc.Name
}

// HasExplicitSuper reports whether the superclass is something other than
// the universal root.
func (c *Class) HasExplicitSuper() bool {
	return c.super != nil && c.super.QualifiedName() != ObjectClass
}

func (c *Class) Field(name string) (Field, bool) {
	f, ok := c.fields[name]
	return f, ok
}

func (c *Class) Methods(name string) []Method {
	return c.methods[name]
}

// Method returns the first overload candidate. Argument types are not
// consulted.
func (c *Class) Method(name string) (Method, bool) {
	ms := c.methods[name]
	if len(ms) == 0 {
		return Method{}, false
	}
	return ms[0], true
}

// InnerType returns the qualified name of a member type declared by c or
// one of its superclasses.
func (c *Class) InnerType(simple string) (string, bool) {
	for k := c; k != nil; k = k.super {
		if q, ok := k.inner[simple]; ok {
			return q, true
		}
	}
	return "", false
}

// IsAncestorOf reports whether c is a strict superclass of other.
func (c *Class) IsAncestorOf(other *Class) bool {
	if other == nil {
		return false
	}
	for k := other.super; k != nil; k = k.super {
		if k == c {
			return true
		}
	}
	return false
}

// Implements reports whether c is an interface implemented by other or one
// of its superclasses.
func (c *Class) Implements(other *Class) bool {
	if other == nil || !c.IsInterface() {
		return false
	}
	seen := map[*Class]bool{}
	var visit func(k *Class) bool
	visit = func(k *Class) bool {
		if k == nil || seen[k] {
			return false
		}
		seen[k] = true
		for _, i := range k.interfaces {
			if i == c || visit(i) {
				return true
			}
		}
		return visit(k.super)
	}
	return visit(other)
}

// Catalog is an immutable snapshot shared by every unit of a build.
type Catalog struct {
	classes     map[string]*Class
	fingerprint string
}

func (c *Catalog) Lookup(qualified string) (*Class, bool) {
	k, ok := c.classes[qualified]
	return k, ok
}

func (c *Catalog) Len() int { return len(c.classes) }

// Fingerprint identifies the catalog contents; it changes whenever any
// descriptor changes.
func (c *Catalog) Fingerprint() string {
	return c.fingerprint
}

// ResolveType resolves a simple or dotted type name as seen from ctx:
// enclosing member types, single-type imports, the same package, on-demand
// imports, then java.lang.
func (c *Catalog) ResolveType(name string, ctx TypeContext) (*Class, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false
	}
	if head, rest, dotted := strings.Cut(name, "."); dotted {
		if k, ok := c.classes[name]; ok {
			return k, true
		}
		outer, ok := c.ResolveType(head, ctx)
		if !ok {
			return nil, false
		}
		for _, part := range strings.Split(rest, ".") {
			q, ok := outer.InnerType(part)
			if !ok {
				return nil, false
			}
			if outer, ok = c.classes[q]; !ok {
				return nil, false
			}
		}
		return outer, true
	}
	for _, enc := range ctx.Enclosing {
		if k, ok := c.classes[enc]; ok {
			if k.Name() == name {
				return k, true
			}
			if q, ok := k.InnerType(name); ok {
				return c.Lookup(q)
			}
		}
	}
	for _, imp := range ctx.Imports {
		if imp == name || strings.HasSuffix(imp, "."+name) {
			if k, ok := c.classes[imp]; ok {
				return k, true
			}
		}
	}
	candidates := make([]string, 0, len(ctx.Wildcards)+2)
	if ctx.Package != "" {
		candidates = append(candidates, ctx.Package+"."+name)
	} else {
		candidates = append(candidates, name)
	}
	for _, w := range ctx.Wildcards {
		candidates = append(candidates, w+"."+name)
	}
	candidates = append(candidates, "java.lang."+name)
	for _, q := range candidates {
		if k, ok := c.classes[q]; ok {
			return k, true
		}
	}
	return nil, false
}

// Builder collects descriptors and resolves them into a Catalog.
type Builder struct {
	descs   map[string]ClassDescriptor
	globals map[string]bool
}

func NewBuilder() *Builder {
	b := &Builder{
		descs:   make(map[string]ClassDescriptor),
		globals: make(map[string]bool),
	}
	for _, d := range builtins() {
		b.descs[d.QualifiedName()] = d
	}
	return b
}

// Add registers a descriptor. Source descriptors replace library ones of the
// same name; two source descriptors with one name are rejected.
func (b *Builder) Add(d ClassDescriptor) error {
	if d.Name == "" {
		return errors.New(errors.CodeValidationError, "class descriptor without a name")
	}
	if d.Kind == "" {
		d.Kind = KindClass
	}
	q := d.QualifiedName()
	if prev, ok := b.descs[q]; ok && prev.Source && d.Source {
		return errors.AddContext(errors.New(errors.CodeValidationError, "duplicate class"), errors.CtxSymbol, q)
	}
	b.descs[q] = d
	return nil
}

// MarkGlobal flags a type as global-scope regardless of its annotations.
func (b *Builder) MarkGlobal(qualified string) {
	b.globals[qualified] = true
}

func (b *Builder) Build() (*Catalog, error) {
	cat := &Catalog{classes: make(map[string]*Class, len(b.descs))}
	names := make([]string, 0, len(b.descs))
	for q := range b.descs {
		names = append(names, q)
	}
	sort.Strings(names)

	for _, q := range names {
		d := b.descs[q]
		if b.globals[q] {
			d.GlobalScope = true
		}
		cat.classes[q] = &Class{desc: d, inner: make(map[string]string)}
	}
	for _, q := range names {
		k := cat.classes[q]
		if k.desc.Outer != "" && !k.desc.Anonymous {
			if outer, ok := cat.classes[k.desc.Outer]; ok {
				outer.inner[k.desc.Name] = q
			}
		}
	}

	// Supertypes are resolved once every class is known, so that source
	// classes may extend each other in any order.
	for _, q := range names {
		k := cat.classes[q]
		if q == ObjectClass {
			continue
		}
		ctx := b.contextFor(k.desc)
		superName := k.desc.Super
		if superName == "" {
			superName = ObjectClass
		}
		super, ok := cat.resolveSupertype(superName, ctx)
		if !ok {
			slog.Debug("unknown supertype, treating as root", "class", q, "super", superName)
			super = cat.classes[ObjectClass]
		}
		if super.IsInterface() {
			// Anonymous bodies name an interface where a class would name its superclass.
			k.interfaces = append(k.interfaces, super)
			super = cat.classes[ObjectClass]
		}
		k.super = super
		for _, iname := range k.desc.Interfaces {
			if ik, ok := cat.resolveSupertype(iname, ctx); ok {
				k.interfaces = append(k.interfaces, ik)
			}
		}
	}
	for _, q := range names {
		if err := checkAcyclic(cat.classes[q]); err != nil {
			return nil, err
		}
	}

	done := make(map[*Class]bool, len(names))
	for _, q := range names {
		flatten(cat.classes[q], done)
	}
	cat.fingerprint = fingerprint(b.descs, names, b.globals)
	return cat, nil
}

func (b *Builder) contextFor(d ClassDescriptor) TypeContext {
	ctx := d.Context
	if ctx.Package == "" {
		ctx.Package = d.Package
	}
	if len(ctx.Enclosing) == 0 && d.Outer != "" {
		ctx.Enclosing = []string{d.Outer}
	}
	return ctx
}

func (c *Catalog) resolveSupertype(name string, ctx TypeContext) (*Class, bool) {
	if i := strings.IndexByte(name, '<'); i >= 0 {
		name = name[:i]
	}
	if k, ok := c.classes[name]; ok {
		return k, true
	}
	// The class being declared is not a valid enclosing lookup for its own
	// supertype; only the outer chain is.
	return c.ResolveType(name, ctx)
}

func checkAcyclic(k *Class) error {
	seen := map[*Class]bool{}
	for p := k; p != nil; p = p.super {
		if seen[p] {
			return errors.AddContext(errors.New(errors.CodeValidationError, "cyclic inheritance"), errors.CtxSymbol, k.QualifiedName())
		}
		seen[p] = true
	}
	return nil
}

func flatten(k *Class, done map[*Class]bool) {
	if done[k] {
		return
	}
	done[k] = true
	if k.super != nil {
		flatten(k.super, done)
	}
	for _, i := range k.interfaces {
		flatten(i, done)
	}

	k.fields = make(map[string]Field)
	k.methods = make(map[string][]Method)
	for _, f := range k.desc.Fields {
		if _, dup := k.fields[f.Name]; !dup {
			k.fields[f.Name] = Field{Name: f.Name, Type: f.Type, Static: f.Static, Declaring: k}
		}
	}
	for _, m := range k.desc.Methods {
		k.methods[m.Name] = append(k.methods[m.Name], Method{
			Name:      m.Name,
			Static:    m.Static,
			Abstract:  m.Abstract,
			Params:    m.Params,
			Returns:   m.Returns,
			Declaring: k,
		})
	}
	inherit := func(from *Class) {
		for name, f := range from.fields {
			if _, ok := k.fields[name]; !ok {
				k.fields[name] = f
			}
		}
		for name, ms := range from.methods {
			k.methods[name] = append(k.methods[name], ms...)
		}
	}
	if k.super != nil {
		inherit(k.super)
	}
	for _, i := range k.interfaces {
		inherit(i)
	}
}

func fingerprint(descs map[string]ClassDescriptor, names []string, globals map[string]bool) string {
	h := sha256.New()
	for _, q := range names {
		d := descs[q]
		fmt.Fprintf(h, "%s|%+v|%t\n", q, d, globals[q])
	}
	return hex.EncodeToString(h.Sum(nil))
}

func builtins() []ClassDescriptor {
	lang := func(name, super string, methods ...MethodDescriptor) ClassDescriptor {
		return ClassDescriptor{Name: name, Package: "java.lang", Kind: KindClass, Super: super, Methods: methods}
	}
	object := lang("Object", "",
		MethodDescriptor{Name: "toString", Returns: "String"},
		MethodDescriptor{Name: "equals", Params: []string{"Object"}, Returns: "boolean"},
		MethodDescriptor{Name: "hashCode", Returns: "int"},
	)
	return []ClassDescriptor{
		object,
		lang("String", ObjectClass,
			MethodDescriptor{Name: "length", Returns: "int"},
			MethodDescriptor{Name: "charAt", Params: []string{"int"}, Returns: "char"},
			MethodDescriptor{Name: "substring", Params: []string{"int", "int"}, Returns: "String"},
			MethodDescriptor{Name: "indexOf", Params: []string{"String"}, Returns: "int"},
		),
		lang("Throwable", ObjectClass, MethodDescriptor{Name: "getMessage", Returns: "String"}),
		lang("Exception", "java.lang.Throwable"),
		lang("RuntimeException", "java.lang.Exception"),
		lang("Math", ObjectClass,
			MethodDescriptor{Name: "abs", Static: true, Params: []string{"double"}, Returns: "double"},
			MethodDescriptor{Name: "max", Static: true, Params: []string{"double", "double"}, Returns: "double"},
			MethodDescriptor{Name: "min", Static: true, Params: []string{"double", "double"}, Returns: "double"},
			MethodDescriptor{Name: "floor", Static: true, Params: []string{"double"}, Returns: "double"},
			MethodDescriptor{Name: "random", Static: true, Returns: "double"},
		),
	}
}

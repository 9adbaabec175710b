package schema

import "fmt"

// AttributeType is the storage type of an attribute.
type AttributeType string

const (
	TypeString     AttributeType = "string"
	TypeNumber     AttributeType = "number"
	TypeBool       AttributeType = "bool"
	TypeDate       AttributeType = "date"
	TypeCollection AttributeType = "collection"
)

// ValidTypes lists the accepted attribute types.
var ValidTypes = []AttributeType{TypeString, TypeNumber, TypeBool, TypeDate, TypeCollection}

// IsValid reports whether t is one of ValidTypes.
func (t AttributeType) IsValid() bool {
	for _, v := range ValidTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Attribute identifies a model property.
type Attribute struct {
	ModelKey  string        `json:"model_key"`
	JSONKey   string        `json:"json_key"`
	ItemClass string        `json:"item_class,omitempty"`
	Type      AttributeType `json:"type,omitempty"`
}

// Attr returns a scalar attribute whose column key equals its model key.
func Attr(key string) Attribute {
	return Attribute{ModelKey: key, JSONKey: key}
}

// Collection returns a collection attribute holding items of itemClass.
func Collection(key, itemClass string) Attribute {
	return Attribute{ModelKey: key, JSONKey: key, ItemClass: itemClass, Type: TypeCollection}
}

// IsCollection reports whether the attribute is stored in a join table.
func (a Attribute) IsCollection() bool {
	return a.ItemClass != "" || a.Type == TypeCollection
}

func (a Attribute) String() string {
	if a.JSONKey != "" && a.JSONKey != a.ModelKey {
		return fmt.Sprintf("%s(%s)", a.ModelKey, a.JSONKey)
	}
	return a.ModelKey
}

// Class is the metadata of a model class. Name is used as the SQL table name.
type Class struct {
	Name       string      `json:"name"`
	Attributes []Attribute `json:"attributes"`
}

// Attribute looks up an attribute by model key.
func (c *Class) Attribute(modelKey string) (Attribute, bool) {
	for _, a := range c.Attributes {
		if a.ModelKey == modelKey {
			return a, true
		}
	}
	return Attribute{}, false
}

// Scalars returns the attributes persisted as columns of the class table.
// Order follows declaration order.
func (c *Class) Scalars() []Attribute {
	var out []Attribute
	for _, a := range c.Attributes {
		if !a.IsCollection() {
			out = append(out, a)
		}
	}
	return out
}

// Collections returns the attributes persisted in join tables.
func (c *Class) Collections() []Attribute {
	var out []Attribute
	for _, a := range c.Attributes {
		if a.IsCollection() {
			out = append(out, a)
		}
	}
	return out
}

// JoinTableNamer names the join table between an owner class and an item class.
type JoinTableNamer func(owner, item string) string

// TableNameForJoin is the default JoinTableNamer: the two class names
// concatenated, e.g. "ThreadLabel".
func TableNameForJoin(owner, item string) string {
	return owner + item
}

// Schema is a set of classes keyed by name.
type Schema struct {
	Classes map[string]*Class
	// Order preserves the order classes were loaded in.
	Order []string
}

// NewSchema builds a schema from classes.
func NewSchema(classes ...*Class) *Schema {
	s := &Schema{Classes: make(map[string]*Class, len(classes))}
	for _, c := range classes {
		s.Add(c)
	}
	return s
}

// Add registers a class, replacing any class with the same name.
func (s *Schema) Add(c *Class) {
	if _, ok := s.Classes[c.Name]; !ok {
		s.Order = append(s.Order, c.Name)
	}
	s.Classes[c.Name] = c
}

// Class looks up a class by name.
func (s *Schema) Class(name string) (*Class, error) {
	c, ok := s.Classes[name]
	if !ok {
		return nil, fmt.Errorf("unknown class %q", name)
	}
	return c, nil
}

package tasks

import "strings"

// GeomTag classifies a geometry for reward computation. A geometry may
// carry several tags.
type GeomTag uint8

const (
	TagGripper GeomTag = 1 << iota
	TagObject
	TagTable
)

// Keywords that geometry names are matched against
const (
	GripperKeyword = "gripper"
	TableKeyword   = "table"
)

// Has returns whether t carries every tag in o
func (t GeomTag) Has(o GeomTag) bool {
	return o != 0 && t&o == o
}

// TagGeom classifies the geometry called name by substring containment
// of the gripper keyword, the object names and the table keyword
func TagGeom(name string, objects ...string) GeomTag {
	var tag GeomTag
	if strings.Contains(name, GripperKeyword) {
		tag |= TagGripper
	}
	for _, object := range objects {
		if object != "" && strings.Contains(name, object) {
			tag |= TagObject
			break
		}
	}
	if strings.Contains(name, TableKeyword) {
		tag |= TagTable
	}
	return tag
}

// Tagger caches the tags of geometry names. Names are resolved once,
// either up front from the model or on first sight.
type Tagger struct {
	objects []string
	tags    map[string]GeomTag
}

// NewTagger returns a Tagger for the argument objects, resolving the
// tags of names immediately
func NewTagger(names []string, objects ...string) *Tagger {
	t := &Tagger{
		objects: objects,
		tags:    make(map[string]GeomTag, len(names)),
	}
	for _, name := range names {
		t.tags[name] = TagGeom(name, objects...)
	}
	return t
}

// Tag returns the tags of the geometry called name
func (t *Tagger) Tag(name string) GeomTag {
	if tag, ok := t.tags[name]; ok {
		return tag
	}
	tag := TagGeom(name, t.objects...)
	t.tags[name] = tag
	return tag
}

// Pairs returns whether the contact between geometries a and b is
// between a geometry tagged x and one tagged y, in either order
func (t *Tagger) Pairs(a, b string, x, y GeomTag) bool {
	ta, tb := t.Tag(a), t.Tag(b)
	return (ta.Has(x) && tb.Has(y)) || (ta.Has(y) && tb.Has(x))
}

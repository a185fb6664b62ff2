package h5view

import (
	"fmt"
	"strings"

	"github.com/scigolib/h5view/internal/container"
)

// TypeClass is the element type class of a dataset, mirroring the
// container's datatype classes in a format-agnostic form.
type TypeClass uint8

// Type classes.
const (
	TypeFixed TypeClass = iota
	TypeFloat
	TypeString
	TypeCompound
	TypeVarLen
	TypeArray
	TypeOther
)

// String returns the class name used in type renderings.
func (c TypeClass) String() string {
	switch c {
	case TypeFixed:
		return "int"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	case TypeCompound:
		return "compound"
	case TypeVarLen:
		return "vlen"
	case TypeArray:
		return "array"
	default:
		return "opaque"
	}
}

// TypeDescriptor is a structural description of an element type, valid
// after the originating file closes. Members is set for compound types,
// Base for variable-length and array types, Dims for array types.
type TypeDescriptor struct {
	Class   TypeClass
	Size    uint32
	Members []TypeMember
	Base    *TypeDescriptor
	Dims    []uint64
}

// TypeMember is one field of a compound type descriptor.
type TypeMember struct {
	Name string
	Type TypeDescriptor
}

// String renders the descriptor compactly, e.g. "int64", "string(16)",
// "compound{x: float64, y: float64}", "array[3x3] of int32".
func (t TypeDescriptor) String() string {
	switch t.Class {
	case TypeFixed, TypeFloat:
		return fmt.Sprintf("%s%d", t.Class, t.Size*8)
	case TypeString:
		return fmt.Sprintf("string(%d)", t.Size)
	case TypeCompound:
		parts := make([]string, len(t.Members))
		for i, m := range t.Members {
			parts[i] = fmt.Sprintf("%s: %s", m.Name, m.Type)
		}
		return "compound{" + strings.Join(parts, ", ") + "}"
	case TypeVarLen:
		if t.Base != nil {
			return "vlen of " + t.Base.String()
		}
		return "vlen"
	case TypeArray:
		if t.Base != nil {
			return "array" + formatShape(t.Dims) + " of " + t.Base.String()
		}
		return "array" + formatShape(t.Dims)
	default:
		return fmt.Sprintf("opaque(%d)", t.Size)
	}
}

// describeType converts a container datatype into an owned structural
// descriptor, materializing compound members and array/vlen nesting.
func describeType(dt *container.Datatype) TypeDescriptor {
	desc := TypeDescriptor{Size: dt.Size}

	switch dt.Class {
	case container.ClassFixed:
		desc.Class = TypeFixed
	case container.ClassFloat:
		desc.Class = TypeFloat
	case container.ClassString:
		desc.Class = TypeString
	case container.ClassCompound:
		desc.Class = TypeCompound
		for _, m := range dt.Members {
			desc.Members = append(desc.Members, TypeMember{
				Name: m.Name,
				Type: describeType(m.Type),
			})
		}
	case container.ClassVarLen:
		desc.Class = TypeVarLen
	case container.ClassArray:
		desc.Class = TypeArray
		desc.Dims = append(desc.Dims, dt.Dims...)
	default:
		desc.Class = TypeOther
	}

	if dt.Base != nil && (desc.Class == TypeVarLen || desc.Class == TypeArray) {
		base := describeType(dt.Base)
		desc.Base = &base
	}
	return desc
}

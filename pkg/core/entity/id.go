package entity

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/matzehuels/modelgraph/pkg/errors"
)

// Space distinguishes model identifiers from view identifiers.
type Space uint8

const (
	// ModelSpace holds semantic elements.
	ModelSpace Space = iota + 1
	// ViewSpace holds diagrammatic presentation of model elements.
	ViewSpace
)

// String returns "model" or "view".
func (s Space) String() string {
	switch s {
	case ModelSpace:
		return "model"
	case ViewSpace:
		return "view"
	default:
		return fmt.Sprintf("space(%d)", uint8(s))
	}
}

// ID identifies a node. The zero value is not a valid identifier.
// IDs are comparable and can be used as map keys.
type ID struct {
	space Space
	uuid  uuid.UUID
}

// ModelID is an identifier restricted to the model space.
type ModelID struct{ uuid uuid.UUID }

// ViewID is an identifier restricted to the view space.
type ViewID struct{ uuid uuid.UUID }

func newV7() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}

// NewModelID mints a fresh, time-ordered model identifier.
func NewModelID() ModelID { return ModelID{uuid: newV7()} }

// NewViewID mints a fresh, time-ordered view identifier.
func NewViewID() ViewID { return ViewID{uuid: newV7()} }

// New mints a fresh identifier in space s.
func New(s Space) ID { return ID{space: s, uuid: newV7()} }

// ParseModelID parses a canonical UUID string into a ModelID.
func ParseModelID(s string) (ModelID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return ModelID{}, err
	}
	return ModelID{uuid: u}, nil
}

// ParseViewID parses a canonical UUID string into a ViewID.
func ParseViewID(s string) (ViewID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return ViewID{}, err
	}
	return ViewID{uuid: u}, nil
}

// Parse parses a canonical UUID string into an identifier in space s.
func Parse(space Space, s string) (ID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return ID{}, err
	}
	return ID{space: space, uuid: u}, nil
}

// ParseTagged parses the "model:<uuid>" or "view:<uuid>" form returned by
// [ID.Tagged]. A bare UUID is taken to be a model identifier.
func ParseTagged(s string) (ID, error) {
	prefix, rest, found := strings.Cut(s, ":")
	if !found {
		return Parse(ModelSpace, s)
	}
	switch prefix {
	case "model":
		return Parse(ModelSpace, rest)
	case "view":
		return Parse(ViewSpace, rest)
	default:
		return ID{}, errors.IdentifierFormat(s, fmt.Errorf("unknown space %q", prefix))
	}
}

func parseUUID(s string) (uuid.UUID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, errors.IdentifierFormat(s, err)
	}
	if u == uuid.Nil {
		return uuid.Nil, errors.IdentifierFormat(s, fmt.Errorf("nil uuid"))
	}
	return u, nil
}

// Space returns the identifier space.
func (id ID) Space() Space { return id.space }

// UUID returns the underlying UUID.
func (id ID) UUID() uuid.UUID { return id.uuid }

// IsZero reports whether id is the zero value.
func (id ID) IsZero() bool { return id.space == 0 && id.uuid == uuid.Nil }

// String returns the canonical UUID string, as stored in documents.
func (id ID) String() string { return id.uuid.String() }

// Tagged returns the identifier prefixed with its space, e.g. "view:0192…".
func (id ID) Tagged() string { return id.space.String() + ":" + id.uuid.String() }

// Compare orders identifiers by space, then by UUID bytes. UUIDv7 bytes sort
// by creation time.
func (id ID) Compare(other ID) int {
	if id.space != other.space {
		if id.space < other.space {
			return -1
		}
		return 1
	}
	return bytes.Compare(id.uuid[:], other.uuid[:])
}

// MarshalText encodes the tagged form.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.Tagged()), nil
}

// UnmarshalText decodes the tagged form.
func (id *ID) UnmarshalText(b []byte) error {
	parsed, err := ParseTagged(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ModelID narrows id to a ModelID.
func (id ID) ModelID() (ModelID, bool) {
	return ModelID{uuid: id.uuid}, id.space == ModelSpace
}

// ViewID narrows id to a ViewID.
func (id ID) ViewID() (ViewID, bool) {
	return ViewID{uuid: id.uuid}, id.space == ViewSpace
}

// ID widens m to a generic identifier.
func (m ModelID) ID() ID { return ID{space: ModelSpace, uuid: m.uuid} }

// String returns the canonical UUID string.
func (m ModelID) String() string { return m.uuid.String() }

// IsZero reports whether m is the zero value.
func (m ModelID) IsZero() bool { return m.uuid == uuid.Nil }

// MarshalText encodes the canonical UUID string.
func (m ModelID) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText decodes a canonical UUID string.
func (m *ModelID) UnmarshalText(b []byte) error {
	parsed, err := ParseModelID(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ID widens v to a generic identifier.
func (v ViewID) ID() ID { return ID{space: ViewSpace, uuid: v.uuid} }

// String returns the canonical UUID string.
func (v ViewID) String() string { return v.uuid.String() }

// IsZero reports whether v is the zero value.
func (v ViewID) IsZero() bool { return v.uuid == uuid.Nil }

// MarshalText encodes the canonical UUID string.
func (v ViewID) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

// UnmarshalText decodes a canonical UUID string.
func (v *ViewID) UnmarshalText(b []byte) error {
	parsed, err := ParseViewID(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

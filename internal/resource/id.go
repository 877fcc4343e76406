package resource

import (
	"database/sql/driver"
	"fmt"
	"math/rand"
	"strings"
)

const (
	// base58 alphabet
	base58 = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"
	// length of id part of ID
	idLength = 16
)

// EmptyID for use in comparisons to check whether ID has been
// uninitialized.
var EmptyID = ID{}

// Kind is the kind of resource an ID identifies, and forms the prefix of its
// string representation.
type Kind string

const (
	DepartmentKind      Kind = "dept"
	UserKind            Kind = "user"
	SupplyChainKind     Kind = "sc"
	StrategicActionKind Kind = "sa"
	MonthlyUpdateKind   Kind = "upd"
)

// ID uniquely identifies a resource.
type ID struct {
	Kind Kind
	ID   string
}

// NewID constructs a resource ID
func NewID(kind Kind) ID {
	return ID{Kind: kind, ID: GenerateRandomStringFromAlphabet(idLength, base58)}
}

// ParseID parses the ID from a string representation. No validation is
// performed.
func ParseID(s string) ID {
	kind, id, _ := strings.Cut(s, "-")
	return ID{Kind: Kind(kind), ID: id}
}

func (id ID) String() string {
	if id == EmptyID {
		return ""
	}
	return fmt.Sprintf("%s-%s", id.Kind, id.ID)
}

func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *ID) UnmarshalText(text []byte) error {
	*id = ParseID(string(text))
	return nil
}

// Value implements driver.Valuer so that IDs can be written to postgres.
func (id ID) Value() (driver.Value, error) {
	if id == EmptyID {
		return nil, nil
	}
	return id.String(), nil
}

// Scan implements sql.Scanner so that IDs can be read from postgres.
func (id *ID) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*id = EmptyID
	case string:
		*id = ParseID(v)
	case []byte:
		*id = ParseID(string(v))
	default:
		return fmt.Errorf("cannot scan %T into resource ID", src)
	}
	return nil
}

// GenerateRandomStringFromAlphabet generates a random string of a given size
// using characters from the given alphabet.
func GenerateRandomStringFromAlphabet(size int, alphabet string) string {
	buf := make([]byte, size)
	for i := range size {
		buf[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return string(buf)
}

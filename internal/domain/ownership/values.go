package ownership

import (
	"regexp"
	"strings"

	"github.com/GremaudMatthieu/Baillr-sub000/internal/domain/shared"
)

const (
	maxEntityNameLength       = 255
	maxLegalInformationLength = 5000
)

var siretPattern = regexp.MustCompile(`^\d{14}$`)

// OwnerID identifies the user allowed to mutate an entity.
// The value is opaque; only emptiness is checked.
type OwnerID struct {
	value string
}

// NewOwnerID creates a new OwnerID
func NewOwnerID(value string) (OwnerID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return OwnerID{}, shared.NewValidationError("Owner ID is required")
	}
	return OwnerID{value: value}, nil
}

// String returns the raw identifier
func (o OwnerID) String() string {
	return o.value
}

// Equals returns true if both identifiers are equal
func (o OwnerID) Equals(other OwnerID) bool {
	return o.value == other.value
}

// EntityName is the trimmed, non-empty display name of an ownership entity
type EntityName struct {
	value string
}

// NewEntityName creates a new EntityName
func NewEntityName(value string) (EntityName, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return EntityName{}, shared.NewValidationError("Entity name is required")
	}
	if len(value) > maxEntityNameLength {
		return EntityName{}, shared.NewValidationError("Entity name cannot exceed 255 characters")
	}
	return EntityName{value: value}, nil
}

// String returns the name
func (n EntityName) String() string {
	return n.value
}

// Equals returns true if both names are equal
func (n EntityName) Equals(other EntityName) bool {
	return n.value == other.value
}

// EntityType is the legal form of an ownership entity
type EntityType struct {
	value string
}

// Legal form tokens
const (
	// EntityTypeSCI is a property-holding company; it must carry a SIRET
	EntityTypeSCI = "sci"
	// EntityTypeNomPropre is direct personal ownership; SIRET is optional
	EntityTypeNomPropre = "nom_propre"
)

// NewEntityType creates a new EntityType from its token
func NewEntityType(value string) (EntityType, error) {
	switch value {
	case EntityTypeSCI, EntityTypeNomPropre:
		return EntityType{value: value}, nil
	default:
		return EntityType{}, shared.NewValidationError("Entity type must be sci or nom_propre")
	}
}

// String returns the token
func (t EntityType) String() string {
	return t.value
}

// RequiresSiret returns true for company-like legal forms
func (t EntityType) RequiresSiret() bool {
	return t.value == EntityTypeSCI
}

// Equals returns true if both types are equal
func (t EntityType) Equals(other EntityType) bool {
	return t.value == other.value
}

// Siret is the 14-digit French establishment identifier.
// The zero value is the "no SIRET" null object.
type Siret struct {
	value string
}

// EmptySiret returns the null object for an absent SIRET
func EmptySiret() Siret {
	return Siret{}
}

// NewSiret creates a Siret; an empty input yields EmptySiret
func NewSiret(value string) (Siret, error) {
	value = strings.ReplaceAll(strings.TrimSpace(value), " ", "")
	if value == "" {
		return EmptySiret(), nil
	}
	if !siretPattern.MatchString(value) {
		return Siret{}, shared.NewValidationError("SIRET must be 14 digits")
	}
	return Siret{value: value}, nil
}

// String returns the digits, or an empty string for the null object
func (s Siret) String() string {
	return s.value
}

// IsEmpty returns true for the null object
func (s Siret) IsEmpty() bool {
	return s.value == ""
}

// Equals returns true if both values are equal
func (s Siret) Equals(other Siret) bool {
	return s.value == other.value
}

// LegalInformation is optional free text printed on documents (capital, registry...)
type LegalInformation struct {
	value string
}

// NewLegalInformation creates a LegalInformation; blank input yields the null object
func NewLegalInformation(value string) (LegalInformation, error) {
	value = strings.TrimSpace(value)
	if len(value) > maxLegalInformationLength {
		return LegalInformation{}, shared.NewValidationError("Legal information cannot exceed 5000 characters")
	}
	return LegalInformation{value: value}, nil
}

// String returns the text
func (l LegalInformation) String() string {
	return l.value
}

// IsEmpty returns true for the null object
func (l LegalInformation) IsEmpty() bool {
	return l.value == ""
}

// Equals returns true if both values are equal
func (l LegalInformation) Equals(other LegalInformation) bool {
	return l.value == other.value
}

// checkSiretForType enforces that company-like legal forms carry a SIRET
func checkSiretForType(entityType EntityType, siret Siret) error {
	if entityType.RequiresSiret() && siret.IsEmpty() {
		return shared.NewValidationError("SIRET is required for SCI entities")
	}
	return nil
}

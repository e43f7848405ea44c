package valueobject

import (
	"regexp"
	"strings"

	"github.com/GremaudMatthieu/Baillr-sub000/internal/domain/shared"
)

// DefaultCountry is used when an address is created without a country
const DefaultCountry = "France"

const (
	maxStreetLength     = 255
	maxCityLength       = 100
	maxCountryLength    = 100
	maxComplementLength = 255
)

var postalCodePattern = regexp.MustCompile(`^\d{5}$`)

// Address is a value object representing a postal address.
// It is immutable; every constructor validates all fields.
type Address struct {
	street     string
	postalCode string
	city       string
	country    string
	complement string
}

// NewAddress creates a new Address.
// Street, postal code and city are required; an empty country defaults to France
// and the complement is optional.
func NewAddress(street, postalCode, city, country, complement string) (Address, error) {
	street = strings.TrimSpace(street)
	postalCode = strings.TrimSpace(postalCode)
	city = strings.TrimSpace(city)
	country = strings.TrimSpace(country)
	complement = strings.TrimSpace(complement)

	if street == "" {
		return Address{}, shared.NewValidationError("Street is required")
	}
	if len(street) > maxStreetLength {
		return Address{}, shared.NewValidationError("Street cannot exceed 255 characters")
	}
	if !postalCodePattern.MatchString(postalCode) {
		return Address{}, shared.NewValidationError("Postal code must be 5 digits")
	}
	if city == "" {
		return Address{}, shared.NewValidationError("City is required")
	}
	if len(city) > maxCityLength {
		return Address{}, shared.NewValidationError("City cannot exceed 100 characters")
	}
	if country == "" {
		country = DefaultCountry
	}
	if len(country) > maxCountryLength {
		return Address{}, shared.NewValidationError("Country cannot exceed 100 characters")
	}
	if len(complement) > maxComplementLength {
		return Address{}, shared.NewValidationError("Address complement cannot exceed 255 characters")
	}

	return Address{
		street:     street,
		postalCode: postalCode,
		city:       city,
		country:    country,
		complement: complement,
	}, nil
}

// Street returns the street line
func (a Address) Street() string {
	return a.street
}

// PostalCode returns the 5-digit postal code
func (a Address) PostalCode() string {
	return a.postalCode
}

// City returns the city
func (a Address) City() string {
	return a.city
}

// Country returns the country
func (a Address) Country() string {
	return a.country
}

// Complement returns the optional address complement (building, floor...)
func (a Address) Complement() string {
	return a.complement
}

// IsEmpty returns true for the zero Address
func (a Address) IsEmpty() bool {
	return a.street == "" && a.postalCode == "" && a.city == ""
}

// Equals returns true if both addresses are equal
func (a Address) Equals(other Address) bool {
	return a == other
}

// String returns a single-line representation of the address
func (a Address) String() string {
	if a.IsEmpty() {
		return ""
	}
	parts := []string{a.street}
	if a.complement != "" {
		parts = append(parts, a.complement)
	}
	parts = append(parts, a.postalCode+" "+a.city, a.country)
	return strings.Join(parts, ", ")
}

// AddressDTO is the plain-data form of an Address carried by events
type AddressDTO struct {
	Street     string `json:"street"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
	Country    string `json:"country"`
	Complement string `json:"complement,omitempty"`
}

// ToDTO converts Address to AddressDTO
func (a Address) ToDTO() AddressDTO {
	return AddressDTO{
		Street:     a.street,
		PostalCode: a.postalCode,
		City:       a.city,
		Country:    a.country,
		Complement: a.complement,
	}
}

// ToAddress converts AddressDTO back to a validated Address
func (dto AddressDTO) ToAddress() (Address, error) {
	return NewAddress(dto.Street, dto.PostalCode, dto.City, dto.Country, dto.Complement)
}

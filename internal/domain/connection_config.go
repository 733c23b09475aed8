package domain

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-ldap/ldap/v3"
)

// DirectorySide names one end of the sync pair.
type DirectorySide string

const (
	// DirectorySideSource is the internal user database.
	DirectorySideSource DirectorySide = "source"
	// DirectorySideTarget is the OpenLDAP server.
	DirectorySideTarget DirectorySide = "target"
)

// Valid reports whether s is a known side.
func (s DirectorySide) Valid() bool {
	return s == DirectorySideSource || s == DirectorySideTarget
}

var (
	ErrInvalidLDAPURL = errors.New("ldap url must use ldap:// or ldaps:// with a host")
	ErrBindDNRequired = errors.New("bind dn required")
	ErrInvalidDN      = errors.New("invalid dn")
)

// FieldError ties a validation failure to a config field.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// ConnectionConfig holds the parameters of a directory server.
type ConnectionConfig struct {
	URL          string
	BindDN       string
	BindPassword string
	BaseDN       string
}

// Normalize trims surrounding whitespace from every field except the password.
func (c ConnectionConfig) Normalize() ConnectionConfig {
	c.URL = strings.TrimSpace(c.URL)
	c.BindDN = strings.TrimSpace(c.BindDN)
	c.BaseDN = strings.TrimSpace(c.BaseDN)
	return c
}

// Validate checks the URL scheme and that both DNs parse.
func (c ConnectionConfig) Validate() error {
	u, err := url.Parse(c.URL)
	if err != nil || (u.Scheme != "ldap" && u.Scheme != "ldaps") || u.Host == "" {
		return &FieldError{Field: "url", Err: ErrInvalidLDAPURL}
	}
	if c.BindDN == "" {
		return &FieldError{Field: "bind_dn", Err: ErrBindDNRequired}
	}
	if _, err := ldap.ParseDN(c.BindDN); err != nil {
		return &FieldError{Field: "bind_dn", Err: fmt.Errorf("%w: %v", ErrInvalidDN, err)}
	}
	if _, err := ldap.ParseDN(c.BaseDN); err != nil {
		return &FieldError{Field: "base_dn", Err: fmt.Errorf("%w: %v", ErrInvalidDN, err)}
	}
	return nil
}

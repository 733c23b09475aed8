package domain

import (
	"strings"

	"github.com/go-ldap/ldap/v3"
)

// EntryType distinguishes user and group entries of a source directory.
type EntryType string

const (
	EntryTypeUser  EntryType = "user"
	EntryTypeGroup EntryType = "group"
)

// SyncStatusNotSynced is the status every source entry starts with.
const SyncStatusNotSynced = "Not Synced"

// DirectoryEntry is an entry listed by the source directory.
type DirectoryEntry struct {
	DN         string
	Type       EntryType
	SyncStatus string
	Attributes []string
}

// SampleEntries returns the fixed entries advertised by the source directory.
func SampleEntries() []DirectoryEntry {
	return []DirectoryEntry{
		{
			DN:         "cn=john.doe,ou=users,dc=example,dc=com",
			Type:       EntryTypeUser,
			SyncStatus: SyncStatusNotSynced,
			Attributes: []string{"cn", "mail", "uid"},
		},
		{
			DN:         "cn=developers,ou=groups,dc=example,dc=com",
			Type:       EntryTypeGroup,
			SyncStatus: SyncStatusNotSynced,
			Attributes: []string{"cn", "member"},
		},
		{
			DN:         "cn=jane.smith,ou=users,dc=example,dc=com",
			Type:       EntryTypeUser,
			SyncStatus: SyncStatusNotSynced,
			Attributes: []string{"cn", "mail", "uid"},
		},
	}
}

// RDNValue returns the value of the entry's leading RDN, e.g. "john.doe".
func (e DirectoryEntry) RDNValue() (string, error) {
	dn, err := ldap.ParseDN(e.DN)
	if err != nil {
		return "", err
	}
	if len(dn.RDNs) == 0 || len(dn.RDNs[0].Attributes) == 0 {
		return "", nil
	}
	return dn.RDNs[0].Attributes[0].Value, nil
}

// Matches reports whether query is a case-insensitive substring of the
// entry's DN, type or attribute list. An empty query matches.
func (e DirectoryEntry) Matches(query string) bool {
	q := strings.ToLower(query)
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(e.DN), q) || strings.Contains(string(e.Type), q) {
		return true
	}
	return strings.Contains(strings.ToLower(strings.Join(e.Attributes, ", ")), q)
}

// InScope reports whether entryDN equals or lies below baseDN.
// An empty baseDN scopes everything.
func InScope(baseDN, entryDN string) (bool, error) {
	if strings.TrimSpace(baseDN) == "" {
		return true, nil
	}
	base, err := ldap.ParseDN(baseDN)
	if err != nil {
		return false, err
	}
	entry, err := ldap.ParseDN(entryDN)
	if err != nil {
		return false, err
	}
	return base.Equal(entry) || base.AncestorOf(entry), nil
}

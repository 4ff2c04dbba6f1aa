// Package types is the in-memory representation of a documented crate: items,
// types, generics and parent relationships, as produced by a rustdoc-style
// compiler and consumed by the comparator and search driver.
package types

import "fmt"

// Id is a rustdoc item identifier. It is only unique within one crate.
type Id uint32

// CrateMetadata names a crate by package name and version. version == "latest"
// (or "*") means "any version of this crate".
type CrateMetadata struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

func (m CrateMetadata) String() string {
	return fmt.Sprintf("%s@%s", m.Name, m.Version)
}

// Less gives CrateMetadata a total order by (name, version), used to keep
// deterministic iteration when a crate list needs sorting.
func (m CrateMetadata) Less(other CrateMetadata) bool {
	if m.Name != other.Name {
		return m.Name < other.Name
	}
	return m.Version < other.Version
}

// IsAnyVersion reports whether m.Version stands for "unknown/any version".
func (m CrateMetadata) IsAnyVersion() bool {
	return m.Version == "latest" || m.Version == "*" || m.Version == ""
}

package entry

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// SortKey is the column a listing is ordered by.
type SortKey int

const (
	// SortByName orders case-insensitively by name
	SortByName SortKey = iota
	// SortBySize orders by size in bytes
	SortBySize
	// SortByDate orders by modification time
	SortByDate
)

// String returns the string representation of SortKey
func (k SortKey) String() string {
	switch k {
	case SortByName:
		return "name"
	case SortBySize:
		return "size"
	case SortByDate:
		return "date"
	default:
		return "unknown"
	}
}

// ParseSortKey parses a string into a SortKey
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(s) {
	case "name":
		return SortByName, nil
	case "size":
		return SortBySize, nil
	case "date", "modified", "mtime":
		return SortByDate, nil
	default:
		return SortByName, fmt.Errorf("invalid sort key: %s (valid: name, size, date)", s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler for go-arg and yaml
func (k *SortKey) UnmarshalText(text []byte) error {
	parsed, err := ParseSortKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (k SortKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Next cycles name -> size -> date -> name.
func (k SortKey) Next() SortKey {
	return (k + 1) % 3
}

// SortOrder is the direction of a sort.
type SortOrder int

const (
	// Ascending sorts smallest first
	Ascending SortOrder = iota
	// Descending sorts largest first
	Descending
)

// String returns the string representation of SortOrder
func (o SortOrder) String() string {
	if o == Descending {
		return "desc"
	}
	return "asc"
}

// ParseSortOrder parses a string into a SortOrder
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(s) {
	case "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	default:
		return Ascending, fmt.Errorf("invalid sort order: %s (valid: asc, desc)", s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler for go-arg and yaml
func (o *SortOrder) UnmarshalText(text []byte) error {
	parsed, err := ParseSortOrder(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (o SortOrder) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Toggle flips the order.
func (o SortOrder) Toggle() SortOrder {
	if o == Ascending {
		return Descending
	}
	return Ascending
}

// Compare orders a before b: directories always precede files, then the key
// decides in the requested order.
func Compare(a, b FileEntry, key SortKey, order SortOrder) int {
	if a.IsDir != b.IsDir {
		if a.IsDir {
			return -1
		}
		return 1
	}

	c := compareByKey(a, b, key)
	if order == Descending {
		return -c
	}
	return c
}

func compareByKey(a, b FileEntry, key SortKey) int {
	switch key {
	case SortBySize:
		return cmp.Compare(a.Size, b.Size)
	case SortByDate:
		return a.Modified.Compare(b.Modified)
	default:
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	}
}

// Sort orders entries in place. The sort is stable so equal keys keep their
// discovery order.
func Sort(entries []FileEntry, key SortKey, order SortOrder) {
	slices.SortStableFunc(entries, func(a, b FileEntry) int {
		return Compare(a, b, key, order)
	})
}

// IsSorted reports whether entries satisfy the ordering Sort produces.
func IsSorted(entries []FileEntry, key SortKey, order SortOrder) bool {
	return slices.IsSortedFunc(entries, func(a, b FileEntry) int {
		return Compare(a, b, key, order)
	})
}

// SortByNameExact orders entries by byte-wise name, the order used when
// watcher events insert into a listing.
func SortByNameExact(entries []FileEntry) {
	slices.SortStableFunc(entries, func(a, b FileEntry) int {
		return strings.Compare(a.Name, b.Name)
	})
}

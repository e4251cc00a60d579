package repository

import "fmt"

// enumValue is satisfied by the closed enum types in models.
type enumValue interface {
	~string
	Valid() bool
}

// checkEnum rejects a malformed enum value coming out of the store.
// Validating once here lets every computation above trust the closed
// value sets without re-checking.
func checkEnum[T enumValue](name string, value T) error {
	if !value.Valid() {
		return fmt.Errorf("malformed %s %q", name, string(value))
	}
	return nil
}

package kernel

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"deliverytasks/internal/pkg/errs"
	"deliverytasks/internal/pkg/guard"
)

// DestinationMaxLength is the widest address the tasks table stores.
const DestinationMaxLength = 140

var ErrDestinationIsNotConstructed = errs.NewValueIsRequiredError(
	"destination must be created via NewDestination constructor")

// Destination is the delivery address of a task. Surrounding whitespace is
// trimmed; the result must be non-empty and at most DestinationMaxLength runes.
type Destination struct { //nolint:recvcheck //using for validation
	address string
	guard   guard.ConstructorGuard
}

func NewDestination(address string) (Destination, error) {
	d := Destination{
		guard: guard.NewConstructorGuard(),
	}

	if err := d.setAddress(address); err != nil {
		return Destination{}, err
	}

	return d, nil
}

func (d Destination) Validate() error {
	return d.guard.Validate(ErrDestinationIsNotConstructed)
}

func (d Destination) String() string {
	return d.address
}

func (d Destination) IsEqual(other Destination) bool {
	return d.address == other.address
}

func (d *Destination) setAddress(address string) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return errs.NewValueIsRequiredError("destination")
	}

	if n := utf8.RuneCountInString(address); n > DestinationMaxLength {
		return errs.NewValueIsInvalidErrorWithCause(
			"destination",
			fmt.Errorf("%d characters exceeds the limit of %d", n, DestinationMaxLength),
		)
	}

	d.address = address
	return nil
}

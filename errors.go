package parcon

import (
	"errors"
	"fmt"

	"github.com/parcon/parcon/bitset"
	"github.com/parcon/parcon/slotpool"
	"github.com/parcon/parcon/table"
)

var (
	// ErrFull is returned when a fixed-capacity container has no
	// claimable slot left.
	ErrFull = errors.New("container full")
	// ErrDuplicate is returned by Insert when the key is already present.
	ErrDuplicate = errors.New("duplicate key")
	// ErrInvalidCapacity is returned when a container is created with a
	// negative capacity.
	ErrInvalidCapacity = errors.New("invalid capacity")
	// ErrMemoryLimit is returned when the resource controller rejects
	// the backing storage reservation.
	ErrMemoryLimit = errors.New("memory limit exceeded")
)

// translateError unifies the container packages' sentinels under this
// package's errors. The original error stays reachable via errors.Is.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, table.ErrTableFull), errors.Is(err, slotpool.ErrPoolExhausted):
		return fmt.Errorf("%w: %w", ErrFull, err)
	case errors.Is(err, table.ErrDuplicateKey):
		return fmt.Errorf("%w: %w", ErrDuplicate, err)
	case errors.Is(err, table.ErrInvalidCapacity),
		errors.Is(err, slotpool.ErrInvalidCapacity),
		errors.Is(err, bitset.ErrInvalidCapacity):
		return fmt.Errorf("%w: %w", ErrInvalidCapacity, err)
	}

	return err
}

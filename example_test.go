package parcon_test

import (
	"errors"
	"fmt"

	"github.com/parcon/parcon"
)

func ExampleNewSet() {
	set, err := parcon.NewSet[string](1024)
	if err != nil {
		panic(err)
	}
	defer set.Close()

	inserted, _ := set.Insert("alpha")
	fmt.Println("first insert:", inserted)

	_, err = set.Insert("alpha")
	fmt.Println("duplicate:", errors.Is(err, parcon.ErrDuplicate))

	fmt.Println("contains:", set.Contains("alpha"))
	// Output:
	// first insert: true
	// duplicate: true
	// contains: true
}

func ExampleNewMap() {
	m, err := parcon.NewMap[uint64, string](256)
	if err != nil {
		panic(err)
	}
	defer m.Close()

	m.Insert(1, "one")
	m.Insert(2, "two")

	v, ok := m.Find(2)
	fmt.Println(v, ok)
	// Output:
	// two true
}

func ExampleNewPool() {
	pool, err := parcon.NewPool(8)
	if err != nil {
		panic(err)
	}
	defer pool.Close()

	slot, _ := pool.Allocate()
	fmt.Println("occupied:", pool.Occupied(slot))

	pool.Release(slot)
	fmt.Println("occupied:", pool.Occupied(slot))
	// Output:
	// occupied: true
	// occupied: false
}

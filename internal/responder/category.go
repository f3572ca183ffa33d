// internal/responder/category.go
package responder

import "fmt"

// Category is the reply bucket a message is classified into.
type Category string

const (
	Price      Category = "price"
	Rental     Category = "rental"
	Coverage   Category = "coverage"
	DeviceSpec Category = "device_spec"
	Delivery   Category = "delivery"
	Tourism    Category = "tourism"
	Default    Category = "default"
)

// Categories lists every category in classification priority order, Default last.
var Categories = []Category{Price, Rental, Coverage, DeviceSpec, Delivery, Tourism, Default}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

func priority(c Category) int {
	for i, known := range Categories {
		if c == known {
			return i
		}
	}
	return len(Categories)
}

package bsvprint

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/reflect/protoreflect"
)

// ErrNameCollision is returned when two descriptors declared in the same file
// would be bound to the same module-level name. Nested names are flattened
// with underscores, so a message A.B and a message A_B cannot both be
// generated.
var ErrNameCollision = errors.New("module-level names collide")

// checkNameCollisions verifies that every message, enum, and service that will
// be defined in the module gets a distinct name.
func checkNameCollisions(c *genContext) error {
	seen := map[string]protoreflect.FullName{}
	var errs []error
	check := func(d protoreflect.Descriptor) {
		name := c.names.DescriptorName(d)
		if prev, ok := seen[name]; ok {
			errs = append(errs, fmt.Errorf("%w: %s and %s are both named %s", ErrNameCollision, prev, d.FullName(), name))
			return
		}
		seen[name] = d.FullName()
	}

	var checkMessages func(msgs protoreflect.MessageDescriptors)
	checkEnums := func(enums protoreflect.EnumDescriptors) {
		for i, length := 0, enums.Len(); i < length; i++ {
			check(enums.Get(i))
		}
	}
	checkMessages = func(msgs protoreflect.MessageDescriptors) {
		for i, length := 0, msgs.Len(); i < length; i++ {
			md := msgs.Get(i)
			if !c.isElided(md) {
				check(md)
			}
			checkEnums(md.Enums())
			checkMessages(md.Messages())
		}
	}

	checkMessages(c.file.Messages())
	checkEnums(c.file.Enums())
	svcs := c.file.Services()
	for i, length := 0, svcs.Len(); i < length; i++ {
		check(svcs.Get(i))
	}
	return errors.Join(errs...)
}

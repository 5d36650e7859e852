package orm

import (
	"github.com/iov-one/pkmsig/weave"
)

// Model is implemented by any entity that can be stored using a bucket.
// Validate is called before every write.
type Model interface {
	weave.Persistent
	Validate() error
}

// Object binds a model to the key it is stored under.
type Object interface {
	Key() []byte
	SetKey([]byte)
	// Clone returns an empty object of the same type to load into.
	Clone() Object
	Validate() error
	Value() weave.Persistent
}

// Cloneable is the prototype a bucket creates loaded objects from.
type Cloneable interface {
	Clone() Object
}

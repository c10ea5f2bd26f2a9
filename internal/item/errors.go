package item

import "errors"

// ErrStillConnected is returned by Delete on a node that still has
// incident edges and was not given disconnect=true, spec.md §7
// "StillConnected".
var ErrStillConnected = errors.New("node still has incident edges")

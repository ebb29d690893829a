package transfer

import "errors"

// ErrSizeMismatch is returned by Verify when the object actually landed in
// the object store at a different size than the client declared in its
// verify request.
var ErrSizeMismatch = errors.New("transfer: uploaded object size does not match declared size")

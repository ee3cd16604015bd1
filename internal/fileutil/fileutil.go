// Package fileutil holds file-mode constants for files wirecrab writes.
package fileutil

import "os"

// OutputMode is the permission mode for dereferenced documents written with
// --output. Bundled documents can carry credentials from security schemes, so
// only the owner may read them.
const OutputMode os.FileMode = 0o600

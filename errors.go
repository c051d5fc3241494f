package loopbar

import "github.com/simonhull/loopbar/internal/types"

// OutOfBoundsError reports a read past the end of the file.
type OutOfBoundsError = types.OutOfBoundsError

// UnsupportedFormatError reports a file that is not a supported container.
type UnsupportedFormatError = types.UnsupportedFormatError

// CorruptedFileError reports a container too damaged to read.
type CorruptedFileError = types.CorruptedFileError

// Warning is a non-fatal parse issue.
type Warning = types.Warning

package loopbar

import "github.com/simonhull/loopbar/internal/types"

// AudioInfo holds the stream properties of a track.
type AudioInfo = types.AudioInfo

// Metadata is the ordered, case-insensitively grouped field list of a track.
type Metadata = types.Metadata

// MetadataEntry is one metadata field.
type MetadataEntry = types.Entry

// TechInfo is the ordered technical-info list of a track.
type TechInfo = types.TechInfo

// TechField is one technical-info pair.
type TechField = types.TechField

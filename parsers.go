package loopbar

// Format parsers register themselves with the registry from init.
import (
	_ "github.com/simonhull/loopbar/internal/flac"
	_ "github.com/simonhull/loopbar/internal/m4a"
	_ "github.com/simonhull/loopbar/internal/mp3"
	_ "github.com/simonhull/loopbar/internal/ogg"
)

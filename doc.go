// Package loopbar reads the loop section of game and ambient music files and
// paints it on a playback seekbar.
//
// Tracks carry their loop in metadata tags: LOOPSTART plus either
// LOOPLENGTH or LOOPEND (or the Loop_Start, Loop_Length and Loop_End
// spellings, in any case). Values are sample counts, or seconds when either
// value contains a decimal point.
//
// # Quick Start
//
//	track, err := loopbar.Open("bgm.ogg")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(track.Loop) // loop 12.5s to 98.25s
//
// # Supported Formats
//
//   - FLAC: STREAMINFO and Vorbis comments
//   - Ogg Vorbis and Opus: identification and comment headers
//   - MP3: ID3v2.3 and ID3v2.4 text and TXXX frames, Xing/VBRI duration
//   - M4A/M4B: iTunes ilst items including ---- freeform atoms
//
// # Architecture
//
//	[Track]              - Entry point with Open()
//	  ├─ [Metadata]      - Ordered fields, grouped case-insensitively
//	  ├─ [AudioInfo]     - Stream properties and technical info
//	  └─ [loop.Info]     - Resolved loop section
//
// A Track is a loop.Source, so the resolver and the seekbar work on it
// directly:
//
//	panel := seekbar.NewPanel(seekbar.NewBar())
//	panel.OnSize(400, 40)
//	panel.OnNewTrack(track)
//	panel.Paint(canvas, seekbar.Playback{Position: 30, Length: track.Length(), Playing: true})
//
// # Error Handling
//
// Open returns an error only when the container cannot be read. Damaged
// optional structures are reported in Track.Warnings. A missing or invalid
// loop is not an error: Track.Loop.Valid is simply false.
package loopbar

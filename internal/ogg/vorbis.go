package ogg

import (
	"fmt"

	"github.com/simonhull/loopbar/internal/binary"
	"github.com/simonhull/loopbar/internal/types"
	"github.com/simonhull/loopbar/internal/vorbis"
)

const (
	vorbisPacketIdentification = 0x01
	vorbisPacketComment        = 0x03

	vorbisIdentificationSize = 30
)

// parseVorbisIdentification reads channels, sample rate and nominal bitrate
// from the identification header.
func parseVorbisIdentification(data []byte, track *types.Track) error {
	if len(data) < vorbisIdentificationSize {
		return fmt.Errorf("identification header too short: %d bytes", len(data))
	}
	if err := checkVorbisMagic(data, vorbisPacketIdentification); err != nil {
		return err
	}
	if v := binary.Decode[uint32](data[7:11], binary.LittleEndian); v != 0 {
		return fmt.Errorf("unsupported Vorbis version: %d", v)
	}

	track.Audio.Codec = "Vorbis"
	track.Audio.Container = containerOgg
	track.Audio.Channels = int(data[11])
	track.Audio.SampleRate = int(binary.Decode[uint32](data[12:16], binary.LittleEndian))
	track.Audio.Bitrate = int(int32(binary.Decode[uint32](data[20:24], binary.LittleEndian)))
	if track.Audio.Bitrate < 0 {
		track.Audio.Bitrate = 0
	}
	track.Audio.VBR = true

	return nil
}

// parseVorbisComment reads the comment header into track.Metadata.
func parseVorbisComment(data []byte, track *types.Track, offset int64) error {
	if len(data) < 7 {
		return fmt.Errorf("comment header too short: %d bytes", len(data))
	}
	if err := checkVorbisMagic(data, vorbisPacketComment); err != nil {
		return err
	}
	return vorbis.ParseBlock(data[7:], track, offset)
}

func checkVorbisMagic(data []byte, packetType byte) error {
	if data[0] != packetType {
		return fmt.Errorf("unexpected Vorbis packet type 0x%02x, want 0x%02x", data[0], packetType)
	}
	if string(data[1:7]) != "vorbis" {
		return fmt.Errorf("invalid vorbis magic: %q", data[1:7])
	}
	return nil
}

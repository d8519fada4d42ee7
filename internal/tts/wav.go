package tts

import "encoding/binary"

// wavFromPCM16 wraps raw 16-bit little-endian PCM in a minimal RIFF/WAVE
// container.
func wavFromPCM16(pcm []byte, sampleRate, channels int) []byte {
	const bitsPerSample = 16
	byteRate := sampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8

	out := make([]byte, 0, 44+len(pcm))
	u32 := func(v uint32) []byte {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], v)
		return b[:]
	}
	u16 := func(v uint16) []byte {
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], v)
		return b[:]
	}

	out = append(out, []byte("RIFF")...)
	out = append(out, u32(uint32(36+len(pcm)))...)
	out = append(out, []byte("WAVE")...)
	out = append(out, []byte("fmt ")...)
	out = append(out, u32(16)...)
	out = append(out, u16(1)...) // PCM
	out = append(out, u16(uint16(channels))...)
	out = append(out, u32(uint32(sampleRate))...)
	out = append(out, u32(uint32(byteRate))...)
	out = append(out, u16(uint16(blockAlign))...)
	out = append(out, u16(bitsPerSample)...)
	out = append(out, []byte("data")...)
	out = append(out, u32(uint32(len(pcm)))...)
	out = append(out, pcm...)
	return out
}

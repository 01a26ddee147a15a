// Package platform holds the OS adapters: pasteboard, synthetic keyboard
// input, pointer and screen geometry, and the global event tap.
package platform

import (
	"bytes"
	"errors"
)

var ErrUnsupportedImage = errors.New("unsupported image format")

type format int

const (
	formatUnknown format = iota
	formatPNG
	formatTIFF
)

var (
	pngMagic    = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	tiffMagicLE = []byte{'I', 'I', 0x2a, 0x00}
	tiffMagicBE = []byte{'M', 'M', 0x00, 0x2a}
)

func imageFormat(data []byte) format {
	switch {
	case bytes.HasPrefix(data, pngMagic):
		return formatPNG
	case bytes.HasPrefix(data, tiffMagicLE), bytes.HasPrefix(data, tiffMagicBE):
		return formatTIFF
	}
	return formatUnknown
}

//go:build darwin

package platform

// #cgo CFLAGS: -x objective-c
// #cgo LDFLAGS: -framework Cocoa
// #import <Cocoa/Cocoa.h>
// #include <stdlib.h>
// #include <string.h>
//
// NSInteger bufferly_changeCount() {
//     return [[NSPasteboard generalPasteboard] changeCount];
// }
//
// void bufferly_clear() {
//     [[NSPasteboard generalPasteboard] clearContents];
// }
//
// int bufferly_readTIFF(void **out) {
//     NSData *data = [[NSPasteboard generalPasteboard] dataForType:NSPasteboardTypeTIFF];
//     if (data == nil || [data length] == 0) {
//         return 0;
//     }
//     *out = malloc([data length]);
//     memcpy(*out, [data bytes], [data length]);
//     return (int)[data length];
// }
//
// void bufferly_writeTIFF(const void *buf, int n) {
//     NSData *data = [NSData dataWithBytes:buf length:n];
//     [[NSPasteboard generalPasteboard] setData:data forType:NSPasteboardTypeTIFF];
// }
import "C"

import (
	"fmt"
	"unsafe"

	"golang.design/x/clipboard"
)

// Pasteboard is the macOS general pasteboard. Text and PNG go through
// golang.design/x/clipboard; the change counter and TIFF need NSPasteboard.
type Pasteboard struct{}

func NewPasteboard() (*Pasteboard, error) {
	if err := clipboard.Init(); err != nil {
		return nil, fmt.Errorf("init pasteboard: %w", err)
	}
	return &Pasteboard{}, nil
}

func (*Pasteboard) ChangeCount() int64 {
	return int64(C.bufferly_changeCount())
}

// ReadImage prefers TIFF, the format screenshots and most Cocoa apps put on
// the pasteboard, and falls back to PNG.
func (*Pasteboard) ReadImage() []byte {
	var buf unsafe.Pointer
	n := C.bufferly_readTIFF(&buf)
	if n > 0 {
		defer C.free(buf)
		return C.GoBytes(buf, n)
	}
	return clipboard.Read(clipboard.FmtImage)
}

func (*Pasteboard) ReadText() string {
	return string(clipboard.Read(clipboard.FmtText))
}

func (*Pasteboard) Clear() error {
	C.bufferly_clear()
	return nil
}

func (*Pasteboard) WriteText(s string) error {
	clipboard.Write(clipboard.FmtText, []byte(s))
	return nil
}

func (*Pasteboard) WriteImage(data []byte) error {
	switch imageFormat(data) {
	case formatPNG:
		clipboard.Write(clipboard.FmtImage, data)
	case formatTIFF:
		C.bufferly_clear()
		C.bufferly_writeTIFF(unsafe.Pointer(&data[0]), C.int(len(data)))
	default:
		return ErrUnsupportedImage
	}
	return nil
}

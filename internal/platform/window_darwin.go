//go:build darwin

package platform

// #cgo CFLAGS: -x objective-c
// #cgo LDFLAGS: -framework Cocoa
// #import <Cocoa/Cocoa.h>
//
// static void bufferly_placeWindow(uintptr_t handle, int x, int y, int *ax, int *ay) {
//     NSWindow *win = (NSWindow *)handle;
//     CGFloat top = [[[NSScreen screens] firstObject] frame].size.height;
//     [win setFrameTopLeftPoint:NSMakePoint(x, top - y)];
//     NSRect f = [win frame];
//     *ax = (int)f.origin.x;
//     *ay = (int)(top - f.origin.y - f.size.height);
// }
import "C"

import "fyne.io/fyne/v2/driver"

// PlaceWindow moves a native window so its top-left corner sits at (x, y) in
// top-left-origin screen points and returns where the window ended up. native
// is the context handed to driver.NativeWindow.RunNative and the call must
// run on the main thread.
func PlaceWindow(native any, x, y int) (ax, ay int, ok bool) {
	ctx, isMac := native.(driver.MacWindowContext)
	if !isMac || ctx.NSWindow == 0 {
		return 0, 0, false
	}
	var cx, cy C.int
	C.bufferly_placeWindow(C.uintptr_t(ctx.NSWindow), C.int(x), C.int(y), &cx, &cy)
	return int(cx), int(cy), true
}

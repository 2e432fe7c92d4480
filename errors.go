package legacygfx

import (
	"errors"
	"fmt"
)

// Device error codes. The values match the OpenGL error enumerants so that
// logs read the same regardless of which device produced them.
const (
	CodeInvalidEnum                 uint32 = 0x0500
	CodeInvalidValue                uint32 = 0x0501
	CodeInvalidOperation            uint32 = 0x0502
	CodeOutOfMemory                 uint32 = 0x0505
	CodeInvalidFramebufferOperation uint32 = 0x0506
)

// DeviceError reports a failed device operation together with the device's
// numeric error code.
type DeviceError struct {
	Op   string
	Code uint32
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("legacygfx: %s failed: %s (0x%04X)", e.Op, codeName(e.Code), e.Code)
}

func codeName(code uint32) string {
	switch code {
	case CodeInvalidEnum:
		return "invalid enum"
	case CodeInvalidValue:
		return "invalid value"
	case CodeInvalidOperation:
		return "invalid operation"
	case CodeOutOfMemory:
		return "out of memory"
	case CodeInvalidFramebufferOperation:
		return "invalid framebuffer operation"
	default:
		return "unknown error"
	}
}

// ErrStaleRef is returned by read-back and copy operations on a reference
// whose slot has been deleted.
var ErrStaleRef = errors.New("legacygfx: reference to a deleted surface")

// ErrStockTarget is returned by SetTarget for stock atlas pages, which are
// never valid render targets.
var ErrStockTarget = errors.New("legacygfx: stock atlas pages cannot be render targets")

// mustDraw asserts that a device draw succeeded. A failure on the draw path
// means the renderer handed the device inconsistent state.
func mustDraw(err error) {
	if err != nil {
		panic(fmt.Sprintf("legacygfx: draw failed: %v", err))
	}
}

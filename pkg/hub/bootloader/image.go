// Package bootloader flashes hub firmware through the hub's bootloader.
package bootloader

import "fmt"

// Firmware image layout.
const (
	PageDataSize = 8192
	PageCRCSize  = 16
	PageSize     = PageDataSize + PageCRCSize

	InitVectorSize = 11
	AuthVectorSize = 16

	offsetInitVector = 0x28
	offsetAuthVector = 0x34
	offsetPageCount  = 0x44
	offsetBody       = 0x4c
)

// ImageError reports a malformed firmware image.
type ImageError struct {
	Reason string
}

// Error implements error.
func (e *ImageError) Error() string {
	return "firmware image: " + e.Reason
}

// Image is a signed firmware image. Pages are stored back to back from
// the body offset, each followed by its CRC.
type Image []byte

// Validate checks the header and that every page is present.
func (img Image) Validate() error {
	if len(img) < offsetBody {
		return &ImageError{Reason: fmt.Sprintf("%d bytes is shorter than the header", len(img))}
	}
	n := img.PageCount()
	if n == 0 {
		return &ImageError{Reason: "no pages"}
	}
	if want := offsetBody + n*PageSize; len(img) < want {
		return &ImageError{Reason: fmt.Sprintf("%d pages need %d bytes, got %d", n, want, len(img))}
	}
	return nil
}

// PageCount returns the number of pages.
func (img Image) PageCount() int {
	return int(img[offsetPageCount])
}

// InitVector returns the init vector.
func (img Image) InitVector() []byte {
	return img[offsetInitVector : offsetInitVector+InitVectorSize]
}

// AuthVector returns the authentication vector.
func (img Image) AuthVector() []byte {
	return img[offsetAuthVector : offsetAuthVector+AuthVectorSize]
}

// Page returns page n including its CRC.
func (img Image) Page(n int) []byte {
	start := offsetBody + n*PageSize
	return img[start : start+PageSize]
}

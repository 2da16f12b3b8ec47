package pageimage

import (
	"fmt"
	"sort"

	"github.com/moffa90/go-w1eprom/protocol"
)

// Image is a complete or partial copy of a chip's data pages.
type Image struct {
	// FamilyID is the family code of the chip the image belongs to
	FamilyID byte

	// PageCount is the number of pages on that chip
	PageCount int

	// Pages holds the pages present in the image, in ascending order
	Pages []*Page
}

// Page is one page line of an image.
type Page struct {
	// Index is the page number on the chip
	Index int

	// Data is the page content
	Data protocol.Page

	// Checksum is the line checksum as read from, or written to, the file
	Checksum byte
}

// New returns an empty image for the chip desc describes.
func New(desc *protocol.DeviceDescriptor) *Image {
	return &Image{
		FamilyID:  desc.FamilyID,
		PageCount: desc.PageCount,
		Pages:     make([]*Page, 0, desc.PageCount),
	}
}

// Set stores data as page index, replacing any earlier copy.
func (img *Image) Set(index int, data protocol.Page) error {
	if index < 0 || index >= img.PageCount {
		return fmt.Errorf("page %d out of range: image has %d pages", index, img.PageCount)
	}

	p := &Page{Index: index, Data: data, Checksum: Checksum(index, &data)}
	for i, existing := range img.Pages {
		if existing.Index == index {
			img.Pages[i] = p
			return nil
		}
	}

	img.Pages = append(img.Pages, p)
	sort.Slice(img.Pages, func(i, j int) bool {
		return img.Pages[i].Index < img.Pages[j].Index
	})
	return nil
}

// Page returns page index, or nil when the image does not carry it.
func (img *Image) Page(index int) *Page {
	for _, p := range img.Pages {
		if p.Index == index {
			return p
		}
	}
	return nil
}

// Descriptor returns the registry entry for the image's family.
func (img *Image) Descriptor() (*protocol.DeviceDescriptor, bool) {
	return protocol.Lookup(img.FamilyID)
}

// Checksum computes the line checksum for a page.
// Uses basic summation with 2's complement.
func Checksum(index int, data *protocol.Page) byte {
	sum := byte(index)
	for _, b := range data {
		sum += b
	}
	return ^sum + 1
}

// Package pageimage reads and writes page image files, the text format used
// to dump a 1-Wire memory chip and to program one from disk.
//
// # File Format
//
// An image is a header line followed by one line per page, all hex-encoded.
//
// Header format (4 hex characters):
//
//	[FamilyID(2)][PageCount(2)]
//
// Example header:
//
//	2D04
//	  2D = DS2431 family
//	  04 = 4 pages
//
// Page format (68 hex characters):
//
//	[Page(2)][Data(64)][Checksum(2)]
//
// The checksum is the two's complement of the byte sum of the page index
// and the data, so all 34 bytes of a line sum to zero.
//
// An image does not have to list every page. Program writes only the pages
// present and leaves the rest of the chip alone.
//
// # Usage
//
//	img, err := pageimage.Parse("backup.w1img")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("family 0x%02X, %d of %d pages\n", img.FamilyID, len(img.Pages), img.PageCount)
//
// Errors from ParseReader name the offending line.
package pageimage

package pageimage

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/moffa90/go-w1eprom/protocol"
)

// Constants for page image parsing.
const (
	// HeaderLength is the expected length of the header line in hex characters
	HeaderLength = 4

	// PageLineLength is the expected length of a page line in hex characters
	PageLineLength = 2 * (1 + protocol.PageSize + 1)
)

// Parse parses a page image from the given file path.
//
// Example:
//
//	img, err := pageimage.Parse("backup.w1img")
//	if err != nil {
//	    log.Fatal(err)
//	}
func Parse(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ParseReader(f)
}

// ParseReader parses a page image from any io.Reader.
func ParseReader(r io.Reader) (*Image, error) {
	scanner := bufio.NewScanner(r)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read header: %w", err)
		}
		return nil, fmt.Errorf("empty file")
	}

	img, err := parseHeader(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}

	seen := make(map[int]bool)
	lineNum := 1
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		page, err := parsePage(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		if page.Index >= img.PageCount {
			return nil, fmt.Errorf("line %d: page %d out of range: image has %d pages",
				lineNum, page.Index, img.PageCount)
		}
		if seen[page.Index] {
			return nil, fmt.Errorf("line %d: duplicate page %d", lineNum, page.Index)
		}
		seen[page.Index] = true

		img.Pages = append(img.Pages, page)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	if len(img.Pages) == 0 {
		return nil, fmt.Errorf("no pages found in file")
	}

	return img, nil
}

// parseHeader parses the image header.
//
// Example: "2D04" = family 0x2D (DS2431), 4 pages
func parseHeader(line string) (*Image, error) {
	if len(line) != HeaderLength {
		return nil, fmt.Errorf("invalid header length: got %d characters, expected %d", len(line), HeaderLength)
	}

	data, err := hex.DecodeString(line)
	if err != nil {
		return nil, fmt.Errorf("invalid hex data: %w", err)
	}

	if data[1] == 0 {
		return nil, fmt.Errorf("invalid page count: 0")
	}

	return &Image{
		FamilyID:  data[0],
		PageCount: int(data[1]),
	}, nil
}

// parsePage parses a single page line.
func parsePage(line string) (*Page, error) {
	if len(line) != PageLineLength {
		return nil, fmt.Errorf("invalid page line length: got %d characters, expected %d", len(line), PageLineLength)
	}

	data, err := hex.DecodeString(line)
	if err != nil {
		return nil, fmt.Errorf("invalid hex data: %w", err)
	}

	page := &Page{
		Index:    int(data[0]),
		Checksum: data[len(data)-1],
	}
	copy(page.Data[:], data[1:1+protocol.PageSize])

	if want := Checksum(page.Index, &page.Data); page.Checksum != want {
		return nil, fmt.Errorf("checksum mismatch: got 0x%02X, expected 0x%02X", page.Checksum, want)
	}

	return page, nil
}

// Encode writes img in page image format. Checksums are recomputed.
func (img *Image) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)

	if _, err := fmt.Fprintf(bw, "%02X%02X\n", img.FamilyID, byte(img.PageCount)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, p := range img.Pages {
		if _, err := fmt.Fprintf(bw, "%02X%s%02X\n", byte(p.Index),
			strings.ToUpper(hex.EncodeToString(p.Data[:])), Checksum(p.Index, &p.Data)); err != nil {
			return fmt.Errorf("failed to write page %d: %w", p.Index, err)
		}
	}

	return bw.Flush()
}

// WriteFile encodes img to path.
func (img *Image) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := img.Encode(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/moffa90/go-w1eprom/driver"
	"github.com/moffa90/go-w1eprom/pageimage"
	"github.com/moffa90/go-w1eprom/protocol"
)

func parsePage(s string) (int, error) {
	page, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid page %q", s)
	}
	return page, nil
}

// parsePageData decodes up to one page of hex. Missing trailing bytes are
// 0xFF so a short write leaves erased EPROM bits alone.
func parsePageData(s string) (protocol.Page, error) {
	var data protocol.Page
	for i := range data {
		data[i] = 0xFF
	}

	s = strings.NewReplacer(" ", "", ":", "", "-", "").Replace(s)
	raw, err := hex.DecodeString(s)
	if err != nil {
		return data, fmt.Errorf("invalid hex data: %w", err)
	}
	if len(raw) == 0 {
		return data, fmt.Errorf("no data")
	}
	if len(raw) > protocol.PageSize {
		return data, fmt.Errorf("data length %d exceeds page size %d", len(raw), protocol.PageSize)
	}
	copy(data[:], raw)
	return data, nil
}

func (a *app) scan(ctx context.Context) error {
	found, err := a.drv.Scan(ctx)
	if err != nil {
		return err
	}
	for _, addr := range found {
		name := "unsupported"
		if desc, ok := protocol.LookupAddress(addr); ok {
			name = desc.Name
		}
		crc := ""
		if !addr.ValidChecksum() {
			crc = " (bad crc)"
		}
		fmt.Fprintf(a.out, "%s  %-11s%s\n", addr, name, crc)
	}
	fmt.Fprintf(a.out, "%d device(s)\n", len(found))
	return nil
}

func (a *app) info(ctx context.Context) error {
	if err := a.bind(ctx); err != nil {
		return err
	}
	s := a.drv.Session()
	d := s.Descriptor

	fmt.Fprintf(a.out, "Address:  %s (%s)\n", s.Address, s.Address.Hex())
	fmt.Fprintf(a.out, "Device:   %s\n", d.Name)
	fmt.Fprintf(a.out, "Type:     %s\n", d.Family)
	fmt.Fprintf(a.out, "Pages:    %d x %d bytes\n", d.PageCount, protocol.PageSize)
	fmt.Fprintf(a.out, "Session:  %s\n", s.ID)
	fmt.Fprintf(a.out, "Present:  %t\n", a.drv.IsConnected())
	return nil
}

func (a *app) read(ctx context.Context, page int) error {
	if err := a.bind(ctx); err != nil {
		return err
	}
	var buf protocol.Page
	if err := a.drv.ReadPage(ctx, page, &buf); err != nil {
		return err
	}
	fmt.Fprint(a.out, hex.Dump(buf[:]))
	return nil
}

func (a *app) write(ctx context.Context, page int, hexData string) error {
	data, err := parsePageData(hexData)
	if err != nil {
		return err
	}
	if err := a.bind(ctx); err != nil {
		return err
	}
	if err := a.drv.WritePage(ctx, page, &data); err != nil {
		if driver.IsBurnFailure(err) {
			return fmt.Errorf("%w; the page may be partially programmed, do not retry", err)
		}
		return err
	}
	fmt.Fprintf(a.out, "page %d written\n", page)
	return nil
}

func (a *app) lock(ctx context.Context, page int) error {
	if err := a.bind(ctx); err != nil {
		return err
	}
	if err := a.drv.LockPage(ctx, page); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "page %d locked\n", page)
	return nil
}

func (a *app) locked(ctx context.Context, page int) error {
	if err := a.bind(ctx); err != nil {
		return err
	}
	locked, err := a.drv.IsPageLocked(ctx, page)
	if err != nil {
		return err
	}
	state := "unlocked"
	if locked {
		state = "locked"
	}
	fmt.Fprintf(a.out, "page %d %s\n", page, state)
	return nil
}

func (a *app) dump(ctx context.Context, path string) error {
	if err := a.bind(ctx); err != nil {
		return err
	}
	img, err := a.drv.Dump(ctx)
	if err != nil {
		return err
	}
	if path == "" || path == "-" {
		return img.Encode(a.out)
	}
	if err := img.WriteFile(path); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d pages written to %s\n", len(img.Pages), path)
	return nil
}

func (a *app) program(ctx context.Context, path string) error {
	var (
		img *pageimage.Image
		err error
	)
	if path == "-" {
		img, err = pageimage.ParseReader(os.Stdin)
	} else {
		img, err = pageimage.Parse(path)
	}
	if err != nil {
		return fmt.Errorf("load image: %w", err)
	}

	if err := a.bind(ctx); err != nil {
		return err
	}

	a.onPage = func(p driver.Progress) {
		fmt.Fprintf(a.out, "[%s] %.1f%% - Page %d/%d\n",
			p.Phase, p.Percentage, p.CurrentPage, p.TotalPages)
	}
	defer func() { a.onPage = nil }()

	return a.drv.Program(ctx, img)
}

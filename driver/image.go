package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/moffa90/go-w1eprom/pageimage"
	"github.com/moffa90/go-w1eprom/protocol"
)

// Dump reads every page of the bound chip into a new image.
//
// Example:
//
//	img, err := drv.Dump(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_ = img.WriteFile("backup.w1img")
func (d *Driver) Dump(ctx context.Context) (*pageimage.Image, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	startTime := time.Now()

	desc, err := d.begin(ctx, opDump, 0)
	if err != nil {
		return nil, err
	}

	img := pageimage.New(desc)
	for page := 0; page < desc.PageCount; page++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%s: cancelled: %w", opDump, err)
		}

		data, err := d.readPage(desc, page)
		if err != nil {
			return nil, err
		}
		if err := img.Set(page, data); err != nil {
			return nil, err
		}

		d.reportProgress(Progress{
			Phase:            PhaseReading,
			CurrentPage:      page + 1,
			TotalPages:       desc.PageCount,
			Percentage:       float64(page+1) / float64(desc.PageCount) * 100,
			BytesTransferred: (page + 1) * protocol.PageSize,
			ElapsedTime:      time.Since(startTime),
		})
	}

	d.reportProgress(Progress{
		Phase:            PhaseComplete,
		CurrentPage:      desc.PageCount,
		TotalPages:       desc.PageCount,
		Percentage:       100,
		BytesTransferred: desc.Size(),
		ElapsedTime:      time.Since(startTime),
	})

	d.logInfo("dump complete",
		"pages", desc.PageCount,
		"elapsed", time.Since(startTime).String(),
	)

	return img, nil
}

// Program writes every page carried by img to the bound chip:
//  1. Check the image was made for the bound family
//  2. Check every image page exists on the chip
//  3. Write the pages in order
//  4. Read each page back when verification is enabled
//
// Pages absent from the image are not touched. The operation can be
// cancelled between pages via context.
//
// Example:
//
//	img, _ := pageimage.Parse("config.w1img")
//	err := drv.Program(context.Background(), img)
func (d *Driver) Program(ctx context.Context, img *pageimage.Image) error {
	if img == nil {
		return fmt.Errorf("image cannot be nil")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	startTime := time.Now()

	desc, err := d.resolve(opProg, -1)
	if err != nil {
		return err
	}

	if img.FamilyID != desc.FamilyID {
		return &FamilyMismatchError{
			Expected: img.FamilyID,
			Actual:   desc.FamilyID,
		}
	}

	for _, p := range img.Pages {
		if !desc.ValidPage(p.Index) {
			return &PageOutOfRangeError{
				Page:    p.Index,
				MaxPage: desc.PageCount - 1,
			}
		}
	}

	total := len(img.Pages)
	if total == 0 {
		return nil
	}

	if _, err := d.begin(ctx, opProg, img.Pages[0].Index); err != nil {
		return err
	}

	d.reportProgress(Progress{
		Phase:      PhaseWriting,
		TotalPages: total,
	})

	bytesWritten := 0
	for i, p := range img.Pages {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: cancelled: %w", opProg, err)
		}

		if d.config.LockCheck {
			locked, err := d.isPageLocked(desc, p.Index)
			if err != nil {
				return fmt.Errorf("program page %d: %w", p.Index, err)
			}
			if locked {
				return fmt.Errorf("program page %d: %w", p.Index,
					protocol.NewError(opWrite, protocol.CodePageLocked, p.Index, nil))
			}
		}

		data := p.Data
		if err := d.writePage(desc, p.Index, &data); err != nil {
			return fmt.Errorf("program page %d: %w", p.Index, err)
		}

		if d.config.VerifyAfterWrite {
			if err := d.verifyPage(desc, p); err != nil {
				return fmt.Errorf("verify page %d: %w", p.Index, err)
			}
		}

		bytesWritten += protocol.PageSize

		phase := PhaseWriting
		if d.config.VerifyAfterWrite {
			phase = PhaseVerifying
		}
		d.reportProgress(Progress{
			Phase:            phase,
			CurrentPage:      i + 1,
			TotalPages:       total,
			Percentage:       float64(i+1) / float64(total) * 100,
			BytesTransferred: bytesWritten,
			ElapsedTime:      time.Since(startTime),
		})
	}

	d.reportProgress(Progress{
		Phase:            PhaseComplete,
		CurrentPage:      total,
		TotalPages:       total,
		Percentage:       100,
		BytesTransferred: bytesWritten,
		ElapsedTime:      time.Since(startTime),
	})

	d.logInfo("programming complete",
		"pages", total,
		"bytes", bytesWritten,
		"elapsed", time.Since(startTime).String(),
	)

	return nil
}

// verifyPage reads p back and compares it with the image.
func (d *Driver) verifyPage(desc *protocol.DeviceDescriptor, p *pageimage.Page) error {
	got, err := d.readPage(desc, p.Index)
	if err != nil {
		return err
	}

	for i := range got {
		if got[i] != p.Data[i] {
			return &VerificationError{
				Page:   p.Index,
				Reason: fmt.Sprintf("offset %d: wrote 0x%02X, read 0x%02X", i, p.Data[i], got[i]),
			}
		}
	}
	return nil
}

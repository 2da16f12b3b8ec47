package driver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moffa90/go-w1eprom/pageimage"
	"github.com/moffa90/go-w1eprom/protocol"
	"github.com/moffa90/go-w1eprom/sim"
)

func TestDump(t *testing.T) {
	chip := newChip(t, famDS2431)
	for page := 0; page < 4; page++ {
		chip.SetMemory(uint16(page*32), bytesOf(pattern(byte(page))))
	}

	var progress []Progress
	drv, _, _ := bound(t, chip, WithProgressCallback(func(p Progress) {
		progress = append(progress, p)
	}))

	img, err := drv.Dump(context.Background())
	require.NoError(t, err)

	assert.Equal(t, byte(famDS2431), img.FamilyID)
	assert.Equal(t, 4, img.PageCount)
	require.Len(t, img.Pages, 4)
	for page := 0; page < 4; page++ {
		assert.Equal(t, pattern(byte(page)), img.Page(page).Data)
	}

	require.Len(t, progress, 5)
	assert.Equal(t, PhaseReading, progress[0].Phase)
	assert.Equal(t, 25.0, progress[0].Percentage)
	assert.Equal(t, PhaseComplete, progress[4].Phase)
	assert.Equal(t, 128, progress[4].BytesTransferred)
}

func TestDumpFollowsRedirect(t *testing.T) {
	chip := newChip(t, famDS2502)
	chip.SetMemory(96, bytesOf(pattern(0x44)))
	chip.(*sim.EPROM).Redirect(1, 96)

	drv, _, _ := bound(t, chip)
	img, err := drv.Dump(context.Background())
	require.NoError(t, err)
	assert.Equal(t, pattern(0x44), img.Page(1).Data)
	assert.Equal(t, pattern(0x44), img.Page(3).Data)
}

func TestProgram(t *testing.T) {
	chip := newChip(t, famDS2433)
	desc, _ := protocol.Lookup(famDS2433)

	img := pageimage.New(desc)
	require.NoError(t, img.Set(2, pattern(2)))
	require.NoError(t, img.Set(11, pattern(11)))

	var phases []string
	drv, _, _ := bound(t, chip, WithProgressCallback(func(p Progress) {
		phases = append(phases, p.Phase)
	}))

	require.NoError(t, drv.Program(context.Background(), img))
	assert.Equal(t, []string{PhaseWriting, PhaseVerifying, PhaseVerifying, PhaseComplete}, phases)

	mem := chip.Memory()
	assert.Equal(t, bytesOf(pattern(2)), mem[2*32:3*32])
	assert.Equal(t, bytesOf(pattern(11)), mem[11*32:12*32])
	assert.Equal(t, bytesOf(filled(0xFF)), mem[3*32:4*32])
}

func TestProgramWithoutVerify(t *testing.T) {
	chip := newChip(t, famDS2502)
	desc, _ := protocol.Lookup(famDS2502)
	img := pageimage.New(desc)
	require.NoError(t, img.Set(0, pattern(1)))

	var phases []string
	drv, _, _ := bound(t, chip, WithVerifyAfterWrite(false), WithProgressCallback(func(p Progress) {
		phases = append(phases, p.Phase)
	}))

	require.NoError(t, drv.Program(context.Background(), img))
	assert.Equal(t, []string{PhaseWriting, PhaseWriting, PhaseComplete}, phases)
}

func TestProgramErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("nil image", func(t *testing.T) {
		drv, _, _ := bound(t, newChip(t, famDS2431))
		assert.EqualError(t, drv.Program(ctx, nil), "image cannot be nil")
	})

	t.Run("family mismatch", func(t *testing.T) {
		chip := newChip(t, famDS2431)
		drv, _, _ := bound(t, chip)

		desc, _ := protocol.Lookup(famDS2433)
		img := pageimage.New(desc)
		require.NoError(t, img.Set(0, pattern(0)))

		err := drv.Program(ctx, img)
		var merr *FamilyMismatchError
		require.True(t, errors.As(err, &merr))
		assert.Equal(t, byte(famDS2433), merr.Expected)
		assert.Equal(t, byte(famDS2431), merr.Actual)
		assert.Equal(t, 0, chip.(*sim.EEPROM).Copies())
	})

	t.Run("page out of range", func(t *testing.T) {
		drv, _, _ := bound(t, newChip(t, famDS2431))
		img := &pageimage.Image{
			FamilyID:  famDS2431,
			PageCount: 8,
			Pages:     []*pageimage.Page{{Index: 6}},
		}

		err := drv.Program(ctx, img)
		var rerr *PageOutOfRangeError
		require.True(t, errors.As(err, &rerr))
		assert.Equal(t, 6, rerr.Page)
		assert.Equal(t, 3, rerr.MaxPage)
	})

	t.Run("verification failure", func(t *testing.T) {
		chip := newChip(t, famDS2502)
		chip.(*sim.EPROM).Redirect(1, 0)

		desc, _ := protocol.Lookup(famDS2502)
		img := pageimage.New(desc)
		require.NoError(t, img.Set(1, pattern(9)))

		drv, _, _ := bound(t, chip)
		err := drv.Program(ctx, img)

		var verr *VerificationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, 1, verr.Page)
		assert.Contains(t, err.Error(), "verify page 1")
	})

	t.Run("burn failure", func(t *testing.T) {
		chip := newChip(t, famDS2502)
		chip.(*sim.EPROM).FailBurnAt(2*32 + 7)

		desc, _ := protocol.Lookup(famDS2502)
		img := pageimage.New(desc)
		require.NoError(t, img.Set(2, filled(0x00)))
		require.NoError(t, img.Set(3, filled(0x00)))

		drv, _, _ := bound(t, chip)
		err := drv.Program(ctx, img)
		assert.True(t, IsBurnFailure(err))
		assert.True(t, errors.Is(err, protocol.ErrCopyFailure))
		assert.Equal(t, bytesOf(filled(0xFF)), chip.Memory()[3*32:4*32])
	})

	t.Run("cancelled", func(t *testing.T) {
		drv, _, _ := bound(t, newChip(t, famDS2431))
		desc, _ := protocol.Lookup(famDS2431)
		img := pageimage.New(desc)
		require.NoError(t, img.Set(0, pattern(0)))

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		assert.True(t, errors.Is(drv.Program(cctx, img), context.Canceled))
	})
}

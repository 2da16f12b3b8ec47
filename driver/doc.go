// Package driver reads, writes and write-protects the pages of Dallas/Maxim
// 1-Wire memory chips.
//
// Supported chips fall in two families that share addressing but differ in
// every write sequence:
//
//   - EPROM (DS2502, DS2505): one-time programmable. Bytes are burned one at
//     a time with a programming pulse and read back immediately. Pages can
//     be redirected to another address once burned.
//   - EEPROM (DS2430, DS2431, DS2433): writes are staged in a scratchpad,
//     read back for integrity, then copied to memory under an authorization
//     code.
//
// # Basic Usage
//
//	drv := driver.New(bus,
//	    driver.WithProgramPin(pin),
//	    driver.WithLogger(driver.NewSlogLogger(nil)),
//	)
//
//	session, err := drv.Search(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("found", session.Name())
//
//	var page protocol.Page
//	if err := drv.ReadPage(ctx, 0, &page); err != nil {
//	    log.Fatal(err)
//	}
//
// # Bus Access
//
// The Driver talks through the Bus interface, a byte-level 1-Wire master.
// Every page operation runs a complete reset, select, command, response
// sequence under the Driver's lock, so a Driver may be shared between
// goroutines. Only one Driver may use a physical bus.
//
// Blocking delays (500µs programming windows, 10ms scratchpad copies) go
// through the configured Sleeper.
//
// # Error Handling
//
// Every failure is a *protocol.Error carrying one of the protocol.Code
// values. Match them with errors.Is:
//
//	err := drv.WritePage(ctx, 0, &page)
//	switch {
//	case errors.Is(err, protocol.ErrCRCMismatch):
//	    // bus noise, retry
//	case driver.IsBurnFailure(err):
//	    // EPROM byte did not take; do not retry
//	}
package driver

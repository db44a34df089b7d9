package ppu

import "testing"

type testBus struct {
	chr      [0x2000]uint8
	nmiCount int
}

func (b *testBus) ChrRead(start, end uint16) []uint8 {
	return append([]uint8{}, b.chr[start:end+1]...)
}

func (b *testBus) TriggerNMI() { b.nmiCount++ }

func TestPaletteMirrorsSpriteBackdropEntries(t *testing.T) {
	p := New(&testBus{})

	p.write(0x3F00, 0x10)
	if got := p.read(0x3F10); got != 0x10 {
		t.Errorf("read(0x3F10) = 0x%02x, want 0x10 (mirrors 0x3F00)", got)
	}

	p.write(0x3F08, 0x22)
	if got := p.read(0x3F18); got != 0x22 {
		t.Errorf("read(0x3F18) = 0x%02x, want 0x22 (mirrors 0x3F08)", got)
	}
}

func TestPaletteNonBackdropEntriesDoNotMirror(t *testing.T) {
	p := New(&testBus{})

	p.write(0x3F01, 0x05)
	p.write(0x3F11, 0x09)
	if got := p.read(0x3F01); got != 0x05 {
		t.Errorf("read(0x3F01) = 0x%02x, want 0x05 (unaffected by sibling write)", got)
	}
}

func TestPPUSTATUSReadClearsVBlankAndLatch(t *testing.T) {
	p := New(&testBus{})
	p.registers[PPUSTATUS] = STATUS_VERTICAL_BLANK
	p.wLatch = 1

	v := p.ReadReg(PPUSTATUS)
	if v&STATUS_VERTICAL_BLANK == 0 {
		t.Error("first ReadReg(PPUSTATUS) didn't report vblank set")
	}
	if p.registers[PPUSTATUS]&STATUS_VERTICAL_BLANK != 0 {
		t.Error("ReadReg(PPUSTATUS) should clear the vblank bit as a side effect")
	}
	if p.wLatch != 0 {
		t.Error("ReadReg(PPUSTATUS) should reset the write latch")
	}
}

func TestVBlankNMIFiresOnceAtScanline241Dot1(t *testing.T) {
	b := &testBus{}
	p := New(b)
	p.registers[PPUCTRL] = CTRL_GENERATE_NMI

	// Drive the PPU through exactly one full frame; NMI must fire
	// exactly once per vblank entry, not once per Tick() call.
	for i := 0; i < DOTS_PER_SCANLINE*SCANLINES_PER_FRAME; i++ {
		p.Tick(1)
	}

	if b.nmiCount != 1 {
		t.Errorf("nmiCount = %d, want 1 per frame", b.nmiCount)
	}
}

func TestVRAMIncrementModes(t *testing.T) {
	p := New(&testBus{})
	p.v = 0x2000

	p.registers[PPUCTRL] = 0 // across: +1
	p.vramIncrement()
	if p.v != 0x2001 {
		t.Errorf("v = 0x%04x, want 0x2001", p.v)
	}

	p.registers[PPUCTRL] = CTRL_VRAM_ADD_INCREMENT // down: +32
	p.vramIncrement()
	if p.v != 0x2021 {
		t.Errorf("v = 0x%04x, want 0x2021", p.v)
	}
}

func TestOAMDATAWriteAdvancesOAMADDR(t *testing.T) {
	p := New(&testBus{})
	p.registers[OAMADDR] = 0x10

	p.WriteReg(OAMDATA, 0x42)
	if p.oamData[0x10] != 0x42 {
		t.Errorf("oamData[0x10] = 0x%02x, want 0x42", p.oamData[0x10])
	}
	if p.registers[OAMADDR] != 0x11 {
		t.Errorf("OAMADDR = 0x%02x, want 0x11 after write", p.registers[OAMADDR])
	}
}

func TestPPUDATABufferedReadSemantics(t *testing.T) {
	b := &testBus{}
	for i := range b.chr {
		b.chr[i] = 0xAB
	}
	p := New(b)
	p.v = 0x0000 // pattern table range, goes through the read buffer

	first := p.ReadReg(PPUDATA)
	if first == 0xAB {
		t.Error("first PPUDATA read after seeking should return the stale buffer, not fresh data")
	}
	second := p.ReadReg(PPUDATA)
	if second != 0xAB {
		t.Errorf("second PPUDATA read = 0x%02x, want 0xAB", second)
	}
}

func TestSpritePatternAddr8x16SplitsBankByTileLSB(t *testing.T) {
	p := New(&testBus{})
	p.registers[PPUCTRL] = CTRL_SPRITE_SIZE

	s := oam{tileId: 0x05} // odd tile id -> bank 1, tile 0x04
	addr := p.spritePatternAddr(s, 0)
	want := uint16(0x1000) + 0x04*16 + 0
	if addr != want {
		t.Errorf("spritePatternAddr = 0x%04x, want 0x%04x", addr, want)
	}

	addrRow9 := p.spritePatternAddr(s, 9) // row 9 -> second tile of the pair
	want9 := uint16(0x1000) + 0x05*16 + 1
	if addrRow9 != want9 {
		t.Errorf("spritePatternAddr(row=9) = 0x%04x, want 0x%04x", addrRow9, want9)
	}
}

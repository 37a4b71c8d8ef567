package nes

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildNROM(resetVector uint16) []byte {
	header := []byte{'N', 'E', 'S', 0x1A, 2, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	prg := make([]byte, 32768)
	prg[0x7FFC] = uint8(resetVector)
	prg[0x7FFD] = uint8(resetVector >> 8)
	chr := make([]byte, 8192)

	buf := &bytes.Buffer{}
	buf.Write(header)
	buf.Write(prg)
	buf.Write(chr)
	return buf.Bytes()
}

func TestLoadROMResetsCPUToResetVector(t *testing.T) {
	s := New()
	err := s.LoadROM(bytes.NewReader(buildNROM(0x8000)))
	require.NoError(t, err)
	assert.Equal(t, uint16(0x8000), s.CPU.PC)
}

func TestLoadROMFailurePreservesExistingCartridge(t *testing.T) {
	s := New()
	require.NoError(t, s.LoadROM(bytes.NewReader(buildNROM(0x8000))))
	original := s.Cartridge()

	badData := []byte("not an ines file")
	err := s.LoadROM(bytes.NewReader(badData))
	assert.Error(t, err)
	assert.Same(t, original, s.Cartridge())
}

func TestOAMDMAStallParityMatchesCPUCycleParity(t *testing.T) {
	s := New()
	require.NoError(t, s.LoadROM(bytes.NewReader(buildNROM(0x8000))))

	s.totalCPUCycles = 10 // even
	s.triggerOAMDMA(0x02)
	assert.Equal(t, 513, s.dmaStallCycles)

	s.dmaStallCycles = 0
	s.totalCPUCycles = 11 // odd
	s.triggerOAMDMA(0x02)
	assert.Equal(t, 514, s.dmaStallCycles)
}

func TestOAMDMACopiesFullPageIntoOAM(t *testing.T) {
	s := New()
	require.NoError(t, s.LoadROM(bytes.NewReader(buildNROM(0x8000))))

	for i := 0; i < 256; i++ {
		s.Bus.Write(uint16(0x0200+i), uint8(i))
	}
	s.triggerOAMDMA(0x02)

	s.PPU.WriteRegister(0x2003, 0) // OAMADDR = 0
	assert.Equal(t, uint8(0), s.PPU.ReadRegister(0x2004))
	s.PPU.WriteRegister(0x2003, 255)
	assert.Equal(t, uint8(255), s.PPU.ReadRegister(0x2004))
}

func TestRunFrameAdvancesFrameCount(t *testing.T) {
	s := New()
	require.NoError(t, s.LoadROM(bytes.NewReader(buildNROM(0x8000))))
	before := s.PPU.FrameCount()
	s.RunFrame()
	assert.Equal(t, before+1, s.PPU.FrameCount())
}

//go:build linux && (amd64 || arm64)

package alsa

import "unsafe"

// Compile-time struct size assertions.
// These will cause build failures if struct sizes don't match kernel expectations.
var (
	_ [376]byte = [unsafe.Sizeof(sndCtlCardInfo{})]byte{}
	_ [288]byte = [unsafe.Sizeof(sndPCMInfo{})]byte{}
	_ [32]byte  = [unsafe.Sizeof(sndMask{})]byte{}
	_ [12]byte  = [unsafe.Sizeof(sndInterval{})]byte{}
	_ [608]byte = [unsafe.Sizeof(sndPCMHwParams{})]byte{}
	_ [136]byte = [unsafe.Sizeof(sndPCMSwParams{})]byte{}
	_ [24]byte  = [unsafe.Sizeof(sndXferi{})]byte{}
)

// IOCTL constants for 64-bit architectures.
const (
	sndrvPCMIoctlHwRefine = 0xc2604110
	sndrvPCMIoctlHwParams = 0xc2604111
	sndrvPCMIoctlSwParams = 0xc0884113
	sndrvPCMIoctlWriteI   = 0x40184150
	sndrvPCMIoctlReadI    = 0x80184151
)

// snd_pcm_uframes_t and snd_pcm_sframes_t follow the kernel's long.
type (
	sndUframes = uint64
	sndSframes = int64
)

// sndPCMHwParams has size 608 bytes.
type sndPCMHwParams struct {
	flags     uint32                                                                      // offset 0
	masks     [sndrvPCMHwParamLastMask - sndrvPCMHwParamFirstMask + 1]sndMask             // offset 4, size 96
	mres      [5]sndMask                                                                  // offset 100, size 160
	intervals [sndrvPCMHwParamLastInterval - sndrvPCMHwParamFirstInterval + 1]sndInterval // offset 260, size 144
	ires      [9]sndInterval                                                              // offset 404, size 108
	rmask     uint32                                                                      // offset 512
	cmask     uint32                                                                      // offset 516
	info      uint32                                                                      // offset 520
	msbits    uint32                                                                      // offset 524
	rateNum   uint32                                                                      // offset 528
	rateDen   uint32                                                                      // offset 532
	fifoSize  sndUframes                                                                  // offset 536
	reserved  [64]byte                                                                    // offset 544
}

// sndPCMSwParams has size 136 bytes.
type sndPCMSwParams struct {
	tstampMode       int32      // offset 0
	periodStep       uint32     // offset 4
	sleepMin         uint32     // offset 8
	_                [4]byte    // padding
	availMin         sndUframes // offset 16
	xferAlign        sndUframes // offset 24
	startThreshold   sndUframes // offset 32
	stopThreshold    sndUframes // offset 40
	silenceThreshold sndUframes // offset 48
	silenceSize      sndUframes // offset 56
	boundary         sndUframes // offset 64
	proto            uint32     // offset 72
	tstampType       uint32     // offset 76
	reserved         [56]byte   // offset 80
}

// sndXferi has size 24 bytes.
type sndXferi struct {
	result sndSframes
	buf    uintptr
	frames sndUframes
}

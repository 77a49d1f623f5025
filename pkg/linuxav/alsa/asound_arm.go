//go:build linux && arm

package alsa

import "unsafe"

var (
	_ [376]byte = [unsafe.Sizeof(sndCtlCardInfo{})]byte{}
	_ [288]byte = [unsafe.Sizeof(sndPCMInfo{})]byte{}
	_ [604]byte = [unsafe.Sizeof(sndPCMHwParams{})]byte{}
	_ [104]byte = [unsafe.Sizeof(sndPCMSwParams{})]byte{}
	_ [12]byte  = [unsafe.Sizeof(sndXferi{})]byte{}
)

// IOCTL constants for 32-bit ARM. The sizes differ from 64-bit because
// snd_pcm_uframes_t is 4 bytes wide.
const (
	sndrvPCMIoctlHwRefine = 0xc25c4110
	sndrvPCMIoctlHwParams = 0xc25c4111
	sndrvPCMIoctlSwParams = 0xc0684113
	sndrvPCMIoctlWriteI   = 0x400c4150
	sndrvPCMIoctlReadI    = 0x800c4151
)

type (
	sndUframes = uint32
	sndSframes = int32
)

// sndPCMHwParams has size 604 bytes.
type sndPCMHwParams struct {
	flags     uint32
	masks     [sndrvPCMHwParamLastMask - sndrvPCMHwParamFirstMask + 1]sndMask
	mres      [5]sndMask
	intervals [sndrvPCMHwParamLastInterval - sndrvPCMHwParamFirstInterval + 1]sndInterval
	ires      [9]sndInterval
	rmask     uint32
	cmask     uint32
	info      uint32
	msbits    uint32
	rateNum   uint32
	rateDen   uint32
	fifoSize  sndUframes
	reserved  [64]byte
}

// sndPCMSwParams has size 104 bytes.
type sndPCMSwParams struct {
	tstampMode       int32
	periodStep       uint32
	sleepMin         uint32
	availMin         sndUframes
	xferAlign        sndUframes
	startThreshold   sndUframes
	stopThreshold    sndUframes
	silenceThreshold sndUframes
	silenceSize      sndUframes
	boundary         sndUframes
	proto            uint32
	tstampType       uint32
	reserved         [56]byte
}

type sndXferi struct {
	result sndSframes
	buf    uintptr
	frames sndUframes
}

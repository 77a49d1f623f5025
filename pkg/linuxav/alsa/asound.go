//go:build linux

package alsa

// IOCTL constants shared by every architecture. None of these structs carry
// pointers or longs, so their encoded sizes do not vary.
const (
	// Control interface IOCTLs.
	sndrvCtlIoctlCardInfo      = 0x81785501
	sndrvCtlIoctlPCMNextDevice = 0x80045530
	sndrvCtlIoctlPCMInfo       = 0xc1205531

	// PCM IOCTLs.
	sndrvPCMIoctlInfo    = 0x81204101
	sndrvPCMIoctlTTStamp = 0x40044103
	sndrvPCMIoctlPrepare = 0x00004140
	sndrvPCMIoctlReset   = 0x00004141
	sndrvPCMIoctlStart   = 0x00004142
	sndrvPCMIoctlDrop    = 0x00004143
	sndrvPCMIoctlResume  = 0x00004147

	sndrvPCMMmapOffsetStatus = 0x80000000
)

// Hardware parameter constants.
const (
	sndrvPCMHwParamAccess        = 0
	sndrvPCMHwParamFormat        = 1
	sndrvPCMHwParamSubformat     = 2
	sndrvPCMHwParamFirstMask     = 0
	sndrvPCMHwParamLastMask      = 2
	sndrvPCMHwParamSampleBits    = 8
	sndrvPCMHwParamFrameBits     = 9
	sndrvPCMHwParamChannels      = 10
	sndrvPCMHwParamRate          = 11
	sndrvPCMHwParamPeriodTime    = 12
	sndrvPCMHwParamPeriodSize    = 13
	sndrvPCMHwParamPeriodBytes   = 14
	sndrvPCMHwParamPeriods       = 15
	sndrvPCMHwParamBufferTime    = 16
	sndrvPCMHwParamBufferSize    = 17
	sndrvPCMHwParamBufferBytes   = 18
	sndrvPCMHwParamTickTime      = 19
	sndrvPCMHwParamFirstInterval = 8
	sndrvPCMHwParamLastInterval  = 19

	sndrvMaskMax = 256

	sndrvPCMAccessRwInterleaved = 3

	sndrvPCMTstampEnable        = 1
	sndrvPCMTstampTypeMonotonic = 1

	intervalOpenMin = 1 << 0
	intervalOpenMax = 1 << 1
	intervalInteger = 1 << 2
)

// sndCtlCardInfo has size 376 bytes.
type sndCtlCardInfo struct {
	card       int32     // offset 0
	_          [4]byte   // padding
	id         [16]byte  // offset 8
	driver     [16]byte  // offset 24
	name       [32]byte  // offset 40
	longname   [80]byte  // offset 72
	reserved   [16]byte  // offset 152
	mixername  [80]byte  // offset 168
	components [128]byte // offset 248
}

// sndPCMInfo has size 288 bytes.
type sndPCMInfo struct {
	device          uint32   // offset 0
	subdevice       uint32   // offset 4
	stream          int32    // offset 8
	card            int32    // offset 12
	id              [64]byte // offset 16
	name            [80]byte // offset 80
	subname         [32]byte // offset 160
	devClass        int32    // offset 192
	devSubclass     int32    // offset 196
	subdevicesCount uint32   // offset 200
	subdevicesAvail uint32   // offset 204
	_               [16]byte // padding
	reserved        [64]byte // offset 224
}

// sndMask has size 32 bytes.
type sndMask struct {
	bits [(sndrvMaskMax + 31) / 32]uint32
}

// sndInterval has size 12 bytes.
type sndInterval struct {
	minVal uint32
	maxVal uint32
	flags  uint32
}

func (p *sndPCMHwParams) init() {
	for i := range p.masks {
		for j := range p.masks[i].bits {
			p.masks[i].bits[j] = 0xFFFFFFFF
		}
	}
	for i := range p.intervals {
		p.intervals[i].minVal = 0
		p.intervals[i].maxVal = 0xFFFFFFFF
		p.intervals[i].flags = 0
	}
	p.rmask = 0xFFFFFFFF
	p.cmask = 0
	p.info = 0xFFFFFFFF
}

func (p *sndPCMHwParams) setMask(param, val uint32) {
	m := &p.masks[param-sndrvPCMHwParamFirstMask]
	for i := range m.bits {
		m.bits[i] = 0
	}
	m.bits[val>>5] = 1 << (val & 0x1F)
}

func (p *sndPCMHwParams) checkMask(param, val uint32) bool {
	return p.masks[param-sndrvPCMHwParamFirstMask].bits[val>>5]&(1<<(val&0x1F)) > 0
}

// setInteger pins an interval parameter to exactly val.
func (p *sndPCMHwParams) setInteger(param, val uint32) {
	iv := &p.intervals[param-sndrvPCMHwParamFirstInterval]
	iv.minVal = val
	iv.maxVal = val
	iv.flags = intervalInteger
}

func (p *sndPCMHwParams) getInterval(param uint32) (minVal, maxVal uint32) {
	idx := param - sndrvPCMHwParamFirstInterval
	return p.intervals[idx].minVal, p.intervals[idx].maxVal
}

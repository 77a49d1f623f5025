//go:build linux

package alsa

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ErrInvalidDeviceName is returned for device names outside the hw: plugin forms.
var ErrInvalidDeviceName = errors.New("alsa: invalid device name")

// procAsound is where card ids resolve to card numbers.
var procAsound = "/proc/asound"

// ListDevices returns all ALSA PCM devices, one entry per supported direction.
func ListDevices() ([]Device, error) {
	var devices []Device

	for cardNum := 0; ; cardNum++ {
		ctlPath := fmt.Sprintf("/dev/snd/controlC%d", cardNum)
		ctlFd, err := unix.Open(ctlPath, unix.O_RDONLY, 0)
		if err != nil {
			if errors.Is(err, unix.ENOENT) {
				break // No more cards
			}
			continue
		}

		cardInfo := sndCtlCardInfo{}
		if err := ioctl(uintptr(ctlFd), sndrvCtlIoctlCardInfo, unsafe.Pointer(&cardInfo)); err != nil {
			_ = unix.Close(ctlFd)
			continue
		}

		deviceNum := int32(-1)
		for {
			if err := ioctl(uintptr(ctlFd), sndrvCtlIoctlPCMNextDevice, unsafe.Pointer(&deviceNum)); err != nil {
				break
			}
			if deviceNum < 0 {
				break
			}

			for _, stream := range []int{StreamCapture, StreamPlayback} {
				pcmInfo := sndPCMInfo{
					device: uint32(deviceNum),
					stream: int32(stream),
				}
				if err := ioctl(uintptr(ctlFd), sndrvCtlIoctlPCMInfo, unsafe.Pointer(&pcmInfo)); err != nil {
					continue // direction not supported
				}

				device := Device{
					CardNumber:   cardNum,
					CardID:       cstr(cardInfo.id[:]),
					CardName:     cstr(cardInfo.longname[:]),
					DeviceNumber: int(deviceNum),
					DeviceName:   cstr(pcmInfo.name[:]),
					Type:         StreamName(stream),
					ALSADevice:   FormatALSADevice(cardNum, int(deviceNum)),
				}

				if caps, err := queryCapabilities(cardNum, int(deviceNum), stream); err == nil {
					device.SupportedRates = caps.rates
					device.MinChannels = caps.minChannels
					device.MaxChannels = caps.maxChannels
					device.SupportedFormats = caps.formats
					device.MinBufferSize = caps.minBufferSize
					device.MaxBufferSize = caps.maxBufferSize
					device.MinPeriodSize = caps.minPeriodSize
					device.MaxPeriodSize = caps.maxPeriodSize
				}

				devices = append(devices, device)
			}
		}

		_ = unix.Close(ctlFd)
	}

	return devices, nil
}

// ParseDeviceName resolves "hw:C,D", "hw:C", "hw:CARD=id,DEV=d" and
// "plughw:" variants of them to card and device numbers.
func ParseDeviceName(name string) (card, device int, err error) {
	rest, ok := strings.CutPrefix(name, "hw:")
	if !ok {
		rest, ok = strings.CutPrefix(name, "plughw:")
	}
	if !ok || rest == "" {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidDeviceName, name)
	}

	parts := strings.Split(rest, ",")
	if len(parts) > 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidDeviceName, name)
	}

	cardPart := strings.TrimPrefix(parts[0], "CARD=")
	card, err = resolveCard(cardPart)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q: %w", ErrInvalidDeviceName, name, err)
	}

	if len(parts) == 2 {
		devPart := strings.TrimPrefix(parts[1], "DEV=")
		device, err = strconv.Atoi(devPart)
		if err != nil || device < 0 {
			return 0, 0, fmt.Errorf("%w: %q: bad device %q", ErrInvalidDeviceName, name, devPart)
		}
	}

	return card, device, nil
}

// resolveCard accepts a card number or a card id. Card ids are symlinks in
// /proc/asound pointing at "cardN".
func resolveCard(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative card %d", n)
		}
		return n, nil
	}

	target, err := os.Readlink(filepath.Join(procAsound, s))
	if err != nil {
		return 0, fmt.Errorf("unknown card %q: %w", s, err)
	}

	n, err := strconv.Atoi(strings.TrimPrefix(filepath.Base(target), "card"))
	if err != nil {
		return 0, fmt.Errorf("unexpected card link %q", target)
	}
	return n, nil
}

func streamSuffix(stream int) rune {
	if stream == StreamCapture {
		return 'c'
	}
	return 'p'
}

func pcmPath(card, device, stream int) string {
	return fmt.Sprintf("/dev/snd/pcmC%dD%d%c", card, device, streamSuffix(stream))
}

// StatusPath returns the procfs status file of the first substream.
func StatusPath(card, device, stream int) string {
	return filepath.Join(procAsound, fmt.Sprintf("card%d", card),
		fmt.Sprintf("pcm%d%c", device, streamSuffix(stream)), "sub0", "status")
}

type capabilities struct {
	rates         []int
	minChannels   int
	maxChannels   int
	formats       []string
	minBufferSize int
	maxBufferSize int
	minPeriodSize int
	maxPeriodSize int
}

func queryCapabilities(card, device, stream int) (*capabilities, error) {
	fd, err := unix.Open(pcmPath(card, device, stream), unix.O_RDWR|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, err
	}
	defer unix.Close(fd)

	hwparams := sndPCMHwParams{}
	hwparams.init()
	hwparams.setMask(sndrvPCMHwParamAccess, sndrvPCMAccessRwInterleaved)

	if err := ioctl(uintptr(fd), sndrvPCMIoctlHwRefine, unsafe.Pointer(&hwparams)); err != nil {
		return nil, err
	}

	caps := &capabilities{}

	minCh, maxCh := hwparams.getInterval(sndrvPCMHwParamChannels)
	caps.minChannels = int(minCh)
	caps.maxChannels = int(maxCh)

	minRate, maxRate := hwparams.getInterval(sndrvPCMHwParamRate)
	for _, rate := range CommonSampleRates {
		if uint32(rate) >= minRate && uint32(rate) <= maxRate {
			caps.rates = append(caps.rates, rate)
		}
	}

	for _, format := range CommonFormats {
		if hwparams.checkMask(sndrvPCMHwParamFormat, uint32(format)) {
			caps.formats = append(caps.formats, FormatName(format))
		}
	}

	minBuf, maxBuf := hwparams.getInterval(sndrvPCMHwParamBufferSize)
	caps.minBufferSize = int(minBuf)
	caps.maxBufferSize = int(maxBuf)

	minPer, maxPer := hwparams.getInterval(sndrvPCMHwParamPeriodSize)
	caps.minPeriodSize = int(minPer)
	caps.maxPeriodSize = int(maxPer)

	return caps, nil
}

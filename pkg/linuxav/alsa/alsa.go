//go:build linux

// Package alsa provides pure Go bindings to the ALSA (Advanced Linux Sound Architecture)
// kernel interface for device enumeration and interleaved PCM transfer.
//
// This package does not use cgo, enabling simple cross-compilation for
// different Linux architectures (amd64, arm64, arm).
//
// # Device Enumeration
//
// Use ListDevices to discover ALSA PCM devices:
//
//	devices, err := alsa.ListDevices()
//	for _, dev := range devices {
//	    fmt.Printf("%s: %s (%s, %s)\n", dev.ALSADevice, dev.DeviceName, dev.CardID, dev.Type)
//	}
//
// # PCM Transfer
//
// OpenPCM negotiates hardware and software parameters on a device name such as
// "hw:0,0" or "hw:CARD=tujasdr,DEV=0". Negotiation is exact: a rate, period size
// or period count the driver cannot satisfy fails the open.
//
//	pcm, err := alsa.OpenPCM("hw:CARD=tujasdr,DEV=0", alsa.StreamCapture, alsa.Config{
//	    Channels:   2,
//	    Rate:       89286,
//	    Format:     alsa.FormatS32LE,
//	    PeriodSize: 2048,
//	    Periods:    2,
//	})
//	defer pcm.Close()
//
//	buf := make([]int32, 2048*2)
//	_ = pcm.Start()
//	if ready, _ := pcm.Wait(100 * time.Millisecond); ready {
//	    n, err := pcm.ReadI(buf, 2048)
//	    if err != nil {
//	        err = pcm.Recover(err)
//	    }
//	}
package alsa

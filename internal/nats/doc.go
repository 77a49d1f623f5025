// Package nats mirrors radio events onto NATS subjects and accepts remote
// tuning requests.
//
// Subjects are rooted at radionode.<node>:
//
//	radionode.<node>.stream.<direction>.state   phase changes
//	radionode.<node>.stream.<direction>.xrun    recovered overruns/underruns
//	radionode.<node>.stream.<direction>.fault   fatal stream errors
//	radionode.<node>.tuner.frequency            frequency changes
//	radionode.<node>.control.tune               request/reply tuning
//
// Payloads are JSON. The client degrades to a no-op publisher while NATS is
// unreachable and reconnects in the background.
package nats

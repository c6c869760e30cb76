package camera

import (
	"context"
	"testing"

	"github.com/pilebones/go-udev/netlink"
)

func TestNewHotplugMonitor(t *testing.T) {
	if NewHotplugMonitor("  ", nil, nil) != nil {
		t.Fatal("expected nil monitor for empty device")
	}
	m := NewHotplugMonitor("/dev/video0", nil, nil)
	if m == nil || m.device != "/dev/video0" {
		t.Fatalf("unexpected monitor: %+v", m)
	}
	if m.Running() {
		t.Fatal("unstarted monitor reports running")
	}
}

func TestHotplugMonitorNilSafety(t *testing.T) {
	var m *HotplugMonitor
	m.Stop()
	if m.Running() {
		t.Fatal("nil monitor reports running")
	}
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start on nil monitor returned %v", err)
	}
}

func TestHotplugMonitorStopUnstarted(t *testing.T) {
	m := NewHotplugMonitor("/dev/video0", nil, nil)
	m.Stop()
	m.Stop()
	if m.Running() {
		t.Fatal("expected stopped monitor")
	}
}

func TestRemoveMatcher(t *testing.T) {
	matcher := buildRemoveMatcher()

	remove := netlink.UEvent{Action: netlink.REMOVE, Env: map[string]string{"SUBSYSTEM": "video4linux"}}
	if !matcher.Evaluate(remove) {
		t.Fatal("expected remove event to match")
	}
	add := netlink.UEvent{Action: netlink.ADD, Env: map[string]string{"SUBSYSTEM": "video4linux"}}
	if matcher.Evaluate(add) {
		t.Fatal("add event must not match")
	}
	block := netlink.UEvent{Action: netlink.REMOVE, Env: map[string]string{"SUBSYSTEM": "block"}}
	if matcher.Evaluate(block) {
		t.Fatal("non-video subsystem must not match")
	}
}

func TestHotplugHandleEvent(t *testing.T) {
	var removed []string
	m := NewHotplugMonitor("/dev/video0", nil, func(device string) { removed = append(removed, device) })

	m.handleEvent(netlink.UEvent{Action: netlink.REMOVE, Env: map[string]string{}})
	m.handleEvent(netlink.UEvent{Action: netlink.REMOVE, Env: map[string]string{"DEVNAME": "/dev/video2"}})
	if len(removed) != 0 {
		t.Fatalf("unexpected callbacks: %v", removed)
	}

	m.handleEvent(netlink.UEvent{Action: netlink.REMOVE, Env: map[string]string{"DEVNAME": "/dev/video0"}})
	m.handleEvent(netlink.UEvent{Action: netlink.REMOVE, Env: map[string]string{
		"DEVPATH": "/devices/pci0000:00/usb1/1-1/1-1:1.0/video4linux/video0",
	}})
	if len(removed) != 2 || removed[0] != "/dev/video0" || removed[1] != "/dev/video0" {
		t.Fatalf("expected two removals of /dev/video0, got %v", removed)
	}
}

func TestDeviceFromCrawl(t *testing.T) {
	kobj := "/sys/devices/pci0000:00/usb1/1-1/1-1:1.0/video4linux/video0"
	info, ok := deviceFromCrawl(kobj, map[string]string{"DEVNAME": "video0"})
	if !ok || info.Path != "/dev/video0" || info.KObj != kobj {
		t.Fatalf("unexpected device info: %+v ok=%v", info, ok)
	}
	if _, ok := deviceFromCrawl("/sys/devices/virtual/input/event0", map[string]string{"DEVNAME": "video0"}); ok {
		t.Fatal("non-video4linux kobj must be ignored")
	}
}

package camera

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pilebones/go-udev/crawler"
	"github.com/pilebones/go-udev/netlink"
)

// DeviceInfo describes a video4linux node found in sysfs.
type DeviceInfo struct {
	Path string `json:"path"`
	Name string `json:"name"`
	KObj string `json:"kobj"`
}

// ListDevices enumerates video4linux capture nodes via the udev crawler.
func ListDevices() ([]DeviceInfo, error) {
	queue := make(chan crawler.Device)
	errs := make(chan error, 1)

	rules := &netlink.RuleDefinitions{}
	rules.AddRule(netlink.RuleDefinition{
		Env: map[string]string{"DEVNAME": `^video[0-9]+$`},
	})
	quit := crawler.ExistingDevices(queue, errs, rules)
	defer close(quit)

	var devices []DeviceInfo
	for {
		select {
		case dev, ok := <-queue:
			if !ok {
				sort.Slice(devices, func(i, j int) bool { return devices[i].Path < devices[j].Path })
				return devices, nil
			}
			if info, ok := deviceFromCrawl(dev.KObj, dev.Env); ok {
				devices = append(devices, info)
			}
		case err := <-errs:
			return nil, fmt.Errorf("enumerate cameras: %w", err)
		}
	}
}

func deviceFromCrawl(kobj string, env map[string]string) (DeviceInfo, bool) {
	if !strings.Contains(kobj, "/video4linux/") {
		return DeviceInfo{}, false
	}
	path := deviceNameFromEnv(env)
	if path == "" {
		return DeviceInfo{}, false
	}
	info := DeviceInfo{Path: path, KObj: kobj}
	if raw, err := os.ReadFile(filepath.Join(kobj, "name")); err == nil {
		info.Name = strings.TrimSpace(string(raw))
	}
	return info, true
}

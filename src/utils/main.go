package utils

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/PsycoVenom0/security-relay/src/log"
	"github.com/PsycoVenom0/security-relay/src/models"
	"github.com/elastic/go-sysinfo"
)

// RandomSecret returns n random bytes from crypto/rand, hex encoded.
func RandomSecret(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GetSystemInfo collects some information about the host the relay is running on,
// this is returned by the status endpoint.
func GetSystemInfo() (models.System, error) {
	var system models.System

	host, err := sysinfo.Host()
	if err != nil {
		log.Log.Error("utils.main.GetSystemInfo(): " + err.Error())
		return system, err
	}

	info := host.Info()
	system.Hostname = info.Hostname
	system.KernelVersion = info.KernelVersion
	system.Architecture = info.Architecture
	system.BootTime = info.BootTime.Unix()
	system.MACs = info.MACs
	system.IPs = info.IPs
	if info.OS != nil {
		system.OS = info.OS.Name + " " + info.OS.Version
	}

	memory, err := host.Memory()
	if err == nil {
		system.TotalMemory = memory.Total
		system.UsedMemory = memory.Used
		system.FreeMemory = memory.Available
	} else {
		log.Log.Warning("utils.main.GetSystemInfo(): could not read memory: " + err.Error())
	}

	return system, nil
}

// Uptime formats the time passed since start, e.g. "3h12m5s".
func Uptime(start time.Time) string {
	return time.Since(start).Round(time.Second).String()
}

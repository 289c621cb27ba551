package models

type System struct {
	Hostname      string   `json:"hostname" bson:"hostname"`
	KernelVersion string   `json:"kernel_version" bson:"kernel_version"`
	Architecture  string   `json:"architecture" bson:"architecture"`
	OS            string   `json:"os" bson:"os"`
	BootTime      int64    `json:"boot_time" bson:"boot_time"`
	MACs          []string `json:"macs" bson:"macs"`
	IPs           []string `json:"ips" bson:"ips"`
	UsedMemory    uint64   `json:"used_memory" bson:"used_memory"`
	TotalMemory   uint64   `json:"total_memory" bson:"total_memory"`
	FreeMemory    uint64   `json:"free_memory" bson:"free_memory"`
}

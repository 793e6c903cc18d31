package main

import (
	"fmt"
	"strings"

	"go.bug.st/serial/enumerator"
)

// androidVendors maps USB vendor IDs of common Android handset makers.
var androidVendors = map[string]string{
	"18D1": "Google",
	"04E8": "Samsung",
	"22B8": "Motorola",
	"2717": "Xiaomi",
	"12D1": "Huawei",
	"2A70": "OnePlus",
	"0FCE": "Sony",
	"1004": "LG",
	"0BB4": "HTC",
	"05C6": "Qualcomm",
	"0E8D": "MediaTek",
	"22D9": "OPPO",
	"2D95": "vivo",
}

// USBInterface is a serial port exposed by an attached phone.
type USBInterface struct {
	Port         string
	Vendor       string
	VID          string
	PID          string
	SerialNumber string
	Product      string
}

func (u USBInterface) String() string {
	s := fmt.Sprintf("%s: %s %s:%s", u.Port, u.Vendor, u.VID, u.PID)
	if u.Product != "" {
		s += " " + u.Product
	}
	if u.SerialNumber != "" {
		s += " (serial " + u.SerialNumber + ")"
	}
	return s
}

// portLister returns detailed port information; replaced in tests.
var portLister = enumerator.GetDetailedPortsList

// AndroidUSBInterfaces lists USB serial interfaces that belong to a known
// Android vendor. Phones that have not authorized USB debugging often still
// show up here, which helps explain an empty "adb devices".
func AndroidUSBInterfaces() ([]USBInterface, error) {
	ports, err := portLister()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate USB ports: %w", err)
	}

	var found []USBInterface
	for _, p := range ports {
		if p == nil || !p.IsUSB {
			continue
		}
		vid := strings.ToUpper(p.VID)
		vendor, ok := androidVendors[vid]
		if !ok {
			continue
		}
		found = append(found, USBInterface{
			Port:         p.Name,
			Vendor:       vendor,
			VID:          vid,
			PID:          strings.ToUpper(p.PID),
			SerialNumber: p.SerialNumber,
			Product:      p.Product,
		})
	}
	return found, nil
}

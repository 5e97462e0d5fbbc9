package endpoint

import (
	"encoding/json"
	"fmt"
)

// mobileConfig is the endpoint configuration the mobile apps export (and
// embed in setup QR codes): camelCase keys, ingest probe only.
type mobileConfig struct {
	Name     string `json:"name"`
	Device   string `json:"device"`
	ProbeKey string `json:"probeKey"`
	NodeName string `json:"nodeName"`
	ProbeID  string `json:"probeId"`
}

// ImportMobile parses a mobile-format endpoint configuration into an Input.
// Missing name and device fall back to the mobile defaults. The result is
// validated: a config without credentials is rejected before any write can
// happen.
func ImportMobile(raw []byte) (Input, error) {
	var mc mobileConfig
	if err := json.Unmarshal(raw, &mc); err != nil {
		return Input{}, fmt.Errorf("parse mobile config: %w", err)
	}

	in := Input{
		Name:     mc.Name,
		Device:   mc.Device,
		ProbeKey: mc.ProbeKey,
		NodeName: mc.NodeName,
		ProbeID:  mc.ProbeID,
	}
	if in.Name == "" {
		in.Name = "Imported from Mobile"
	}
	if in.Device == "" {
		in.Device = "mobile"
	}

	if err := in.Validate(); err != nil {
		return Input{}, err
	}
	return in, nil
}

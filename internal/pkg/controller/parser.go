package controller

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// YAML schema. Optional axis fields are pointers so that missing keys can
// fall back to the normalization defaults of the same file.
type yamlConfig struct {
	Controller struct {
		Name            string   `yaml:"name"`
		VendorPatterns  []string `yaml:"vendor_patterns"`
		ExcludePatterns []string `yaml:"exclude_patterns"`
	} `yaml:"controller"`
	Buttons []struct {
		Code uint16 `yaml:"code"`
		Name string `yaml:"name"`
	} `yaml:"buttons"`
	DpadButtons []struct {
		AxisCode uint16 `yaml:"axis_code"`
		Value    int32  `yaml:"value"`
		Name     string `yaml:"name"`
	} `yaml:"dpad_buttons"`
	Axes []struct {
		Code      uint16   `yaml:"code"`
		Name      string   `yaml:"name"`
		Min       int32    `yaml:"min"`
		Max       int32    `yaml:"max"`
		Deadzone  int32    `yaml:"deadzone"`
		Normalize bool     `yaml:"normalize"`
		OutputMin *float64 `yaml:"output_min"`
		OutputMax *float64 `yaml:"output_max"`
	} `yaml:"axes"`
	Normalization struct {
		OutputMin     *float64 `yaml:"output_min"`
		OutputMax     *float64 `yaml:"output_max"`
		ApplyDeadzone *bool    `yaml:"apply_deadzone"`
	} `yaml:"normalization"`
}

// ParseData parses one controller YAML document and builds the lookup maps.
func ParseData(data []byte) (Config, error) {
	var raw yamlConfig
	err := yaml.Unmarshal(data, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("parsing yaml failed: %w", err)
	}

	cfg := Config{
		Name:            raw.Controller.Name,
		VendorPatterns:  raw.Controller.VendorPatterns,
		ExcludePatterns: raw.Controller.ExcludePatterns,
		Norm:            Normalization{OutputMin: -1.0, OutputMax: 1.0, ApplyDeadzone: true},
	}

	if raw.Normalization.OutputMin != nil {
		cfg.Norm.OutputMin = *raw.Normalization.OutputMin
	}
	if raw.Normalization.OutputMax != nil {
		cfg.Norm.OutputMax = *raw.Normalization.OutputMax
	}
	if raw.Normalization.ApplyDeadzone != nil {
		cfg.Norm.ApplyDeadzone = *raw.Normalization.ApplyDeadzone
	}

	for _, b := range raw.Buttons {
		cfg.Buttons = append(cfg.Buttons, Button{Code: b.Code, Name: b.Name})
	}
	for _, d := range raw.DpadButtons {
		cfg.DpadButtons = append(cfg.DpadButtons, DpadButton{AxisCode: d.AxisCode, Value: d.Value, Name: d.Name})
	}
	for _, a := range raw.Axes {
		axis := Axis{
			Code:      a.Code,
			Name:      a.Name,
			Min:       a.Min,
			Max:       a.Max,
			Deadzone:  a.Deadzone,
			Normalize: a.Normalize,
			OutputMin: cfg.Norm.OutputMin,
			OutputMax: cfg.Norm.OutputMax,
		}
		if a.OutputMin != nil {
			axis.OutputMin = *a.OutputMin
		}
		if a.OutputMax != nil {
			axis.OutputMax = *a.OutputMax
		}
		if axis.Deadzone < 0 {
			return Config{}, fmt.Errorf("axis %d (%s): negative deadzone", axis.Code, axis.Name)
		}
		cfg.Axes = append(cfg.Axes, axis)
	}

	cfg.buildLookups()
	return cfg, nil
}

// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package vers parses the versions header of a configuration file.
// The header is read before the actual settings, so the format of the
// remaining settings can be chosen (or rejected) based on it.
// The header format is kept minimal because it must stay readable by
// all past and future releases of ryde.
package vers

import (
	"fmt"

	"github.com/momeni/ryde/pkg/core/model"
	"gopkg.in/yaml.v3"
)

// Config holds the versions header. It may be embedded with the inline
// format in each released config struct version.
type Config struct {
	Versions Versions `yaml:"versions"`
}

// Versions contains the configuration file format version.
// The data directory snapshots are not versioned separately because
// their format is fixed by the JSON records and their UserType
// discriminator.
type Versions struct {
	Config model.SemVer `yaml:"config"`
}

// Marshalled is an alternative form of Config which replaces the
// model.SemVer field by its string representation, so it is written
// as "1.0.0" instead of a sequence of three numbers.
type Marshalled struct {
	Versions struct {
		Config string
	}
}

// Marshal creates and returns a Marshalled instance representing the vc
// Config instance. It may be serialized instead of vc to YAML format.
func (vc *Config) Marshal() *Marshalled {
	m := &Marshalled{}
	m.Versions.Config = vc.Versions.Config.Marshal()
	return m
}

// Load deserializes the versions header from the data byte slice.
// Other settings in data are ignored.
func Load(data []byte) (*Config, error) {
	vc := &Config{}
	if err := yaml.Unmarshal(data, vc); err != nil {
		return nil, err
	}
	return vc, nil
}

// Validate returns an error unless the stored major version equals to
// major and the stored minor version is not newer than minor.
func (vc *Config) Validate(major, minor uint) error {
	v := vc.Versions.Config
	if v[0] != major {
		return fmt.Errorf("incompatible major version: %d", v[0])
	}
	if v[1] > minor {
		return fmt.Errorf("unsupported minor version: %d", v[1])
	}
	return nil
}

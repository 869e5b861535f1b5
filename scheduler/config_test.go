/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package scheduler

import (
	"os"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}},
		{name: "no protocol", mutate: func(c *Config) { c.Protocols = nil }, wantErr: true},
		{
			name:    "two protocols are mutually exclusive",
			mutate:  func(c *Config) { c.Protocols = MultiString{ProtocolIF482, ProtocolDCF77} },
			wantErr: true,
		},
		{
			name:    "dcf77 not implemented",
			mutate:  func(c *Config) { c.Protocols = MultiString{ProtocolDCF77} },
			wantErr: true,
		},
		{
			name:    "unknown protocol",
			mutate:  func(c *Config) { c.Protocols = MultiString{"morse"} },
			wantErr: true,
		},
		{name: "no device", mutate: func(c *Config) { c.Device = "" }, wantErr: true},
		{name: "bad baud rate", mutate: func(c *Config) { c.BaudRate = 0 }, wantErr: true},
		{name: "bad data bits", mutate: func(c *Config) { c.DataBits = 9 }, wantErr: true},
		{name: "bad parity", mutate: func(c *Config) { c.Parity = "mark" }, wantErr: true},
		{name: "bad stop bits", mutate: func(c *Config) { c.StopBits = 3 }, wantErr: true},
		{name: "pulse period unset", mutate: func(c *Config) { c.PulsePeriod = 0 }, wantErr: true},
		{
			name:    "sub-second pulse period must divide the nominal period",
			mutate:  func(c *Config) { c.PulsePeriod = 300 * time.Millisecond },
			wantErr: true,
		},
		{
			name:   "up-clocking period",
			mutate: func(c *Config) { c.PulsePeriod = 250 * time.Millisecond },
		},
		{
			name:   "down-clocking period",
			mutate: func(c *Config) { c.PulsePeriod = 2 * time.Second },
		},
		{
			name:    "transmit duration too long",
			mutate:  func(c *Config) { c.TransmitDuration = time.Second },
			wantErr: true,
		},
		{
			name:    "transmit duration unset",
			mutate:  func(c *Config) { c.TransmitDuration = 0 },
			wantErr: true,
		},
		{name: "bad season", mutate: func(c *Config) { c.Season = "X" }, wantErr: true},
		{name: "season too long", mutate: func(c *Config) { c.Season = "LL" }, wantErr: true},
		{
			name:    "negative overrun threshold",
			mutate:  func(c *Config) { c.OverrunThreshold = -1 },
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestConfigUpFactor(t *testing.T) {
	cfg := testConfig()
	require.Equal(t, 1, cfg.UpFactor())

	cfg.PulsePeriod = 250 * time.Millisecond
	require.Equal(t, 4, cfg.UpFactor())

	cfg.PulsePeriod = 2 * time.Second
	require.Equal(t, 1, cfg.UpFactor())
}

func TestMultiString(t *testing.T) {
	m := MultiString{}
	require.NoError(t, m.Set("IF482"))
	require.NoError(t, m.Set("dcf77"))
	require.Equal(t, MultiString{"if482", "dcf77"}, m)
	require.Equal(t, "if482, dcf77", m.String())
}

func TestMultiStringSetDefault(t *testing.T) {
	m := MultiString{}
	m.SetDefault()
	require.Equal(t, MultiString{ProtocolIF482}, m)

	m = MultiString{ProtocolDCF77}
	m.SetDefault()
	require.Equal(t, MultiString{ProtocolDCF77}, m)
}

func TestReadConfig(t *testing.T) {
	raw := `
protocols: [if482]
device: /dev/ttyS2
baudrate: 9600
databits: 7
parity: even
stopbits: 1
pulseperiod: 1000000000
txduration: 20000000
season: L
timezone: UTC
overrunthreshold: 10
monitoringport: 8888
stats: json
`
	file := path.Join(t.TempDir(), "if482d.yaml")
	require.NoError(t, os.WriteFile(file, []byte(raw), 0644))

	cfg, err := ReadConfig(file)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	require.Equal(t, "/dev/ttyS2", cfg.Device)
	require.Equal(t, time.Second, cfg.PulsePeriod)
	require.Equal(t, 20*time.Millisecond, cfg.TransmitDuration)

	_, err = ReadConfig(path.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

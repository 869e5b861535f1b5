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
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/clockfeed/if482/telegram"
)

// NominalPeriod is the telegram cycle the receiving clocks expect.
const NominalPeriod = time.Second

// Supported output protocol names. Exactly one may be selected.
const (
	ProtocolIF482 = "if482"
	ProtocolDCF77 = "dcf77" // recognized name, not implemented
)

// DefaultTransmitDuration covers 17 frame bytes at 9600 Bit/s 7E1 with
// headroom inside the 50 ms jitter budget.
const DefaultTransmitDuration = 20 * time.Millisecond

// Config is a daemon config structure
type Config struct {
	Protocols        MultiString   `yaml:"protocols"`
	Device           string        `yaml:"device"`
	BaudRate         int           `yaml:"baudrate"`
	DataBits         int           `yaml:"databits"`
	Parity           string        `yaml:"parity"`
	StopBits         int           `yaml:"stopbits"`
	PulsePeriod      time.Duration `yaml:"pulseperiod"`
	TransmitDuration time.Duration `yaml:"txduration"`
	Season           string        `yaml:"season"`
	Timezone         string        `yaml:"timezone"`
	Holdover         time.Duration `yaml:"holdover"`
	OverrunThreshold int           `yaml:"overrunthreshold"`
	MonitoringPort   int           `yaml:"monitoringport"`
	StatsBackend     string        `yaml:"stats"`
}

// MultiString is a wrapper allowing to set multiple string values with flag parser
type MultiString []string

// Set adds a value to the list
func (m *MultiString) Set(v string) error {
	*m = append(*m, strings.ToLower(v))
	return nil
}

// String returns joined list of values
func (m *MultiString) String() string {
	return strings.Join(*m, ", ")
}

// SetDefault selects the IF482 protocol when nothing was chosen
func (m *MultiString) SetDefault() {
	if len(*m) != 0 {
		return
	}
	*m = MultiString{ProtocolIF482}
}

// Validate checks if config is valid
func (c *Config) Validate() error {
	if len(c.Protocols) == 0 {
		return fmt.Errorf("no output protocol selected")
	}
	if len(c.Protocols) > 1 {
		return fmt.Errorf("output protocols are mutually exclusive, got: %s", c.Protocols.String())
	}
	switch c.Protocols[0] {
	case ProtocolIF482:
	case ProtocolDCF77:
		return fmt.Errorf("protocol %q is not implemented", ProtocolDCF77)
	default:
		return fmt.Errorf("unknown output protocol %q", c.Protocols[0])
	}

	if c.Device == "" {
		return fmt.Errorf("serial device must be set")
	}
	if c.BaudRate <= 0 {
		return fmt.Errorf("invalid baud rate %d", c.BaudRate)
	}
	if c.DataBits < 5 || c.DataBits > 8 {
		return fmt.Errorf("invalid data bits %d", c.DataBits)
	}
	switch c.Parity {
	case "none", "odd", "even":
	default:
		return fmt.Errorf("unsupported parity %q", c.Parity)
	}
	if c.StopBits != 1 && c.StopBits != 2 {
		return fmt.Errorf("invalid stop bits %d", c.StopBits)
	}

	if c.PulsePeriod <= 0 {
		return fmt.Errorf("pulse period must be set")
	}
	if c.PulsePeriod < NominalPeriod && NominalPeriod%c.PulsePeriod != 0 {
		return fmt.Errorf("pulse period %v is not an integer fraction of %v", c.PulsePeriod, NominalPeriod)
	}
	if c.TransmitDuration <= 0 || c.TransmitDuration >= NominalPeriod {
		return fmt.Errorf("transmit duration %v must be within (0, %v)", c.TransmitDuration, NominalPeriod)
	}

	if len(c.Season) != 1 || !telegram.Season(c.Season[0]).Valid() {
		return fmt.Errorf("season must be one of W, S, U, L")
	}
	if c.OverrunThreshold < 0 {
		return fmt.Errorf("overrun threshold must not be negative")
	}
	return nil
}

// UpFactor returns how many telegrams the worker must spread over one
// consumed edge: 1 at equal or slower pulse rates, the rate multiple
// when the pulse runs faster than the nominal period.
func (c *Config) UpFactor() int {
	if c.PulsePeriod < NominalPeriod {
		return int(NominalPeriod / c.PulsePeriod)
	}
	return 1
}

// ReadConfig reads config from the file
func ReadConfig(path string) (*Config, error) {
	c := &Config{}
	cData, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	err = yaml.Unmarshal(cData, c)
	if err != nil {
		return nil, err
	}

	return c, nil
}

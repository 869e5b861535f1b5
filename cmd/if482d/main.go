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

package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	log "github.com/sirupsen/logrus"
	"go.bug.st/serial"
	syscall "golang.org/x/sys/unix"

	"github.com/clockfeed/if482/pulse"
	"github.com/clockfeed/if482/scheduler"
	"github.com/clockfeed/if482/stats"
	"github.com/clockfeed/if482/wallclock"
)

func parityMode(parity string) serial.Parity {
	switch parity {
	case "odd":
		return serial.OddParity
	case "even":
		return serial.EvenParity
	default:
		return serial.NoParity
	}
}

func stopBits(n int) serial.StopBits {
	if n == 2 {
		return serial.TwoStopBits
	}
	return serial.OneStopBit
}

func main() {
	cfg := scheduler.Config{}

	var (
		logLevel   string
		configFile string
	)

	flag.StringVar(&logLevel, "loglevel", "info", "Set a log level. Can be: debug, info, warning, error")
	flag.StringVar(&configFile, "config", "", "Path to a YAML config file. Replaces all other config flags when set")
	flag.Var(&cfg.Protocols, "protocol", fmt.Sprintf("Output protocol. Repeatable, but exactly one must be selected. Default: %s", scheduler.ProtocolIF482))
	flag.StringVar(&cfg.Device, "device", "/dev/ttyS0", "Serial device the slave clocks are attached to")
	flag.IntVar(&cfg.BaudRate, "baudrate", 9600, "Serial baud rate")
	flag.IntVar(&cfg.DataBits, "databits", 7, "Serial data bits")
	flag.StringVar(&cfg.Parity, "parity", "even", "Serial parity. Can be: none, odd, even")
	flag.IntVar(&cfg.StopBits, "stopbits", 1, "Serial stop bits. Can be: 1, 2")
	flag.DurationVar(&cfg.PulsePeriod, "pulseperiod", time.Second, "Interval between pulse edges")
	flag.DurationVar(&cfg.TransmitDuration, "txduration", scheduler.DefaultTransmitDuration, "Time needed to push one telegram out the wire")
	flag.StringVar(&cfg.Season, "season", "L", "Season/time-mode character. Can be: W, S, U, L")
	flag.StringVar(&cfg.Timezone, "timezone", "Local", "Time zone telegrams are rendered in")
	flag.DurationVar(&cfg.Holdover, "holdover", wallclock.DefaultHoldover, "How long after losing sync the time is still announced as good")
	flag.IntVar(&cfg.OverrunThreshold, "overrunthreshold", 10, "Consecutive missed deadlines before a drift warning. 0 disables it")
	flag.IntVar(&cfg.MonitoringPort, "monitoringport", 8888, "Port to run monitoring server on")
	flag.StringVar(&cfg.StatsBackend, "stats", "json", "Stats backend. Can be: json, prometheus")

	flag.Parse()

	switch logLevel {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "info":
		log.SetLevel(log.InfoLevel)
	case "warning":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	default:
		log.Fatalf("Unrecognized log level: %v", logLevel)
	}

	if configFile != "" {
		c, err := scheduler.ReadConfig(configFile)
		if err != nil {
			log.Fatalf("Failed to read config: %v", err)
		}
		cfg = *c
	}
	cfg.Protocols.SetDefault()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Config is invalid: %v", err)
	}

	tz, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatalf("Unknown timezone %q: %v", cfg.Timezone, err)
	}

	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: cfg.DataBits,
		Parity:   parityMode(cfg.Parity),
		StopBits: stopBits(cfg.StopBits),
	}
	port, err := serial.Open(cfg.Device, mode)
	if err != nil {
		log.Fatalf("Failed to open %s: %v", cfg.Device, err)
	}

	var st stats.Stats
	switch cfg.StatsBackend {
	case "json":
		st = &stats.JSONStats{}
	case "prometheus":
		st = stats.NewProm()
	default:
		log.Fatalf("Unrecognized stats backend: %v", cfg.StatsBackend)
	}
	go st.Start(cfg.MonitoringPort)

	notifier := pulse.NewNotifier()
	// Software pulse source. A hardware RTC/GPS pulse handler feeds the
	// same notifier instead when one is wired up.
	ticker := pulse.NewTicker(cfg.PulsePeriod, notifier)

	s, err := scheduler.New(cfg, wallclock.NewSystem(tz, cfg.Holdover), port, st, notifier)
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	// Handle interrupt for graceful shutdown
	sigStop := make(chan os.Signal, 1)
	signal.Notify(sigStop, syscall.SIGINT)
	signal.Notify(sigStop, syscall.SIGQUIT)
	signal.Notify(sigStop, syscall.SIGTERM)

	ticker.Start()
	go s.Run()
	log.Infof("Feeding %s telegrams to %s at %d baud", cfg.Protocols.String(), cfg.Device, cfg.BaudRate)

	<-sigStop
	log.Warning("Graceful shutdown")
	ticker.Stop()
	if err := port.Close(); err != nil {
		log.Errorf("Failed to close %s: %v", cfg.Device, err)
	}
}

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

package stats

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// Prom reports the same counters as JSONStats via a Prometheus registry
type Prom struct {
	registry *prometheus.Registry

	telegrams      prometheus.Counter
	overruns       prometheus.Counter
	noTime         prometheus.Counter
	writeErrors    prometheus.Counter
	consecOverruns prometheus.Gauge
}

// NewProm creates a Prom with all collectors registered
func NewProm() *Prom {
	p := &Prom{
		registry: prometheus.NewRegistry(),
		telegrams: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "if482_telegrams_total",
			Help: "Telegrams written to the transport",
		}),
		overruns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "if482_overruns_total",
			Help: "Firing deadlines that had already passed when the worker woke",
		}),
		noTime: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "if482_notime_total",
			Help: "Telegrams emitted with the no-valid-time sentinel body",
		}),
		writeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "if482_write_errors_total",
			Help: "Failed transport writes",
		}),
		consecOverruns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "if482_consecutive_overruns",
			Help: "Current run of missed firing deadlines",
		}),
	}
	p.registry.MustRegister(p.telegrams, p.overruns, p.noTime, p.writeErrors, p.consecOverruns)
	return p
}

// Start launches the http monitoring endpoint
func (p *Prom) Start(port int) {
	http.Handle("/metrics", promhttp.HandlerFor(
		p.registry,
		promhttp.HandlerOpts{
			EnableOpenMetrics: true,
		},
	))
	addr := fmt.Sprintf(":%d", port)
	log.Debugf("Starting prometheus exporter on %s", addr)
	err := http.ListenAndServe(addr, nil)
	if err != nil {
		log.Errorf("Failed to start listener: %v", err)
	}
}

// IncTelegrams adds 1 to the counter
func (p *Prom) IncTelegrams() {
	p.telegrams.Inc()
}

// IncOverruns adds 1 to the counter
func (p *Prom) IncOverruns() {
	p.overruns.Inc()
}

// IncNoTime adds 1 to the counter
func (p *Prom) IncNoTime() {
	p.noTime.Inc()
}

// IncWriteErrors adds 1 to the counter
func (p *Prom) IncWriteErrors() {
	p.writeErrors.Inc()
}

// SetConsecutiveOverruns sets the gauge
func (p *Prom) SetConsecutiveOverruns(n int64) {
	p.consecOverruns.Set(float64(n))
}

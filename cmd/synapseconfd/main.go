// Copyright 2025 Philipp Hossner
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command synapseconfd is the configure_synapse CLI entrypoint: it reads
// the operator configuration, the discovery-registry topology, this host's
// topology coordinates, and every declared namespace under SOA_DIR, then
// compiles and installs the resulting configuration document exactly once
// per invocation (spec §6, §7).
package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"syscall"

	"flag"

	_ "github.com/KimMachineGun/automemlimit"

	"github.com/prometheus/client_golang/prometheus"

	"synapse-tools-go/pkg/compiler"
	"synapse-tools-go/pkg/core/config"
	"synapse-tools-go/pkg/metrics"
	"synapse-tools-go/pkg/namespace"
	"synapse-tools-go/pkg/topology"
	"synapse-tools-go/pkg/writer"
)

const (
	// DefaultConfigPath is where the operator configuration file lives
	// absent an override (spec §4.1).
	DefaultConfigPath = "/etc/synapse/synapse-tools.conf.json"

	// DefaultSOADir is the fixed root under which every service declares
	// its namespaces, one subdirectory per service (spec §6 "SOA_DIR").
	DefaultSOADir = "/nail/etc/services"

	// DefaultTopologyDir is the fixed directory holding one coordinate
	// file per topology type, mirroring the original's "/nail/etc/<grouping>"
	// convention (spec §4.2).
	DefaultTopologyDir = "/nail/etc"

	// DefaultMetricsAddr serves Prometheus metrics alongside compilation;
	// empty disables it.
	DefaultMetricsAddr = ""
)

// topologyOrder lists every topology type this host understands, broadest
// first; its index doubles as depth (spec §4.2, §9 "no downcasting"). This
// mirrors the fixed ordering the original source gets from its
// environment_tools collaborator.
var topologyOrder = []string{"ecosystem", "superregion", "region", "habitat"}

func main() {
	var (
		configPath  string
		soaDir      string
		topologyDir string
		metricsAddr string
	)

	flag.StringVar(&configPath, "config", "", "Path to the operator configuration file (env: SYNAPSE_TOOLS_CONFIG_PATH)")
	flag.StringVar(&soaDir, "soa-dir", "", "Root directory of declared service namespaces (env: SOA_DIR)")
	flag.StringVar(&topologyDir, "topology-dir", "", "Directory of per-topology-type host coordinate files (env: TOPOLOGY_DIR)")
	flag.StringVar(&metricsAddr, "metrics-addr", "", "Address to serve Prometheus metrics on (env: METRICS_ADDR, empty disables)")
	flag.Parse()

	configPath = firstNonEmpty(configPath, os.Getenv("SYNAPSE_TOOLS_CONFIG_PATH"), DefaultConfigPath)
	soaDir = firstNonEmpty(soaDir, os.Getenv("SOA_DIR"), DefaultSOADir)
	topologyDir = firstNonEmpty(topologyDir, os.Getenv("TOPOLOGY_DIR"), DefaultTopologyDir)
	metricsAddr = firstNonEmpty(metricsAddr, os.Getenv("METRICS_ADDR"), DefaultMetricsAddr)

	logLevel := slog.LevelInfo
	switch os.Getenv("VERBOSE") {
	case "0":
		logLevel = slog.LevelWarn
	case "2":
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	gomaxprocs := runtime.GOMAXPROCS(0)
	var gomemlimit string
	if limit := debug.SetMemoryLimit(-1); limit != math.MaxInt64 {
		gomemlimit = fmt.Sprintf("%d bytes (%.2f MiB)", limit, float64(limit)/(1024*1024))
	} else {
		gomemlimit = "unlimited"
	}

	logger.Info("synapseconfd starting",
		"config_path", configPath,
		"soa_dir", soaDir,
		"topology_dir", topologyDir,
		"log_level", logLevel.String(),
		"gomaxprocs", gomaxprocs,
		"gomemlimit", gomemlimit)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	registry := prometheus.NewRegistry()
	rec := metrics.NewCompilerRecorder(registry)

	if metricsAddr != "" {
		server := metrics.NewServer(metricsAddr, registry)
		go func() {
			if err := server.Start(ctx); err != nil && ctx.Err() == nil {
				logger.Error("metrics server failed", "error", err)
			}
		}()
	}

	if err := run(logger, configPath, soaDir, topologyDir, rec); err != nil {
		if ctx.Err() == nil {
			logger.Error("synapseconfd failed", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("synapseconfd shutdown complete")
}

func run(logger *slog.Logger, configPath, soaDir, topologyDir string, rec compiler.Recorder) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading operator config: %w", err)
	}

	zkTopology, err := config.LoadZookeeperTopology(cfg.ZookeeperTopologyPath)
	if err != nil {
		return fmt.Errorf("loading zookeeper topology: %w", err)
	}

	namespaces, err := namespace.LoadFromSOADir(soaDir)
	if err != nil {
		return fmt.Errorf("loading namespaces from %s: %w", soaDir, err)
	}

	topo := topology.NewDirSource(topologyDir, topologyOrder)

	doc, err := compiler.Compile(*cfg, zkTopology, namespaces, topo, rec)
	if err != nil {
		return fmt.Errorf("compiling configuration: %w", err)
	}

	changed, err := writer.Write(logger, doc, *cfg)
	if err != nil {
		return fmt.Errorf("writing configuration: %w", err)
	}

	logger.Info("compile complete", "namespaces", len(namespaces), "changed", changed)
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

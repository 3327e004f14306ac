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

// Command containeripmapd is the generate_container_ip_map CLI
// entrypoint: it collects the current (ip, identity) inventory from
// either the local container runtime or the orchestrator node endpoint,
// reconciles it against the installed identity map file, and optionally
// pushes the minimal delta through the proxy's admin socket (spec §6).
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/KimMachineGun/automemlimit"

	"github.com/prometheus/client_golang/prometheus"

	"synapse-tools-go/pkg/inventory"
	"synapse-tools-go/pkg/mapsync"
	"synapse-tools-go/pkg/metrics"
)

// DefaultMapFile is where the reconciled identity map is installed absent
// a positional override (spec §6).
const DefaultMapFile = "/var/run/synapse/maps/ip_to_service.map"

// DefaultHAProxySocket is the proxy admin socket reconciliation writes to
// when --update-haproxy is set.
const DefaultHAProxySocket = "/var/run/synapse/haproxy.sock"

func main() {
	var (
		updateHAProxy  bool
		haproxyTimeout time.Duration
		useK8s         bool
	)

	flag.BoolVar(&updateHAProxy, "update-haproxy", false, "Push the reconciled delta through the proxy admin socket")
	flag.BoolVar(&updateHAProxy, "U", false, "Shorthand for --update-haproxy")
	flag.DurationVar(&haproxyTimeout, "haproxy-timeout", time.Second, "Timeout for each admin socket write")
	flag.DurationVar(&haproxyTimeout, "T", time.Second, "Shorthand for --haproxy-timeout")
	flag.BoolVar(&useK8s, "k8s", false, "Collect inventory from the orchestrator node endpoint instead of the container runtime")
	flag.Parse()

	mapFile := DefaultMapFile
	if flag.NArg() > 0 {
		mapFile = flag.Arg(0)
	}

	logLevel := slog.LevelInfo
	switch os.Getenv("VERBOSE") {
	case "0":
		logLevel = slog.LevelWarn
	case "2":
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	logger.Info("containeripmapd starting",
		"map_file", mapFile,
		"update_haproxy", updateHAProxy,
		"haproxy_timeout", haproxyTimeout,
		"k8s", useK8s)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	var source inventory.Source
	if useK8s {
		source = inventory.NewOrchestratorSource()
	} else {
		source = inventory.NewContainerRuntimeSource(inventory.NewDockerInspector())
	}

	entries, err := source.Collect(ctx)
	if err != nil {
		if useK8s {
			// spec §6: an orchestrator collection failure is reported but
			// never fails the run, since the orchestrator endpoint is
			// node-local and may legitimately be absent (e.g. non-k8s host).
			fmt.Fprintf(os.Stderr, "containeripmapd: collecting orchestrator inventory: %v\n", err)
			os.Exit(0)
		}
		logger.Error("collecting container inventory failed", "error", err)
		os.Exit(1)
	}

	curr := make(map[string]string, len(entries))
	for _, e := range entries {
		curr[e.IP] = e.Identity
	}

	prev, err := mapsync.ReadMapFile(mapFile)
	if err != nil {
		logger.Error("reading installed map file failed", "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	rec := metrics.NewMapSyncRecorder(registry)

	if updateHAProxy {
		sock := mapsync.NewUnixSocket(DefaultHAProxySocket, haproxyTimeout)
		if _, err := mapsync.Reconcile(ctx, logger, prev, curr, sock, mapFile, rec); err != nil {
			logger.Error("reconciling identity map via admin socket failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := mapsync.WriteMapFile(mapFile, curr); err != nil {
		logger.Error("writing map file failed", "error", err)
		os.Exit(1)
	}

	logger.Info("containeripmapd complete", "entries", len(curr))
}

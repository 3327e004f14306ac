// Package mapsync reconciles the on-disk identity map with a freshly
// observed set of workload IPs, pushing the minimal delta through the
// proxy's admin socket before rewriting the map file (spec §4.6, §5).
package mapsync

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"synapse-tools-go/pkg/core/logging"
)

// maxConcurrentOps bounds in-flight admin-socket writes; operations are
// unordered with respect to each other (spec §5), so there is no
// correctness reason to serialize them, only a resource-usage one.
const maxConcurrentOps = 8

// AdminSocket sends one reconciliation command to the proxy's admin
// interface. A concrete UnixSocket implementation opens a fresh connection
// per call, matching the original's one-shot socket.send (spec §4.6,
// "each socket operation is an independent short-lived connection").
type AdminSocket interface {
	Send(ctx context.Context, cmd string) error
}

// ReadMapFile parses a previously-written identity map file into an
// ip -> identity table, matching the original's whitespace-split format
// (spec §4.6: "file is whitespace-separated ip identity pairs, one per
// line"). A missing file is not an error; it reads as empty.
func ReadMapFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("opening map file %s: %w", path, err)
	}
	defer f.Close()

	result := map[string]string{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		result[fields[0]] = fields[1]
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading map file %s: %w", path, err)
	}
	return result, nil
}

// WriteMapFile atomically replaces mapFile's contents with curr, one
// "ip identity" line per entry sorted by IP so repeated runs over an
// unchanged inventory produce byte-identical files.
func WriteMapFile(mapFile string, curr map[string]string) error {
	ips := sortedIPs(curr)
	lines := make([]string, 0, len(ips))
	for _, ip := range ips {
		lines = append(lines, fmt.Sprintf("%s %s", ip, curr[ip]))
	}
	data := []byte(strings.Join(lines, "\n"))

	dir := filepath.Dir(mapFile)
	tmp, err := os.CreateTemp(dir, ".ip-map-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp map file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp map file %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp map file %s: %w", tmpPath, err)
	}
	return os.Rename(tmpPath, mapFile)
}

func sortedIPs(m map[string]string) []string {
	ips := make([]string, 0, len(m))
	for ip := range m {
		ips = append(ips, ip)
	}
	sort.Strings(ips)
	return ips
}

// Ops records the commands a Reconcile pass dispatched, for logging and
// tests.
type Ops struct {
	Added   []string
	Set     []string
	Deleted []string
}

// Recorder observes reconciliation outcomes for metrics (spec §11). A nil
// Recorder is valid.
type Recorder interface {
	RecordOps(added, set, deleted int)
	RecordSocketError()
}

// Reconcile computes the minimal add/set/del multiset between prev and
// curr (spec invariant #6) and dispatches every command concurrently over
// sock, then rewrites mapFile with curr — strictly after every socket
// operation has been attempted, so an interrupted run never leaves the
// file ahead of the proxy's in-memory table (spec §4.6 ordering
// requirement). The first socket error is returned once all in-flight
// operations have completed; the file is rewritten only if every
// operation succeeded.
func Reconcile(ctx context.Context, log *slog.Logger, prev, curr map[string]string, sock AdminSocket, mapFile string, rec Recorder) (Ops, error) {
	log, _ = logging.WithRunID(log)
	log = log.With("map_file", mapFile)

	var ops Ops
	var commands []string

	for _, ip := range sortedIPs(curr) {
		identity := curr[ip]
		prevIdentity, existed := prev[ip]
		switch {
		case !existed:
			ops.Added = append(ops.Added, ip)
			commands = append(commands, fmt.Sprintf("add map %s %s %s", mapFile, ip, identity))
		case prevIdentity != identity:
			ops.Set = append(ops.Set, ip)
			commands = append(commands, fmt.Sprintf("set map %s %s %s", mapFile, ip, identity))
		}
	}
	for _, ip := range sortedIPs(prev) {
		if _, stillPresent := curr[ip]; !stillPresent {
			ops.Deleted = append(ops.Deleted, ip)
			commands = append(commands, fmt.Sprintf("del map %s %s", mapFile, ip))
		}
	}

	log.Info("reconciling identity map", "added", len(ops.Added), "set", len(ops.Set), "deleted", len(ops.Deleted))
	if rec != nil {
		rec.RecordOps(len(ops.Added), len(ops.Set), len(ops.Deleted))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentOps)
	for _, cmd := range commands {
		cmd := cmd
		g.Go(func() error {
			if err := sock.Send(gctx, cmd); err != nil {
				if rec != nil {
					rec.RecordSocketError()
				}
				return fmt.Errorf("sending %q: %w", cmd, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Error("admin socket reconciliation failed", "error", err)
		return ops, err
	}

	if err := WriteMapFile(mapFile, curr); err != nil {
		log.Error("failed to rewrite map file", "error", err)
		return ops, err
	}

	return ops, nil
}

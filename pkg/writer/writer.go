// Package writer serializes a compiled configuration document to disk and
// drives the reload of the data-plane processes that consume it (spec
// §4.5, §7).
package writer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"synapse-tools-go/pkg/compiler"
	"synapse-tools-go/pkg/core/config"
	"synapse-tools-go/pkg/core/logging"
)

// canonicalJSON serializes v with every object's keys sorted, matching the
// original's json.dump(..., sort_keys=True, indent=4). encoding/json
// already sorts map[string]X keys alphabetically, but struct fields keep
// declaration order — round-tripping through a generic interface{} turns
// every struct-derived object into a map too, so the second Marshal sorts
// them all.
func canonicalJSON(v interface{}) ([]byte, error) {
	first, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshaling document: %w", err)
	}

	var generic interface{}
	if err := json.Unmarshal(first, &generic); err != nil {
		return nil, fmt.Errorf("canonicalizing document: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(generic); err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}

	// json.Encoder.Encode appends a trailing newline; the original's
	// json.dump does not, and the writer's byte-for-byte diff against the
	// previously-installed file should not be sensitive to that alone, but
	// matching the original exactly keeps diffs against hand-inspected
	// fixtures clean.
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Write canonicalizes doc, swaps it into cfg.ConfigFile atomically via a
// tmp file in the same directory plus rename, and reloads the data plane
// when the installed bytes actually changed (spec §4.5 steps 1-4). The
// swap itself is unconditional: even when changed is false the file is
// still replaced, so external monitoring that watches the file's mtime
// keeps seeing fresh writes (spec §7 "moves into place unconditionally").
func Write(log *slog.Logger, doc *compiler.Document, cfg config.Config) (changed bool, err error) {
	log, _ = logging.WithRunID(log)
	log = log.With("config_file", cfg.ConfigFile)

	data, err := canonicalJSON(doc)
	if err != nil {
		log.Error("failed to canonicalize configuration", "error", err)
		return false, err
	}

	changed, err = differsFromInstalled(cfg.ConfigFile, data)
	if err != nil {
		log.Error("failed to compare against installed configuration", "error", err)
		return false, err
	}

	if err := atomicWrite(cfg.ConfigFile, data); err != nil {
		log.Error("failed to install configuration", "error", err)
		return false, err
	}

	if !changed {
		log.Debug("configuration unchanged, skipping reload")
		return false, nil
	}

	log.Info("configuration changed, reloading")
	if err := Reload(log, cfg); err != nil {
		log.Error("failed to reload data plane", "error", err)
		return true, err
	}

	return true, nil
}

// differsFromInstalled reports whether candidate differs byte-for-byte
// from the file currently at path. A missing installed file counts as a
// difference (first-ever write).
func differsFromInstalled(path string, candidate []byte) (bool, error) {
	installed, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("reading installed configuration %s: %w", path, err)
	}
	return !bytes.Equal(installed, candidate), nil
}

// atomicWrite writes data to a temp file alongside path, then renames it
// into place, so no reader ever observes a partially-written file (spec
// §4.5 step 2).
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".synapse-config-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file %s: %w", tmpPath, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("chmod temp file %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming %s to %s: %w", tmpPath, path, err)
	}
	return nil
}

// Reload restarts the data-plane process, preferring
// synapse_restart_command when the operator set one, and otherwise
// stop-then-start of synapse_command so the init system re-reads process
// limits (spec §4.5 step 4, §7).
func Reload(log *slog.Logger, cfg config.Config) error {
	log, _ = logging.WithRunID(log)

	if len(cfg.SynapseRestartCommand) > 0 {
		log.Info("restarting via synapse_restart_command", "command", cfg.SynapseRestartCommand)
		return runCommand(cfg.SynapseRestartCommand)
	}

	cmd := cfg.SynapseCommand
	log.Info("stopping synapse", "command", cmd)
	if err := runCommand(append(append([]string{}, cmd...), "stop")); err != nil {
		return err
	}
	log.Info("starting synapse", "command", cmd)
	return runCommand(append(append([]string{}, cmd...), "start"))
}

func runCommand(argv []string) error {
	if len(argv) == 0 {
		return fmt.Errorf("empty command")
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("running %v: %w", argv, err)
	}
	return nil
}

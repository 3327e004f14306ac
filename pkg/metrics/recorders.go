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

package metrics

import "github.com/prometheus/client_golang/prometheus"

// CompilerRecorder implements compiler.Recorder, counting namespace
// processing outcomes and emitted backend descriptors across compiles.
// It satisfies the interface structurally — pkg/compiler never imports
// pkg/metrics, keeping the dependency direction the other way around.
type CompilerRecorder struct {
	namespacesProcessed prometheus.Counter
	namespacesSkipped   prometheus.Counter
	backendsEmitted     prometheus.Counter
}

// NewCompilerRecorder registers the compiler's counters against registry.
func NewCompilerRecorder(registry prometheus.Registerer) *CompilerRecorder {
	return &CompilerRecorder{
		namespacesProcessed: NewCounter(registry, "synapse_compiler_namespaces_processed_total", "Namespaces successfully compiled into backend descriptors."),
		namespacesSkipped:   NewCounter(registry, "synapse_compiler_namespaces_skipped_total", "Namespaces skipped as disabled or invalid."),
		backendsEmitted:     NewCounter(registry, "synapse_compiler_backends_emitted_total", "Backend descriptors written into the compiled document."),
	}
}

func (r *CompilerRecorder) NamespaceProcessed() { r.namespacesProcessed.Inc() }
func (r *CompilerRecorder) NamespaceSkipped()   { r.namespacesSkipped.Inc() }
func (r *CompilerRecorder) BackendEmitted()     { r.backendsEmitted.Inc() }

// MapSyncRecorder counts identity-map reconciliation operations by kind and
// admin-socket failures.
type MapSyncRecorder struct {
	opsByKind    *prometheus.CounterVec
	socketErrors prometheus.Counter
}

// NewMapSyncRecorder registers the map-sync counters against registry.
func NewMapSyncRecorder(registry prometheus.Registerer) *MapSyncRecorder {
	return &MapSyncRecorder{
		opsByKind:    NewCounterVec(registry, "synapse_mapsync_ops_total", "Identity map reconciliation operations, by kind.", []string{"kind"}),
		socketErrors: NewCounter(registry, "synapse_mapsync_socket_errors_total", "Admin socket command failures during reconciliation."),
	}
}

func (r *MapSyncRecorder) RecordOps(added, set, deleted int) {
	r.opsByKind.WithLabelValues("add").Add(float64(added))
	r.opsByKind.WithLabelValues("set").Add(float64(set))
	r.opsByKind.WithLabelValues("del").Add(float64(deleted))
}

func (r *MapSyncRecorder) RecordSocketError() {
	r.socketErrors.Inc()
}

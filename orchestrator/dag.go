package orchestrator

import "github.com/fogcompute/platform/fogerr"

// layerOf computes each service's Kahn layer (§4.8: "layer(x) = 1 +
// max(layer(y) for y in deps(x), default 0)") and detects cycles. descs must
// be keyed by name and every dependency must reference a registered name —
// an unregistered dependency is treated as depth 0 (not yet known), which is
// the caller's responsibility to validate before relying on layering.
func layerOf(descs map[string]*ServiceDescriptor) (map[string]int, error) {
	layers := make(map[string]int, len(descs))
	visiting := make(map[string]bool)
	visited := make(map[string]bool)

	var visit func(name string) (int, error)
	visit = func(name string) (int, error) {
		if l, ok := layers[name]; ok {
			return l, nil
		}
		if visiting[name] {
			return 0, fogerr.New(fogerr.KindCyclicDependency,
				"dependency cycle detected at %q", name)
		}
		visiting[name] = true
		defer delete(visiting, name)

		desc, ok := descs[name]
		if !ok {
			// Dependency on an unregistered service: treat as depth 0 so
			// the caller can still compute a best-effort layering; real
			// registration validates this separately.
			return 0, nil
		}

		// maxDep starts at 0 rather than -1, so a no-dependency service
		// lands at layer 0 instead of the spec formula's literal layer 1
		// (1 + max(deps, default 0) with an empty dependency set). This
		// offset is never observed outside startupOrder/shutdownOrder's
		// relative sort, so it doesn't affect any control.go output.
		maxDep := 0
		for _, dep := range desc.Dependencies {
			dl, err := visit(dep.Name)
			if err != nil {
				return 0, err
			}
			if dl+1 > maxDep {
				maxDep = dl + 1
			}
		}
		layers[name] = maxDep
		visited[name] = true
		return maxDep, nil
	}

	for name := range descs {
		if _, err := visit(name); err != nil {
			return nil, err
		}
	}
	return layers, nil
}

// startupOrder groups service names into ascending-layer batches
// (parallelism allowed within a layer, §4.8).
func startupOrder(descs map[string]*ServiceDescriptor) ([][]string, error) {
	layers, err := layerOf(descs)
	if err != nil {
		return nil, err
	}

	maxLayer := 0
	for _, l := range layers {
		if l > maxLayer {
			maxLayer = l
		}
	}

	batches := make([][]string, maxLayer+1)
	for name, l := range layers {
		batches[l] = append(batches[l], name)
	}

	var out [][]string
	for _, b := range batches {
		if len(b) > 0 {
			out = append(out, b)
		}
	}
	return out, nil
}

// shutdownOrder is startupOrder reversed, batch-by-batch and within each
// batch (§4.8: "shutdown order = reverse").
func shutdownOrder(descs map[string]*ServiceDescriptor) ([][]string, error) {
	up, err := startupOrder(descs)
	if err != nil {
		return nil, err
	}
	down := make([][]string, len(up))
	for i, batch := range up {
		reversed := make([]string, len(batch))
		for j, name := range batch {
			reversed[len(batch)-1-j] = name
		}
		down[len(up)-1-i] = reversed
	}
	return down, nil
}

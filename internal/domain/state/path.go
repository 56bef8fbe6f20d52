package state

import (
	"fmt"
	"strconv"
	"strings"
)

func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

func isContainer(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	}
	return false
}

func listIndex(seg string, n int) (int, error) {
	i, err := strconv.Atoi(seg)
	if err != nil || i < 0 || i >= n {
		return 0, fmt.Errorf("%w: %q (len %d)", ErrIndexOutOfRange, seg, n)
	}
	return i, nil
}

// lookup walks segs from root. The final segment may hold nil and still be
// found; a nil or missing intermediate ends the walk.
func lookup(root any, segs []string) (any, bool) {
	node := root
	for i, seg := range segs {
		var (
			next any
			ok   bool
		)
		switch n := node.(type) {
		case map[string]any:
			next, ok = n[seg]
		case []any:
			idx, err := listIndex(seg, len(n))
			if err == nil {
				next, ok = n[idx], true
			}
		}
		if !ok {
			return nil, false
		}
		if next == nil && i < len(segs)-1 {
			return nil, false
		}
		node = next
	}
	return node, true
}

// assign sets value at segs under root and returns the previous value.
// Every check happens before the first mutation, so an error leaves the
// tree exactly as it was.
func assign(root map[string]any, segs []string, value any) (any, error) {
	parents, key := segs[:len(segs)-1], segs[len(segs)-1]

	var node any = root
	missing := -1
	for i, seg := range parents {
		next, err := step(node, seg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", strings.Join(segs[:i+1], "."), err)
		}
		if next == nil {
			missing = i
			break
		}
		if !isContainer(next) {
			return nil, fmt.Errorf("%s: %w", strings.Join(segs[:i+1], "."), ErrNotContainer)
		}
		node = next
	}

	if missing >= 0 {
		branch := map[string]any{key: value}
		for i := len(parents) - 1; i > missing; i-- {
			branch = map[string]any{parents[i]: branch}
		}
		put(node, parents[missing], branch)
		return nil, nil
	}

	switch n := node.(type) {
	case map[string]any:
		old := n[key]
		n[key] = value
		return old, nil
	case []any:
		idx, err := listIndex(key, len(n))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", strings.Join(segs, "."), err)
		}
		old := n[idx]
		n[idx] = value
		return old, nil
	}
	return nil, ErrNotContainer
}

// step returns the child of a container, nil when absent. List segments
// must address an existing element.
func step(node any, seg string) (any, error) {
	switch n := node.(type) {
	case map[string]any:
		return n[seg], nil
	case []any:
		idx, err := listIndex(seg, len(n))
		if err != nil {
			return nil, err
		}
		return n[idx], nil
	}
	return nil, ErrNotContainer
}

// put stores v under seg; seg has already been validated by step.
func put(node any, seg string, v any) {
	switch n := node.(type) {
	case map[string]any:
		n[seg] = v
	case []any:
		idx, _ := strconv.Atoi(seg)
		n[idx] = v
	}
}

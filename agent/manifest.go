// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package agent

import (
	"sort"

	"github.com/hashicorp/censoredpi/op"
)

// ManifestOp provides a subset of op state, specifically excluding results, so we can render metadata
// about every op without the bulk of the results in Manifest.json
type ManifestOp struct {
	ID       string    `json:"op"`
	Error    string    `json:"error"`
	Status   op.Status `json:"status"`
	Duration string    `json:"duration"`
}

// WalkResultsForManifest flattens results, including ops nested in other ops' results, into ManifestOps sorted by ID.
func WalkResultsForManifest(results map[string]op.Op) []ManifestOp {
	manifestOps := make([]ManifestOp, 0)
	for id, o := range results {
		manifestOps = walkOp(manifestOps, id, o)
	}
	sort.Slice(manifestOps, func(i, j int) bool {
		return manifestOps[i].ID < manifestOps[j].ID
	})
	return manifestOps
}

func walkOp(manifestOps []ManifestOp, id string, o op.Op) []ManifestOp {
	if o.Identifier != "" {
		id = o.Identifier
	}
	manifestOps = append(manifestOps, ManifestOp{
		ID:       id,
		Error:    o.ErrString,
		Status:   o.Status,
		Duration: o.Duration().String(),
	})
	for k, v := range o.Result {
		if inner, ok := v.(op.Op); ok {
			manifestOps = walkOp(manifestOps, k, inner)
		}
	}
	return manifestOps
}

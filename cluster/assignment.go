// Package cluster reduces a built network by merging consumers that an
// external spatial analysis grouped together. The graph keeps one
// aggregate consumer per cluster; pipe topology and total demand are
// preserved.
package cluster

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/L4rsG/SESMG/errors"
)

// Assignment maps building labels to cluster identifiers. Buildings
// absent from the map pass through a reduction untouched.
type Assignment map[string]string

// LoadAssignment reads a cluster assignment from a YAML file of the form
//
//	house-1: east
//	house-2: east
//	house-3: west
//
// Empty cluster identifiers are rejected: an unclustered building should
// be omitted from the file instead.
func LoadAssignment(path string) (Assignment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapInvalid(err, "cluster", "LoadAssignment", "read assignment file")
	}

	var asg Assignment
	if err := yaml.Unmarshal(data, &asg); err != nil {
		return nil, errors.WrapInvalid(err, "cluster", "LoadAssignment", "parse assignment file")
	}

	for building, clusterID := range asg {
		if clusterID == "" {
			return nil, errors.WrapInvalid(
				fmt.Errorf("building %q has an empty cluster id", building),
				"cluster", "LoadAssignment", "validate assignment")
		}
	}

	return asg, nil
}

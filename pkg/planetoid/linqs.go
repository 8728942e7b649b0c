package planetoid

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/cnclabs/gnnlfhf/pkg/graph"
)

// readLINQS parses the Cora/CiteSeer distribution:
//
//	.content: <paper_id> <f_1> ... <f_F> <class_label>
//	.cites:   <cited_paper_id> <citing_paper_id>
func readLINQS(contentFile, citesFile string) (*rawGraph, error) {
	raw := &rawGraph{vertices: graph.NewVertexIndex()}
	if err := raw.readContent(contentFile); err != nil {
		return nil, err
	}
	if err := raw.readCites(citesFile); err != nil {
		return nil, err
	}
	return raw, nil
}

func (r *rawGraph) readContent(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return errors.Wrapf(err, "failed to open file %s", filename)
	}
	defer file.Close()

	scanner := newScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		if len(parts) < 3 {
			return errors.Errorf("%s:%d: expected id, features and label, got %d fields", filename, lineNo, len(parts))
		}

		nf := len(parts) - 2
		if r.numFeatures == 0 {
			r.numFeatures = nf
		} else if nf != r.numFeatures {
			return errors.Errorf("%s:%d: expected %d features, got %d", filename, lineNo, r.numFeatures, nf)
		}

		id := parts[0]
		if _, dup := r.vertices.Lookup(id); dup {
			return errors.Errorf("%s:%d: duplicate paper id %s", filename, lineNo, id)
		}
		r.vertices.GetOrCreate(id)

		for _, s := range parts[1 : len(parts)-1] {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return errors.Wrapf(err, "%s:%d: invalid feature", filename, lineNo)
			}
			r.features = append(r.features, v)
		}
		r.labels = append(r.labels, parts[len(parts)-1])
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "error reading file %s", filename)
	}
	return nil
}

func (r *rawGraph) readCites(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return errors.Wrapf(err, "failed to open file %s", filename)
	}
	defer file.Close()

	scanner := newScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		if len(parts) != 2 {
			return errors.Errorf("%s:%d: expected 2 paper ids, got %d fields", filename, lineNo, len(parts))
		}
		r.addEdge(parts[0], parts[1])
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "error reading file %s", filename)
	}
	return nil
}

// addEdge records a citation between two known papers and counts the rest.
func (r *rawGraph) addEdge(a, b string) {
	u, okU := r.vertices.Lookup(a)
	v, okV := r.vertices.Lookup(b)
	if !okU || !okV {
		r.skippedEdges++
		return
	}
	r.edges[0] = append(r.edges[0], u)
	r.edges[1] = append(r.edges[1], v)
}

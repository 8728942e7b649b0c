package planetoid

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/cnclabs/gnnlfhf/pkg/graph"
)

// readPubMed parses the Pubmed-Diabetes distribution. The node file starts
// with a header line and a declaration line listing "numeric:<word>:0.0"
// features; every following line is
//
//	<paper_id> label=<k> <word>=<tfidf> ... summary=<words>
//
// The citation file has two header lines followed by
//
//	<edge_id> paper:<a> | paper:<b>
func readPubMed(nodeFile, citesFile string) (*rawGraph, error) {
	raw := &rawGraph{vertices: graph.NewVertexIndex()}
	if err := raw.readPubMedNodes(nodeFile); err != nil {
		return nil, err
	}
	if err := raw.readPubMedCites(citesFile); err != nil {
		return nil, err
	}
	return raw, nil
}

func (r *rawGraph) readPubMedNodes(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return errors.Wrapf(err, "failed to open file %s", filename)
	}
	defer file.Close()

	scanner := newScanner(file)
	lineNo := 0
	featureIDs := make(map[string]int)
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		switch {
		case lineNo == 1:
			continue
		case lineNo == 2:
			for _, decl := range strings.Fields(line) {
				parts := strings.Split(decl, ":")
				if len(parts) == 3 && parts[0] == "numeric" {
					featureIDs[parts[1]] = len(featureIDs)
				}
			}
			r.numFeatures = len(featureIDs)
			if r.numFeatures == 0 {
				return errors.Errorf("%s:%d: no numeric feature declarations", filename, lineNo)
			}
			continue
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		if len(parts) < 2 || !strings.HasPrefix(parts[1], "label=") {
			return errors.Errorf("%s:%d: expected paper id and label", filename, lineNo)
		}

		id := parts[0]
		if _, dup := r.vertices.Lookup(id); dup {
			return errors.Errorf("%s:%d: duplicate paper id %s", filename, lineNo, id)
		}
		r.vertices.GetOrCreate(id)
		r.labels = append(r.labels, strings.TrimPrefix(parts[1], "label="))

		row := make([]float64, r.numFeatures)
		for _, kv := range parts[2:] {
			eq := strings.IndexByte(kv, '=')
			if eq < 0 {
				continue
			}
			col, ok := featureIDs[kv[:eq]]
			if !ok {
				// summary=... and undeclared words
				continue
			}
			v, err := strconv.ParseFloat(kv[eq+1:], 64)
			if err != nil {
				return errors.Wrapf(err, "%s:%d: invalid value for %s", filename, lineNo, kv[:eq])
			}
			row[col] = v
		}
		r.features = append(r.features, row...)
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "error reading file %s", filename)
	}
	return nil
}

func (r *rawGraph) readPubMedCites(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return errors.Wrapf(err, "failed to open file %s", filename)
	}
	defer file.Close()

	scanner := newScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo <= 2 {
			continue
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		if len(parts) != 4 || parts[2] != "|" {
			return errors.Errorf("%s:%d: expected '<id> paper:<a> | paper:<b>'", filename, lineNo)
		}
		r.addEdge(strings.TrimPrefix(parts[1], "paper:"), strings.TrimPrefix(parts[3], "paper:"))
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "error reading file %s", filename)
	}
	return nil
}

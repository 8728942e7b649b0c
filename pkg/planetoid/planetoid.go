// Package planetoid loads the Cora, CiteSeer and PubMed citation networks
// from their raw distribution files and applies a Planetoid-style split.
//
// Expected layout under the dataset root:
//
//	<root>/cora/raw/cora.content, cora.cites
//	<root>/citeseer/raw/citeseer.content, citeseer.cites
//	<root>/pubmed/raw/Pubmed-Diabetes.NODE.paper.tab, Pubmed-Diabetes.DIRECTED.cites.tab
package planetoid

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/cnclabs/gnnlfhf/pkg/graph"
)

const (
	Cora     = "cora"
	CiteSeer = "citeseer"
	PubMed   = "pubmed"

	DefaultTrainPerClass = 20
	DefaultNumVal        = 500
	DefaultNumTest       = 1000

	maxLineSize = 64 * 1024 * 1024
)

// ErrUnknownName is returned by Load for names other than cora, citeseer and
// pubmed.
var ErrUnknownName = errors.New("planetoid: unknown dataset")

// Dataset is a loaded citation network.
type Dataset struct {
	Name        string
	Graph       *graph.Graph
	NumClasses  int
	NumFeatures int

	// SkippedEdges counts citations whose endpoints are missing from the
	// node file.
	SkippedEdges int
}

type options struct {
	trainPerClass int
	numVal        int
	numTest       int
}

// Option configures Load.
type Option func(*options)

// WithSplit overrides the number of training nodes per class and the sizes of
// the validation and test partitions.
func WithSplit(trainPerClass, numVal, numTest int) Option {
	return func(o *options) {
		o.trainPerClass = trainPerClass
		o.numVal = numVal
		o.numTest = numTest
	}
}

// Names returns the supported dataset names.
func Names() []string {
	return []string{Cora, PubMed, CiteSeer}
}

// Load reads the dataset called name (case-insensitive) from root.
func Load(root, name string, opts ...Option) (*Dataset, error) {
	o := options{
		trainPerClass: DefaultTrainPerClass,
		numVal:        DefaultNumVal,
		numTest:       DefaultNumTest,
	}
	for _, opt := range opts {
		opt(&o)
	}

	lower := strings.ToLower(name)
	rawDir := filepath.Join(root, lower, "raw")

	var (
		raw *rawGraph
		err error
	)
	switch lower {
	case Cora, CiteSeer:
		raw, err = readLINQS(
			filepath.Join(rawDir, lower+".content"),
			filepath.Join(rawDir, lower+".cites"),
		)
	case PubMed:
		raw, err = readPubMed(
			filepath.Join(rawDir, "Pubmed-Diabetes.NODE.paper.tab"),
			filepath.Join(rawDir, "Pubmed-Diabetes.DIRECTED.cites.tab"),
		)
	default:
		return nil, errors.Wrapf(ErrUnknownName, "%q", name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", lower)
	}

	return raw.build(lower, o)
}

// Loader returns Load bound to opts.
func Loader(opts ...Option) func(root, name string) (*Dataset, error) {
	return func(root, name string) (*Dataset, error) {
		return Load(root, name, opts...)
	}
}

// rawGraph is the parsed, not yet split content of the node and edge files.
type rawGraph struct {
	vertices     *graph.VertexIndex
	features     []float64
	numFeatures  int
	labels       []string
	edges        [2][]int
	skippedEdges int
}

func (r *rawGraph) build(name string, o options) (*Dataset, error) {
	n := r.vertices.Len()
	if n == 0 {
		return nil, errors.Errorf("planetoid: %s has no nodes", name)
	}

	classes := labelIDs(r.labels)
	y := make([]int, n)
	for i, l := range r.labels {
		y[i] = classes[l]
	}

	adj, err := graph.NewAdjacency(n, r.edges)
	if err != nil {
		return nil, errors.Wrap(err, "build adjacency")
	}

	g := &graph.Graph{
		X:          mat.NewDense(n, r.numFeatures, r.features),
		Y:          y,
		EdgeIndex:  adj.EdgeIndex(),
		NumClasses: len(classes),
	}
	g.TrainMask, g.ValMask, g.TestMask = split(y, len(classes), o)

	return &Dataset{
		Name:         name,
		Graph:        g,
		NumClasses:   len(classes),
		NumFeatures:  r.numFeatures,
		SkippedEdges: r.skippedEdges,
	}, nil
}

// labelIDs numbers the distinct labels in lexical order.
func labelIDs(labels []string) map[string]int {
	distinct := make([]string, 0)
	seen := make(map[string]struct{})
	for _, l := range labels {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		distinct = append(distinct, l)
	}
	sort.Strings(distinct)

	ids := make(map[string]int, len(distinct))
	for i, l := range distinct {
		ids[l] = i
	}
	return ids
}

// split walks nodes in file order: the first trainPerClass nodes of each class
// go to train, the following unassigned nodes fill validation, then test.
func split(y []int, numClasses int, o options) (train, val, test []bool) {
	n := len(y)
	train = make([]bool, n)
	val = make([]bool, n)
	test = make([]bool, n)

	perClass := make([]int, numClasses)
	for i, c := range y {
		if perClass[c] < o.trainPerClass {
			train[i] = true
			perClass[c]++
		}
	}

	nVal, nTest := 0, 0
	for i := 0; i < n; i++ {
		if train[i] {
			continue
		}
		if nVal < o.numVal {
			val[i] = true
			nVal++
			continue
		}
		if nTest < o.numTest {
			test[i] = true
			nTest++
			continue
		}
		break
	}
	return train, val, test
}

func newScanner(f *os.File) *bufio.Scanner {
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), maxLineSize)
	return scanner
}

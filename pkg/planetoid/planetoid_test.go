package planetoid

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cnclabs/gnnlfhf/pkg/graph"
)

func writeFile(t *testing.T, path string, lines ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
}

func writeCora(t *testing.T, root string) {
	t.Helper()
	raw := filepath.Join(root, "cora", "raw")
	writeFile(t, filepath.Join(raw, "cora.content"),
		"p1 1 0 0 Neural_Networks",
		"p2 0 1 0 Theory",
		"p3 0 0 1 Neural_Networks",
		"p4 1 1 0 Theory",
		"p5 0 1 1 Neural_Networks",
		"p6 1 0 1 Theory",
	)
	writeFile(t, filepath.Join(raw, "cora.cites"),
		"p1 p2",
		"p2 p1",
		"p2 p3",
		"p4 p4",
		"p5 p6",
		"p5 unknown",
	)
}

func TestLoadCora(t *testing.T) {
	root := t.TempDir()
	writeCora(t, root)

	ds, err := Load(root, "cora", WithSplit(1, 2, 10))
	require.NoError(t, err)

	g := ds.Graph
	assert.Equal(t, "cora", ds.Name)
	assert.Equal(t, 6, g.NumNodes())
	assert.Equal(t, 3, ds.NumFeatures)
	assert.Equal(t, 2, ds.NumClasses)
	assert.Equal(t, 1, ds.SkippedEdges)

	// labels are numbered in lexical order
	assert.Equal(t, []int{0, 1, 0, 1, 0, 1}, g.Y)
	assert.Equal(t, []float64{1, 1, 0}, []float64{g.X.At(3, 0), g.X.At(3, 1), g.X.At(3, 2)})

	// undirected, deduplicated, no self loops
	assert.Equal(t, 6, g.NumEdges())
	adj, err := graph.NewAdjacency(g.NumNodes(), g.EdgeIndex)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, adj.Neighbors(1))
	assert.Equal(t, 0, adj.Degree(3))

	assert.Equal(t, []int{0, 1}, graph.MaskToIndex(g.TrainMask))
	assert.Equal(t, []int{2, 3}, graph.MaskToIndex(g.ValMask))
	assert.Equal(t, []int{4, 5}, graph.MaskToIndex(g.TestMask))
}

func TestLoadIsCaseInsensitive(t *testing.T) {
	root := t.TempDir()
	writeCora(t, root)

	ds, err := Load(root, "CoRa")
	require.NoError(t, err)
	assert.Equal(t, "cora", ds.Name)
}

func TestLoadCiteSeer(t *testing.T) {
	root := t.TempDir()
	raw := filepath.Join(root, "citeseer", "raw")
	writeFile(t, filepath.Join(raw, "citeseer.content"),
		"100157 0 1 Agents",
		"100598 1 0 IR",
		"101570 1 1 ML",
	)
	writeFile(t, filepath.Join(raw, "citeseer.cites"),
		"100157 100598",
		"100598 101570",
	)

	ds, err := Load(root, "citeseer")
	require.NoError(t, err)
	assert.Equal(t, 3, ds.NumClasses)
	assert.Equal(t, 4, ds.Graph.NumEdges())
	assert.Equal(t, []int{0, 1, 2}, graph.MaskToIndex(ds.Graph.TrainMask))
	assert.Empty(t, graph.MaskToIndex(ds.Graph.ValMask))
}

func TestLoadPubMed(t *testing.T) {
	root := t.TempDir()
	raw := filepath.Join(root, "pubmed", "raw")
	writeFile(t, filepath.Join(raw, "Pubmed-Diabetes.NODE.paper.tab"),
		"NO_FEATURES",
		"cat=1,2,3:label\tnumeric:w-rat:0.0\tnumeric:w-insulin:0.0\tstring:summary",
		"12187484\tlabel=1\tw-rat=0.5\tsummary=w-rat",
		"2344352\tlabel=3\tw-insulin=0.25\tw-rat=0.125\tsummary=w-rat,w-insulin",
		"14654069\tlabel=2\tsummary=",
	)
	writeFile(t, filepath.Join(raw, "Pubmed-Diabetes.DIRECTED.cites.tab"),
		"DIRECTED\t\t\tcites",
		"NO_FEATURES",
		"33824\tpaper:12187484\t|\tpaper:2344352",
		"33825\tpaper:14654069\t|\tpaper:99999",
	)

	ds, err := Load(root, "PubMed")
	require.NoError(t, err)

	g := ds.Graph
	assert.Equal(t, 2, ds.NumFeatures)
	assert.Equal(t, 3, ds.NumClasses)
	assert.Equal(t, []int{0, 2, 1}, g.Y)
	assert.Equal(t, 0.5, g.X.At(0, 0))
	assert.Equal(t, 0.25, g.X.At(1, 1))
	assert.Equal(t, 0.125, g.X.At(1, 0))
	assert.Equal(t, 0.0, g.X.At(2, 0))
	assert.Equal(t, 2, g.NumEdges())
	assert.Equal(t, 1, ds.SkippedEdges)
}

func TestLoadErrors(t *testing.T) {
	root := t.TempDir()

	_, err := Load(root, "imdb")
	assert.True(t, errors.Is(err, ErrUnknownName))

	_, err = Load(root, "cora")
	assert.True(t, errors.Is(err, os.ErrNotExist))

	raw := filepath.Join(root, "cora", "raw")
	writeFile(t, filepath.Join(raw, "cora.content"),
		"p1 1 0 A",
		"p2 1 B",
	)
	writeFile(t, filepath.Join(raw, "cora.cites"))
	_, err = Load(root, "cora")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cora.content:2")
}

func TestSplitCapsAtAvailableNodes(t *testing.T) {
	y := []int{0, 0, 0, 1, 1, 0, 1}
	train, val, test := split(y, 2, options{trainPerClass: 2, numVal: 1, numTest: 5})

	assert.Equal(t, []int{0, 1, 3, 4}, graph.MaskToIndex(train))
	assert.Equal(t, []int{2}, graph.MaskToIndex(val))
	assert.Equal(t, []int{5, 6}, graph.MaskToIndex(test))
}

func TestLoaderBindsOptions(t *testing.T) {
	root := t.TempDir()
	writeCora(t, root)

	ds, err := Loader(WithSplit(2, 0, 0))(root, "cora")
	require.NoError(t, err)
	assert.Len(t, graph.MaskToIndex(ds.Graph.TrainMask), 4)
	assert.Empty(t, graph.MaskToIndex(ds.Graph.TestMask))
	assert.ElementsMatch(t, []string{"cora", "citeseer", "pubmed"}, Names())
}

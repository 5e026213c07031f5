package gbm

// Node is one node of a regression tree. Leaves carry Value; inner nodes
// route x[Feature] <= Threshold to Left, otherwise Right.
type Node struct {
	Leaf      bool    `json:"leaf,omitempty"`
	Feature   int     `json:"feature,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
	Left      int     `json:"left,omitempty"`
	Right     int     `json:"right,omitempty"`
	Value     float64 `json:"value,omitempty"`
}

// Tree is a regression tree stored as a flat node slice; Nodes[0] is the root.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

func (t *Tree) predict(x []float64) float64 {
	i := 0
	for {
		n := &t.Nodes[i]
		if n.Leaf {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// minGain ignores splits whose improvement is floating-point noise.
const minGain = 1e-12

// treeBuilder grows one tree on presorted sample indices. sorted[f] lists
// the node's samples ordered by feature f; children reuse sub-slices of
// the parent's arrays after an in-place stable partition.
type treeBuilder struct {
	x        [][]float64
	target   []float64
	maxDepth int
	minLeaf  int
	goLeft   []bool
	scratch  []int
	nodes    []Node
}

func newTreeBuilder(x [][]float64, maxDepth, minLeaf int) *treeBuilder {
	return &treeBuilder{
		x:        x,
		maxDepth: maxDepth,
		minLeaf:  minLeaf,
		goLeft:   make([]bool, len(x)),
		scratch:  make([]int, len(x)),
	}
}

func (b *treeBuilder) build(target []float64, sorted [][]int) Tree {
	b.target = target
	b.nodes = b.nodes[:0]
	b.grow(sorted, 0)
	nodes := make([]Node, len(b.nodes))
	copy(nodes, b.nodes)
	return Tree{Nodes: nodes}
}

func (b *treeBuilder) grow(sorted [][]int, depth int) int {
	idx := len(b.nodes)
	b.nodes = append(b.nodes, Node{})

	members := sorted[0]
	n := len(members)
	sum := 0.0
	for _, i := range members {
		sum += b.target[i]
	}
	mean := sum / float64(n)

	if depth >= b.maxDepth || n < 2*b.minLeaf {
		b.nodes[idx] = Node{Leaf: true, Value: mean}
		return idx
	}

	feature, pos, threshold, ok := b.bestSplit(sorted, sum)
	if !ok {
		b.nodes[idx] = Node{Leaf: true, Value: mean}
		return idx
	}

	order := sorted[feature]
	for k, i := range order {
		b.goLeft[i] = k < pos
	}
	left := make([][]int, len(sorted))
	right := make([][]int, len(sorted))
	for f := range sorted {
		nl := partition(sorted[f], b.goLeft, b.scratch)
		left[f] = sorted[f][:nl]
		right[f] = sorted[f][nl:]
	}

	l := b.grow(left, depth+1)
	r := b.grow(right, depth+1)
	b.nodes[idx] = Node{Feature: feature, Threshold: threshold, Left: l, Right: r}
	return idx
}

// bestSplit scans every feature for the split maximizing squared-error
// reduction while keeping at least minLeaf samples on each side.
func (b *treeBuilder) bestSplit(sorted [][]int, sum float64) (feature, pos int, threshold float64, ok bool) {
	n := len(sorted[0])
	parent := sum * sum / float64(n)
	best := minGain

	for f, order := range sorted {
		left := 0.0
		for k := 1; k < n; k++ {
			left += b.target[order[k-1]]
			if k < b.minLeaf || n-k < b.minLeaf {
				continue
			}
			lo, hi := b.x[order[k-1]][f], b.x[order[k]][f]
			if lo == hi {
				continue
			}
			right := sum - left
			gain := left*left/float64(k) + right*right/float64(n-k) - parent
			if gain > best {
				best = gain
				feature, pos, ok = f, k, true
				threshold = lo + (hi-lo)/2
				if threshold >= hi {
					threshold = lo
				}
			}
		}
	}
	return feature, pos, threshold, ok
}

// partition stably moves samples marked goLeft to the front of order and
// returns how many there are.
func partition(order []int, goLeft []bool, scratch []int) int {
	nl, nr := 0, 0
	for _, i := range order {
		if goLeft[i] {
			order[nl] = i
			nl++
		} else {
			scratch[nr] = i
			nr++
		}
	}
	copy(order[nl:], scratch[:nr])
	return nl
}

package beam

// arena stores explored nodes as parent pointers so hypotheses share
// prefixes instead of copying their sequences at every step. Node ids are
// indices into the backing slices; the root is the pseudo-node -1.
type arena struct {
	parent []int
	token  []int
}

// add records a child of parent p reached by expansion index t and returns
// the child's node id.
func (a *arena) add(p, t int) int {
	a.parent = append(a.parent, p)
	a.token = append(a.token, t)
	return len(a.parent) - 1
}

// sequence materializes the root-to-node path of expansion indices.
func (a *arena) sequence(id int) []int {
	n := 0
	for i := id; i >= 0; i = a.parent[i] {
		n++
	}
	if n == 0 {
		return nil
	}

	seq := make([]int, n)
	for i := id; i >= 0; i = a.parent[i] {
		n--
		seq[n] = a.token[i]
	}
	return seq
}

package lines

import "gonum.org/v1/gonum/mat"

// FindSimilarGroups partitions segment indices into groups of near-duplicates
// using greedy founder-seeded single-link clustering over the pairwise
// distance matrix.
//
// Scanning in ascending index order, each unvisited index i founds a new
// group; every later-scanned unvisited j joins it when matrix[i][j] <=
// threshold. Membership is decided against the founder only, never against
// other members already absorbed in the same pass, so a chain A-B-C merges C
// into A's group only when A and C are directly within threshold. The groups
// are disjoint and cover [0, N) exactly, in founder discovery order.
func FindSimilarGroups(segments []Segment, threshold float64, method Method, params DistanceParams) ([][]int, error) {
	m, err := DistanceMatrix(segments, method, params)
	if err != nil {
		return nil, err
	}
	return GroupsFromMatrix(m, threshold), nil
}

// GroupsFromMatrix runs the founder-seeded grouping directly on a precomputed
// distance matrix, so callers that also need the matrix (or build it with
// ParallelDistanceMatrix) avoid computing it twice. A nil matrix yields no
// groups.
func GroupsFromMatrix(m *mat.SymDense, threshold float64) [][]int {
	if m == nil {
		return [][]int{}
	}

	n := m.SymmetricDim()
	visited := make([]bool, n)
	groups := make([][]int, 0, n)

	for i := 0; i < n; i++ {
		if visited[i] {
			continue
		}

		group := []int{i}
		visited[i] = true

		for j := 0; j < n; j++ {
			if !visited[j] && m.At(i, j) <= threshold {
				group = append(group, j)
				visited[j] = true
			}
		}

		groups = append(groups, group)
	}

	return groups
}

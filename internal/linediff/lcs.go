package linediff

// pair is a matched position: index a in the first sequence equals index b in the second.
type pair struct {
	a int
	b int
}

// lcsTable builds the (len(a)+1) x (len(b)+1) longest-common-subsequence table.
// Row 0 and column 0 are all zero.
func lcsTable[T any](a, b []T, eq func(T, T) bool) [][]int {
	m, n := len(a), len(b)
	dp := make([][]int, m+1)
	for i := range dp {
		dp[i] = make([]int, n+1)
	}
	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if eq(a[i-1], b[j-1]) {
				dp[i][j] = dp[i-1][j-1] + 1
			} else {
				dp[i][j] = max(dp[i-1][j], dp[i][j-1])
			}
		}
	}
	return dp
}

// lcsPairs backtracks the table from dp[m][n] and returns the matched index pairs in
// ascending order. On a mismatch it walks up (i-1) only when that cell is strictly
// larger than the one to the left; ties walk left. Output depends on this tie-break.
func lcsPairs[T any](a, b []T, eq func(T, T) bool) []pair {
	dp := lcsTable(a, b, eq)

	i, j := len(a), len(b)
	pairs := make([]pair, 0, dp[i][j])
	for i > 0 && j > 0 {
		switch {
		case eq(a[i-1], b[j-1]):
			pairs = append(pairs, pair{a: i - 1, b: j - 1})
			i--
			j--
		case dp[i-1][j] > dp[i][j-1]:
			i--
		default:
			j--
		}
	}

	// Collected back to front.
	for l, r := 0, len(pairs)-1; l < r; l, r = l+1, r-1 {
		pairs[l], pairs[r] = pairs[r], pairs[l]
	}
	return pairs
}

// LCSLength returns the length of the longest common subsequence of a and b.
func LCSLength[T comparable](a, b []T) int {
	dp := lcsTable(a, b, equal[T])
	return dp[len(a)][len(b)]
}

func equal[T comparable](x, y T) bool { return x == y }

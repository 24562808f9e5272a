// Package diff computes line edit scripts and renders them as unified diffs.
package diff

// Op is the kind of an Edit.
type Op int

const (
	// Keep copies a line present in both inputs.
	Keep Op = iota
	// Remove drops a line of the old input.
	Remove
	// Insert adds a line of the new input.
	Insert
)

// Edit is one step of an EditScript. A is the index into the old input for Keep
// and Remove, B the index into the new input for Keep and Insert; the unused
// index is -1.
type Edit struct {
	Op Op
	A  int
	B  int
}

// EditScript transforms the old input into the new one.
type EditScript []Edit

// HasChanges reports whether the script contains anything other than Keep.
func (s EditScript) HasChanges() bool {
	for _, e := range s {
		if e.Op != Keep {
			return true
		}
	}
	return false
}

// Myers computes a shortest edit script between a and b using the O(ND)
// greedy algorithm. Among scripts of equal length, removals come before
// insertions at each change.
func Myers(a, b []string) EditScript {
	n, m := len(a), len(b)
	limit := n + m
	offset := limit + 1
	v := make([]int, 2*limit+3)
	var trace [][]int

	for d := 0; d <= limit; d++ {
		snapshot := make([]int, len(v))
		copy(snapshot, v)
		trace = append(trace, snapshot)

		for k := -d; k <= d; k += 2 {
			var x int
			if k == -d || (k != d && v[offset+k-1] < v[offset+k+1]) {
				x = v[offset+k+1]
			} else {
				x = v[offset+k-1] + 1
			}
			y := x - k
			for x < n && y < m && a[x] == b[y] {
				x++
				y++
			}
			v[offset+k] = x
			if x >= n && y >= m {
				return backtrack(trace, n, m, offset)
			}
		}
	}
	return nil
}

func backtrack(trace [][]int, n, m, offset int) EditScript {
	var rev EditScript
	x, y := n, m
	for d := len(trace) - 1; d >= 0; d-- {
		v := trace[d]
		k := x - y
		var prevK int
		if k == -d || (k != d && v[offset+k-1] < v[offset+k+1]) {
			prevK = k + 1
		} else {
			prevK = k - 1
		}
		prevX := v[offset+prevK]
		prevY := prevX - prevK
		for x > prevX && y > prevY {
			x--
			y--
			rev = append(rev, Edit{Op: Keep, A: x, B: y})
		}
		if d > 0 {
			if x == prevX {
				rev = append(rev, Edit{Op: Insert, A: -1, B: prevY})
			} else {
				rev = append(rev, Edit{Op: Remove, A: prevX, B: -1})
			}
		}
		x, y = prevX, prevY
	}
	script := make(EditScript, len(rev))
	for i, e := range rev {
		script[len(rev)-1-i] = e
	}
	return script
}

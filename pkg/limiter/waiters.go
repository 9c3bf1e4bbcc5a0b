package limiter

// waiter is a suspended acquisition. The done channel is closed exactly once,
// by the scheduling pass, after the grant has been accounted. The granted and
// cancelled flags are guarded by the limiter mutex.
type waiter struct {
	amount    float64
	seq       uint64
	done      chan struct{}
	granted   bool
	cancelled bool
}

// waiterQueue is a min-heap ordering waiters by requested amount, with
// enqueue sequence as the tie-break. Smaller requests are deliberately served
// first: a late arrival asking for less can overtake an earlier, larger
// request once the drained level admits it.
type waiterQueue []*waiter

func (q waiterQueue) Len() int { return len(q) }

func (q waiterQueue) Less(i, j int) bool {
	if q[i].amount == q[j].amount {
		return q[i].seq < q[j].seq
	}
	return q[i].amount < q[j].amount
}

func (q waiterQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *waiterQueue) Push(x interface{}) {
	*q = append(*q, x.(*waiter))
}

func (q *waiterQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[0 : n-1]
	return item
}

// peek returns the front waiter without removing it.
func (q waiterQueue) peek() *waiter {
	return q[0]
}

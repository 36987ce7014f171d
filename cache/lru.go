package cache

// node is one element of a shard's recency ring.
type node[K comparable] struct {
	key        K
	prev, next *node[K]
}

// ring is a circular doubly linked list anchored at an embedded
// sentinel: root.next is the most recently used node, root.prev the
// least. A ring must be initialized with init before use.
type ring[K comparable] struct {
	root node[K]
}

func (r *ring[K]) init() {
	r.root.prev = &r.root
	r.root.next = &r.root
}

// pushFront inserts a new node for key at the most recently used end.
func (r *ring[K]) pushFront(key K) *node[K] {
	nd := &node[K]{key: key}
	r.insert(nd)
	return nd
}

func (r *ring[K]) insert(nd *node[K]) {
	nd.prev = &r.root
	nd.next = r.root.next
	nd.prev.next = nd
	nd.next.prev = nd
}

// moveToFront marks nd most recently used.
func (r *ring[K]) moveToFront(nd *node[K]) {
	if r.root.next == nd {
		return
	}
	r.remove(nd)
	r.insert(nd)
}

// remove unlinks nd from the ring.
func (r *ring[K]) remove(nd *node[K]) {
	nd.prev.next = nd.next
	nd.next.prev = nd.prev
	nd.prev, nd.next = nil, nil
}

// oldest returns the least recently used node, or nil when the ring is
// empty.
func (r *ring[K]) oldest() *node[K] {
	if r.root.prev == &r.root {
		return nil
	}
	return r.root.prev
}
